package shop

import (
	"context"
	"testing"

	"bookshop/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestBookRepository_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	book, err := env.shop.Books.Create(ctx, BookInput{Title: "  Dune ", Author: "Frank Herbert"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), book.ID)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, "", book.ISBN)
	assert.Equal(t, 0, book.Stock)
	assert.True(t, book.PriceBuy.IsZero())
	assert.Equal(t, models.BookAvailable, book.Status)
	assert.Equal(t, day0, book.CreatedAt)

	got, err := env.shop.Books.Get(book.ID)
	require.NoError(t, err)
	assert.Equal(t, book, got)
}

func TestBookRepository_CreateValidation(t *testing.T) {
	testCases := []struct {
		name string
		in   BookInput
		msg  string
	}{
		{"missing title", BookInput{Author: "A"}, "title is required"},
		{"blank author", BookInput{Title: "T", Author: "   "}, "author is required"},
		{"negative stock", BookInput{Title: "T", Author: "A", Stock: -1}, "stock must be at least 0"},
		{"negative price", BookInput{Title: "T", Author: "A", PriceRent: decimal.NewFromInt(-2)}, "price_rent must not be negative"},
		{"unknown status", BookInput{Title: "T", Author: "A", Status: "lost"}, "status must be one of available, rented, sold"},
	}

	env := newTestEnv(t)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.shop.Books.Create(context.Background(), tc.in)
			require.Error(t, err)
			assert.Equal(t, ErrValidation, Code(err))
			assert.EqualError(t, err, tc.msg)
		})
	}
	assert.Empty(t, env.shop.Books.List())
}

func TestBookRepository_ListNewestFirst(t *testing.T) {
	env := newTestEnv(t)

	env.book(t, "First", 1, "1")
	env.advanceDays(1)
	env.book(t, "Second", 1, "1")
	env.book(t, "Third", 1, "1")

	var titles []string
	for _, b := range env.shop.Books.List() {
		titles = append(titles, b.Title)
	}
	assert.Equal(t, []string{"Third", "Second", "First"}, titles)
}

func TestBookRepository_Update(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	book := env.book(t, "Dune", 2, "3")

	updated, err := env.shop.Books.Update(ctx, book.ID, BookPatch{
		ISBN:     ptr("978-0441013593"),
		PriceBuy: ptr(decimal.RequireFromString("15.99")),
		Status:   ptr(models.BookSold),
	})
	require.NoError(t, err)
	assert.Equal(t, "Dune", updated.Title)
	assert.Equal(t, "978-0441013593", updated.ISBN)
	assert.Equal(t, "15.99", updated.PriceBuy.String())
	assert.Equal(t, 2, updated.Stock)
	assert.Equal(t, models.BookSold, updated.Status)
	assert.Equal(t, book.CreatedAt, updated.CreatedAt)

	_, err = env.shop.Books.Update(ctx, 99, BookPatch{Title: ptr("x")})
	assert.Equal(t, ErrNotFound, Code(err))

	_, err = env.shop.Books.Update(ctx, book.ID, BookPatch{Title: ptr(" ")})
	assert.Equal(t, ErrValidation, Code(err))

	_, err = env.shop.Books.Update(ctx, book.ID, BookPatch{Stock: ptr(-3)})
	assert.Equal(t, ErrValidation, Code(err))
}

func TestBookRepository_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	book := env.book(t, "Dune", 2, "3")
	require.NoError(t, env.shop.Books.Delete(ctx, book.ID))

	_, err := env.shop.Books.Get(book.ID)
	assert.Equal(t, ErrNotFound, Code(err))
	assert.Equal(t, ErrNotFound, Code(env.shop.Books.Delete(ctx, book.ID)))

	next := env.book(t, "Emma", 1, "1")
	assert.Equal(t, book.ID+1, next.ID)
}

func TestBookRepository_DeleteBlockedByOpenRental(t *testing.T) {
	testCases := []struct {
		name    string
		overdue bool
	}{
		{"active", false},
		{"overdue", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()

			book := env.book(t, "Dune", 1, "3")
			customer := env.customer(t, "Ann", "0800000001")
			rental := env.rent(t, book.ID, customer.ID, 1)

			if tc.overdue {
				env.advanceDays(3)
				n, err := env.shop.Rentals.ReconcileOverdue(ctx)
				require.NoError(t, err)
				require.Equal(t, 1, n)
			}
			saves := env.backend.Saves()

			err := env.shop.Books.Delete(ctx, book.ID)
			require.Error(t, err)
			assert.Equal(t, ErrConflict, Code(err))
			assert.Equal(t, saves, env.backend.Saves())

			_, err = env.shop.Books.Get(book.ID)
			assert.NoError(t, err)
			_, err = env.shop.Rentals.GetWithDetails(rental.ID)
			assert.NoError(t, err)
		})
	}
}
