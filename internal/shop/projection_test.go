package shop

import (
	"testing"
	"time"

	"bookshop/internal/models"
	"bookshop/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDeriveOverdue(t *testing.T) {
	today := models.NewDate(2024, 3, 10)
	returned := today.AddDays(-1)

	testCases := []struct {
		name   string
		rental models.Rental
		want   models.RentalStatus
	}{
		{"active not due", models.Rental{Status: models.RentalActive, DueDate: today.AddDays(1)}, models.RentalActive},
		{"active due today", models.Rental{Status: models.RentalActive, DueDate: today}, models.RentalActive},
		{"active past due", models.Rental{Status: models.RentalActive, DueDate: today.AddDays(-1)}, models.RentalOverdue},
		{"already overdue", models.Rental{Status: models.RentalOverdue, DueDate: today.AddDays(-5)}, models.RentalOverdue},
		{"returned late", models.Rental{Status: models.RentalReturned, DueDate: today.AddDays(-5), ReturnDate: &returned}, models.RentalReturned},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveOverdue(tc.rental, today))
		})
	}
}

func TestEnrich_DanglingReferences(t *testing.T) {
	doc := &store.Document{}
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	out := enrich(doc, models.Rental{
		ID:         1,
		BookID:     7,
		CustomerID: 8,
		RentalDate: models.NewDate(2024, 3, 8),
		DueDate:    models.NewDate(2024, 3, 9),
		Status:     models.RentalActive,
	}, now)

	assert.Equal(t, "Unknown", out.BookTitle)
	assert.Equal(t, "Unknown", out.BookAuthor)
	assert.Equal(t, "Unknown", out.CustomerName)
	assert.Equal(t, "Unknown", out.CustomerPhone)
	assert.True(t, out.BookPriceRent.Equal(decimal.Zero))
	assert.True(t, out.IsOverdue)
	assert.Equal(t, 3, out.DaysRented)
}

func TestDaysRented(t *testing.T) {
	start := models.NewDate(2024, 3, 1)
	end := models.NewDate(2024, 3, 4)

	testCases := []struct {
		name   string
		rental models.Rental
		now    time.Time
		want   int
	}{
		{"same day midnight", models.Rental{RentalDate: start}, start.Time(), 0},
		{"same day afternoon", models.Rental{RentalDate: start}, start.Time().Add(15 * time.Hour), 1},
		{"open for days", models.Rental{RentalDate: start}, start.Time().Add(49 * time.Hour), 3},
		{"returned", models.Rental{RentalDate: start, ReturnDate: &end}, end.Time().AddDate(0, 1, 0), 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, daysRented(tc.rental, tc.now))
		})
	}
}
