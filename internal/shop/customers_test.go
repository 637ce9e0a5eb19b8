package shop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerRepository_Create(t *testing.T) {
	env := newTestEnv(t)

	c, err := env.shop.Customers.Create(context.Background(), CustomerInput{
		Name:    " Ann Lee ",
		Phone:   " 0800000001",
		Email:   "ann@example.com",
		Address: "12 Elm St",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)
	assert.Equal(t, "Ann Lee", c.Name)
	assert.Equal(t, "0800000001", c.Phone)
	assert.Equal(t, day0, c.CreatedAt)
}

func TestCustomerRepository_CreateValidation(t *testing.T) {
	testCases := []struct {
		name string
		in   CustomerInput
		msg  string
	}{
		{"missing name", CustomerInput{Phone: "1"}, "name is required"},
		{"missing phone", CustomerInput{Name: "Ann"}, "phone is required"},
		{"bad email", CustomerInput{Name: "Ann", Phone: "1", Email: "ann"}, "email must be a valid email address"},
	}

	env := newTestEnv(t)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.shop.Customers.Create(context.Background(), tc.in)
			require.Error(t, err)
			assert.Equal(t, ErrValidation, Code(err))
			assert.EqualError(t, err, tc.msg)
		})
	}
}

func TestCustomerRepository_DuplicatePhone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.customer(t, "Ann", "0800000001")
	saves := env.backend.Saves()

	_, err := env.shop.Customers.Create(ctx, CustomerInput{Name: "Bob", Phone: "0800000001"})
	require.Error(t, err)
	assert.Equal(t, ErrValidation, Code(err))
	assert.EqualError(t, err, "Phone number already exists")
	assert.Equal(t, saves, env.backend.Saves())
	assert.Len(t, env.shop.Customers.List(), 1)
}

func TestCustomerRepository_Update(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ann := env.customer(t, "Ann", "0800000001")
	bob := env.customer(t, "Bob", "0800000002")

	same, err := env.shop.Customers.Update(ctx, ann.ID, CustomerPatch{Phone: ptr("0800000001"), Email: ptr("ann@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", same.Email)

	_, err = env.shop.Customers.Update(ctx, bob.ID, CustomerPatch{Phone: ptr("0800000001")})
	assert.Equal(t, ErrValidation, Code(err))

	moved, err := env.shop.Customers.Update(ctx, bob.ID, CustomerPatch{Phone: ptr("0800000003"), Email: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, "0800000003", moved.Phone)
	assert.Equal(t, "Bob", moved.Name)
	assert.Empty(t, moved.Email)

	_, err = env.shop.Customers.Update(ctx, 42, CustomerPatch{Name: ptr("Zed")})
	assert.Equal(t, ErrNotFound, Code(err))
}

func TestCustomerRepository_UpdateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ann := env.customer(t, "Ann", "0800000001")

	withEmail, err := env.shop.Customers.Update(ctx, ann.ID, CustomerPatch{Email: ptr(" ann@example.com ")})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", withEmail.Email)

	_, err = env.shop.Customers.Update(ctx, ann.ID, CustomerPatch{Email: ptr("not-an-email")})
	assert.Equal(t, ErrValidation, Code(err))
	assert.EqualError(t, err, "email must be a valid email address")

	cleared, err := env.shop.Customers.Update(ctx, ann.ID, CustomerPatch{Name: ptr("Ann B"), Email: ptr("  ")})
	require.NoError(t, err)
	assert.Equal(t, "Ann B", cleared.Name)
	assert.Empty(t, cleared.Email)

	stored, err := env.shop.Customers.Get(ann.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Email)
}

func TestCustomerRepository_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	book := env.book(t, "Dune", 2, "3")
	ann := env.customer(t, "Ann", "0800000001")
	bob := env.customer(t, "Bob", "0800000002")
	rental := env.rent(t, book.ID, ann.ID, 7)

	err := env.shop.Customers.Delete(ctx, ann.ID)
	assert.Equal(t, ErrConflict, Code(err))

	env.advanceDays(10)
	_, err = env.shop.Rentals.ReconcileOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, ErrConflict, Code(env.shop.Customers.Delete(ctx, ann.ID)))

	_, err = env.shop.Rentals.Return(ctx, rental.ID)
	require.NoError(t, err)
	require.NoError(t, env.shop.Customers.Delete(ctx, ann.ID))
	require.NoError(t, env.shop.Customers.Delete(ctx, bob.ID))

	assert.Equal(t, ErrNotFound, Code(env.shop.Customers.Delete(ctx, bob.ID)))
	assert.Empty(t, env.shop.Customers.List())
}
