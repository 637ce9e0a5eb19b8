package shop

import (
	"context"
	"slices"
	"strings"

	"bookshop/internal/models"
	"bookshop/internal/store"

	"go.uber.org/zap"
)

// CustomerInput holds the fields of a new customer
type CustomerInput struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address"`
}

// CustomerPatch holds a partial update; nil fields are left untouched
type CustomerPatch struct {
	Name    *string `json:"name" validate:"omitnil,min=1"`
	Phone   *string `json:"phone" validate:"omitnil,min=1"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
}

// CustomerRepository is CRUD over the customers table. Phone numbers are unique.
type CustomerRepository struct {
	base
}

// List returns all customers, newest first
func (r *CustomerRepository) List() []models.Customer {
	var customers []models.Customer
	r.store.View(func(doc *store.Document) {
		customers = slices.Clone(doc.Customers)
	})
	slices.SortFunc(customers, func(a, b models.Customer) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return customers
}

// Get returns the customer with the given id
func (r *CustomerRepository) Get(id int64) (models.Customer, error) {
	var (
		customer models.Customer
		found    bool
	)
	r.store.View(func(doc *store.Document) {
		if c := doc.Customer(id); c != nil {
			customer, found = *c, true
		}
	})
	if !found {
		return models.Customer{}, notFound("Customer")
	}
	return customer, nil
}

// Create stores a new customer after checking the phone is not taken
func (r *CustomerRepository) Create(ctx context.Context, in CustomerInput) (models.Customer, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	in.Address = strings.TrimSpace(in.Address)

	if err := r.validate.Struct(in); err != nil {
		return models.Customer{}, validationErr(err)
	}

	var customer models.Customer
	err := r.store.Update(ctx, func(doc *store.Document) error {
		if phoneTaken(doc, in.Phone, 0) {
			return invalid("Phone number already exists")
		}
		customer = models.Customer{
			ID:        doc.NextCustomerID(),
			Name:      in.Name,
			Phone:     in.Phone,
			Email:     in.Email,
			Address:   in.Address,
			CreatedAt: r.clock.Now().UTC(),
		}
		doc.Customers = append(doc.Customers, customer)
		return nil
	})
	if err != nil {
		return models.Customer{}, err
	}

	r.logger.Info("Customer created", zap.Int64("customer_id", customer.ID))
	return customer, nil
}

// Update merges the patch into the stored customer. A changed phone must stay unique.
func (r *CustomerRepository) Update(ctx context.Context, id int64, patch CustomerPatch) (models.Customer, error) {
	trimPtr(patch.Name)
	trimPtr(patch.Phone)
	trimPtr(patch.Email)
	trimPtr(patch.Address)

	if err := r.validate.Struct(patch); err != nil {
		return models.Customer{}, validationErr(err)
	}
	// An empty email clears the stored one
	if patch.Email != nil && *patch.Email != "" {
		if err := r.validate.Var(*patch.Email, "email"); err != nil {
			return models.Customer{}, invalid("email must be a valid email address")
		}
	}

	var customer models.Customer
	err := r.store.Update(ctx, func(doc *store.Document) error {
		c := doc.Customer(id)
		if c == nil {
			return notFound("Customer")
		}
		if patch.Phone != nil && *patch.Phone != c.Phone && phoneTaken(doc, *patch.Phone, id) {
			return invalid("Phone number already exists")
		}
		if patch.Name != nil {
			c.Name = *patch.Name
		}
		if patch.Phone != nil {
			c.Phone = *patch.Phone
		}
		if patch.Email != nil {
			c.Email = *patch.Email
		}
		if patch.Address != nil {
			c.Address = *patch.Address
		}
		customer = *c
		return nil
	})
	if err != nil {
		return models.Customer{}, err
	}

	r.logger.Info("Customer updated", zap.Int64("customer_id", id))
	return customer, nil
}

// Delete removes a customer without open rentals
func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	err := r.store.Update(ctx, func(doc *store.Document) error {
		if doc.Customer(id) == nil {
			return notFound("Customer")
		}
		for _, rt := range doc.Rentals {
			if rt.CustomerID == id && rt.Status.Open() {
				return conflict("Cannot delete customer with active rentals")
			}
		}
		doc.RemoveCustomer(id)
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("Customer deleted", zap.Int64("customer_id", id))
	return nil
}

func phoneTaken(doc *store.Document, phone string, except int64) bool {
	for _, c := range doc.Customers {
		if c.Phone == phone && c.ID != except {
			return true
		}
	}
	return false
}
