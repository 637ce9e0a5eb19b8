package shop

import (
	"context"
	"slices"

	"bookshop/internal/models"
	"bookshop/internal/store"

	"go.uber.org/zap"
)

// RentalInput holds the fields of a new rental
type RentalInput struct {
	BookID     int64 `json:"book_id" validate:"required,gt=0"`
	CustomerID int64 `json:"customer_id" validate:"required,gt=0"`
	RentalDays int   `json:"rental_days" validate:"required,gte=1"`
}

// RentalEngine runs the rental lifecycle. Each operation that touches both a
// rental and its book is applied and persisted as one unit.
type RentalEngine struct {
	base
}

// Create lends one copy of a book to a customer for the given number of days
func (e *RentalEngine) Create(ctx context.Context, in RentalInput) (models.RentalWithDetails, error) {
	if err := e.validate.Struct(in); err != nil {
		return models.RentalWithDetails{}, validationErr(err)
	}

	now := e.clock.Now()
	today := models.DateOf(now)

	var out models.RentalWithDetails
	err := e.store.Update(ctx, func(doc *store.Document) error {
		book := doc.Book(in.BookID)
		if book == nil {
			return notFound("Book")
		}
		if book.Stock <= 0 {
			return conflict("Book is out of stock")
		}
		if book.Status != models.BookAvailable {
			return conflict("Book is not available for rent")
		}
		if doc.Customer(in.CustomerID) == nil {
			return notFound("Customer")
		}

		rental := models.Rental{
			ID:         doc.NextRentalID(),
			BookID:     in.BookID,
			CustomerID: in.CustomerID,
			RentalDate: today,
			DueDate:    today.AddDays(in.RentalDays),
			Status:     models.RentalActive,
			CreatedAt:  now.UTC(),
		}
		doc.Rentals = append(doc.Rentals, rental)

		book.Stock--
		if book.Stock <= 0 {
			book.Status = models.BookRented
		} else {
			book.Status = models.BookAvailable
		}

		out = enrich(doc, rental, now)
		return nil
	})
	if err != nil {
		return models.RentalWithDetails{}, err
	}

	e.logger.Info("Rental created",
		zap.Int64("rental_id", out.ID),
		zap.Int64("book_id", out.BookID),
		zap.Int64("customer_id", out.CustomerID),
		zap.String("due_date", out.DueDate.String()),
	)
	return out, nil
}

// Return closes an active or overdue rental and puts the copy back in stock.
// A book marked sold keeps its status.
func (e *RentalEngine) Return(ctx context.Context, id int64) (models.RentalWithDetails, error) {
	now := e.clock.Now()
	today := models.DateOf(now)

	var out models.RentalWithDetails
	err := e.store.Update(ctx, func(doc *store.Document) error {
		rental := doc.Rental(id)
		if rental == nil {
			return notFound("Rental")
		}
		if !rental.Status.Open() {
			return conflict("Rental is not active")
		}

		returned := today
		rental.ReturnDate = &returned
		rental.Status = models.RentalReturned

		if book := doc.Book(rental.BookID); book != nil {
			book.Stock++
			if book.Status != models.BookSold {
				book.Status = models.BookAvailable
			}
		}

		out = enrich(doc, *rental, now)
		return nil
	})
	if err != nil {
		return models.RentalWithDetails{}, err
	}

	e.logger.Info("Rental returned", zap.Int64("rental_id", id), zap.Int64("book_id", out.BookID))
	return out, nil
}

// Delete removes a returned rental
func (e *RentalEngine) Delete(ctx context.Context, id int64) error {
	err := e.store.Update(ctx, func(doc *store.Document) error {
		rental := doc.Rental(id)
		if rental == nil {
			return notFound("Rental")
		}
		if rental.Status != models.RentalReturned {
			return conflict("Cannot delete active rental. Please return the book first.")
		}
		doc.RemoveRental(id)
		return nil
	})
	if err != nil {
		return err
	}

	e.logger.Info("Rental deleted", zap.Int64("rental_id", id))
	return nil
}

// ReconcileOverdue persists the overdue label on every active rental past its
// due date and returns how many were changed. Nothing is saved when none are.
func (e *RentalEngine) ReconcileOverdue(ctx context.Context) (int, error) {
	today := currentDay(e.clock)

	changed := 0
	err := e.store.Update(ctx, func(doc *store.Document) error {
		for i := range doc.Rentals {
			if DeriveOverdue(doc.Rentals[i], today) != doc.Rentals[i].Status {
				doc.Rentals[i].Status = models.RentalOverdue
				changed++
			}
		}
		if changed == 0 {
			return store.ErrNoChanges
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if changed > 0 {
		e.logger.Info("Rentals marked overdue", zap.Int("count", changed))
	}
	return changed, nil
}

// ListWithDetails reconciles overdue rentals and returns every rental enriched, newest first
func (e *RentalEngine) ListWithDetails(ctx context.Context) ([]models.RentalWithDetails, error) {
	if _, err := e.ReconcileOverdue(ctx); err != nil {
		return nil, err
	}
	return e.collect(func(models.Rental) bool { return true }), nil
}

// ListOverdue reconciles overdue rentals and returns the ones labeled overdue
func (e *RentalEngine) ListOverdue(ctx context.Context) ([]models.RentalWithDetails, error) {
	if _, err := e.ReconcileOverdue(ctx); err != nil {
		return nil, err
	}
	return e.collect(func(r models.Rental) bool { return r.Status == models.RentalOverdue }), nil
}

// ListOpen returns the rentals still holding a copy, newest first
func (e *RentalEngine) ListOpen() []models.RentalWithDetails {
	return e.collect(func(r models.Rental) bool { return r.Status.Open() })
}

// GetWithDetails returns one rental enriched. The overdue label is derived for display only.
func (e *RentalEngine) GetWithDetails(id int64) (models.RentalWithDetails, error) {
	now := e.clock.Now()

	var (
		out   models.RentalWithDetails
		found bool
	)
	e.store.View(func(doc *store.Document) {
		if r := doc.Rental(id); r != nil {
			rental := *r
			rental.Status = DeriveOverdue(rental, models.DateOf(now))
			out, found = enrich(doc, rental, now), true
		}
	})
	if !found {
		return models.RentalWithDetails{}, notFound("Rental")
	}
	return out, nil
}

// ForCustomer returns the rentals of one customer enriched, newest first
func (e *RentalEngine) ForCustomer(customerID int64) ([]models.RentalWithDetails, error) {
	var exists bool
	e.store.View(func(doc *store.Document) {
		exists = doc.Customer(customerID) != nil
	})
	if !exists {
		return nil, notFound("Customer")
	}
	return e.collect(func(r models.Rental) bool { return r.CustomerID == customerID }), nil
}

// Stats aggregates the rentals table
func (e *RentalEngine) Stats() models.Stats {
	today := currentDay(e.clock)

	var stats models.Stats
	e.store.View(func(doc *store.Document) {
		stats = computeStats(doc, today)
	})
	return stats
}

func (e *RentalEngine) collect(keep func(models.Rental) bool) []models.RentalWithDetails {
	now := e.clock.Now()

	out := []models.RentalWithDetails{}
	e.store.View(func(doc *store.Document) {
		for _, r := range doc.Rentals {
			if keep(r) {
				out = append(out, enrich(doc, r, now))
			}
		}
	})
	slices.SortFunc(out, func(a, b models.RentalWithDetails) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return out
}
