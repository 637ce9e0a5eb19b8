package shop

import (
	"cmp"
	"math"
	"time"

	"bookshop/internal/models"
	"bookshop/internal/store"

	"github.com/shopspring/decimal"
)

const unknown = "Unknown"

// DeriveOverdue returns the status a rental should show on the given day.
// An active rental whose due date has passed reads as overdue.
func DeriveOverdue(r models.Rental, today models.Date) models.RentalStatus {
	if r.Status == models.RentalActive && r.PastDue(today) {
		return models.RentalOverdue
	}
	return r.Status
}

// enrich joins book and customer fields into the rental. Dangling references
// degrade to placeholders.
func enrich(doc *store.Document, r models.Rental, now time.Time) models.RentalWithDetails {
	today := models.DateOf(now)
	out := models.RentalWithDetails{
		Rental:        r,
		BookTitle:     unknown,
		BookAuthor:    unknown,
		BookPriceRent: decimal.Zero,
		CustomerName:  unknown,
		CustomerPhone: unknown,
		DaysRented:    daysRented(r, now),
		IsOverdue:     (r.Status == models.RentalActive && r.DueDate.Before(today)) || r.Status == models.RentalOverdue,
	}
	if b := doc.Book(r.BookID); b != nil {
		out.BookTitle = b.Title
		out.BookAuthor = b.Author
		out.BookPriceRent = b.PriceRent
	}
	if c := doc.Customer(r.CustomerID); c != nil {
		out.CustomerName = c.Name
		out.CustomerPhone = c.Phone
	}
	return out
}

// daysRented counts started days from the rental date to the return date, or to now
func daysRented(r models.Rental, now time.Time) int {
	end := now
	if r.ReturnDate != nil {
		end = r.ReturnDate.Time()
	}
	elapsed := end.Sub(r.RentalDate.Time())
	return int(math.Ceil(elapsed.Hours() / 24))
}

// computeStats aggregates the rentals table. Overdue counts only active rows past
// their due date and revenue is the flat rental price of each returned rental.
func computeStats(doc *store.Document, today models.Date) models.Stats {
	stats := models.Stats{
		TotalRentals: len(doc.Rentals),
		TotalRevenue: decimal.Zero,
	}
	for _, r := range doc.Rentals {
		switch r.Status {
		case models.RentalActive:
			stats.ActiveRentals++
			if r.DueDate.Before(today) {
				stats.OverdueRentals++
			}
		case models.RentalReturned:
			stats.ReturnedRentals++
			if b := doc.Book(r.BookID); b != nil {
				stats.TotalRevenue = stats.TotalRevenue.Add(b.PriceRent)
			}
		}
	}
	return stats
}

func newestFirst(a, b time.Time, aID, bID int64) int {
	if c := b.Compare(a); c != 0 {
		return c
	}
	return cmp.Compare(bID, aID)
}
