package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, both in the persisted document and over the API.
	decimal.MarshalJSONWithoutQuotes = true
}

// BookStatus is the availability label of a book row
type BookStatus string

const (
	BookAvailable BookStatus = "available"
	BookRented    BookStatus = "rented"
	BookSold      BookStatus = "sold"
)

// RentalStatus is the lifecycle state of a rental
type RentalStatus string

const (
	RentalActive   RentalStatus = "active"
	RentalReturned RentalStatus = "returned"
	RentalOverdue  RentalStatus = "overdue"
)

// Open reports whether the rental still holds a copy of its book
func (s RentalStatus) Open() bool {
	return s == RentalActive || s == RentalOverdue
}

// Book represents a title on the shop shelf. Stock counts copies, not rows.
type Book struct {
	ID        int64           `json:"id"`
	Title     string          `json:"title"`
	Author    string          `json:"author"`
	ISBN      string          `json:"isbn"`
	PriceBuy  decimal.Decimal `json:"price_buy"`
	PriceRent decimal.Decimal `json:"price_rent"`
	Stock     int             `json:"stock"`
	Status    BookStatus      `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// Customer represents a person who rents books
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Rental represents one copy of a book lent to a customer
type Rental struct {
	ID         int64        `json:"id"`
	BookID     int64        `json:"book_id"`
	CustomerID int64        `json:"customer_id"`
	RentalDate Date         `json:"rental_date"`
	DueDate    Date         `json:"due_date"`
	ReturnDate *Date        `json:"return_date,omitempty"`
	Status     RentalStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
}

// PastDue reports whether an unreturned rental has passed its due date on the given day
func (r Rental) PastDue(today Date) bool {
	return r.ReturnDate == nil && r.DueDate.Before(today)
}

// RentalWithDetails is a rental joined with its book and customer for display
type RentalWithDetails struct {
	Rental
	BookTitle     string          `json:"book_title"`
	BookAuthor    string          `json:"book_author"`
	BookPriceRent decimal.Decimal `json:"book_price_rent"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	DaysRented    int             `json:"days_rented"`
	IsOverdue     bool            `json:"is_overdue"`
}

// Stats represents the rental overview numbers
type Stats struct {
	TotalRentals    int             `json:"total_rentals"`
	ActiveRentals   int             `json:"active_rentals"`
	OverdueRentals  int             `json:"overdue_rentals"`
	ReturnedRentals int             `json:"returned_rentals"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
}
