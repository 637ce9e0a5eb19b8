package store

import (
	"fmt"

	"bookshop/internal/models"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Counters hold the next identifier of each table. They only move forward.
type Counters struct {
	Books     int64 `json:"books"`
	Customers int64 `json:"customers"`
	Rentals   int64 `json:"rentals"`
}

// Document is the whole persisted dataset
type Document struct {
	Books     []models.Book     `json:"books"`
	Customers []models.Customer `json:"customers"`
	Rentals   []models.Rental   `json:"rentals"`
	NextID    *Counters         `json:"nextId,omitempty"`
}

func newDocument() *Document {
	return &Document{
		Books:     []models.Book{},
		Customers: []models.Customer{},
		Rentals:   []models.Rental{},
		NextID:    &Counters{Books: 1, Customers: 1, Rentals: 1},
	}
}

func encodeDocument(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return data, nil
}

func decodeDocument(data []byte) (*Document, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("document is not valid JSON")
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return &doc, nil
}

// normalize fills missing tables and repairs the counters. It reports whether
// the counters had to be rebuilt.
func (d *Document) normalize() bool {
	if d.Books == nil {
		d.Books = []models.Book{}
	}
	if d.Customers == nil {
		d.Customers = []models.Customer{}
	}
	if d.Rentals == nil {
		d.Rentals = []models.Rental{}
	}

	var maxBook, maxCustomer, maxRental int64
	for _, b := range d.Books {
		maxBook = max(maxBook, b.ID)
	}
	for _, c := range d.Customers {
		maxCustomer = max(maxCustomer, c.ID)
	}
	for _, r := range d.Rentals {
		maxRental = max(maxRental, r.ID)
	}

	if d.NextID == nil {
		d.NextID = &Counters{Books: maxBook + 1, Customers: maxCustomer + 1, Rentals: maxRental + 1}
		return true
	}

	repaired := false
	if d.NextID.Books <= maxBook {
		d.NextID.Books = maxBook + 1
		repaired = true
	}
	if d.NextID.Customers <= maxCustomer {
		d.NextID.Customers = maxCustomer + 1
		repaired = true
	}
	if d.NextID.Rentals <= maxRental {
		d.NextID.Rentals = maxRental + 1
		repaired = true
	}
	return repaired
}

// NextBookID hands out a book identifier
func (d *Document) NextBookID() int64 {
	id := d.NextID.Books
	d.NextID.Books++
	return id
}

// NextCustomerID hands out a customer identifier
func (d *Document) NextCustomerID() int64 {
	id := d.NextID.Customers
	d.NextID.Customers++
	return id
}

// NextRentalID hands out a rental identifier
func (d *Document) NextRentalID() int64 {
	id := d.NextID.Rentals
	d.NextID.Rentals++
	return id
}

// Book returns a pointer into the books table, or nil. The pointer is only valid
// inside the View or Update callback that obtained it.
func (d *Document) Book(id int64) *models.Book {
	for i := range d.Books {
		if d.Books[i].ID == id {
			return &d.Books[i]
		}
	}
	return nil
}

// Customer returns a pointer into the customers table, or nil
func (d *Document) Customer(id int64) *models.Customer {
	for i := range d.Customers {
		if d.Customers[i].ID == id {
			return &d.Customers[i]
		}
	}
	return nil
}

// Rental returns a pointer into the rentals table, or nil
func (d *Document) Rental(id int64) *models.Rental {
	for i := range d.Rentals {
		if d.Rentals[i].ID == id {
			return &d.Rentals[i]
		}
	}
	return nil
}

// RemoveBook deletes the row with the given id and reports whether it existed
func (d *Document) RemoveBook(id int64) bool {
	for i := range d.Books {
		if d.Books[i].ID == id {
			d.Books = append(d.Books[:i], d.Books[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveCustomer deletes the row with the given id and reports whether it existed
func (d *Document) RemoveCustomer(id int64) bool {
	for i := range d.Customers {
		if d.Customers[i].ID == id {
			d.Customers = append(d.Customers[:i], d.Customers[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveRental deletes the row with the given id and reports whether it existed
func (d *Document) RemoveRental(id int64) bool {
	for i := range d.Rentals {
		if d.Rentals[i].ID == id {
			d.Rentals = append(d.Rentals[:i], d.Rentals[i+1:]...)
			return true
		}
	}
	return false
}
