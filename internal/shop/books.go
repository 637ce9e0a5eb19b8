package shop

import (
	"context"
	"slices"
	"strings"

	"bookshop/internal/models"
	"bookshop/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BookInput holds the fields of a new book. Missing prices and stock default to zero.
type BookInput struct {
	Title     string            `json:"title" validate:"required"`
	Author    string            `json:"author" validate:"required"`
	ISBN      string            `json:"isbn"`
	PriceBuy  decimal.Decimal   `json:"price_buy"`
	PriceRent decimal.Decimal   `json:"price_rent"`
	Stock     int               `json:"stock" validate:"gte=0"`
	Status    models.BookStatus `json:"status" validate:"omitempty,oneof=available rented sold"`
}

// BookPatch holds a partial update; nil fields are left untouched
type BookPatch struct {
	Title     *string            `json:"title" validate:"omitnil,min=1"`
	Author    *string            `json:"author" validate:"omitnil,min=1"`
	ISBN      *string            `json:"isbn"`
	PriceBuy  *decimal.Decimal   `json:"price_buy"`
	PriceRent *decimal.Decimal   `json:"price_rent"`
	Stock     *int               `json:"stock" validate:"omitnil,gte=0"`
	Status    *models.BookStatus `json:"status" validate:"omitnil,oneof=available rented sold"`
}

// BookRepository is CRUD over the books table
type BookRepository struct {
	base
}

// List returns all books, newest first
func (r *BookRepository) List() []models.Book {
	var books []models.Book
	r.store.View(func(doc *store.Document) {
		books = slices.Clone(doc.Books)
	})
	slices.SortFunc(books, func(a, b models.Book) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return books
}

// Get returns the book with the given id
func (r *BookRepository) Get(id int64) (models.Book, error) {
	var (
		book  models.Book
		found bool
	)
	r.store.View(func(doc *store.Document) {
		if b := doc.Book(id); b != nil {
			book, found = *b, true
		}
	})
	if !found {
		return models.Book{}, notFound("Book")
	}
	return book, nil
}

// Create stores a new book with the next identifier
func (r *BookRepository) Create(ctx context.Context, in BookInput) (models.Book, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.ISBN = strings.TrimSpace(in.ISBN)

	if err := r.validate.Struct(in); err != nil {
		return models.Book{}, validationErr(err)
	}
	if err := checkPrice("price_buy", in.PriceBuy); err != nil {
		return models.Book{}, err
	}
	if err := checkPrice("price_rent", in.PriceRent); err != nil {
		return models.Book{}, err
	}
	if in.Status == "" {
		in.Status = models.BookAvailable
	}

	var book models.Book
	err := r.store.Update(ctx, func(doc *store.Document) error {
		book = models.Book{
			ID:        doc.NextBookID(),
			Title:     in.Title,
			Author:    in.Author,
			ISBN:      in.ISBN,
			PriceBuy:  in.PriceBuy,
			PriceRent: in.PriceRent,
			Stock:     in.Stock,
			Status:    in.Status,
			CreatedAt: r.clock.Now().UTC(),
		}
		doc.Books = append(doc.Books, book)
		return nil
	})
	if err != nil {
		return models.Book{}, err
	}

	r.logger.Info("Book created", zap.Int64("book_id", book.ID), zap.String("title", book.Title))
	return book, nil
}

// Update merges the patch into the stored book
func (r *BookRepository) Update(ctx context.Context, id int64, patch BookPatch) (models.Book, error) {
	trimPtr(patch.Title)
	trimPtr(patch.Author)
	trimPtr(patch.ISBN)

	if err := r.validate.Struct(patch); err != nil {
		return models.Book{}, validationErr(err)
	}
	if patch.PriceBuy != nil {
		if err := checkPrice("price_buy", *patch.PriceBuy); err != nil {
			return models.Book{}, err
		}
	}
	if patch.PriceRent != nil {
		if err := checkPrice("price_rent", *patch.PriceRent); err != nil {
			return models.Book{}, err
		}
	}

	var book models.Book
	err := r.store.Update(ctx, func(doc *store.Document) error {
		b := doc.Book(id)
		if b == nil {
			return notFound("Book")
		}
		if patch.Title != nil {
			b.Title = *patch.Title
		}
		if patch.Author != nil {
			b.Author = *patch.Author
		}
		if patch.ISBN != nil {
			b.ISBN = *patch.ISBN
		}
		if patch.PriceBuy != nil {
			b.PriceBuy = *patch.PriceBuy
		}
		if patch.PriceRent != nil {
			b.PriceRent = *patch.PriceRent
		}
		if patch.Stock != nil {
			b.Stock = *patch.Stock
		}
		if patch.Status != nil {
			b.Status = *patch.Status
		}
		book = *b
		return nil
	})
	if err != nil {
		return models.Book{}, err
	}

	r.logger.Info("Book updated", zap.Int64("book_id", id))
	return book, nil
}

// Delete removes a book that no open rental references
func (r *BookRepository) Delete(ctx context.Context, id int64) error {
	err := r.store.Update(ctx, func(doc *store.Document) error {
		if doc.Book(id) == nil {
			return notFound("Book")
		}
		for _, rt := range doc.Rentals {
			if rt.BookID == id && rt.Status.Open() {
				return conflict("Cannot delete book with active rentals")
			}
		}
		doc.RemoveBook(id)
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("Book deleted", zap.Int64("book_id", id))
	return nil
}

func checkPrice(field string, v decimal.Decimal) error {
	if v.IsNegative() {
		return invalid("%s must not be negative", field)
	}
	return nil
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
