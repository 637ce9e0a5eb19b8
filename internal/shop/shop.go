package shop

import (
	"reflect"
	"strings"

	"bookshop/internal/models"
	"bookshop/internal/store"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// base carries what every repository needs
type base struct {
	store    *store.Store
	clock    Clock
	logger   *zap.Logger
	validate *validator.Validate
}

// Shop groups the repositories and the rental engine over one document store
type Shop struct {
	Books     *BookRepository
	Customers *CustomerRepository
	Rentals   *RentalEngine

	store *store.Store
	clock Clock
}

// New wires the shop over a loaded store
func New(st *store.Store, clock Clock, logger *zap.Logger) *Shop {
	if clock == nil {
		clock = SystemClock{}
	}
	b := base{
		store:    st,
		clock:    clock,
		logger:   logger,
		validate: newValidator(),
	}
	return &Shop{
		Books:     &BookRepository{base: b},
		Customers: &CustomerRepository{base: b},
		Rentals:   &RentalEngine{base: b},
		store:     st,
		clock:     clock,
	}
}

// Today returns the calendar day used for rental dates and overdue checks
func (s *Shop) Today() models.Date {
	return currentDay(s.clock)
}

// Healthy reports whether the last save of the document succeeded
func (s *Shop) Healthy() error {
	if err := s.store.LastSaveError(); err != nil {
		return makeErr(ErrPersistence, "last save failed: "+err.Error())
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
