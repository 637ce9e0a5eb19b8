package shop

import (
	"time"

	"bookshop/internal/models"
)

// Clock supplies the current time. Rental dates and overdue checks use its UTC calendar day.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

func currentDay(c Clock) models.Date {
	return models.DateOf(c.Now())
}
