package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOf_DropsTimeOfDay(t *testing.T) {
	ts := time.Date(2026, time.October, 18, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, NewDate(2026, time.October, 18), DateOf(ts))
	assert.Equal(t, "2026-10-18", DateOf(ts).String())
}

func TestDate_AddDaysAcrossMonth(t *testing.T) {
	d := NewDate(2026, time.October, 28).AddDays(7)
	assert.Equal(t, "2026-11-04", d.String())
	assert.True(t, NewDate(2026, time.October, 28).Before(d))
	assert.False(t, d.Before(NewDate(2026, time.October, 28)))
}

func TestDate_JSON(t *testing.T) {
	var r Rental
	err := json.Unmarshal([]byte(`{"rental_date":"2026-10-01","due_date":"2026-10-08T00:00:00.000Z"}`), &r)
	require.NoError(t, err)
	assert.Equal(t, NewDate(2026, time.October, 1), r.RentalDate)
	assert.Equal(t, NewDate(2026, time.October, 8), r.DueDate)
	assert.Nil(t, r.ReturnDate)

	out, err := json.Marshal(r.DueDate)
	require.NoError(t, err)
	assert.Equal(t, `"2026-10-08"`, string(out))
}

func TestDate_JSONRejectsGarbage(t *testing.T) {
	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`20261018`), &d))
}

func TestRental_PastDue(t *testing.T) {
	today := NewDate(2026, time.October, 18)
	returned := today

	testCases := []struct {
		name   string
		rental Rental
		want   bool
	}{
		{"due yesterday", Rental{DueDate: today.AddDays(-1), Status: RentalActive}, true},
		{"due today", Rental{DueDate: today, Status: RentalActive}, false},
		{"due tomorrow", Rental{DueDate: today.AddDays(1), Status: RentalActive}, false},
		{"returned late", Rental{DueDate: today.AddDays(-3), ReturnDate: &returned, Status: RentalReturned}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.rental.PastDue(today))
		})
	}
}
