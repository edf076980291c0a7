package model

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"
)

// DateLayout is the ISO calendar date format both providers expect.
const DateLayout = "2006-01-02"

// Date is an acquisition day, always held at UTC midnight.
type Date struct {
	t time.Time
}

// NewDate truncates t to its UTC calendar day.
func NewDate(t time.Time) Date {
	t = t.UTC()
	return Date{t: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts any common date layout and normalizes it to a calendar day.
func ParseDate(s string) (Date, error) {
	if s == "" {
		return Date{}, fmt.Errorf("date cannot be empty")
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return NewDate(t), nil
}

// IsZero reports whether the date was never set.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Time returns the date as UTC midnight.
func (d Date) Time() time.Time {
	return d.t
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.t.Format(DateLayout)
}
