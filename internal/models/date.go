package models

import (
	"fmt"
	"time"
)

// DateLayout is the ISO layout used for every date-only value.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time component, stored as YYYY-MM-DD.
// Well-formed dates compare correctly as strings.
type Date string

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date(t.Format(DateLayout)), nil
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// String implements fmt.Stringer.
func (d Date) String() string {
	return string(d)
}

// Midnight returns the start of the date in loc. The zero time is returned for
// malformed dates.
func (d Date) Midnight(loc *time.Location) time.Time {
	t, err := time.ParseInLocation(DateLayout, string(d), loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays returns the date n calendar days later (earlier when n is negative).
func (d Date) AddDays(n int) Date {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return d
	}
	return DateOf(t.AddDate(0, 0, n))
}

// DaysUntil returns the number of calendar days from d to other.
func (d Date) DaysUntil(other Date) (int, error) {
	from, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", d, err)
	}
	to, err := time.Parse(DateLayout, string(other))
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", other, err)
	}
	// Both values are UTC midnights, so the difference is a whole number of days.
	return int(to.Sub(from).Hours() / 24), nil
}
