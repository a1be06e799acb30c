package srs

import (
	"fmt"
	"time"
)

// dateLayout is the canonical textual form for calendar dates.
const dateLayout = "2006-01-02"

// Date is a calendar date with no time-of-day or zone component.
//
// Dates are plain comparable values, so they can be used directly as map
// keys (the histogram relies on this). All arithmetic goes through the
// time package to handle month/year rollover correctly.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate creates a normalized date. Out-of-range components roll over the
// way time.Date does (e.g. January 32 becomes February 1).
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf extracts the calendar date from t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current calendar date in local time.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Time returns the date as a time.Time at UTC midnight.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n days after d. n may be negative.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// DaysUntil returns the number of days from d to o (negative if o is
// earlier).
func (d Date) DaysUntil(o Date) int {
	return int(o.Time().Sub(d.Time()).Hours() / 24)
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool {
	return d.Time().Before(o.Time())
}

// After reports whether d is strictly later than o.
func (d Date) After(o Date) bool {
	return d.Time().After(o.Time())
}

// IsZero reports whether d is the zero value.
func (d Date) IsZero() bool {
	return d == Date{}
}

// String returns the date in YYYY-MM-DD form.
func (d Date) String() string {
	return d.Time().Format(dateLayout)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
