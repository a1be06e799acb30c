package srs

// DefaultMinEase is the floor for the ease factor. Ease is a fixed-point
// percentage: 250 means future intervals grow by 2.50x per Good review.
const DefaultMinEase = 130

// Schedule is the scheduling state of a single review item.
type Schedule struct {
	// Due is the calendar date the item next comes up for review.
	Due Date `json:"due"`

	// Interval is the number of days between the review that produced
	// this schedule and Due. Always at least 1 for a valid schedule.
	Interval int `json:"interval"`

	// Ease is the fixed-point percentage difficulty factor. Never below
	// the configured minimum (130 by default).
	Ease int `json:"ease"`
}

// Valid reports whether s is a well-formed schedule. An invalid or
// zero-value schedule is treated as "never scheduled" by the engine, not
// as an error.
func (s Schedule) Valid() bool {
	return s.Interval >= 1 && s.Ease >= DefaultMinEase && !s.Due.IsZero()
}
