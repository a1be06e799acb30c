// Package history is the durable audit trail of review events.
//
// Every review appends an immutable entry keyed by the item's stable
// identifier. The whole store persists as one versioned JSON document:
// writes serialize the complete current in-memory state through a FIFO
// single-writer queue, off the review path, so recording a review never
// blocks on disk I/O.
package history

import (
	"time"

	"github.com/mnemo-srs/mnemo/internal/srs"
)

// Version is the schema version stamped into the persisted document.
const Version = "1"

// Entry is one recorded review event. Entries are immutable once appended
// and never reordered or deleted; Interval and Ease capture the schedule
// produced by that review.
type Entry struct {
	Date     srs.Date     `json:"date"`
	Response srs.Response `json:"response"`
	Interval int          `json:"interval"`
	Ease     int          `json:"ease"`
}

// CardHistory is the chronological review record of a single item.
// Insertion order of History is chronological.
type CardHistory struct {
	History      []Entry  `json:"history"`
	Created      srs.Date `json:"created"`
	LastReviewed srs.Date `json:"lastReviewed"`
}

// clone returns a deep copy so callers cannot mutate store internals.
func (h CardHistory) clone() CardHistory {
	out := h
	out.History = make([]Entry, len(h.History))
	copy(out.History, h.History)
	return out
}

// document is the unit of persistence: the entire store serializes as one
// versioned JSON document, not per-item files.
type document struct {
	Version  string                 `json:"version"`
	Cards    map[string]CardHistory `json:"cards"`
	Metadata metadata               `json:"metadata"`
}

type metadata struct {
	LastUpdated time.Time `json:"lastUpdated"`
}

func emptyDocument() document {
	return document{
		Version: Version,
		Cards:   make(map[string]CardHistory),
	}
}
