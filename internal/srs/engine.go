package srs

import (
	"fmt"
	"math"
)

// Config tunes the scheduling engine.
// Zero values produce sensible defaults; see field comments.
type Config struct {
	BaseEase           int     `json:"base_ease"`            // zero → 250
	EaseStep           int     `json:"ease_step"`            // zero → 20
	MinEase            int     `json:"min_ease"`             // zero → 130
	EasyBonus          float64 `json:"easy_bonus"`           // zero → 1.3
	HardIntervalFactor float64 `json:"hard_interval_factor"` // zero → 0.5
	LinkContribution   float64 `json:"link_contribution"`    // weight of graph importance in initial note ease, in [0,1]
	MaximumInterval    int     `json:"maximum_interval"`     // zero → 36500
}

// withDefaults fills zero-value fields with defaults.
func (c Config) withDefaults() Config {
	if c.BaseEase == 0 {
		c.BaseEase = 250
	}
	if c.EaseStep == 0 {
		c.EaseStep = 20
	}
	if c.MinEase == 0 {
		c.MinEase = DefaultMinEase
	}
	if c.EasyBonus == 0 {
		c.EasyBonus = 1.3
	}
	if c.HardIntervalFactor == 0 {
		c.HardIntervalFactor = 0.5
	}
	if c.MaximumInterval == 0 {
		c.MaximumInterval = 36500
	}
	return c
}

// validate rejects config values the engine cannot clamp its way around.
func (c Config) validate() error {
	if c.BaseEase < c.MinEase {
		return fmt.Errorf("%w: base ease %d below minimum %d", ErrInvalidConfig, c.BaseEase, c.MinEase)
	}
	if c.EasyBonus < 1 {
		return fmt.Errorf("%w: easy bonus %f must be at least 1", ErrInvalidConfig, c.EasyBonus)
	}
	if c.HardIntervalFactor <= 0 || c.HardIntervalFactor > 1 {
		return fmt.Errorf("%w: hard interval factor %f out of (0, 1]", ErrInvalidConfig, c.HardIntervalFactor)
	}
	if c.LinkContribution < 0 || c.LinkContribution > 1 {
		return fmt.Errorf("%w: link contribution %f out of [0, 1]", ErrInvalidConfig, c.LinkContribution)
	}
	if c.MaximumInterval < 1 {
		return fmt.Errorf("%w: maximum interval %d must be positive", ErrInvalidConfig, c.MaximumInterval)
	}
	return nil
}

// NoteSignals carries the link-graph aggregates that seed a note's initial
// ease. The orchestrating pass computes these from the PageRank importance
// scores of the current sync pass.
type NoteSignals struct {
	// LinkedImportance is the summed importance of the notes this note
	// links to.
	LinkedImportance float64

	// TotalImportance is the summed importance of all notes in the graph.
	TotalImportance float64

	// PeerEase, when non-nil, is the average ease of flashcards already
	// scheduled in the same document. The final note ease is averaged
	// with it.
	PeerEase *int
}

// Engine computes schedule transitions for review items.
//
// The engine owns no I/O. Its only side effect is incrementing the shared
// histogram for each due date it hands out, so that later decisions in the
// same pass see the new load. That increment is not reversible within a
// pass.
type Engine struct {
	cfg  Config
	hist *Histogram
}

// NewEngine creates an Engine from the given config and histogram.
// Zero-value config fields are filled with defaults; invalid values return
// an error. A nil histogram gets a fresh empty one.
func NewEngine(cfg Config, hist *Histogram) (*Engine, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if hist == nil {
		hist = NewHistogram()
	}
	return &Engine{cfg: cfg, hist: hist}, nil
}

// Config returns the engine's effective (default-filled) config.
func (e *Engine) Config() Config {
	return e.cfg
}

// Histogram returns the engine's due-date histogram.
func (e *Engine) Histogram() *Histogram {
	return e.hist
}

// InitialCard returns the schedule for a card's first review: one-day
// interval at the base ease, due tomorrow.
func (e *Engine) InitialCard(today Date) Schedule {
	s := Schedule{
		Due:      today.AddDays(1),
		Interval: 1,
		Ease:     e.cfg.BaseEase,
	}
	e.hist.Increment(s.Due)
	return s
}

// InitialNote returns the first schedule for a whole-document note. The
// starting ease blends the base ease with the share of graph importance
// held by the note's outgoing links: heavily connected notes are assumed
// easier to retain. When sig.PeerEase is set, the blended ease is averaged
// with it.
func (e *Engine) InitialNote(today Date, sig NoteSignals) Schedule {
	linkEase := 0.0
	if sig.TotalImportance > 0 {
		linkEase = sig.LinkedImportance / sig.TotalImportance
	}

	base := float64(e.cfg.BaseEase)
	noteEase := (1-e.cfg.LinkContribution)*base + e.cfg.LinkContribution*linkEase*base
	if sig.PeerEase != nil {
		noteEase = (noteEase + float64(*sig.PeerEase)) / 2
	}

	ease := int(math.Round(noteEase))
	if ease < e.cfg.MinEase {
		ease = e.cfg.MinEase
	}

	s := Schedule{
		Due:      today.AddDays(1),
		Interval: 1,
		Ease:     ease,
	}
	e.hist.Increment(s.Due)
	return s
}

// Review computes the schedule that follows a review of an item in state
// current. A missing or malformed current schedule is treated as
// "unscheduled" and routed to the initial-card path rather than failing.
//
// Interval arithmetic uses ceiling rounding, so intervals never shrink
// from rounding alone. For Hard/Good/Easy the naive due date is spread
// through the histogram's least-loaded date within a window of a quarter
// of the new interval (at least one day); the chosen date is then counted
// into the histogram. Reset is a lapse: interval collapses to 1 and ease
// returns to the base ease.
func (e *Engine) Review(current Schedule, response Response, today Date) (Schedule, error) {
	if !response.IsValid() {
		return Schedule{}, fmt.Errorf("%w: %d", ErrInvalidResponse, int(response))
	}
	if !current.Valid() {
		return e.InitialCard(today), nil
	}

	if response == Reset {
		s := Schedule{
			Due:      today.AddDays(1),
			Interval: 1,
			Ease:     e.cfg.BaseEase,
		}
		e.hist.Increment(s.Due)
		return s, nil
	}

	ease := current.Ease
	var interval int
	switch response {
	case Hard:
		ease = current.Ease - e.cfg.EaseStep
		if ease < e.cfg.MinEase {
			ease = e.cfg.MinEase
		}
		interval = ceilInterval(float64(current.Interval) * e.cfg.HardIntervalFactor)
	case Good:
		interval = ceilInterval(float64(current.Interval) * float64(current.Ease) / 100)
	case Easy:
		ease = current.Ease + e.cfg.EaseStep
		interval = ceilInterval(float64(current.Interval) * float64(current.Ease) / 100 * e.cfg.EasyBonus)
	}
	if interval > e.cfg.MaximumInterval {
		interval = e.cfg.MaximumInterval
	}

	window := interval / 4
	if window < 1 {
		window = 1
	}
	due := e.hist.FindBalancedDate(today.AddDays(interval), window)
	e.hist.Increment(due)

	return Schedule{Due: due, Interval: interval, Ease: ease}, nil
}

// ceilInterval rounds an interval up to a whole day, floored at 1.
func ceilInterval(days float64) int {
	i := int(math.Ceil(days))
	if i < 1 {
		i = 1
	}
	return i
}
