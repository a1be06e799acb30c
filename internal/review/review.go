// Package review orchestrates a scheduling pass over a vault: it builds the
// link graph, computes importance, collects every scheduled item, assigns
// identities, and applies review responses back to the documents and the
// history store.
package review

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/mnemo-srs/mnemo/internal/codec"
	"github.com/mnemo-srs/mnemo/internal/graph"
	"github.com/mnemo-srs/mnemo/internal/history"
	"github.com/mnemo-srs/mnemo/internal/ident"
	"github.com/mnemo-srs/mnemo/internal/srs"
)

var (
	// ErrUnknownDocument is returned when a review names a document the
	// last sync pass did not see.
	ErrUnknownDocument = errors.New("review: unknown document")

	// ErrUnknownCard is returned when a review names a card identity not
	// present in its document.
	ErrUnknownCard = errors.New("review: unknown card")

	// ErrNotSynced is returned when an operation needs a sync pass that
	// has not run yet.
	ErrNotSynced = errors.New("review: sync has not run")
)

// DocumentStore is the source of documents and their link structure. The
// filesystem vault satisfies it.
type DocumentStore interface {
	ListDocuments() ([]string, error)
	AllLinks() (map[string][]string, error)
	GetText(name string) (string, error)
	WriteText(name, text string) error
}

// Clock supplies the current date, injectable for tests.
type Clock interface {
	Today() srs.Date
}

type systemClock struct{}

func (systemClock) Today() srs.Date { return srs.Today() }

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock { return systemClock{} }

// FixedClock always reports the same date.
type FixedClock struct {
	Date srs.Date
}

func (c FixedClock) Today() srs.Date { return c.Date }

// Kind distinguishes whole-document notes from inline flashcards.
type Kind int

const (
	KindNote Kind = iota + 1
	KindCard
)

func (k Kind) String() string {
	switch k {
	case KindNote:
		return "note"
	case KindCard:
		return "card"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// itemIdentity adapts a codec annotation to the identity assigner.
type itemIdentity struct {
	item *codec.Item
}

func (a itemIdentity) ID() string      { return a.item.ID }
func (a itemIdentity) SetID(id string) { a.item.ID = id }

// Item is one scheduled thing discovered by a sync pass.
type Item struct {
	Document   string
	Kind       Kind
	ID         string
	Schedule   srs.Schedule
	Importance float64
}

// Stats summarizes a sync pass.
type Stats struct {
	Documents   int
	Notes       int
	Cards       int
	Due         int
	AssignedIDs int
	Skipped     int
}

// Pass holds the state of one scheduling session over a document store.
//
// Sync must run before Due, Stats, or any review. Reviews update the
// in-memory state, the document text, and the history store; the histogram
// carries forward within the session so load-balancing sees every date
// already handed out.
type Pass struct {
	docs     DocumentStore
	hist     *history.Store
	clock    Clock
	log      *slog.Logger
	assigner *ident.Assigner

	engine     *srs.Engine
	items      []Item
	importance map[string]float64
	links      map[string][]string
	stats      Stats
}

// Options configures a Pass. Nil fields fall back to production defaults.
type Options struct {
	Clock     Clock
	Generator ident.Generator
	Logger    *slog.Logger
}

// NewPass creates a pass over docs, recording reviews into hist.
func NewPass(docs DocumentStore, hist *history.Store, cfg srs.Config, opts Options) (*Pass, error) {
	engine, err := srs.NewEngine(cfg, nil)
	if err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.Generator == nil {
		opts.Generator = ident.UUIDv7Generator{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Pass{
		docs:     docs,
		hist:     hist,
		clock:    opts.Clock,
		log:      opts.Logger,
		assigner: ident.NewAssigner(opts.Generator),
		engine:   engine,
	}, nil
}

// Sync walks the store: computes link importance, parses every document's
// scheduling annotations, assigns identities where missing, rebuilds the
// due-date histogram, and writes back any document it changed.
func (p *Pass) Sync() error {
	names, err := p.docs.ListDocuments()
	if err != nil {
		return err
	}
	links, err := p.docs.AllLinks()
	if err != nil {
		return err
	}

	g := graph.Build(names, links)
	importance := g.Importance(graph.PageRankConfig{})

	stats := Stats{Documents: len(names)}
	var items []Item

	for _, name := range names {
		text, err := p.docs.GetText(name)
		if err != nil {
			p.log.Warn("skipping unreadable document", "document", name, "error", err)
			continue
		}

		docItems, updated, changed := p.collectDocument(name, text, importance[name], &stats)
		items = append(items, docItems...)
		if changed {
			if err := p.docs.WriteText(name, updated); err != nil {
				return fmt.Errorf("write back %s: %w", name, err)
			}
		}
	}

	hist := srs.NewHistogram()
	schedules := make([]srs.Schedule, 0, len(items))
	for _, it := range items {
		schedules = append(schedules, it.Schedule)
	}
	hist.Build(schedules)

	engine, err := srs.NewEngine(p.engine.Config(), hist)
	if err != nil {
		return err
	}

	today := p.clock.Today()
	for _, it := range items {
		if it.Schedule.Valid() && !it.Schedule.Due.After(today) {
			stats.Due++
		}
	}

	p.engine = engine
	p.items = items
	p.importance = importance
	p.links = links
	p.stats = stats

	p.log.Info("sync complete",
		"documents", stats.Documents,
		"notes", stats.Notes,
		"cards", stats.Cards,
		"due", stats.Due,
		"assigned", stats.AssignedIDs,
	)
	return nil
}

// collectDocument parses one document's note and card annotations. It
// returns the discovered items, the (possibly rewritten) text, and whether
// the text changed.
func (p *Pass) collectDocument(name, text string, importance float64, stats *Stats) ([]Item, string, bool) {
	var items []Item
	changed := false

	note, found, err := codec.ParseFrontMatter(text)
	if err != nil {
		p.log.Warn("unparseable front matter", "document", name, "error", err)
		stats.Skipped++
	} else if found {
		if _, assigned := p.assigner.Ensure(itemIdentity{&note}); assigned {
			text = codec.UpsertFrontMatter(text, note)
			stats.AssignedIDs++
			changed = true
		}
		items = append(items, Item{
			Document:   name,
			Kind:       KindNote,
			ID:         note.ID,
			Schedule:   note.Schedule,
			Importance: importance,
		})
		stats.Notes++
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		cards, skipped, ok := codec.ParseMarker(line)
		if !ok {
			continue
		}
		for _, err := range skipped {
			p.log.Warn("skipping malformed schedule segment", "document", name, "error", err)
			stats.Skipped++
		}
		lineChanged := false
		for j := range cards {
			if _, assigned := p.assigner.Ensure(itemIdentity{&cards[j]}); assigned {
				stats.AssignedIDs++
				lineChanged = true
			}
			items = append(items, Item{
				Document:   name,
				Kind:       KindCard,
				ID:         cards[j].ID,
				Schedule:   cards[j].Schedule,
				Importance: importance,
			})
			stats.Cards++
		}
		if lineChanged {
			lines[i] = codec.UpsertMarker(line, cards)
			changed = true
		}
	}
	if changed {
		text = strings.Join(lines, "\n")
	}

	return items, text, changed
}

// Stats reports the result of the last sync pass.
func (p *Pass) Stats() Stats { return p.stats }

// Items returns a copy of every item the last sync pass discovered.
func (p *Pass) Items() []Item {
	out := make([]Item, len(p.items))
	copy(out, p.items)
	return out
}

// Due returns the items due on or before today, most important document
// first. Ties break by document name, then identity, so the queue order is
// stable across runs.
func (p *Pass) Due() ([]Item, error) {
	if p.importance == nil {
		return nil, ErrNotSynced
	}
	today := p.clock.Today()
	var due []Item
	for _, it := range p.items {
		if it.Schedule.Valid() && !it.Schedule.Due.After(today) {
			due = append(due, it)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].Importance != due[j].Importance {
			return due[i].Importance > due[j].Importance
		}
		if due[i].Document != due[j].Document {
			return due[i].Document < due[j].Document
		}
		return due[i].ID < due[j].ID
	})
	return due, nil
}

// ReviewNote applies a response to a document's whole-note schedule. An
// unscheduled note gets its initial schedule seeded from the link graph.
func (p *Pass) ReviewNote(name string, response srs.Response) (srs.Schedule, error) {
	if p.importance == nil {
		return srs.Schedule{}, ErrNotSynced
	}
	text, err := p.docs.GetText(name)
	if err != nil {
		return srs.Schedule{}, fmt.Errorf("%w: %s", ErrUnknownDocument, name)
	}

	note, found, err := codec.ParseFrontMatter(text)
	if err != nil {
		// A bad annotation never fails the review: the note is treated
		// as unscheduled and its scheduling keys are rewritten cleanly.
		p.log.Warn("unparseable front matter, treating note as unscheduled", "document", name, "error", err)
		note, found = codec.Item{}, false
	}

	today := p.clock.Today()
	var next srs.Schedule
	if found && note.Schedule.Valid() {
		next, err = p.engine.Review(note.Schedule, response, today)
		if err != nil {
			return srs.Schedule{}, err
		}
	} else {
		if !response.IsValid() {
			return srs.Schedule{}, fmt.Errorf("%w: %d", srs.ErrInvalidResponse, int(response))
		}
		next = p.engine.InitialNote(today, p.noteSignals(name))
	}

	note.Schedule = next
	p.assigner.Ensure(itemIdentity{&note})
	if err := p.docs.WriteText(name, codec.UpsertFrontMatter(text, note)); err != nil {
		return srs.Schedule{}, fmt.Errorf("write back %s: %w", name, err)
	}

	p.hist.RecordReview(note.ID, response, next, today)
	p.updateItem(name, KindNote, note.ID, next)
	p.log.Info("reviewed note", "document", name, "response", response, "due", next.Due, "interval", next.Interval, "ease", next.Ease)
	return next, nil
}

// ReviewCard applies a response to one flashcard, addressed by its identity
// within a document.
func (p *Pass) ReviewCard(name, cardID string, response srs.Response) (srs.Schedule, error) {
	if p.importance == nil {
		return srs.Schedule{}, ErrNotSynced
	}
	text, err := p.docs.GetText(name)
	if err != nil {
		return srs.Schedule{}, fmt.Errorf("%w: %s", ErrUnknownDocument, name)
	}

	today := p.clock.Today()
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		cards, _, ok := codec.ParseMarker(line)
		if !ok {
			continue
		}
		for j := range cards {
			if cards[j].ID != cardID {
				continue
			}
			next, err := p.engine.Review(cards[j].Schedule, response, today)
			if err != nil {
				return srs.Schedule{}, err
			}
			cards[j].Schedule = next
			lines[i] = codec.UpsertMarker(line, cards)
			if err := p.docs.WriteText(name, strings.Join(lines, "\n")); err != nil {
				return srs.Schedule{}, fmt.Errorf("write back %s: %w", name, err)
			}
			p.hist.RecordReview(cardID, response, next, today)
			p.updateItem(name, KindCard, cardID, next)
			p.log.Info("reviewed card", "document", name, "card", cardID, "response", response, "due", next.Due, "interval", next.Interval, "ease", next.Ease)
			return next, nil
		}
	}
	return srs.Schedule{}, fmt.Errorf("%w: %s in %s", ErrUnknownCard, cardID, name)
}

// noteSignals aggregates the link-graph inputs for a note's first schedule:
// the importance this note's links reach, the total importance in play, and
// the average ease of cards already scheduled in the same document.
func (p *Pass) noteSignals(name string) srs.NoteSignals {
	var sig srs.NoteSignals
	for _, target := range p.links[name] {
		sig.LinkedImportance += p.importance[target]
	}
	for _, score := range p.importance {
		sig.TotalImportance += score
	}

	var sum, n int
	for _, it := range p.items {
		if it.Document == name && it.Kind == KindCard && it.Schedule.Valid() {
			sum += it.Schedule.Ease
			n++
		}
	}
	if n > 0 {
		avg := sum / n
		sig.PeerEase = &avg
	}
	return sig
}

func (p *Pass) updateItem(doc string, kind Kind, id string, next srs.Schedule) {
	for i := range p.items {
		if p.items[i].Document == doc && p.items[i].Kind == kind && p.items[i].ID == id {
			p.items[i].Schedule = next
			return
		}
	}
	p.items = append(p.items, Item{
		Document:   doc,
		Kind:       kind,
		ID:         id,
		Schedule:   next,
		Importance: p.importance[doc],
	})
}
