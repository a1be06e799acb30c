// Package ident issues and validates stable identifiers for review items.
//
// An identifier is an opaque URL-safe token assigned once per item and
// never recomputed. It is the persistence key for review history, so it
// must survive edits to the item's content; content-derived fingerprints
// (see Fingerprint) are a separate, transient concept used only for
// best-effort matching of legacy data.
package ident

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// idPattern is the accepted identifier grammar: a non-empty URL-safe token.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Valid reports whether id matches the identifier grammar.
func Valid(id string) bool {
	return idPattern.MatchString(id)
}

// Generator produces new globally-unique identifiers.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type Generator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 identifiers.
//
// UUIDv7 embeds a timestamp in the most significant bits, making
// identifiers sortable by creation time, which keeps the history document
// roughly chronological when read by hand.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined identifiers for testing.
// Thread-safe via internal mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
// It panics when the ids are exhausted; tests should provide enough.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined identifier.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.ids) {
		panic("ident: FixedGenerator exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// Identifiable is a review item that can carry a stable identifier.
type Identifiable interface {
	// ID returns the item's current identifier, or "" if none assigned.
	ID() string
	// SetID stores a freshly assigned identifier on the item.
	SetID(id string)
}

// Assigner ensures every review item carries a valid stable identifier.
type Assigner struct {
	gen Generator
}

// NewAssigner creates an Assigner using the given generator.
// A nil generator defaults to UUIDv7Generator.
func NewAssigner(gen Generator) *Assigner {
	if gen == nil {
		gen = UUIDv7Generator{}
	}
	return &Assigner{gen: gen}
}

// Ensure returns the item's identifier, assigning a new one only when the
// current identifier is missing or fails the grammar. The second return
// reports whether an assignment happened, which tells the caller the
// source annotation must be rewritten.
func (a *Assigner) Ensure(item Identifiable) (string, bool) {
	if id := item.ID(); Valid(id) {
		return id, false
	}
	id := a.gen.Generate()
	item.SetID(id)
	return id, true
}

// Migrate backfills identifiers across all items and returns how many were
// assigned. Running it twice assigns nothing the second time.
func (a *Assigner) Migrate(items []Identifiable) int {
	assigned := 0
	for _, item := range items {
		if _, ok := a.Ensure(item); ok {
			assigned++
		}
	}
	return assigned
}

// Fingerprint returns a content-derived hash of the item text, hex-encoded.
// Text is NFC-normalized first so visually identical content fingerprints
// identically regardless of Unicode composition.
//
// Fingerprints are transient: recomputed on every parse and used only for
// best-effort matching of legacy records. They are never a persistent
// identity.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(norm.NFC.String(text)))
	return hex.EncodeToString(sum[:])
}
