package history

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mnemo-srs/mnemo/internal/srs"
)

// Store is the review-history store.
//
// Concurrency model: the in-memory document is guarded by a mutex and
// mutated synchronously, so a read immediately after RecordReview observes
// the new entry even though the durable write is still queued. Persistence
// runs on a single writer goroutine draining the FIFO writeQueue - the
// single-writer gate. Flush is the only blocking wait exposed to callers.
type Store struct {
	path string
	log  *slog.Logger
	now  func() time.Time // injectable for tests

	mu  sync.Mutex
	doc document

	queue *writeQueue
	done  chan struct{}

	flushMu  sync.Mutex
	inFlight int
	flushed  *sync.Cond
}

// Open loads (or creates) the history store backed by the document at
// path and starts the writer goroutine.
//
// A missing file yields an empty store. A file that fails to parse or to
// validate against the schema is logged and replaced in memory by an empty
// store; the corrupt bytes stay on disk until the first successful write.
// Failure to create the target directory is fatal unless it already
// exists. The caller must Close the store when done.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	s := &Store{
		path:  path,
		log:   logger,
		now:   time.Now,
		doc:   emptyDocument(),
		queue: newWriteQueue(),
		done:  make(chan struct{}),
	}
	s.flushed = sync.NewCond(&s.flushMu)
	s.load()

	go s.run()
	return s, nil
}

// load reads and validates the persisted document. Any failure falls back
// to the empty document already in place - corruption never propagates.
func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return
	}
	if err != nil {
		s.log.Warn("history document unreadable, starting empty",
			"path", s.path,
			"error", err,
		)
		return
	}

	if err := validateDocument(data); err != nil {
		s.log.Warn("history document failed validation, starting empty",
			"path", s.path,
			"error", err,
		)
		return
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.log.Warn("history document failed to parse, starting empty",
			"path", s.path,
			"error", err,
		)
		return
	}
	if doc.Cards == nil {
		doc.Cards = make(map[string]CardHistory)
	}
	s.doc = doc
}

// RecordReview appends one entry to the item's history and schedules a
// durable write. The in-memory mapping is updated synchronously before
// returning; the write itself is fire-and-forget and never blocks the
// caller. A new per-item record is created on first use with Created set
// to the entry date.
func (s *Store) RecordReview(itemID string, response srs.Response, after srs.Schedule, on srs.Date) {
	s.mu.Lock()
	h, ok := s.doc.Cards[itemID]
	if !ok {
		h = CardHistory{Created: on}
	}
	h.History = append(h.History, Entry{
		Date:     on,
		Response: response,
		Interval: after.Interval,
		Ease:     after.Ease,
	})
	h.LastReviewed = on
	s.doc.Cards[itemID] = h
	s.mu.Unlock()

	s.scheduleWrite()
}

// History returns a deep copy of the item's review history.
func (s *Store) History(itemID string) (CardHistory, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.doc.Cards[itemID]
	if !ok {
		return CardHistory{}, false
	}
	return h.clone(), true
}

// AllHistories returns a deep, independent copy of every item's history.
// Mutating the returned value cannot affect store state.
func (s *Store) AllHistories() map[string]CardHistory {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]CardHistory, len(s.doc.Cards))
	for id, h := range s.doc.Cards {
		out[id] = h.clone()
	}
	return out
}

// Len returns the number of items with recorded history.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.doc.Cards)
}

// Flush blocks until every outstanding durable write has completed (or
// failed and been logged). Used before shutdown and in tests.
func (s *Store) Flush() {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()
	for s.inFlight > 0 {
		s.flushed.Wait()
	}
}

// Close flushes outstanding writes and stops the writer goroutine.
// The store must not be used after Close.
func (s *Store) Close() {
	s.queue.Close()
	<-s.done
}

// scheduleWrite enqueues one full-document persistence request.
func (s *Store) scheduleWrite() {
	s.flushMu.Lock()
	s.inFlight++
	s.flushMu.Unlock()

	if !s.queue.Enqueue() {
		s.writeDone()
		s.log.Error("history write dropped: store closed", "path", s.path)
	}
}

// writeDone retires one persistence request and wakes Flush waiters.
func (s *Store) writeDone() {
	s.flushMu.Lock()
	s.inFlight--
	s.flushed.Broadcast()
	s.flushMu.Unlock()
}

// run is the single-writer loop. Exactly one serialize-and-write executes
// at a time; queued requests drain in call order. Write failures are
// logged and the in-memory state stays intact - one persistence attempt is
// lost until the next successful write, nothing more.
func (s *Store) run() {
	defer close(s.done)
	for {
		if s.queue.TryDequeue() {
			if err := s.persist(); err != nil {
				s.log.Error("history write failed",
					"path", s.path,
					"error", err,
				)
			}
			s.writeDone()
			continue
		}
		if s.queue.Drained() {
			return
		}
		<-s.queue.Wait()
	}
}

// persist serializes the complete current document and writes it with a
// temp-file rename for crash consistency. metadata.lastUpdated is stamped
// at serialization time.
func (s *Store) persist() error {
	s.mu.Lock()
	s.doc.Metadata.LastUpdated = s.now()
	data, err := json.MarshalIndent(s.doc, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("serialize history document: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write history document: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace history document: %w", err)
	}
	return nil
}
