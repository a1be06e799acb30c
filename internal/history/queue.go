package history

import "sync"

// writeQueue is a thread-safe FIFO of pending persistence requests.
//
// Requests carry no payload: each one tells the writer goroutine to
// serialize the complete current document. The queue exists to enforce the
// single-writer gate - at most one serialize-and-write executes at a time,
// requests drain in call order, and a request enqueued while another is in
// flight simply waits its turn.
//
// The signal channel (buffered, size 1) coalesces wakeups and is closed
// when the queue closes, so the writer loop never hangs on shutdown.
type writeQueue struct {
	mu      sync.Mutex
	pending int
	closed  bool
	signal  chan struct{}
}

func newWriteQueue() *writeQueue {
	return &writeQueue{signal: make(chan struct{}, 1)}
}

// Enqueue adds one persistence request.
// Returns false if the queue is closed.
func (q *writeQueue) Enqueue() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.pending++

	// Non-blocking send - a full buffer already guarantees a wakeup.
	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue claims one request without blocking.
func (q *writeQueue) TryDequeue() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.pending == 0 {
		return false
	}
	q.pending--
	return true
}

// Drained reports whether the queue is closed with nothing left to write.
func (q *writeQueue) Drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && q.pending == 0
}

// Wait returns the signal channel. It is closed when the queue closes.
func (q *writeQueue) Wait() <-chan struct{} {
	return q.signal
}

// Close marks the queue closed and wakes the writer. Requests already
// enqueued still drain; new ones are refused.
func (q *writeQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
