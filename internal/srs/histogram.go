package srs

// Histogram tracks how many items are due on each calendar date.
//
// The histogram is pass-scoped shared state: it is rebuilt from every known
// schedule at the start of a sync pass, then read and incrementally updated
// by the scheduling decisions within that pass. It must not be carried
// across passes.
//
// Histogram is not safe for concurrent use; scheduling decisions are
// single-threaded within a pass.
type Histogram struct {
	counts map[Date]int
}

// NewHistogram creates an empty histogram.
func NewHistogram() *Histogram {
	return &Histogram{counts: make(map[Date]int)}
}

// Build resets the histogram and repopulates it from the due dates of the
// given schedules. Invalid schedules are ignored.
func (h *Histogram) Build(schedules []Schedule) {
	h.counts = make(map[Date]int, len(schedules))
	for _, s := range schedules {
		if !s.Valid() {
			continue
		}
		h.counts[s.Due]++
	}
}

// Increment records one more item due on the given date.
func (h *Histogram) Increment(d Date) {
	h.counts[d]++
}

// Count returns the number of items currently due on the given date.
func (h *Histogram) Count(d Date) int {
	return h.counts[d]
}

// FindBalancedDate picks the least-loaded date in [candidate,
// candidate+window]. Ties go to the date closest to the candidate, so an
// unloaded candidate is returned unchanged.
//
// The returned date is never earlier than the candidate: load balancing may
// postpone a review, never advance it.
//
// The caller is expected to Increment the chosen date so that subsequent
// decisions in the same pass see the updated load.
func (h *Histogram) FindBalancedDate(candidate Date, window int) Date {
	best := candidate
	bestCount := h.counts[candidate]
	for offset := 1; offset <= window; offset++ {
		d := candidate.AddDays(offset)
		if c := h.counts[d]; c < bestCount {
			best = d
			bestCount = c
		}
	}
	return best
}
