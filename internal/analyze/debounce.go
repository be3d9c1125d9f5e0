package analyze

// PredictionHistory holds the most recent per-frame top-class indices and
// decides when they agree well enough to accept a prediction. It is a FIFO
// queue capped at the required agreement count; pushing beyond capacity
// evicts the oldest entry.
//
// Not safe for concurrent use; the analyzer confines it to one worker.
type PredictionHistory struct {
	capacity int
	entries  []int
}

// NewPredictionHistory creates a history requiring capacity consecutive
// agreeing predictions.
func NewPredictionHistory(capacity int) *PredictionHistory {
	return &PredictionHistory{
		capacity: capacity,
		entries:  make([]int, 0, capacity),
	}
}

// Push records a frame's top class, evicting the oldest entry when full.
func (h *PredictionHistory) Push(class int) {
	if len(h.entries) >= h.capacity {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:h.capacity-1]
	}
	h.entries = append(h.entries, class)
}

// Stable returns the agreed class when the history is full and unanimous.
// A partial or disagreeing history yields no stable prediction.
func (h *PredictionHistory) Stable() (int, bool) {
	if len(h.entries) < h.capacity {
		return 0, false
	}
	first := h.entries[0]
	for _, e := range h.entries[1:] {
		if e != first {
			return 0, false
		}
	}
	return first, true
}

// Len returns the number of recorded predictions.
func (h *PredictionHistory) Len() int {
	return len(h.entries)
}

// Reset clears the history.
func (h *PredictionHistory) Reset() {
	h.entries = h.entries[:0]
}
