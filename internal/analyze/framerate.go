package analyze

// FrameRateTracker keeps a moving estimate of the incoming frame cadence from
// the last few arrival timestamps. The estimate is diagnostic only; nothing
// downstream depends on it for correctness.
//
// Not safe for concurrent use; the analyzer confines it to one worker.
type FrameRateTracker struct {
	window int
	stamps []int64
}

// NewFrameRateTracker creates a tracker averaging over the last window arrivals.
func NewFrameRateTracker(window int) *FrameRateTracker {
	return &FrameRateTracker{
		window: window,
		stamps: make([]int64, 0, window),
	}
}

// Observe records a frame arrival timestamp in milliseconds. Timestamps are
// pushed newest-last, so the head of the queue is always the oldest retained
// arrival.
func (t *FrameRateTracker) Observe(timestampMs int64) {
	if len(t.stamps) >= t.window {
		copy(t.stamps, t.stamps[1:])
		t.stamps = t.stamps[:t.window-1]
	}
	t.stamps = append(t.stamps, timestampMs)
}

// FPS returns the moving-average frames-per-second estimate, or 0 with fewer
// than two observations. The average interval is (newest-oldest)/(n-1); the
// subtraction order follows the newest-last insertion discipline above.
func (t *FrameRateTracker) FPS() float64 {
	n := len(t.stamps)
	if n < 2 {
		return 0
	}

	oldest := t.stamps[0]
	newest := t.stamps[n-1]
	if newest <= oldest {
		return 0
	}

	avgIntervalMs := float64(newest-oldest) / float64(n-1)
	return 1000 / avgIntervalMs
}
