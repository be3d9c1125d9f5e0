package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// Mock is a test implementation of the Extractor interface.
// It returns pre-configured observations, optionally consuming a scripted
// sequence one frame at a time.
type Mock struct {
	mu    sync.Mutex
	hands []Observation
	queue [][]Observation
	err   error
	calls int
}

// NewMock creates a new Mock extractor.
func NewMock() *Mock {
	return &Mock{}
}

// SetHands sets the observations returned by every subsequent Extract call.
func (m *Mock) SetHands(hands []Observation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
	m.queue = nil
}

// QueueFrames scripts a sequence of per-frame results. Each Extract call
// consumes one entry; once the queue is drained Extract falls back to the
// hands set via SetHands.
func (m *Mock) QueueFrames(frames ...[]Observation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, frames...)
}

// SetError sets the error returned by Extract.
func (m *Mock) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Extract has been invoked.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Extract returns the pre-configured observations or error.
func (m *Mock) Extract(frame *gocv.Mat, timestampMs int64) ([]Observation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		return next, nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock extractor.
func (m *Mock) Close() error {
	return nil
}

// SampleObservation returns a deterministic Observation for tests. Landmark i
// is placed at (base+i*step, base+i*step+0.1, base+i*step+0.2) so that every
// coordinate is distinct and easy to assert against.
func SampleObservation(handedness string, score float64) Observation {
	o := Observation{
		Handedness: handedness,
		Score:      score,
	}

	const (
		base = 0.1
		step = 0.02
	)
	for i := 0; i < NumLandmarks; i++ {
		v := base + float64(i)*step
		o.Points[i] = Point3D{X: v, Y: v + 0.1, Z: v + 0.2}
	}

	return o
}
