package classify

import "sync"

// Mock is a test implementation of the Classifier interface.
type Mock struct {
	mu      sync.Mutex
	scores  []float64
	err     error
	calls   int
	windows [][]float64
}

// NewMock creates a new Mock classifier.
func NewMock() *Mock {
	return &Mock{}
}

// SetScores sets the score vector returned by Scores.
func (m *Mock) SetScores(scores []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores = scores
	m.err = nil
}

// SetError sets the error returned by Scores.
func (m *Mock) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Scores has been invoked.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastWindow returns a copy of the most recent window passed to Scores,
// or nil if Scores has not been called.
func (m *Mock) LastWindow() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.windows) == 0 {
		return nil
	}
	last := m.windows[len(m.windows)-1]
	out := make([]float64, len(last))
	copy(out, last)
	return out
}

// Scores records the window and returns the pre-configured scores or error.
func (m *Mock) Scores(window []float64) ([]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	snapshot := make([]float64, len(window))
	copy(snapshot, window)
	m.windows = append(m.windows, snapshot)

	if m.err != nil {
		return nil, m.err
	}
	out := make([]float64, len(m.scores))
	copy(out, m.scores)
	return out, nil
}

// Close is a no-op for the mock classifier.
func (m *Mock) Close() error {
	return nil
}
