package analyze

import "testing"

func TestPredictionHistory_EmptyNotStable(t *testing.T) {
	h := NewPredictionHistory(3)

	if _, ok := h.Stable(); ok {
		t.Error("empty history should not be stable")
	}
}

func TestPredictionHistory_PartialNotStable(t *testing.T) {
	h := NewPredictionHistory(3)
	h.Push(5)
	h.Push(5)

	// Unanimous but not yet full: not stable.
	if _, ok := h.Stable(); ok {
		t.Error("partial history should not be stable")
	}
}

func TestPredictionHistory_FullUnanimousStable(t *testing.T) {
	h := NewPredictionHistory(3)
	for i := 0; i < 3; i++ {
		h.Push(7)
	}

	class, ok := h.Stable()
	if !ok || class != 7 {
		t.Errorf("Stable() = (%d, %v), want (7, true)", class, ok)
	}
}

func TestPredictionHistory_DisagreementNotStable(t *testing.T) {
	h := NewPredictionHistory(3)
	h.Push(7)
	h.Push(7)
	h.Push(2)

	if _, ok := h.Stable(); ok {
		t.Error("disagreeing history should not be stable")
	}
}

func TestPredictionHistory_FIFOEviction(t *testing.T) {
	h := NewPredictionHistory(3)
	h.Push(1)
	h.Push(2)
	h.Push(2)
	h.Push(2) // evicts the 1

	if h.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", h.Len())
	}

	class, ok := h.Stable()
	if !ok || class != 2 {
		t.Errorf("Stable() = (%d, %v), want (2, true) after eviction", class, ok)
	}
}

func TestPredictionHistory_NeverExceedsCapacity(t *testing.T) {
	h := NewPredictionHistory(4)
	for i := 0; i < 20; i++ {
		h.Push(i)
		if h.Len() > 4 {
			t.Fatalf("Len() = %d exceeds capacity 4", h.Len())
		}
	}
}

func TestPredictionHistory_Reset(t *testing.T) {
	h := NewPredictionHistory(2)
	h.Push(3)
	h.Push(3)
	h.Reset()

	if h.Len() != 0 {
		t.Errorf("Len() = %d after reset, want 0", h.Len())
	}
	if _, ok := h.Stable(); ok {
		t.Error("reset history should not be stable")
	}
}
