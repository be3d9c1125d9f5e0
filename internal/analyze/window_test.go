package analyze

import (
	"testing"

	"github.com/ayusman/mudra/internal/detector"
)

func allZero(values []float64) bool {
	for _, v := range values {
		if v != 0 {
			return false
		}
	}
	return true
}

func TestCoordinateWindow_ZeroInitialized(t *testing.T) {
	w := NewCoordinateWindow(4, IdentityNormalization())

	if w.Len() != 4*CoordsPerFrame {
		t.Fatalf("Len() = %d, want %d", w.Len(), 4*CoordsPerFrame)
	}
	if !allZero(w.Values()) {
		t.Error("new window should be all zeros")
	}
}

func TestCoordinateWindow_LengthInvariant(t *testing.T) {
	w := NewCoordinateWindow(3, IdentityNormalization())
	hand := detector.SampleObservation(detector.HandednessLeft, 0.9)

	for i := 0; i < 10; i++ {
		w.Push(&hand, nil)
		if w.Len() != 3*CoordsPerFrame {
			t.Fatalf("after push %d: Len() = %d, want %d", i, w.Len(), 3*CoordsPerFrame)
		}
	}
}

func TestCoordinateWindow_FlatteningOrder(t *testing.T) {
	w := NewCoordinateWindow(1, IdentityNormalization())

	left := detector.SampleObservation(detector.HandednessLeft, 0.9)
	right := detector.SampleObservation(detector.HandednessRight, 0.9)
	w.Push(&left, &right)

	values := w.Values()

	// Layout: leftX(21), rightX(21), leftY(21), rightY(21), leftZ(21), rightZ(21).
	for lm := 0; lm < detector.NumLandmarks; lm++ {
		checks := []struct {
			pos  int
			want float64
		}{
			{lm, left.Points[lm].X},
			{CoordsPerHand + lm, right.Points[lm].X},
			{2*CoordsPerHand + lm, left.Points[lm].Y},
			{3*CoordsPerHand + lm, right.Points[lm].Y},
			{4*CoordsPerHand + lm, left.Points[lm].Z},
			{5*CoordsPerHand + lm, right.Points[lm].Z},
		}
		for _, c := range checks {
			if values[c.pos] != c.want {
				t.Fatalf("landmark %d: values[%d] = %f, want %f", lm, c.pos, values[c.pos], c.want)
			}
		}
	}
}

func TestCoordinateWindow_AbsentHandContributesZeros(t *testing.T) {
	w := NewCoordinateWindow(1, IdentityNormalization())

	left := detector.SampleObservation(detector.HandednessLeft, 0.9)
	w.Push(&left, nil)

	values := w.Values()

	// Right-hand blocks (positions 21-41, 63-83, 105-125) must be zero.
	for lm := 0; lm < detector.NumLandmarks; lm++ {
		for axis := 0; axis < NumAxes; axis++ {
			pos := axis*NumHandSlots*CoordsPerHand + CoordsPerHand + lm
			if values[pos] != 0 {
				t.Fatalf("values[%d] = %f, want 0 for absent right hand", pos, values[pos])
			}
		}
	}

	// Left X block must carry the raw coordinates under identity stats.
	if values[detector.IndexTip] != left.Points[detector.IndexTip].X {
		t.Errorf("left X of index tip = %f, want %f",
			values[detector.IndexTip], left.Points[detector.IndexTip].X)
	}
}

func TestCoordinateWindow_ZeroHandFrame(t *testing.T) {
	w := NewCoordinateWindow(2, IdentityNormalization())
	hand := detector.SampleObservation(detector.HandednessRight, 0.8)

	w.Push(nil, &hand)
	w.Push(nil, nil)

	values := w.Values()

	// The newest frame's contribution sits at the tail and must be all zeros.
	newest := values[len(values)-CoordsPerFrame:]
	if !allZero(newest) {
		t.Error("zero-hand frame should contribute all zeros")
	}

	// The previous frame's contribution shifted toward the head and survives.
	oldest := values[:CoordsPerFrame]
	if allZero(oldest) {
		t.Error("previous frame's contribution should have shifted, not vanished")
	}
}

func TestCoordinateWindow_EvictsOldest(t *testing.T) {
	w := NewCoordinateWindow(2, IdentityNormalization())
	hand := detector.SampleObservation(detector.HandednessLeft, 0.9)

	w.Push(&hand, nil)
	w.Push(nil, nil)
	w.Push(nil, nil)

	// After two more pushes the hand frame has been evicted entirely.
	if !allZero(w.Values()) {
		t.Error("window should be all zeros after the hand frame is evicted")
	}
}

func TestCoordinateWindow_AppliesNormalization(t *testing.T) {
	means := make([]float64, CoordsPerFrame)
	scales := make([]float64, CoordsPerFrame)
	for i := range means {
		means[i] = 0.5
		scales[i] = 2
	}
	table := &NormalizationTable{means: means, scales: scales}

	w := NewCoordinateWindow(1, table)

	left := detector.SampleObservation(detector.HandednessLeft, 0.9)
	w.Push(&left, nil)

	want := (left.Points[0].X - 0.5) / 2
	if got := w.Values()[0]; got != want {
		t.Errorf("normalized value = %f, want %f", got, want)
	}
}
