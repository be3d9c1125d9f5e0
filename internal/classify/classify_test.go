package classify

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func TestEncodeWindow(t *testing.T) {
	window := []float64{0.5, -0.25, 0, 1.5}

	payload := encodeWindow(window)

	if len(payload) != 4*len(window) {
		t.Fatalf("payload length = %d, want %d", len(payload), 4*len(window))
	}

	for i, want := range window {
		bits := binary.LittleEndian.Uint32(payload[i*4:])
		got := float64(math.Float32frombits(bits))
		if got != want {
			t.Errorf("value %d = %f, want %f", i, got, want)
		}
	}
}

func TestEncodeWindow_Empty(t *testing.T) {
	if payload := encodeWindow(nil); len(payload) != 0 {
		t.Errorf("payload length = %d, want 0", len(payload))
	}
}

func TestMock_Scores(t *testing.T) {
	m := NewMock()
	m.SetScores([]float64{0.1, 0.2, 0.7})

	scores, err := m.Scores([]float64{1, 2, 3})
	if err != nil {
		t.Fatalf("Scores() error = %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("len(scores) = %d, want 3", len(scores))
	}
	if scores[2] != 0.7 {
		t.Errorf("scores[2] = %f, want 0.7", scores[2])
	}

	last := m.LastWindow()
	if len(last) != 3 || last[0] != 1 {
		t.Errorf("LastWindow() = %v, want [1 2 3]", last)
	}
	if m.Calls() != 1 {
		t.Errorf("Calls() = %d, want 1", m.Calls())
	}
}

func TestMock_SetError(t *testing.T) {
	m := NewMock()
	wantErr := errors.New("shape mismatch")
	m.SetError(wantErr)

	if _, err := m.Scores(nil); !errors.Is(err, wantErr) {
		t.Errorf("Scores() error = %v, want %v", err, wantErr)
	}
}
