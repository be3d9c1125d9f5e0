package analyze

import (
	"math"
	"testing"

	"github.com/ayusman/mudra/internal/detector"
)

func obs(handedness string, score float64) detector.Observation {
	return detector.SampleObservation(handedness, score)
}

func TestAssignHands_NoObservations(t *testing.T) {
	left, right := AssignHands(nil)

	if left != NoHand || right != NoHand {
		t.Errorf("AssignHands(nil) = (%d, %d), want (NoHand, NoHand)", left, right)
	}
}

func TestAssignHands_SingleObservation(t *testing.T) {
	tests := []struct {
		name       string
		handedness string
		wantLeft   int
		wantRight  int
	}{
		{"left hand", detector.HandednessLeft, 0, NoHand},
		{"right hand", detector.HandednessRight, NoHand, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			left, right := AssignHands([]detector.Observation{obs(tt.handedness, 0.9)})
			if left != tt.wantLeft || right != tt.wantRight {
				t.Errorf("AssignHands() = (%d, %d), want (%d, %d)", left, right, tt.wantLeft, tt.wantRight)
			}
		})
	}
}

func TestAssignHands_TwoObservations(t *testing.T) {
	tests := []struct {
		name      string
		first     detector.Observation
		second    detector.Observation
		wantLeft  int
		wantRight int
	}{
		{
			// Left-likelihoods 0.9 vs 0.2: the 0.9 hand takes the left slot.
			name:      "clear left vs right",
			first:     obs(detector.HandednessLeft, 0.9),
			second:    obs(detector.HandednessRight, 0.8),
			wantLeft:  0,
			wantRight: 1,
		},
		{
			name:      "reversed order",
			first:     obs(detector.HandednessRight, 0.8),
			second:    obs(detector.HandednessLeft, 0.9),
			wantLeft:  1,
			wantRight: 0,
		},
		{
			// Both labeled left: the more confident one wins the left slot.
			name:      "both labeled left",
			first:     obs(detector.HandednessLeft, 0.6),
			second:    obs(detector.HandednessLeft, 0.95),
			wantLeft:  1,
			wantRight: 0,
		},
		{
			// Both labeled right: the less confident one is more likely left.
			name:      "both labeled right",
			first:     obs(detector.HandednessRight, 0.55),
			second:    obs(detector.HandednessRight, 0.99),
			wantLeft:  0,
			wantRight: 1,
		},
		{
			// Equal likelihoods resolve to the first-scanned observation.
			name:      "tie goes to first",
			first:     obs(detector.HandednessLeft, 0.7),
			second:    obs(detector.HandednessLeft, 0.7),
			wantLeft:  0,
			wantRight: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			left, right := AssignHands([]detector.Observation{tt.first, tt.second})
			if left != tt.wantLeft || right != tt.wantRight {
				t.Errorf("AssignHands() = (%d, %d), want (%d, %d)", left, right, tt.wantLeft, tt.wantRight)
			}
		})
	}
}

func TestAssignHands_LikelihoodScores(t *testing.T) {
	// A hand labeled "Right" with confidence 0.8 has left-likelihood 0.2.
	right := obs(detector.HandednessRight, 0.8)
	if got := leftLikelihood(&right); math.Abs(got-0.2) > 1e-12 {
		t.Errorf("leftLikelihood(right@0.8) = %f, want 0.2", got)
	}

	left := obs(detector.HandednessLeft, 0.9)
	if got := leftLikelihood(&left); got != 0.9 {
		t.Errorf("leftLikelihood(left@0.9) = %f, want 0.9", got)
	}
}
