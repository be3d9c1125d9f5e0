package analyze

import "github.com/ayusman/mudra/internal/detector"

// NoHand marks an absent hand slot in an assignment.
const NoHand = -1

// AssignHands decides which observation fills the left and right hand slots
// for a frame. It returns indices into the observations slice, or NoHand for
// an empty slot.
//
// With a single observation the reported handedness label decides the slot.
// With two observations each is given a left-likelihood score - its confidence
// when labeled "Left", one minus its confidence when labeled "Right" - and the
// higher-scoring observation takes the left slot even when both labels agree.
// Equal scores resolve to the lower index (first scanned wins). The heuristic
// always returns a decision; contradictory labels are never an error.
func AssignHands(observations []detector.Observation) (left, right int) {
	switch len(observations) {
	case 0:
		return NoHand, NoHand
	case 1:
		if observations[0].IsLeft() {
			return 0, NoHand
		}
		return NoHand, 0
	}

	if leftLikelihood(&observations[0]) >= leftLikelihood(&observations[1]) {
		return 0, 1
	}
	return 1, 0
}

// leftLikelihood scores how likely an observation is the left hand.
func leftLikelihood(o *detector.Observation) float64 {
	if o.IsLeft() {
		return o.Score
	}
	return 1 - o.Score
}
