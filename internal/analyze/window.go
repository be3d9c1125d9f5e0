package analyze

import "github.com/ayusman/mudra/internal/detector"

// CoordinateWindow is the fixed-length temporal buffer fed to the classifier.
// It always holds exactly framesPerSign frames' worth of flattened, normalized
// coordinates; pushing a frame drops the oldest frame's contribution and
// appends the newest. The buffer starts zeroed, so the classifier sees zero
// vectors until framesPerSign real frames have been pushed.
//
// Not safe for concurrent use; the analyzer confines it to one worker.
type CoordinateWindow struct {
	framesPerSign int
	norm          *NormalizationTable
	values        []float64
	frame         []float64 // scratch for the current frame's contribution
}

// NewCoordinateWindow creates a zero-initialized window of framesPerSign frames.
func NewCoordinateWindow(framesPerSign int, norm *NormalizationTable) *CoordinateWindow {
	return &CoordinateWindow{
		framesPerSign: framesPerSign,
		norm:          norm,
		values:        make([]float64, framesPerSign*CoordsPerFrame),
		frame:         make([]float64, CoordsPerFrame),
	}
}

// Push folds one frame's observations into the window. Either observation may
// be nil for an absent hand, in which case its coordinates contribute zeros.
func (w *CoordinateWindow) Push(left, right *detector.Observation) {
	w.fillFrame(left, right)

	// Shift out the oldest frame's contribution and append the newest.
	copy(w.values, w.values[CoordsPerFrame:])
	copy(w.values[len(w.values)-CoordsPerFrame:], w.frame)
}

// fillFrame writes the flattened contribution for one frame into w.frame:
// [leftX(21), rightX(21), leftY(21), rightY(21), leftZ(21), rightZ(21)].
// The layout must be reproduced exactly for classifier compatibility.
func (w *CoordinateWindow) fillFrame(left, right *detector.Observation) {
	hands := [NumHandSlots]*detector.Observation{left, right}

	i := 0
	for axis := 0; axis < NumAxes; axis++ {
		for _, hand := range hands {
			for lm := 0; lm < CoordsPerHand; lm++ {
				if hand == nil {
					w.frame[i] = 0
				} else {
					w.frame[i] = w.norm.Normalize(i, axisValue(&hand.Points[lm], axis))
				}
				i++
			}
		}
	}
}

// Values returns the flattened window tensor. The slice is owned by the
// window and only valid until the next Push.
func (w *CoordinateWindow) Values() []float64 {
	return w.values
}

// Len returns the total number of values in the window.
func (w *CoordinateWindow) Len() int {
	return len(w.values)
}

func axisValue(p *detector.Point3D, axis int) float64 {
	switch axis {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}
