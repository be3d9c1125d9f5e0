// Package detector provides the hand landmark extraction boundary for sign recognition.
package detector

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Handedness labels as reported by the extraction service.
const (
	HandednessLeft  = "Left"
	HandednessRight = "Right"
)

// Point3D represents a 3D point in the hand-relative coordinate space.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Observation is one detected hand for a single frame: the 21 landmarks plus
// the handedness label and its confidence. Observations are produced fresh per
// frame and discarded once the frame has been analyzed.
type Observation struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`      // handedness confidence in [0,1]
}

// IsLeft reports whether the extraction service labeled this hand as left.
func (o *Observation) IsLeft() bool {
	return o.Handedness == HandednessLeft
}
