package detector

import "gocv.io/x/gocv"

// MaxHands is the maximum number of hands the extractor reports per frame.
const MaxHands = 2

// Extractor defines the interface for hand landmark extraction implementations.
type Extractor interface {
	// Extract analyzes a video frame and returns the detected hands.
	// timestampMs is the monotonic capture time of the frame in milliseconds.
	// Returns an empty slice if no hands are present.
	Extract(frame *gocv.Mat, timestampMs int64) ([]Observation, error)

	// Close releases any resources held by the extractor.
	Close() error
}

// Config holds configuration options for landmark extraction.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        MaxHands,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
