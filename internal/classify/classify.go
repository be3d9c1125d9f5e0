// Package classify provides the sequence classifier boundary for sign recognition.
//
// The classifier is an opaque collaborator: it receives a flattened temporal
// window of normalized landmark coordinates (logical tensor shape
// 1 x 1 x framesPerSign x 3 x 42) and returns one score per vocabulary class.
package classify

// Classifier defines the interface for sign sequence classification.
type Classifier interface {
	// Scores runs the model on the flattened window tensor and returns
	// per-class scores. The returned slice has one entry per vocabulary class.
	Scores(window []float64) ([]float64, error)

	// Close releases any resources held by the classifier.
	Close() error
}

// Config holds configuration options for the classifier service.
type Config struct {
	// ModelPath is the path to the model weights passed to the service.
	// Empty means the service default.
	ModelPath string
}
