// Package analyze implements the per-frame sign recognition pipeline: landmark
// normalization, the temporal coordinate window, prediction debouncing, frame
// rate tracking, and the orchestrator that drives them.
package analyze

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ayusman/mudra/internal/detector"
)

// Coordinate layout constants. Each frame contributes one value per axis, hand
// slot, and landmark, flattened axis-major: all X values (left hand then
// right), then all Y, then all Z.
const (
	NumAxes       = 3
	NumHandSlots  = 2
	CoordsPerHand = detector.NumLandmarks
	// CoordsPerFrame is the length of one frame's flattened contribution (126).
	CoordsPerFrame = NumAxes * NumHandSlots * CoordsPerHand
)

// BackgroundClass is the reserved "no sign" class index. A stable prediction
// of this class is suppressed from display.
const BackgroundClass = 0

// Vocabulary maps class indices to human-readable sign labels.
// Loaded once at startup and immutable afterwards.
type Vocabulary struct {
	labels map[int]string
}

// LoadVocabulary parses a vocabulary resource: one "index,label" pair per
// line. Blank lines are skipped.
func LoadVocabulary(r io.Reader) (*Vocabulary, error) {
	labels := make(map[int]string)

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		idx, label, found := strings.Cut(line, ",")
		if !found {
			return nil, fmt.Errorf("vocabulary line %d: missing comma: %q", lineNum, line)
		}

		i, err := strconv.Atoi(strings.TrimSpace(idx))
		if err != nil {
			return nil, fmt.Errorf("vocabulary line %d: bad index: %w", lineNum, err)
		}
		if i < 0 {
			return nil, fmt.Errorf("vocabulary line %d: negative index %d", lineNum, i)
		}
		if _, exists := labels[i]; exists {
			return nil, fmt.Errorf("vocabulary line %d: duplicate index %d", lineNum, i)
		}

		labels[i] = strings.TrimSpace(label)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("vocabulary is empty")
	}

	return &Vocabulary{labels: labels}, nil
}

// LoadVocabularyFile loads a vocabulary from a file path.
func LoadVocabularyFile(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary: %w", err)
	}
	defer f.Close()
	return LoadVocabulary(f)
}

// Label returns the label for a class index.
func (v *Vocabulary) Label(class int) (string, bool) {
	label, ok := v.labels[class]
	return label, ok
}

// Size returns the number of classes in the vocabulary.
func (v *Vocabulary) Size() int {
	return len(v.labels)
}

// Entries returns a copy of the index-to-label mapping.
func (v *Vocabulary) Entries() map[int]string {
	entries := make(map[int]string, len(v.labels))
	for i, label := range v.labels {
		entries[i] = label
	}
	return entries
}

// NormalizationTable holds per-coordinate mean and scale values used to
// standardize raw landmark coordinates. The tables are indexed identically to
// a frame's flattened coordinate vector, so entry i normalizes coordinate i.
// Loaded once at startup and shared read-only across frames.
type NormalizationTable struct {
	means  []float64
	scales []float64
}

// LoadNormalizationTable parses a normalization stats resource: two lines of
// comma-separated floats, means first, scales second, each CoordsPerFrame long.
func LoadNormalizationTable(r io.Reader) (*NormalizationTable, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	means, err := scanFloatLine(scanner, "means")
	if err != nil {
		return nil, err
	}
	scales, err := scanFloatLine(scanner, "scales")
	if err != nil {
		return nil, err
	}

	if len(means) != CoordsPerFrame {
		return nil, fmt.Errorf("normalization means: got %d values, want %d", len(means), CoordsPerFrame)
	}
	if len(scales) != CoordsPerFrame {
		return nil, fmt.Errorf("normalization scales: got %d values, want %d", len(scales), CoordsPerFrame)
	}
	for i, s := range scales {
		if s == 0 {
			return nil, fmt.Errorf("normalization scale %d is zero", i)
		}
	}

	return &NormalizationTable{means: means, scales: scales}, nil
}

// LoadNormalizationTableFile loads normalization stats from a file path.
func LoadNormalizationTableFile(path string) (*NormalizationTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open normalization stats: %w", err)
	}
	defer f.Close()
	return LoadNormalizationTable(f)
}

// Normalize standardizes the raw value at flattened coordinate position i.
func (t *NormalizationTable) Normalize(i int, raw float64) float64 {
	return (raw - t.means[i]) / t.scales[i]
}

// IdentityNormalization returns a table with mean 0 and scale 1 for every
// coordinate, leaving raw values unchanged. Useful in tests.
func IdentityNormalization() *NormalizationTable {
	means := make([]float64, CoordsPerFrame)
	scales := make([]float64, CoordsPerFrame)
	for i := range scales {
		scales[i] = 1
	}
	return &NormalizationTable{means: means, scales: scales}
}

func scanFloatLine(scanner *bufio.Scanner, name string) ([]float64, error) {
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Split(line, ",")
		values := make([]float64, 0, len(fields))
		for i, field := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("normalization %s value %d: %w", name, i, err)
			}
			values = append(values, v)
		}
		return values, nil
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read normalization %s: %w", name, err)
	}
	return nil, fmt.Errorf("normalization stats: missing %s line", name)
}
