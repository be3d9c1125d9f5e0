package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// serviceIdleTimeout is how long the Python process may sit unused before it
// is shut down to free memory. It restarts lazily on the next Extract call.
const serviceIdleTimeout = 30 * time.Second

// MediaPipeExtractor implements Extractor using a Python MediaPipe Hands subprocess.
//
// Protocol: each request is a 4-byte big-endian length followed by a JPEG
// image; each response is one JSON line listing the detected hands.
type MediaPipeExtractor struct {
	config    Config
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	lastUsed  time.Time
	idleTimer *time.Timer
}

// NewMediaPipeExtractor creates a new MediaPipe extractor.
// The Python process is started lazily on the first extraction.
func NewMediaPipeExtractor(config Config) (*MediaPipeExtractor, error) {
	if findServiceScript() == "" {
		return nil, fmt.Errorf("mediapipe_hands.py not found")
	}

	return &MediaPipeExtractor{
		config: config,
	}, nil
}

// Extract analyzes a frame and returns the detected hand observations.
func (e *MediaPipeExtractor) Extract(frame *gocv.Mat, timestampMs int64) ([]Observation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureStarted(); err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()

	// Write length (4 bytes big-endian) + data
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))

	if _, err := e.stdin.Write(length); err != nil {
		return nil, fmt.Errorf("write length: %w", err)
	}
	if _, err := e.stdin.Write(data); err != nil {
		return nil, fmt.Errorf("write data: %w", err)
	}

	line, err := e.stdout.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var response struct {
		Hands []jsonHand `json:"hands"`
	}
	if err := json.Unmarshal([]byte(line), &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	result := make([]Observation, 0, len(response.Hands))
	for _, h := range response.Hands {
		if len(result) >= e.maxHands() {
			break
		}
		result = append(result, h.toObservation())
	}

	e.lastUsed = time.Now()
	e.resetIdleTimer()

	return result, nil
}

// Close shuts down the Python process.
func (e *MediaPipeExtractor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shutdown()
}

func (e *MediaPipeExtractor) maxHands() int {
	if e.config.MaxHands > 0 {
		return e.config.MaxHands
	}
	return MaxHands
}

func (e *MediaPipeExtractor) ensureStarted() error {
	if e.started {
		return nil
	}

	scriptPath := findServiceScript()
	if scriptPath == "" {
		return fmt.Errorf("mediapipe_hands.py not found")
	}

	pythonPath := findVenvPython()
	if pythonPath == "" {
		pythonPath = "python3"
	}

	e.cmd = exec.Command(pythonPath, scriptPath)

	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := e.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	// Capture stderr for debugging
	e.cmd.Stderr = os.Stderr

	if err := e.cmd.Start(); err != nil {
		return fmt.Errorf("start mediapipe service: %w", err)
	}

	e.stdin = stdin
	e.stdout = bufio.NewReader(stdout)
	e.started = true
	e.lastUsed = time.Now()

	return nil
}

func (e *MediaPipeExtractor) shutdown() error {
	if !e.started {
		return nil
	}

	if e.idleTimer != nil {
		e.idleTimer.Stop()
		e.idleTimer = nil
	}

	if e.stdin != nil {
		e.stdin.Close()
	}

	err := e.cmd.Wait()
	e.started = false
	e.cmd = nil
	e.stdin = nil
	e.stdout = nil

	return err
}

func (e *MediaPipeExtractor) resetIdleTimer() {
	if e.idleTimer != nil {
		e.idleTimer.Stop()
	}
	e.idleTimer = time.AfterFunc(serviceIdleTimeout, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.shutdown()
	})
}

func findServiceScript() string {
	return findSupportFile("scripts/mediapipe_hands.py")
}

// findSupportFile searches common locations for a runtime support file:
// relative to the working directory, the executable directory, and ~/.mudra.
func findSupportFile(rel string) string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		rel,
		filepath.Join("..", rel),
		filepath.Join(execDir, rel),
		filepath.Join(os.Getenv("HOME"), ".mudra", rel),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// findVenvPython looks for a Python interpreter in a virtual environment.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".mudra/venv/bin/python"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// jsonHand represents the JSON structure from the Python service.
type jsonHand struct {
	Points     []jsonPoint `json:"points"`
	Handedness string      `json:"handedness"`
	Score      float64     `json:"score"`
}

type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (h jsonHand) toObservation() Observation {
	o := Observation{
		Handedness: h.Handedness,
		Score:      h.Score,
	}

	for i := 0; i < NumLandmarks && i < len(h.Points); i++ {
		o.Points[i] = Point3D{
			X: h.Points[i].X,
			Y: h.Points[i].Y,
			Z: h.Points[i].Z,
		}
	}

	return o
}
