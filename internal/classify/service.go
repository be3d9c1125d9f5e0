package classify

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"
)

// serviceIdleTimeout mirrors the extractor service: an unused model process is
// shut down and restarted lazily on the next call.
const serviceIdleTimeout = 30 * time.Second

// ServiceClassifier implements Classifier using a Python subprocess hosting
// the sequence model.
//
// Protocol: each request is a 4-byte big-endian length followed by the window
// tensor as little-endian float32 values; each response is one JSON line of
// the form {"scores": [...]}.
type ServiceClassifier struct {
	config    Config
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	lastUsed  time.Time
	idleTimer *time.Timer
}

// NewServiceClassifier creates a classifier backed by the sign_classifier.py service.
// The Python process is started lazily on the first Scores call.
func NewServiceClassifier(config Config) (*ServiceClassifier, error) {
	if findClassifierScript() == "" {
		return nil, fmt.Errorf("sign_classifier.py not found")
	}

	return &ServiceClassifier{
		config: config,
	}, nil
}

// Scores sends the window tensor to the model service and returns the class scores.
func (c *ServiceClassifier) Scores(window []float64) ([]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureStarted(); err != nil {
		return nil, err
	}

	payload := encodeWindow(window)

	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(payload)))

	if _, err := c.stdin.Write(length); err != nil {
		return nil, fmt.Errorf("write length: %w", err)
	}
	if _, err := c.stdin.Write(payload); err != nil {
		return nil, fmt.Errorf("write tensor: %w", err)
	}

	line, err := c.stdout.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var response struct {
		Scores []float64 `json:"scores"`
		Error  string    `json:"error"`
	}
	if err := json.Unmarshal([]byte(line), &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if response.Error != "" {
		return nil, fmt.Errorf("classifier service: %s", response.Error)
	}
	if len(response.Scores) == 0 {
		return nil, fmt.Errorf("classifier service returned no scores")
	}

	c.lastUsed = time.Now()
	c.resetIdleTimer()

	return response.Scores, nil
}

// Close shuts down the model service process.
func (c *ServiceClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shutdown()
}

func (c *ServiceClassifier) ensureStarted() error {
	if c.started {
		return nil
	}

	scriptPath := findClassifierScript()
	if scriptPath == "" {
		return fmt.Errorf("sign_classifier.py not found")
	}

	pythonPath := findVenvPython()
	if pythonPath == "" {
		pythonPath = "python3"
	}

	args := []string{scriptPath}
	if c.config.ModelPath != "" {
		args = append(args, "--model", c.config.ModelPath)
	}
	c.cmd = exec.Command(pythonPath, args...)

	stdin, err := c.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := c.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	c.cmd.Stderr = os.Stderr

	if err := c.cmd.Start(); err != nil {
		return fmt.Errorf("start classifier service: %w", err)
	}

	c.stdin = stdin
	c.stdout = bufio.NewReader(stdout)
	c.started = true
	c.lastUsed = time.Now()

	return nil
}

func (c *ServiceClassifier) shutdown() error {
	if !c.started {
		return nil
	}

	if c.idleTimer != nil {
		c.idleTimer.Stop()
		c.idleTimer = nil
	}

	if c.stdin != nil {
		c.stdin.Close()
	}

	err := c.cmd.Wait()
	c.started = false
	c.cmd = nil
	c.stdin = nil
	c.stdout = nil

	return err
}

func (c *ServiceClassifier) resetIdleTimer() {
	if c.idleTimer != nil {
		c.idleTimer.Stop()
	}
	c.idleTimer = time.AfterFunc(serviceIdleTimeout, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.shutdown()
	})
}

func findClassifierScript() string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"scripts/sign_classifier.py",
		"../scripts/sign_classifier.py",
		filepath.Join(execDir, "scripts/sign_classifier.py"),
		filepath.Join(os.Getenv("HOME"), ".mudra/scripts/sign_classifier.py"),
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

// encodeWindow packs the window tensor as little-endian float32 values,
// the layout the model service expects.
func encodeWindow(window []float64) []byte {
	payload := make([]byte, 4*len(window))
	for i, v := range window {
		binary.LittleEndian.PutUint32(payload[i*4:], math.Float32bits(float32(v)))
	}
	return payload
}
