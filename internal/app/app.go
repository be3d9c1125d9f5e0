// Package app provides the main application logic for the mudra sign recognition system.
package app

import (
	"log"
	"sync"

	"github.com/ayusman/mudra/internal/analyze"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/store"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate during active recognition.
	ActiveFPS = 15
	// IdleTimeoutMs is the time in milliseconds to wait before switching back to idle mode.
	IdleTimeoutMs = 2000
)

// Config holds configuration options for the application.
type Config struct {
	Store        *store.Store
	Analyzer     *analyze.Analyzer
	CameraID     int
	MotionThresh float64
}

// App orchestrates the capture loop: it reads camera frames, gates them on
// motion, and feeds them to the analyzer. It also owns the transcript
// recorder when a store is configured.
type App struct {
	config   Config
	camera   capture.Camera
	motion   *capture.MotionDetector
	analyzer *analyze.Analyzer
	recorder *Recorder

	enabled    bool
	mu         sync.RWMutex
	stopCh     chan struct{}
	recorderID string
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // Default threshold: 1% pixel change
	}

	a := &App{
		config:   config,
		camera:   capture.NewCamera(config.CameraID),
		motion:   capture.NewMotionDetector(motionThreshold),
		analyzer: config.Analyzer,
		enabled:  false,
		stopCh:   nil,
	}

	if config.Store != nil && config.Analyzer != nil {
		a.recorder = NewRecorder(config.Store, config.Analyzer.Vocabulary())
	}

	return a
}

// SetEnabled enables or disables sign recognition.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether sign recognition is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetCamera sets the camera implementation to use. Useful for testing.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// Start opens the camera and begins the capture pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}

	// Set initial FPS to idle mode
	a.camera.SetFPS(IdleFPS)

	if a.recorder != nil {
		if err := a.recorder.Begin(); err != nil {
			log.Printf("Failed to start transcript session: %v", err)
		} else {
			a.recorderID = a.analyzer.Subscribe(a.recorder.OnOutput)
		}
	}

	a.analyzer.Start()

	a.stopCh = make(chan struct{})
	go a.runPipeline(a.stopCh)

	log.Println("Capture pipeline started")
	return nil
}

// Stop halts the capture pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Already stopped or never started
	if a.stopCh == nil {
		return
	}
	close(a.stopCh)
	a.stopCh = nil

	a.analyzer.Stop()

	if a.recorderID != "" {
		a.analyzer.Unsubscribe(a.recorderID)
		a.recorderID = ""
		if err := a.recorder.End(); err != nil {
			log.Printf("Failed to end transcript session: %v", err)
		}
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	a.motion.Close()

	log.Println("Capture pipeline stopped")
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// MotionDetector returns the motion detector instance.
func (a *App) MotionDetector() *capture.MotionDetector {
	return a.motion
}

// Analyzer returns the analyzer instance.
func (a *App) Analyzer() *analyze.Analyzer {
	return a.analyzer
}

// Recorder returns the transcript recorder, or nil if no store is configured.
func (a *App) Recorder() *Recorder {
	return a.recorder
}
