package analyze

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/floats"

	"github.com/ayusman/mudra/internal/classify"
	"github.com/ayusman/mudra/internal/detector"
)

// State describes where the analyzer is in the per-frame pipeline.
type State int

const (
	// StateIdle means no frame is being processed.
	StateIdle State = iota
	// StateAwaitingExtraction means a frame was handed to the landmark extractor.
	StateAwaitingExtraction
	// StateClassifying means the window tensor is being classified.
	StateClassifying
	// StatePublishing means the output is being delivered to listeners.
	StatePublishing
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingExtraction:
		return "awaiting-extraction"
	case StateClassifying:
		return "classifying"
	case StatePublishing:
		return "publishing"
	default:
		return "unknown"
	}
}

// Listener receives the current output string once per analyzed frame,
// whether or not it changed.
type Listener func(output string)

// Params holds the tunable pipeline dimensions.
type Params struct {
	// FramesPerSign is the temporal window length in frames.
	FramesPerSign int
	// ConcurrentPredsRequired is how many consecutive frames must agree on a
	// class before it is accepted.
	ConcurrentPredsRequired int
	// FrameRateWindow is how many arrival timestamps the FPS estimate averages over.
	FrameRateWindow int
}

// DefaultParams returns the standard pipeline dimensions.
func DefaultParams() Params {
	return Params{
		FramesPerSign:           30,
		ConcurrentPredsRequired: 4,
		FrameRateWindow:         10,
	}
}

// Config holds the collaborators and parameters for an Analyzer.
type Config struct {
	Vocabulary    *Vocabulary
	Normalization *NormalizationTable
	Extractor     detector.Extractor
	Classifier    classify.Classifier
	Params        Params
}

// Analyzer is the per-frame orchestrator. It owns the analysis session state:
// the coordinate window, the prediction history, the frame rate tracker, the
// current output string, and the listener registry.
//
// All session state is mutated by a single worker goroutine; Analyze hands
// frames to it over an unbuffered channel, so a slow extraction or
// classification stalls the caller and provides synchronous back-pressure.
type Analyzer struct {
	params     Params
	vocab      *Vocabulary
	extractor  detector.Extractor
	classifier classify.Classifier

	// Confined to the worker goroutine.
	window  *CoordinateWindow
	history *PredictionHistory

	mu        sync.RWMutex
	listeners map[string]Listener
	output    string
	state     State
	rate      *FrameRateTracker

	frames chan frameJob
	stopCh chan struct{}
	done   chan struct{}
}

type frameJob struct {
	mat         gocv.Mat
	timestampMs int64
}

// New creates an Analyzer. The vocabulary and normalization table are
// mandatory; an analyzer cannot be constructed without them.
func New(cfg Config) (*Analyzer, error) {
	if cfg.Vocabulary == nil {
		return nil, fmt.Errorf("analyzer requires a vocabulary")
	}
	if cfg.Normalization == nil {
		return nil, fmt.Errorf("analyzer requires a normalization table")
	}
	if cfg.Extractor == nil {
		return nil, fmt.Errorf("analyzer requires a landmark extractor")
	}
	if cfg.Classifier == nil {
		return nil, fmt.Errorf("analyzer requires a classifier")
	}

	params := cfg.Params
	defaults := DefaultParams()
	if params.FramesPerSign <= 0 {
		params.FramesPerSign = defaults.FramesPerSign
	}
	if params.ConcurrentPredsRequired <= 0 {
		params.ConcurrentPredsRequired = defaults.ConcurrentPredsRequired
	}
	if params.FrameRateWindow <= 0 {
		params.FrameRateWindow = defaults.FrameRateWindow
	}

	return &Analyzer{
		params:     params,
		vocab:      cfg.Vocabulary,
		extractor:  cfg.Extractor,
		classifier: cfg.Classifier,
		window:     NewCoordinateWindow(params.FramesPerSign, cfg.Normalization),
		history:    NewPredictionHistory(params.ConcurrentPredsRequired),
		rate:       NewFrameRateTracker(params.FrameRateWindow),
		listeners:  make(map[string]Listener),
		state:      StateIdle,
	}, nil
}

// Start launches the analysis worker. Calling Start on a running analyzer is a no-op.
func (a *Analyzer) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return
	}

	a.frames = make(chan frameJob)
	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.run(a.frames, a.stopCh, a.done)
}

// Stop halts the worker. Any in-flight frame result is dropped silently.
func (a *Analyzer) Stop() {
	a.mu.Lock()
	if a.stopCh == nil {
		a.mu.Unlock()
		return
	}
	stopCh, done := a.stopCh, a.done
	a.stopCh = nil
	a.done = nil
	a.mu.Unlock()

	close(stopCh)
	<-done
}

// Analyze submits one camera frame for analysis. The frame's pixel data is
// copied before Analyze returns; the caller keeps ownership of frame and may
// release it immediately. If no listeners are subscribed the frame is
// discarded without any work.
func (a *Analyzer) Analyze(frame *gocv.Mat) {
	a.mu.RLock()
	frames, stopCh := a.frames, a.stopCh
	noListeners := len(a.listeners) == 0
	a.mu.RUnlock()

	if stopCh == nil || noListeners {
		return
	}

	job := frameJob{
		mat:         frame.Clone(),
		timestampMs: time.Now().UnixMilli(),
	}

	select {
	case frames <- job:
	case <-stopCh:
		job.mat.Close()
	}
}

// Subscribe registers a listener and returns its registration ID.
// Listeners may be added or removed at any time; notification order across
// listeners is unspecified.
func (a *Analyzer) Subscribe(l Listener) string {
	id := uuid.New().String()

	a.mu.Lock()
	a.listeners[id] = l
	a.mu.Unlock()

	return id
}

// Unsubscribe removes a previously registered listener.
func (a *Analyzer) Unsubscribe(id string) {
	a.mu.Lock()
	delete(a.listeners, id)
	a.mu.Unlock()
}

// ListenerCount returns the number of subscribed listeners.
func (a *Analyzer) ListenerCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.listeners)
}

// Output returns the current recognized text.
func (a *Analyzer) Output() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.output
}

// State returns the current pipeline state.
func (a *Analyzer) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// FPS returns the moving-average incoming frame rate estimate.
func (a *Analyzer) FPS() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.rate.FPS()
}

// Vocabulary returns the loaded vocabulary.
func (a *Analyzer) Vocabulary() *Vocabulary {
	return a.vocab
}

func (a *Analyzer) run(frames chan frameJob, stopCh, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-stopCh:
			return
		case job := <-frames:
			a.processFrame(job)
		}
	}
}

func (a *Analyzer) processFrame(job frameJob) {
	a.setState(StateAwaitingExtraction)

	a.mu.Lock()
	a.rate.Observe(job.timestampMs)
	a.mu.Unlock()

	observations, err := a.extractor.Extract(&job.mat, job.timestampMs)
	job.mat.Close()
	if err != nil {
		// Extraction failure is not fatal; the frame flows through as a
		// no-hand frame.
		log.Printf("Landmark extraction failed: %v", err)
		observations = nil
	}

	a.processObservations(observations)
}

// processObservations runs the analysis stages after extraction: hand
// assignment, window update, classification, debouncing, and publishing.
// Only the worker goroutine may call it.
func (a *Analyzer) processObservations(observations []detector.Observation) {
	left, right := AssignHands(observations)
	a.window.Push(observationAt(observations, left), observationAt(observations, right))

	// Frames with no hands skip classification and leave the prediction
	// history untouched.
	if len(observations) > 0 {
		a.setState(StateClassifying)
		a.classifyWindow()
	}

	a.publish()
}

func (a *Analyzer) classifyWindow() {
	scores, err := a.classifier.Scores(a.window.Values())
	if err != nil {
		// Fatal for this frame's classification only.
		log.Printf("Classification failed: %v", err)
		return
	}
	if len(scores) == 0 {
		log.Printf("Classifier returned no scores")
		return
	}

	top := floats.MaxIdx(scores)
	a.history.Push(top)

	class, stable := a.history.Stable()
	if !stable || class == BackgroundClass {
		// Output is sticky: disagreement and unanimous background both leave
		// the previously shown label in place.
		return
	}

	label, ok := a.vocab.Label(class)
	if !ok {
		log.Printf("Classifier chose class %d with no vocabulary label", class)
		return
	}

	a.mu.Lock()
	a.output = label
	a.mu.Unlock()
}

// publish delivers the current output to every listener exactly once for the
// analyzed frame, regardless of whether it changed.
func (a *Analyzer) publish() {
	a.setState(StatePublishing)

	a.mu.RLock()
	output := a.output
	listeners := make([]Listener, 0, len(a.listeners))
	for _, l := range a.listeners {
		listeners = append(listeners, l)
	}
	a.mu.RUnlock()

	for _, l := range listeners {
		l(output)
	}

	a.setState(StateIdle)
}

func (a *Analyzer) setState(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

func observationAt(observations []detector.Observation, i int) *detector.Observation {
	if i == NoHand {
		return nil
	}
	return &observations[i]
}
