package app

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/analyze"
	"github.com/ayusman/mudra/internal/store"
)

// Recorder persists recognized signs as a session transcript. It is fed the
// analyzer's output once per frame and writes a recognition row only when the
// displayed label changes.
type Recorder struct {
	store      *store.Store
	classIndex map[string]int

	mu        sync.Mutex
	sessionID string
	lastLabel string
}

// NewRecorder creates a Recorder writing to the given store. The vocabulary
// is used to recover class indices from output labels.
func NewRecorder(s *store.Store, vocab *analyze.Vocabulary) *Recorder {
	classIndex := make(map[string]int, vocab.Size())
	for index, label := range vocab.Entries() {
		classIndex[label] = index
	}

	return &Recorder{
		store:      s,
		classIndex: classIndex,
	}
}

// Begin opens a new transcript session. Outputs observed before Begin or
// after End are not recorded.
func (r *Recorder) Begin() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess := &store.Session{
		ID:        uuid.New().String(),
		StartedAt: time.Now(),
	}
	if err := r.store.Sessions().Create(sess); err != nil {
		return err
	}

	r.sessionID = sess.ID
	r.lastLabel = ""
	return nil
}

// End closes the current transcript session.
func (r *Recorder) End() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sessionID == "" {
		return nil
	}

	err := r.store.Sessions().End(r.sessionID, time.Now())
	r.sessionID = ""
	return err
}

// SessionID returns the active session ID, or "" if no session is open.
func (r *Recorder) SessionID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionID
}

// OnOutput is an analyzer listener. It records a recognition when the output
// transitions to a new non-empty label.
func (r *Recorder) OnOutput(output string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sessionID == "" || output == "" || output == r.lastLabel {
		return
	}
	r.lastLabel = output

	class, ok := r.classIndex[output]
	if !ok {
		log.Printf("Recognized label %q has no vocabulary entry", output)
		return
	}

	rec := &store.Recognition{
		SessionID:    r.sessionID,
		ClassIndex:   class,
		Label:        output,
		RecognizedAt: time.Now(),
	}
	if err := r.store.Recognitions().Create(rec); err != nil {
		log.Printf("Failed to record recognition %q: %v", output, err)
	}
}
