// Package api provides HTTP API handlers for the mudra sign recognition system.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/store"
)

// SessionsHandler handles HTTP requests for session and transcript resources.
//
// Routes:
//
//	GET    /api/sessions                      list sessions
//	POST   /api/sessions                      create a session
//	GET    /api/sessions/{id}                 fetch one session
//	DELETE /api/sessions/{id}                 delete a session and its transcript
//	GET    /api/sessions/{id}/recognitions    fetch a session's transcript
type SessionsHandler struct {
	store *store.Store
}

// NewSessionsHandler creates a new SessionsHandler with the given store.
func NewSessionsHandler(s *store.Store) *SessionsHandler {
	return &SessionsHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests.
func (h *SessionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		// Collection endpoint: /api/sessions
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if id, ok := strings.CutSuffix(path, "/recognitions"); ok {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.listRecognitions(w, r, id)
		return
	}

	// Item endpoint: /api/sessions/{id}
	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

type sessionResponse struct {
	ID        string `json:"id"`
	StartedAt string `json:"started_at"`
	EndedAt   string `json:"ended_at,omitempty"`
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

type recognitionResponse struct {
	ID           int64  `json:"id"`
	ClassIndex   int    `json:"class_index"`
	Label        string `json:"label"`
	RecognizedAt string `json:"recognized_at"`
}

type listRecognitionsResponse struct {
	SessionID    string                `json:"session_id"`
	Recognitions []recognitionResponse `json:"recognitions"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *SessionsHandler) list(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.Sessions().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	response := listSessionsResponse{Sessions: make([]sessionResponse, 0, len(sessions))}
	for _, sess := range sessions {
		response.Sessions = append(response.Sessions, toSessionResponse(sess))
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *SessionsHandler) create(w http.ResponseWriter, r *http.Request) {
	sess := &store.Session{
		ID:        uuid.New().String(),
		StartedAt: time.Now(),
	}

	if err := h.store.Sessions().Create(sess); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, toSessionResponse(sess))
}

func (h *SessionsHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to fetch session")
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

func (h *SessionsHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Sessions().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionsHandler) listRecognitions(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := h.store.Sessions().GetByID(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to fetch session")
		return
	}

	recognitions, err := h.store.Recognitions().ListBySession(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list recognitions")
		return
	}

	response := listRecognitionsResponse{
		SessionID:    id,
		Recognitions: make([]recognitionResponse, 0, len(recognitions)),
	}
	for _, rec := range recognitions {
		response.Recognitions = append(response.Recognitions, recognitionResponse{
			ID:           rec.ID,
			ClassIndex:   rec.ClassIndex,
			Label:        rec.Label,
			RecognizedAt: rec.RecognizedAt.Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, response)
}

func toSessionResponse(sess *store.Session) sessionResponse {
	resp := sessionResponse{
		ID:        sess.ID,
		StartedAt: sess.StartedAt.Format(time.RFC3339),
	}
	if sess.EndedAt != nil {
		resp.EndedAt = sess.EndedAt.Format(time.RFC3339)
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
