// Package server provides the HTTP surface for the mudra sign recognition system.
package server

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/ayusman/mudra/internal/analyze"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
)

// Controller exposes the recognition pipeline's enable/disable switch.
type Controller interface {
	SetEnabled(enabled bool)
	IsEnabled() bool
}

// Config holds the server configuration. Nil fields disable the
// corresponding endpoints.
type Config struct {
	StaticDir  string
	Store      *store.Store
	Camera     capture.Camera
	Analyzer   *analyze.Analyzer
	Controller Controller
}

// Server represents the HTTP server for the mudra application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		sessionsHandler := api.NewSessionsHandler(s.config.Store)
		s.mux.Handle("/api/sessions", sessionsHandler)
		s.mux.Handle("/api/sessions/", sessionsHandler)
	}

	if s.config.Analyzer != nil {
		s.mux.HandleFunc("/api/vocabulary", s.handleVocabulary)

		outputHandler := NewOutputHandler(s.config.Analyzer)
		s.mux.Handle("/api/output", outputHandler)
	}

	if s.config.Controller != nil {
		s.mux.HandleFunc("/api/control", s.handleControl)
	}

	if s.config.Camera != nil {
		streamHandler := NewStreamHandler(s.config.Camera)
		s.mux.Handle("/api/stream", streamHandler)
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	if s.config.Analyzer != nil {
		response["fps"] = s.config.Analyzer.FPS()
		response["state"] = s.config.Analyzer.State().String()
	}

	writeJSON(w, http.StatusOK, response)
}

// handleVocabulary handles GET requests to /api/vocabulary.
func (s *Server) handleVocabulary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	vocab := s.config.Analyzer.Vocabulary()

	type entry struct {
		Index int    `json:"index"`
		Label string `json:"label"`
	}

	entries := make([]entry, 0, vocab.Size())
	for index, label := range vocab.Entries() {
		entries = append(entries, entry{Index: index, Label: label})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Index < entries[j].Index })

	writeJSON(w, http.StatusOK, map[string]interface{}{"classes": entries})
}

// handleControl handles GET and POST requests to /api/control.
func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]bool{"enabled": s.config.Controller.IsEnabled()})

	case http.MethodPost:
		var req struct {
			Enabled bool `json:"enabled"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		s.config.Controller.SetEnabled(req.Enabled)
		writeJSON(w, http.StatusOK, map[string]bool{"enabled": s.config.Controller.IsEnabled()})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
