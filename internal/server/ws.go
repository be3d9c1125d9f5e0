package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/analyze"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// OutputHandler broadcasts the recognized output over WebSocket. It registers
// itself as an analyzer listener, so connected clients receive one message
// per analyzed frame.
type OutputHandler struct {
	analyzer *analyze.Analyzer
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
}

// NewOutputHandler creates an OutputHandler subscribed to the analyzer.
func NewOutputHandler(a *analyze.Analyzer) *OutputHandler {
	h := &OutputHandler{
		analyzer: a,
		clients:  make(map[*websocket.Conn]bool),
	}
	a.Subscribe(h.broadcast)
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *OutputHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// broadcast sends the current output to all connected clients.
func (h *OutputHandler) broadcast(output string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.clients) == 0 {
		return
	}

	msg, _ := json.Marshal(map[string]any{
		"output":    output,
		"fps":       h.analyzer.FPS(),
		"timestamp": time.Now().UnixMilli(),
	})

	for conn := range h.clients {
		conn.WriteMessage(websocket.TextMessage, msg)
	}
}
