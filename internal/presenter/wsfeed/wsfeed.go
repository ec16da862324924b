// Package wsfeed streams audit events to connected clients over
// WebSocket, a direct port of pkg/api/websocket.go's WSHub with
// TARSy's session-scoped messages replaced by SIA's audit categories
// (proposal/execution/error/decision).
package wsfeed

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is one event pushed to every connected client.
type Message struct {
	Category string `json:"category"` // proposal | execution | error | decision | connected
	Data     any    `json:"data,omitempty"`
}

// Hub manages WebSocket connections and fans a broadcast channel out
// to all of them.
type Hub struct {
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan Message
	mu         sync.RWMutex
}

// NewHub creates a Hub. Call Run in a goroutine before serving
// HandleWS.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan Message, 256),
	}
}

// Run drives the hub's event loop until stop is closed.
func (h *Hub) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.clients {
				if err := conn.WriteJSON(msg); err != nil {
					slog.Warn("wsfeed: write failed, dropping client", "error", err)
					go func(c *websocket.Conn) { h.unregister <- c }(conn)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast queues an event for every connected client.
func (h *Hub) Broadcast(category string, data any) {
	select {
	case h.broadcast <- Message{Category: category, Data: data}:
	default:
		slog.Warn("wsfeed: broadcast channel full, dropping event", "category", category)
	}
}

// HandleWS upgrades an HTTP request to a WebSocket connection and
// registers it with the hub.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("wsfeed: upgrade failed", "error", err)
		return
	}

	h.register <- conn
	conn.WriteJSON(Message{Category: "connected"})

	go func() {
		defer func() { h.unregister <- conn }()
		for {
			var msg map[string]any
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					slog.Warn("wsfeed: connection error", "error", err)
				}
				return
			}
		}
	}()
}
