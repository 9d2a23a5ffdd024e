// Package websocket pushes dataset lifecycle events to dashboard clients so
// they can refetch after a reload instead of polling.
package websocket

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// EventDatasetReloaded is sent after every successful load cycle.
const EventDatasetReloaded = "dataset_reloaded"

// Event is the message envelope pushed to subscribers.
type Event struct {
	Type      string      `json:"type"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Hub manages websocket subscribers and broadcasts events to them.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
}

// NewHub creates a hub with the given logger.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger: logger.With(slog.String("component", "websocket_hub")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The dashboard frontend may be served from another origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP upgrades the request and registers the connection as a
// subscriber until it closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("remote_addr", r.RemoteAddr))
		return
	}

	h.register(conn)
	h.logger.InfoContext(r.Context(), "websocket client connected",
		slog.String("remote_addr", r.RemoteAddr),
		slog.Int("client_count", h.ClientCount()))

	// Drain incoming frames; the hub is broadcast-only.
	go func() {
		defer h.unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// BroadcastReload notifies all subscribers that the dataset was rebuilt.
func (h *Hub) BroadcastReload(recordCount, clientCount int) {
	h.broadcast(Event{
		Type:      EventDatasetReloaded,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data: map[string]int{
			"record_count": recordCount,
			"client_count": clientCount,
		},
	})
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

// broadcast sends the event to every subscriber, dropping connections that
// fail to accept the write.
func (h *Hub) broadcast(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		if err := conn.WriteJSON(event); err != nil {
			h.logger.Warn("dropping unresponsive websocket client",
				slog.String("error", err.Error()))
			delete(h.clients, conn)
			conn.Close()
		}
	}
}
