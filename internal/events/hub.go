// Package events pushes task change notifications to websocket subscribers so
// a presentation layer knows when to re-render.
package events

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"taskboard/internal/models"
)

// Event types.
const (
	TypeReady        = "ready"
	TypeTasksChanged = "tasks_changed"
	TypeUrgentTasks  = "urgent_tasks"
)

// Event is one message on the change feed.
type Event struct {
	Type   string        `json:"type"`
	Op     string        `json:"op,omitempty"`
	TaskID int64         `json:"task_id,omitempty"`
	Stats  *models.Stats `json:"stats,omitempty"`
	Tasks  []models.Task `json:"tasks,omitempty"`
	At     time.Time     `json:"at"`
}

// Publisher accepts events for fan-out.
type Publisher interface {
	Publish(e Event)
}

// Hub tracks connected websocket clients and fans events out to them.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*Client
	upgrader websocket.Upgrader
	log      *slog.Logger
}

// NewHub creates a hub. An empty allowedOrigin accepts any Origin header.
func NewHub(allowedOrigin string, log *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		},
		log: log,
	}
}

// ServeHTTP upgrades the request and streams events until the client leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "err", err)
		return
	}

	c := newClient(uuid.NewString(), conn, h)
	h.register(c)
	c.queue(mustMarshal(Event{Type: TypeReady, At: time.Now()}))

	go c.writePump()
	c.readPump()
}

// Publish encodes e once and queues it for every client. Clients whose buffer
// is full are dropped.
func (h *Hub) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	msg, err := json.Marshal(e)
	if err != nil {
		h.log.Error("failed to encode event", "type", e.Type, "err", err)
		return
	}

	h.mu.RLock()
	var slow []*Client
	for _, c := range h.clients {
		if !c.queue(msg) {
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.Warn("dropping slow websocket client", "client", c.id)
		h.unregister(c)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[string]*Client)
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Debug("websocket client connected", "client", c.id, "clients", n)
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c.id]
	delete(h.clients, c.id)
	h.mu.Unlock()

	if ok {
		c.close()
		h.log.Debug("websocket client disconnected", "client", c.id)
	}
}

func mustMarshal(e Event) []byte {
	msg, err := json.Marshal(e)
	if err != nil {
		panic(err)
	}
	return msg
}
