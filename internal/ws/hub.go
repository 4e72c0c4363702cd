package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/niouspark-cmd/student-hub-sub000/internal/logger"
)

// Hub manages the connected runner feed sockets. Every connected runner
// receives mission events; the feed is advisory only, the conditional
// assignment in storage stays the sole arbiter of the accept race.
type Hub struct {
	mu         sync.RWMutex
	clients    map[uuid.UUID]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	ctx        context.Context
}

// NewHub creates the hub.
func NewHub(ctx context.Context) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 32),
		ctx:        ctx,
	}
}

// Run drives the hub loop until the context ends.
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case payload := <-h.broadcast:
			h.sendAll(payload)
		}
	}
}

// Register adds a connected runner socket.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a runner socket.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// BroadcastEvent fans an event out to every connected runner. The wire format
// is {"type": event, "data": payload}.
func (h *Hub) BroadcastEvent(event string, data any) error {
	raw, err := json.Marshal(map[string]any{
		"type": event,
		"data": data,
	})
	if err != nil {
		return fmt.Errorf("ws: marshal event: %w", err)
	}

	select {
	case h.broadcast <- raw:
	case <-h.ctx.Done():
	}
	return nil
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.runnerID]; !ok {
		h.clients[client.runnerID] = make(map[*Client]struct{})
	}
	h.clients[client.runnerID][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.runnerID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clients, client.runnerID)
		}
	}
}

func (h *Hub) sendAll(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conns := range h.clients {
		for client := range conns {
			select {
			case client.send <- payload:
			default:
				// Slow consumer; drop the connection rather than block the hub.
				go client.Close()
			}
		}
	}
}

// Connected reports whether the runner has at least one open feed socket.
func (h *Hub) Connected(runnerID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[runnerID]) > 0
}

func logClose(err error) {
	if err != nil {
		logger.Log.WithError(err).Debug("ws: connection close")
	}
}
