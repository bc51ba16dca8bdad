package web

import (
	"encoding/json"
	"sync"

	"github.com/FocuswithJustin/JuniperSearch/internal/logging"
)

// Hub tracks live-search connections so server-wide events, such as the
// corpus becoming ready, reach every client.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]bool)}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()
	logging.WebSocketEvent("client_connected", n)
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()

	if ok {
		c.close()
		logging.WebSocketEvent("client_disconnected", n)
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends msg to every client. Clients whose queue is full are dropped.
func (h *Hub) Broadcast(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		logging.Error("broadcast_marshal_failed", "error", err.Error())
		return
	}

	h.mu.RLock()
	var slow []*Client
	for c := range h.clients {
		if !c.enqueue(data) {
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.unregister(c)
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*Client]bool)
	h.mu.Unlock()

	for c := range clients {
		c.close()
	}
}
