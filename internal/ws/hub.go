package ws

import (
	"encoding/json"
	"sync"

	"kanban/internal/domain"
	"kanban/internal/logger"
)

// Hub tracks live connections per user and fans task events out to them.
// A user may hold several connections (one per open client).
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	closed  bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*Client]struct{})}
}

// Register adds c to the hub. It returns false once the hub is closed.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
	logger.Debug("ws client registered", "user_id", c.UserID, "connections", len(set))
	return true
}

// Unregister removes c and closes its send channel. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
	close(c.Send)
	logger.Debug("ws client unregistered", "user_id", c.UserID)
}

// Publish sends ev to every connection of every listed user. A client whose
// buffer is full is dropped rather than blocking the caller.
func (h *Hub) Publish(userIDs []string, ev domain.TaskEvent) {
	msg, err := json.Marshal(ev)
	if err != nil {
		logger.Error("ws marshal event", "error", err)
		return
	}

	var slow []*Client

	h.mu.RLock()
	seen := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		for c := range h.clients[id] {
			select {
			case c.Send <- msg:
			default:
				slow = append(slow, c)
			}
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		logger.Warn("ws client too slow, dropping", "user_id", c.UserID)
		h.Unregister(c)
	}
}

// Connections returns the number of live connections for userID.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Close disconnects every client and refuses new registrations.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for userID, set := range h.clients {
		for c := range set {
			close(c.Send)
		}
		delete(h.clients, userID)
	}
}
