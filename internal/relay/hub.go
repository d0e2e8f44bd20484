// Package relay tracks which users hold a live websocket connection and
// pushes events to them. Delivery is best effort: an event for a user with
// no live connection is dropped.
package relay

import (
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
)

const (
	EventOnlineUsers     = "getOnlineUsers"
	EventNewMessage      = "newMessage"
	EventNewNotification = "new_notification"
)

// Event is the JSON frame written to clients.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// Hub owns the user -> connection map. A user holds at most one mapped
// connection; a newer connection replaces the older one in the map.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[string]*Client // connection id -> client
	users   map[string]string  // user id -> connection id
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:  logger,
		clients: make(map[string]*Client),
		users:   make(map[string]string),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.users[c.UserID] = c.ID
	h.mu.Unlock()

	h.logger.Info("relay: connected", "user_id", c.UserID, "conn_id", c.ID)
	h.broadcastOnlineUsers()
}

// Unregister drops the connection. The user mapping is only removed when it
// still points at this connection.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	c, ok := h.clients[connID]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, connID)
	if h.users[c.UserID] == connID {
		delete(h.users, c.UserID)
	}
	c.closeSend()
	h.mu.Unlock()

	h.logger.Info("relay: disconnected", "user_id", c.UserID, "conn_id", connID)
	h.broadcastOnlineUsers()
}

func (h *Hub) Lookup(userID string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	connID, ok := h.users[userID]
	return connID, ok
}

// OnlineUsers returns the connected user ids in sorted order.
func (h *Hub) OnlineUsers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.onlineUsersLocked()
}

func (h *Hub) onlineUsersLocked() []string {
	out := make([]string, 0, len(h.users))
	for userID := range h.users {
		out = append(out, userID)
	}
	sort.Strings(out)
	return out
}

// Emit delivers event to userID's live connection. It reports whether the
// event was queued; false means the user is offline or its queue is full.
func (h *Hub) Emit(userID, event string, payload any) bool {
	frame, err := json.Marshal(Event{Name: event, Data: payload})
	if err != nil {
		h.logger.Error("relay: encode event failed", "err", err, "event", event)
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	connID, ok := h.users[userID]
	if !ok {
		return false
	}
	c, ok := h.clients[connID]
	if !ok {
		return false
	}
	if !c.enqueue(frame) {
		h.logger.Debug("relay: send queue full, event dropped", "user_id", userID, "event", event)
		return false
	}
	return true
}

func (h *Hub) broadcastOnlineUsers() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	frame, err := json.Marshal(Event{Name: EventOnlineUsers, Data: h.onlineUsersLocked()})
	if err != nil {
		h.logger.Error("relay: encode presence failed", "err", err)
		return
	}
	for _, c := range h.clients {
		if !c.enqueue(frame) {
			h.logger.Debug("relay: send queue full, presence dropped", "user_id", c.UserID)
		}
	}
}

// CloseAll closes every live connection. Used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.close()
	}
}
