package gateway

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"clipstream.com/cmd/model"
)

// Frame is the wire envelope for every message pushed over a notification
// socket.
type Frame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Hub tracks the live sockets per user. A user may hold several sockets at
// once (phone and browser); a push fans out to all of them.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[int64]map[*Client]bool)}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*Client]bool)
		h.clients[c.userID] = set
	}
	set[c] = true
}

// unregister removes the socket and signals its write loop. The send
// channel is never closed: a Push racing a disconnect may still buffer a
// frame into it, and sending on a closed channel would panic the consumer
// goroutine.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if set[c] {
		delete(set, c)
		close(c.done)
	}
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
}

// Push delivers a notification to every live socket of the user. A socket
// whose send buffer is full is a slow consumer and gets dropped; the
// notification is already durable in MySQL, so nothing is lost.
func (h *Hub) Push(userID int64, n *model.Notification) {
	payload, err := json.Marshal(Frame{Type: "notification", Data: n})
	if err != nil {
		logrus.Errorf("gateway: marshal notification %d: %v", n.NotificationID, err)
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.send <- payload:
		default:
			logrus.Warnf("gateway: dropping slow connection for user %d", userID)
			h.unregister(c)
		}
	}
}

// ConnectionCount reports live sockets for a user.
func (h *Hub) ConnectionCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
