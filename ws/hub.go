// Package ws implements the dashboard push channel: a hub that fans
// server events out to every connected browser. The channel carries
// business data one way (server to client); the only inbound traffic is a
// keepalive ping.
package ws

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Message types pushed to clients.
const (
	MessageTypeTime         = "time"
	MessageTypePing         = "ping"
	MessageTypePong         = "pong"
	MessageTypeKanban       = "kanban_update"
	MessageTypeNotification = "notification"
)

// Message is one frame on the push channel.
type Message struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Hub owns the set of active connections and broadcasts messages to all
// of them. Connections join only after the upgrade handshake has been
// authorized; the hub itself performs no auth. All mutation of the
// connection set goes through the hub's mutex, so the hub is safe under
// Go's parallel request handling.
type Hub struct {
	mu        sync.RWMutex
	clients   map[*Client]bool
	broadcast chan Message
	logger    *slog.Logger
}

// NewHub returns a hub ready for Run.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:   make(map[*Client]bool),
		broadcast: make(chan Message, 256),
		logger:    logger.With("component", "ws-hub"),
	}
}

// Run drains the broadcast queue until ctx is canceled, then closes every
// client and returns ctx.Err().
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			closed := h.closeAllClients()
			h.logger.Info("push hub stopped", "clients_closed", closed)
			return ctx.Err()
		case msg := <-h.broadcast:
			h.broadcastToClients(msg)
		}
	}
}

// Broadcast queues a message for every active connection. If the queue is
// full the message is dropped; the push channel is best-effort by design.
func (h *Hub) Broadcast(messageType string, data any) {
	msg := Message{
		Type:      messageType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("broadcast queue full, dropping message", "message_type", messageType)
	}
}

// ClientCount returns the number of active connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	total := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("push client connected", "username", c.username, "total_clients", total)
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	total := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("push client disconnected", "username", c.username, "total_clients", total)
}

// broadcastToClients delivers msg to every client in a stable order and
// prunes any client whose send queue is full (the peer is gone or stuck).
// Broadcast never blocks on a dead peer.
func (h *Hub) broadcastToClients(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })

	var toRemove []*Client
	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			toRemove = append(toRemove, c)
		}
	}
	for _, c := range toRemove {
		close(c.send)
		delete(h.clients, c)
	}
}

func (h *Hub) closeAllClients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.clients)
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	return n
}
