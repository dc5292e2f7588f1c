package ws

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// clientIDCounter gives each client a stable ordering key for broadcast
// iteration.
var clientIDCounter atomic.Uint64

// Client pumps messages between one websocket connection and the hub.
// A connection whose token expires mid-lifetime is not re-checked; it was
// authorized at the handshake and stays connected until it drops.
type Client struct {
	id       uint64
	username string
	hub      *Hub
	conn     *websocket.Conn
	send     chan Message
	logger   *slog.Logger
}

// NewClient wraps an accepted, already-authorized connection. The
// username is carried for logging only.
func NewClient(hub *Hub, conn *websocket.Conn, username string) *Client {
	return &Client{
		id:       clientIDCounter.Add(1),
		username: username,
		hub:      hub,
		conn:     conn,
		send:     make(chan Message, 64),
		logger:   hub.logger,
	}
}

// Start registers the client and begins its read and write pumps.
func (c *Client) Start() {
	c.hub.register(c)
	go c.writePump()
	go c.readPump()
}

// readPump consumes inbound frames. The only recognized client message is
// the keepalive ping, answered with a pong carrying the current time.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("unexpected websocket close", "username", c.username, "error", err)
			}
			return
		}
		if msg.Type == MessageTypePing {
			pong := Message{
				Type:      MessageTypePong,
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			}
			select {
			case c.send <- pong:
			default:
			}
		}
	}
}

// writePump forwards queued messages and keeps the connection alive with
// protocol-level pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
