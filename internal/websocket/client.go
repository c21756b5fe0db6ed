package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024

	sendBufferSize = 64
)

// clientCommand is the only inbound frame shape: clients manage their
// conversation subscriptions, everything else flows over HTTP.
type clientCommand struct {
	Action          string `json:"action"`
	ConversationKey string `json:"conversationKey"`
}

type Client struct {
	id     string
	userID uint
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte

	mu     sync.Mutex
	subs   map[string]bool
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uint) *Client {
	return &Client{
		id:     uuid.New().String(),
		userID: userID,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		subs:   make(map[string]bool),
	}
}

// Start registers the client with the hub and launches both pumps. It
// returns immediately; the connection lives until either pump exits.
func (c *Client) Start() {
	c.hub.register <- c
	go c.writePump()
	go c.readPump()
}

// enqueue hands a payload to the write pump. The check and the send hold
// the same lock closeSendChannel takes, so a concurrent close can never
// slip between them and turn the send into a write on a closed channel.
func (c *Client) enqueue(payload []byte) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	select {
	case c.send <- payload:
		c.mu.Unlock()
	default:
		c.mu.Unlock()
		// Slow consumer, drop the connection rather than block the hub.
		c.hub.log.Warn("Client send buffer full, disconnecting", "clientID", c.id, "userID", c.userID)
		c.hub.unregister <- c
	}
}

func (c *Client) closeSendChannel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) addConversation(key string) {
	c.mu.Lock()
	c.subs[key] = true
	c.mu.Unlock()
}

func (c *Client) removeConversation(key string) {
	c.mu.Lock()
	delete(c.subs, key)
	c.mu.Unlock()
}

func (c *Client) conversations() map[string]bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]bool, len(c.subs))
	for key := range c.subs {
		out[key] = true
	}
	return out
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Warn("Unexpected client disconnect", "clientID", c.id, "error", err)
			}
			return
		}

		var cmd clientCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			c.hub.log.Warn("Malformed client command", "clientID", c.id, "error", err)
			continue
		}

		switch cmd.Action {
		case "subscribe":
			c.hub.subscribe <- &subscription{client: c, key: cmd.ConversationKey, join: true}
		case "unsubscribe":
			c.hub.subscribe <- &subscription{client: c, key: cmd.ConversationKey, join: false}
		default:
			c.hub.log.Warn("Unknown client action", "clientID", c.id, "action", cmd.Action)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
