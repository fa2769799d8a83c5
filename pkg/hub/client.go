package hub

import (
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	// writeWait bounds every outbound write, pings included.
	writeWait = 10 * time.Second

	// pongWait is how long the connection may stay silent before it is
	// considered dead; pingPeriod must come in under it.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// maxInboundSize bounds inbound messages. Subscribers never send
	// payloads, so anything near this is a misbehaving peer.
	maxInboundSize = 512 * 1024
)

// Client is one websocket subscriber attached to a hub. The hub pushes
// messages into send; stream is the only goroutine writing to the
// connection, and the read side exists solely to service pongs and
// notice disconnects.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan Message
}

// NewClient creates a client and registers it with the hub.
func NewClient(h *Hub, conn *websocket.Conn) *Client {
	client := &Client{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan Message, 256),
	}
	h.register <- client
	return client
}

// ID returns the client's connection ID.
func (c *Client) ID() string {
	return c.id
}

// Run serves the subscriber until the connection closes. Call it from
// the websocket handler; it blocks.
func (c *Client) Run() {
	go c.stream()
	c.waitForClose()
}

// waitForClose drains inbound frames until the peer disappears, then
// unregisters the client.
func (c *Client) waitForClose() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxInboundSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// stream writes hub messages and keepalive pings. A closed send channel,
// set by the hub when it drops the client, ends the stream with a close
// frame.
func (c *Client) stream() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(msg.wsFrameType(), msg.Data); err != nil {
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
