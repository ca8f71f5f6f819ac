// Package transport owns the websocket side of a player session: one Client
// per connection with a read pump, a write pump behind a buffered send
// channel, and a Hub resolving connection ids to clients for fan-out.
package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/songloop-games/songloop/internal/hashutil"
	"github.com/songloop-games/songloop/internal/logging"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 256
)

// Gateway is the session owner the transport reports to. The coordinator
// implements it.
type Gateway interface {
	Connected(c *Client)
	Intent(connID string, raw []byte)
	Disconnected(connID string)
}

type Client struct {
	ID    string
	Token string

	conn *websocket.Conn
	send chan []byte
	gw   Gateway

	logger *zap.SugaredLogger
}

func NewClient(conn *websocket.Conn, gw Gateway, logger *zap.SugaredLogger) *Client {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	id := uuid.NewString()
	return &Client{
		ID:     id,
		Token:  hashutil.SessionToken(),
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		gw:     gw,
		logger: logger.Named("client").With("conn", id),
	}
}

// Run services the connection until it drops. Blocks in the read pump; the
// write pump runs alongside. The gateway hears about the disconnect exactly
// once, after the read pump exits.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// Send queues a frame without blocking. A full buffer means the client
// cannot keep up; the connection is dropped rather than stalling the game.
func (c *Client) Send(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		c.logger.Warnf("send buffer full, dropping connection")
		_ = c.conn.Close()
		return false
	}
}

func (c *Client) Close() {
	_ = c.conn.Close()
}

func (c *Client) readPump() {
	defer func() {
		c.gw.Disconnected(c.ID)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warnf("unexpected close: %v", err)
			}
			return
		}
		c.gw.Intent(c.ID, raw)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
