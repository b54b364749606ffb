package chat

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var errQueueFull = errors.New("send queue full")

// Client is one live connection for one user. The registry owns it from
// Register until the close path removes it; everything written to the user
// goes through the Send queue and a single writer goroutine, which is what
// keeps per-receiver delivery order.
type Client struct {
	ConnID string
	UserID string

	ws   *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	done      chan struct{}

	// invoked once, after the socket is shut down
	onClose func(*Client)
}

func NewClient(connID, userID string, ws *websocket.Conn, queueSize int) *Client {
	return &Client{
		ConnID: connID,
		UserID: userID,
		ws:     ws,
		send:   make(chan []byte, queueSize),
		done:   make(chan struct{}),
	}
}

// Enqueue hands a frame to the writer goroutine without blocking. A full
// queue or a closed client is an error; the caller decides whether that
// kills the connection.
func (c *Client) Enqueue(data []byte) error {
	select {
	case <-c.done:
		return errors.New("client closed")
	default:
	}
	select {
	case c.send <- data:
		return nil
	default:
		return errQueueFull
	}
}

// Close shuts the connection down exactly once and fires the onClose hook.
// Safe to call from any goroutine, including concurrent dispatch and
// broadcast paths.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.ws != nil {
			_ = c.ws.Close()
		}
		if c.onClose != nil {
			c.onClose(c)
		}
	})
}

// writePump drains the send queue onto the socket and keeps the ping timer.
// Any write error tears the client down.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			if err := c.writeMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.writeMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) writeMessage(mt int, data []byte) error {
	if c.ws == nil {
		return errors.New("nil conn")
	}
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(mt, data)
}
