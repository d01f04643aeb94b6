package bridge

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// client is one renderer connection. All writes happen on writeLoop, the
// connection does not support concurrent writers.
type client struct {
	conn   *websocket.Conn
	remote string

	mu        sync.Mutex
	send      chan Message
	done      chan struct{}
	closeOnce sync.Once
}

// enqueue queues a message without blocking. It reports false when the
// client's queue is full.
func (c *client) enqueue(message Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isClosed() {
		return true
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

func (c *client) writeLoop(timeout time.Duration) {
	defer c.conn.Close()
	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
			if err := c.conn.WriteJSON(message); err != nil {
				logger.Debug("failed to write to renderer", "remote", c.remote, "error", err)
				c.close()
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *client) isClosed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
