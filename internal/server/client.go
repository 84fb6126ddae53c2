package server

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const maxMessageSize = 4 << 10

// Client is one websocket viewer attached to a ranch.
type Client struct {
	id      string
	ranchID string
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	once    sync.Once

	writeTimeout time.Duration
	readTimeout  time.Duration
}

func newClient(conn *websocket.Conn, ranchID string, opts Options) *Client {
	return &Client{
		id:           uuid.NewString(),
		ranchID:      ranchID,
		conn:         conn,
		send:         make(chan []byte, opts.SendQueueSize),
		done:         make(chan struct{}),
		writeTimeout: opts.WriteTimeout,
		readTimeout:  opts.ReadTimeout,
	}
}

// enqueue queues msg for the write pump without blocking. A client whose
// queue is full is disconnected.
func (c *Client) enqueue(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("encoding stream message", "client", c.id, "type", msg.Type, "error", err)
		return
	}

	select {
	case <-c.done:
	case c.send <- data:
	default:
		slog.Warn("client send queue full, disconnecting",
			"client", c.id,
			"ranch", c.ranchID,
			"queue", cap(c.send))
		c.close()
	}
}

// close signals both pumps to stop. Safe to call many times.
func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
	})
}

// readPump reads client messages until the connection fails or goes silent
// for readTimeout. Pongs extend the deadline.
func (c *Client) readPump(handle func(data []byte)) {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.readTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.readTimeout))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket closed unexpectedly", "client", c.id, "error", err)
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(c.readTimeout))
		handle(data)
	}
}

// writePump drains the send queue and pings the peer. It owns the
// connection and closes it on exit.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.readTimeout * 9 / 10)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Debug("websocket write failed", "client", c.id, "error", err)
				c.close()
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				slog.Debug("websocket ping failed", "client", c.id, "error", err)
				c.close()
				return
			}

		case <-c.done:
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.writeTimeout))
			return
		}
	}
}
