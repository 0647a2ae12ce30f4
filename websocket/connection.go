// Package websocket hosts the websocket endpoint and publishes commands to
// connected clients.
// file: websocket/connection.go
package websocket

import (
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"gamepad-websocket/logger"
)

// WSConn is the subset of *websocket.Conn used by a Connection.
type WSConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	ReadMessage() (int, []byte, error)
	Close() error
	RemoteAddr() net.Addr
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
}

// ConnID identifies a connection inside the hub.
type ConnID uint64

// Sender delivers an encoded message to one client without blocking.
type Sender interface {
	Send(message []byte) bool
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 2048
	sendBuffer     = 256
)

// Connection is one websocket client.
type Connection struct {
	id   ConnID
	conn WSConn
	send chan []byte

	closeOnce sync.Once
	closed    chan struct{}
}

func newConnection(id ConnID, conn WSConn) *Connection {
	return &Connection{
		id:     id,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		closed: make(chan struct{}),
	}
}

// ID returns the hub handle of the connection.
func (c *Connection) ID() ConnID { return c.id }

// Send queues a message for the write pump. It returns false when the
// buffer is full or the connection is closed.
func (c *Connection) Send(message []byte) bool {
	select {
	case <-c.closed:
		return false
	default:
	}
	select {
	case c.send <- message:
		return true
	default:
		logger.Warn.Printf("[Connection.Send] dropping message for conn=%d addr=%v", c.id, c.conn.RemoteAddr())
		return false
	}
}

// Close shuts the underlying connection. Safe to call more than once.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		if err := c.conn.Close(); err != nil {
			logger.Debug.Printf("[Connection.Close] conn=%d: %v", c.id, err)
		}
	})
}

// readPump counts inbound frames until the peer goes away. The payload is
// ignored. onClose runs exactly once when the pump exits.
func (c *Connection) readPump(onData func(), onClose func()) {
	defer func() {
		c.Close()
		onClose()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn.Printf("[readPump] read error from conn=%d addr=%v: %v", c.id, c.conn.RemoteAddr(), err)
			}
			return
		}
		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}
		onData()
	}
}

// writePump drains the send queue and keeps the connection alive with pings.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn.Printf("[writePump] error writing to conn=%d: %v", c.id, err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Warn.Printf("[writePump] ping error for conn=%d: %v", c.id, err)
				return
			}

		case <-c.closed:
			return
		}
	}
}
