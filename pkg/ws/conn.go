package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Connection reads text frames in the background and serializes writes.
type Connection struct {
	conn *websocket.Conn

	// R is closed when the peer disconnects or a read fails.
	R chan []byte

	done       chan struct{}
	writeMutex sync.Mutex
	closeOnce  sync.Once
}

func NewConn(conn *websocket.Conn) *Connection {
	c := &Connection{
		conn: conn,
		R:    make(chan []byte),
		done: make(chan struct{}),
	}

	go c.runReader()
	return c
}

func (c *Connection) runReader() {
	defer close(c.R)

	for {
		messageType, p, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		if messageType != websocket.TextMessage {
			continue
		}

		select {
		case c.R <- p:
		case <-c.done:
			return
		}
	}
}

func (c *Connection) Write(msg any) error {
	c.writeMutex.Lock()
	defer c.writeMutex.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	switch t := msg.(type) {
	case string:
		return c.conn.WriteMessage(websocket.TextMessage, []byte(t))
	case []byte:
		return c.conn.WriteMessage(websocket.TextMessage, t)
	default:
		return c.conn.WriteJSON(t)
	}
}

func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)

		c.writeMutex.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
		c.writeMutex.Unlock()

		err = c.conn.Close()
	})

	return err
}
