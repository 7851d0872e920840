package inspect

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait   = 10 * time.Second
	pingPeriod  = 30 * time.Second
	clientQueue = 64
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// hub fans messages out to websocket clients. A client that does not keep up loses messages.
type hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	dropped uint64
	closed  bool
	log     *logrus.Entry
}

func newHub(log *logrus.Entry) *hub {
	return &hub{clients: make(map[*client]struct{}), log: log}
}

// register starts serving conn; hello is the first message the client gets.
func (h *hub) register(conn *websocket.Conn, hello []byte) *client {
	c := &client{conn: conn, send: make(chan []byte, clientQueue)}
	c.send <- hello

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(c.send)
	} else {
		h.clients[c] = struct{}{}
		h.mu.Unlock()
	}

	go h.writePump(c)
	go h.readPump(c)

	return c
}

func (h *hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *hub) broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.dropped++
		}
	}
}

func (h *hub) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *hub) droppedCount() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.unregister(c)
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.log.WithError(err).Debug("inspect: ws write failed")
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.log.WithError(err).Debug("inspect: ws ping failed")
				return
			}
		}
	}
}

// readPump drains the connection so control frames are handled, until the peer goes away.
func (h *hub) readPump(c *client) {
	defer h.unregister(c)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
