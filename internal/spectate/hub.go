package spectate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tui-2048/internal/games/t2048/engine"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Watchers never send payloads; anything larger is a misbehaving client.
	maxMessageSize = 512

	sendBuffer      = 256
	broadcastBuffer = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is what a watcher receives. Event is nil for the greeting sent on
// connect, which carries the current board only.
type Message struct {
	Stream string          `json:"stream"`
	Event  *engine.Event   `json:"event,omitempty"`
	Board  engine.Snapshot `json:"board"`
}

// client is one websocket watcher.
type client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	stream string
}

// Hub keeps the live streams and their watchers. Watcher bookkeeping belongs
// to the Run goroutine; the stream table has its own lock so HTTP handlers
// can read it.
type Hub struct {
	logger *log.Logger

	mu      sync.RWMutex
	streams map[string]*Stream

	// Owned by Run.
	watchers map[string]map[*client]bool

	broadcast  chan *Message
	register   chan *client
	unregister chan *client
	closing    chan string
	done       chan struct{} // closed when Run returns
}

// NewHub creates a hub. A nil logger discards output.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Hub{
		logger:     logger,
		streams:    make(map[string]*Stream),
		watchers:   make(map[string]map[*client]bool),
		broadcast:  make(chan *Message, broadcastBuffer),
		register:   make(chan *client),
		unregister: make(chan *client),
		closing:    make(chan string, 16),
		done:       make(chan struct{}),
	}
}

// Run is the hub's event loop. It returns when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, clients := range h.watchers {
				for c := range clients {
					h.unregisterClient(c)
				}
			}
			return nil

		case c := <-h.register:
			h.registerClient(c)

		case c := <-h.unregister:
			h.unregisterClient(c)

		case id := <-h.closing:
			for c := range h.watchers[id] {
				h.unregisterClient(c)
			}

		case msg := <-h.broadcast:
			h.broadcastMessage(msg)
		}
	}
}

// Streams returns the ids of the live streams, sorted.
func (h *Hub) Streams() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.streams))
	for id := range h.streams {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (h *Hub) stream(id string) (*Stream, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.streams[id]
	return s, ok
}

// publish queues msg for the watchers of its stream. A full queue drops the
// message; the next one carries the whole board anyway.
func (h *Hub) publish(msg *Message) {
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Debug("broadcast queue full, dropping", "stream", msg.Stream)
	}
}

// ServeWS upgrades the request and attaches the connection to stream id.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, id string) {
	s, ok := h.stream(id)
	if !ok {
		http.Error(w, "unknown stream", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "stream", id, "error", err)
		return
	}

	c := &client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		stream: id,
	}

	if greeting, err := json.Marshal(s.current()); err == nil {
		c.send <- greeting
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

func (h *Hub) registerClient(c *client) {
	if h.watchers[c.stream] == nil {
		h.watchers[c.stream] = make(map[*client]bool)
	}
	h.watchers[c.stream][c] = true

	h.logger.Info("watcher joined", "stream", c.stream, "watchers", len(h.watchers[c.stream]))
}

func (h *Hub) unregisterClient(c *client) {
	clients, ok := h.watchers[c.stream]
	if !ok || !clients[c] {
		return
	}
	delete(clients, c)
	close(c.send)

	if len(clients) == 0 {
		delete(h.watchers, c.stream)
	}

	h.logger.Info("watcher left", "stream", c.stream, "watchers", len(clients))
}

func (h *Hub) broadcastMessage(msg *Message) {
	clients, ok := h.watchers[msg.Stream]
	if !ok {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("cannot marshal message", "stream", msg.Stream, "error", err)
		return
	}

	for c := range clients {
		select {
		case c.send <- data:
		default:
			h.unregisterClient(c)
		}
	}
}

// readPump drains the connection so pongs and close frames are processed.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket error", "stream", c.stream, "error", err)
			}
			return
		}
	}
}

// writePump sends queued messages, one websocket frame each, and pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "stream ended"))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
