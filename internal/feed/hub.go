// Package feed fans out record change events to connected websocket clients.
package feed

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/monocle-dev/timetrack/internal/observability/metrics"
)

const writeWait = 10 * time.Second

const (
	ContractCreated = "contract.created"
	ContractUpdated = "contract.updated"
	ContractDeleted = "contract.deleted"
	TimelogCreated  = "timelog.created"
	TimelogUpdated  = "timelog.updated"
	TimelogDeleted  = "timelog.deleted"
)

// Event describes a change to a row owned by OwnerID.
type Event struct {
	Type    string `json:"type"`
	ID      uint   `json:"id"`
	OwnerID uint   `json:"owner_id"`
}

// Conn is the part of *websocket.Conn the hub writes through.
type Conn interface {
	SetWriteDeadline(t time.Time) error
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// sendBuffer is how many events may wait for a slow subscriber before it is dropped.
const sendBuffer = 16

type client struct {
	userID uint
	staff  bool
	mu     sync.Mutex
	send   chan Event
	done   chan struct{}
}

// Hub tracks connections per subscriber. Events are delivered to the owner's
// connections and to every staff connection; nothing is queued for clients
// that are not connected.
type Hub struct {
	mu      sync.RWMutex
	clients map[Conn]*client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[Conn]*client)}
}

// Subscribe registers conn and starts its writer goroutine, which runs until
// Unsubscribe.
func (h *Hub) Subscribe(userID uint, staff bool, conn Conn) {
	c := &client{
		userID: userID,
		staff:  staff,
		send:   make(chan Event, sendBuffer),
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	h.clients[conn] = c
	count := len(h.clients)
	h.mu.Unlock()

	metrics.SetSubscribers(count)

	go h.deliver(conn, c)
}

func (h *Hub) Unsubscribe(conn Conn) {
	h.mu.Lock()
	c, exists := h.clients[conn]
	delete(h.clients, conn)
	count := len(h.clients)
	h.mu.Unlock()

	if exists {
		close(c.done)
		conn.Close()
		metrics.SetSubscribers(count)
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish queues ev for every recipient without waiting on the network.
// A subscriber whose queue is full is disconnected.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	recipients := make(map[Conn]*client)
	for conn, c := range h.clients {
		if c.staff || c.userID == ev.OwnerID {
			recipients[conn] = c
		}
	}
	h.mu.RUnlock()

	for conn, c := range recipients {
		select {
		case c.send <- ev:
		default:
			slog.Warn("dropping slow activity subscriber",
				slog.Uint64("user_id", uint64(c.userID)),
				slog.String("event", ev.Type))
			h.Unsubscribe(conn)
		}
	}
}

func (h *Hub) deliver(conn Conn, c *client) {
	for {
		select {
		case <-c.done:
			return
		case ev := <-c.send:
			if err := c.write(conn, func() error { return conn.WriteJSON(ev) }); err != nil {
				slog.Warn("dropping activity subscriber",
					slog.Uint64("user_id", uint64(c.userID)),
					slog.String("event", ev.Type),
					slog.Any("error", err))
				h.Unsubscribe(conn)
				return
			}
		}
	}
}

// Send writes a message to one subscribed connection.
func (h *Hub) Send(conn Conn, v interface{}) error {
	c, ok := h.lookup(conn)
	if !ok {
		return websocket.ErrCloseSent
	}
	return c.write(conn, func() error { return conn.WriteJSON(v) })
}

// Ping writes a ping control frame, serialized with event writes.
func (h *Hub) Ping(conn Conn) error {
	c, ok := h.lookup(conn)
	if !ok {
		return websocket.ErrCloseSent
	}
	return c.write(conn, func() error { return conn.WriteMessage(websocket.PingMessage, nil) })
}

func (h *Hub) lookup(conn Conn) (*client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[conn]
	return c, ok
}

// write holds the per-connection lock; websocket connections allow one writer.
func (c *client) write(conn Conn, fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return fn()
}
