// Package feed streams world frame snapshots to browser renderers over
// websockets. Snapshots are pushed after each committed tick, throttled so a
// fast sim loop does not flood slow clients; a client that cannot keep up is
// dropped rather than allowed to stall the broadcaster.
package feed

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/critterworld/internal/store"
)

// minInterval caps the outbound frame rate.
const minInterval = 100 * time.Millisecond

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// client is one connected renderer. Writes are serialized per connection.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub owns the client set and the broadcast loop.
type Hub struct {
	store    *store.Store
	snapshot func() any

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHub creates a hub. snapshot is invoked once per broadcast and must be
// safe to call from the hub goroutine (the world serializes it internally).
func NewHub(s *store.Store, snapshot func() any) *Hub {
	return &Hub{
		store:    s,
		snapshot: snapshot,
		clients:  make(map[*client]struct{}),
	}
}

// Run subscribes to store commits and broadcasts snapshots until ctx ends.
func (h *Hub) Run(ctx context.Context) {
	commits := h.store.Subscribe()
	last := time.Time{}
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-commits:
			if time.Since(last) < minInterval {
				continue
			}
			last = time.Now()
			h.broadcast(h.snapshot())
		}
	}
}

func (h *Hub) broadcast(frame any) {
	h.mu.Lock()
	list := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		list = append(list, c)
	}
	h.mu.Unlock()

	for _, c := range list {
		if err := c.send(frame); err != nil {
			slog.Debug("dropping feed client", "error", err)
			h.drop(c)
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.conn.Close()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.conn.Close()
	}
	h.clients = make(map[*client]struct{})
}

// ClientCount reports connected renderers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeWS upgrades an HTTP request into a feed connection. The first frame is
// sent immediately so a fresh client does not wait a tick for the world.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	if err := c.send(h.snapshot()); err != nil {
		h.drop(c)
		return
	}

	// Reads only serve to detect disconnects; the feed is one-way.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.drop(c)
				return
			}
		}
	}()
}
