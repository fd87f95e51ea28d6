// Package stream broadcasts simulation frames to websocket subscribers.
package stream

import (
	"net/http"
	"sync"
	"time"

	"firefront/internal/core"

	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

// Hub fans out JSON frames to every connected client. New clients receive
// the most recent frame immediately.
type Hub struct {
	log      core.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
	last    any
	closed  bool
}

// NewHub returns an empty hub. A nil logger discards output.
func NewHub(log core.Logger) *Hub {
	if log == nil {
		log = core.NopLogger()
	}
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// ServeHTTP upgrades the request and keeps the client registered until it
// disconnects. Inbound messages are ignored.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("websocket upgrade from %s: %v", r.RemoteAddr, err)
		return
	}
	defer conn.Close()

	// The write lock is held until the initial frame is out, so no published
	// frame overtakes it. Nobody else sees the lock yet; taking it under h.mu
	// never blocks.
	lock := &sync.Mutex{}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	lock.Lock()
	h.clients[conn] = lock
	last := h.last
	h.mu.Unlock()
	var initErr error
	if last != nil {
		initErr = writeFrame(conn, last)
	}
	lock.Unlock()
	h.log.Infof("stream client %s connected", r.RemoteAddr)

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		h.log.Infof("stream client %s disconnected", r.RemoteAddr)
	}()

	if initErr != nil {
		return
	}
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Publish sends v to every client and drops clients whose write fails.
// Clients that connect after v became the latest frame receive it on
// connect instead.
func (h *Hub) Publish(v any) {
	type client struct {
		conn *websocket.Conn
		lock *sync.Mutex
	}
	h.mu.Lock()
	h.last = v
	targets := make([]client, 0, len(h.clients))
	for conn, lock := range h.clients {
		targets = append(targets, client{conn, lock})
	}
	h.mu.Unlock()

	var failed []*websocket.Conn
	for _, c := range targets {
		if err := write(c.conn, c.lock, v); err != nil {
			h.log.Debugf("stream write: %v", err)
			failed = append(failed, c.conn)
		}
	}

	if len(failed) > 0 {
		h.mu.Lock()
		for _, conn := range failed {
			delete(h.clients, conn)
			conn.Close()
		}
		h.mu.Unlock()
	}
}

// Clients reports the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client. Later connections are refused.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for conn, lock := range h.clients {
		lock.Lock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"),
			time.Now().Add(writeTimeout))
		lock.Unlock()
		conn.Close()
		delete(h.clients, conn)
	}
}

func write(conn *websocket.Conn, lock *sync.Mutex, v any) error {
	lock.Lock()
	defer lock.Unlock()
	return writeFrame(conn, v)
}

func writeFrame(conn *websocket.Conn, v any) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}
