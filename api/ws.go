package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/knocoin/console/pkg/store"
)

const (
	writeTimeout  = 10 * time.Second
	pingInterval  = 30 * time.Second
	maxClientRead = 512
)

// wsClient pairs a connection with a write mutex. gorilla/websocket allows
// only one concurrent writer per connection, and snapshots and keepalive
// pings come from different goroutines.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

func (c *wsClient) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

// Hub fans store snapshots out to connected browser sessions. The browser
// never writes application messages; its read side only serves to detect
// disconnects.
type Hub struct {
	store    *store.Store
	upgrader websocket.Upgrader
	logger   *logrus.Logger

	mu      sync.Mutex
	clients map[*wsClient]bool
	closed  bool
}

func NewHub(st *store.Store, logger *logrus.Logger) *Hub {
	return &Hub{
		store: st,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 10 * time.Second,
			// The console server already allows any origin via CORS.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*wsClient]bool),
	}
}

// HandleWS upgrades the request and streams snapshots until the client goes
// away or the hub closes.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Error("Failed to upgrade websocket")
		return
	}
	client := &wsClient{conn: conn}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[client] = true
	h.mu.Unlock()

	// Initial snapshot so a new session renders without waiting for the
	// next change.
	h.send(client, h.store.State())

	go h.keepAlive(client)
	go h.readLoop(client)
}

// Broadcast pushes the current snapshot to every connected session.
func (h *Hub) Broadcast() {
	snap := h.store.State()

	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	for _, client := range clients {
		h.send(client, snap)
	}
}

func (h *Hub) send(client *wsClient, v interface{}) {
	if err := client.writeJSON(v); err != nil {
		h.drop(client)
	}
}

func (h *Hub) keepAlive(client *wsClient) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		h.mu.Lock()
		_, ok := h.clients[client]
		h.mu.Unlock()
		if !ok {
			return
		}
		if err := client.ping(); err != nil {
			h.drop(client)
			return
		}
	}
}

func (h *Hub) readLoop(client *wsClient) {
	client.conn.SetReadLimit(maxClientRead)
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			h.drop(client)
			return
		}
	}
}

func (h *Hub) drop(client *wsClient) {
	h.mu.Lock()
	delete(h.clients, client)
	h.mu.Unlock()
	client.conn.Close()
}

// Close disconnects all sessions and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*wsClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.clients = make(map[*wsClient]bool)
	h.mu.Unlock()

	for _, client := range clients {
		client.conn.Close()
	}
}
