package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/systemlogs/folio/internal/errors"
	"github.com/systemlogs/folio/internal/logging"
	"github.com/systemlogs/folio/internal/validation"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed for the peer to answer a ping.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Buffered messages per client before it is dropped as too slow.
	sendBuffer = 16
)

// Message types sent to the live-reload script.
const (
	MessageFullReload     = "full_reload"
	MessageContentChanged = "content_changed"
)

// UpdateMessage represents a message sent to the browser
type UpdateMessage struct {
	Type      string    `json:"type"`
	Target    string    `json:"target,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Client represents a WebSocket client
type Client struct {
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

// Hub tracks live-reload connections and fans messages out to them.
type Hub struct {
	clients    map[*Client]struct{}
	mutex      sync.RWMutex
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	stopOnce   sync.Once
	logger     logging.Logger
}

// NewHub creates a hub. Run must be called for it to deliver messages.
func NewHub(logger logging.Logger) *Hub {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 8),
		done:       make(chan struct{}),
		logger:     logger.WithComponent("livereload"),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled or
// Close is called.
func (h *Hub) Run(ctx context.Context) {
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			h.stop()
			return
		case <-h.done:
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = struct{}{}
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Debug(ctx, "Client connected", "clients", count)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Debug(ctx, "Client disconnected", "clients", count)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Too slow; the browser reconnects and reloads anyway.
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Broadcast queues msg for every connected client.
func (h *Hub) Broadcast(msg UpdateMessage) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "BROADCAST_FAILED", "encode update message")
	}

	select {
	case h.broadcast <- data:
		return nil
	case <-h.done:
		return nil
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and stops Run.
func (h *Hub) Close() {
	h.stop()
}

func (h *Hub) stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	// Close the connection before the send channel so the going-away status
	// wins over the normal closure writePump sends.
	for client := range h.clients {
		client.conn.Close(websocket.StatusGoingAway, "server shutting down")
		close(client.send)
	}
	h.clients = make(map[*Client]struct{})
}

// Handler upgrades requests from the allowed origin hosts (host:port) to
// live-reload connections.
func (h *Hub) Handler(allowedHosts []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := validation.ValidateOrigin(r.Header.Get("Origin"), allowedHosts); err != nil {
			h.logger.Warn(r.Context(),
				errors.Wrap(err, errors.ErrorTypeSecurity, errors.ErrCodeOriginRejected, "websocket origin not allowed"),
				"Rejected WebSocket connection",
				"origin", r.Header.Get("Origin"))
			http.Error(w, "Origin not allowed", http.StatusForbidden)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: allowedHosts,
		})
		if err != nil {
			h.logger.Warn(r.Context(), err, "WebSocket upgrade failed")
			return
		}
		conn.SetReadLimit(maxMessageSize)

		client := &Client{conn: conn, send: make(chan []byte, sendBuffer), hub: h}

		select {
		case h.register <- client:
		case <-h.done:
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		}

		go client.writePump()
		client.readPump()
	})
}

// readPump discards client frames and returns when the connection closes.
// The live-reload protocol is server to client only.
func (c *Client) readPump() {
	ctx := c.conn.CloseRead(context.Background())
	<-ctx.Done()

	select {
	case c.hub.unregister <- c:
	case <-c.hub.done:
	}
}

// writePump pumps messages to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				c.conn.Close(websocket.StatusNormalClosure, "")
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				c.conn.Close(websocket.StatusInternalError, "write failed")
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), pongWait-pingPeriod)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				c.conn.Close(websocket.StatusPolicyViolation, "ping timeout")
				return
			}
		}
	}
}
