package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/lightguard-core/internal/infrastructure/config"
	"github.com/nerrad567/lightguard-core/internal/infrastructure/logging"
)

// WebSocket constants.
const (
	WSTypeSubscribe   = "subscribe"
	WSTypeUnsubscribe = "unsubscribe"
	WSTypePing        = "ping"
	WSTypePong        = "pong"
	WSTypeEvent       = "event"
	WSTypeResponse    = "response"
	WSTypeError       = "error"

	// wsSendBufferSize is the per-client outbound message buffer size.
	wsSendBufferSize = 256

	defaultWSMaxMessageSize = 4096
	defaultWSPingInterval   = 30 * time.Second
	defaultWSPongWait       = 10 * time.Second
)

// WSMessage represents a message sent to/from a WebSocket client.
type WSMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// WSSubscribePayload is the payload for subscribe/unsubscribe messages.
type WSSubscribePayload struct {
	Channels []string `json:"channels"`
}

// Hub manages WebSocket connections and broadcasts events.
// The cycle runner publishes each tick's command on the "command" channel.
type Hub struct {
	cfg      config.WebSocketConfig
	logger   *logging.Logger
	clients  map[*WSClient]struct{}
	snapshot func(channel string) (any, bool)
	mu       sync.RWMutex
}

// WSClient represents a connected WebSocket client.
type WSClient struct {
	hub           *Hub
	conn          *websocket.Conn
	send          chan []byte
	subscriptions map[string]struct{}
	mu            sync.RWMutex
}

// upgrader configures the WebSocket upgrader.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		// Origin checking is handled by CORS middleware
		return true
	},
}

// NewHub creates a new WebSocket hub.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	return &Hub{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[*WSClient]struct{}),
	}
}

// SetSnapshot installs the source of the value sent to a client immediately
// after it subscribes to a channel. Call before clients connect.
func (h *Hub) SetSnapshot(fn func(channel string) (any, bool)) {
	h.snapshot = fn
}

// Run starts the hub's main loop. It blocks until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// Register adds a client to the hub.
func (h *Hub) Register(client *WSClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "clients", h.ClientCount())
}

// Unregister removes a client from the hub.
// Only the goroutine that successfully removes the client from the map
// closes the send channel, preventing double-close panics during shutdown.
func (h *Hub) Unregister(client *WSClient) {
	h.mu.Lock()
	_, existed := h.clients[client]
	delete(h.clients, client)
	h.mu.Unlock()

	if existed {
		close(client.send)
	}
	h.logger.Debug("websocket client disconnected", "clients", h.ClientCount())
}

// Broadcast sends an event to all clients subscribed to the given channel.
// Lock ordering: hub lock is acquired first, then released before per-client
// subscription checks. This avoids holding both hub and client locks simultaneously.
func (h *Hub) Broadcast(channel string, payload any) {
	msg := WSMessage{
		Type:      WSTypeEvent,
		EventType: channel,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal broadcast message", "error", err)
		return
	}

	// Snapshot client list under hub lock, then release before sending
	h.mu.RLock()
	clients := make([]*WSClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	sentCount := 0
	for _, client := range clients {
		if client.isSubscribed(channel) {
			client.trySend(data)
			sentCount++
		}
	}
	if sentCount > 0 {
		h.logger.Debug("broadcast sent", "channel", channel, "recipients", sentCount)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// closeAll disconnects all clients and closes their send channels
// so writePump goroutines can exit cleanly.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.send)
		if client.conn != nil {
			client.conn.Close()
		}
		delete(h.clients, client)
	}
}

// handleWebSocket upgrades the HTTP connection to a WebSocket connection.
// The command stream is read-only telemetry and needs no token.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &WSClient{
		hub:           s.hub,
		conn:          conn,
		send:          make(chan []byte, wsSendBufferSize),
		subscriptions: make(map[string]struct{}),
	}

	s.hub.Register(client)

	timing := newWSTiming(s.hub.cfg)
	go client.writePump(timing)
	go client.readPump(timing)
}

// wsTiming is the resolved keepalive configuration for one connection.
type wsTiming struct {
	maxMessageSize int64
	pingInterval   time.Duration
	pongWait       time.Duration
}

func newWSTiming(cfg config.WebSocketConfig) wsTiming {
	t := wsTiming{
		maxMessageSize: int64(cfg.MaxMessageSize),
		pingInterval:   time.Duration(cfg.PingInterval) * time.Second,
		pongWait:       time.Duration(cfg.PongTimeout) * time.Second,
	}
	if t.maxMessageSize <= 0 {
		t.maxMessageSize = defaultWSMaxMessageSize
	}
	if t.pingInterval <= 0 {
		t.pingInterval = defaultWSPingInterval
	}
	if t.pongWait <= 0 {
		t.pongWait = defaultWSPongWait
	}
	return t
}

// readPump reads messages from the WebSocket connection.
func (c *WSClient) readPump(t wsTiming) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(t.maxMessageSize)
	//nolint:errcheck // Best-effort deadline on connection setup
	c.conn.SetReadDeadline(time.Now().Add(t.pingInterval + t.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(t.pingInterval + t.pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "error", err)
			} else {
				c.hub.logger.Debug("websocket closed", "error", err)
			}
			return
		}
		//nolint:errcheck // Best-effort deadline reset
		c.conn.SetReadDeadline(time.Now().Add(t.pingInterval + t.pongWait))
		c.handleMessage(message)
	}
}

// writePump writes messages to the WebSocket connection.
func (c *WSClient) writePump(t wsTiming) {
	ticker := time.NewTicker(t.pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				//nolint:errcheck // Best-effort close message
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			//nolint:errcheck // Best-effort deadline; write error caught below
			c.conn.SetWriteDeadline(time.Now().Add(t.pongWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			//nolint:errcheck // Best-effort deadline; ping error caught below
			c.conn.SetWriteDeadline(time.Now().Add(t.pongWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// wsRequest is an inbound client message; the payload is decoded per type.
type wsRequest struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// handleMessage processes an incoming WebSocket message.
func (c *WSClient) handleMessage(data []byte) {
	var req wsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.sendError("", "invalid JSON message")
		return
	}

	switch req.Type {
	case WSTypeSubscribe:
		channels, ok := c.channels(req)
		if !ok {
			return
		}
		c.mu.Lock()
		for _, ch := range channels {
			c.subscriptions[ch] = struct{}{}
		}
		c.mu.Unlock()
		c.hub.logger.Debug("websocket client subscribed", "channels", channels)
		c.sendResponse(req.ID, WSTypeResponse, map[string]any{"subscribed": channels})
		c.sendSnapshots(channels)

	case WSTypeUnsubscribe:
		channels, ok := c.channels(req)
		if !ok {
			return
		}
		c.mu.Lock()
		for _, ch := range channels {
			delete(c.subscriptions, ch)
		}
		c.mu.Unlock()
		c.sendResponse(req.ID, WSTypeResponse, map[string]any{"unsubscribed": channels})

	case WSTypePing:
		c.sendResponse(req.ID, WSTypePong, nil)

	default:
		c.sendError(req.ID, "unknown message type: "+req.Type)
	}
}

// channels decodes a subscribe/unsubscribe payload, replying with an error
// message when it is malformed.
func (c *WSClient) channels(req wsRequest) ([]string, bool) {
	var sub WSSubscribePayload
	if err := json.Unmarshal(req.Payload, &sub); err != nil || len(sub.Channels) == 0 {
		c.sendError(req.ID, "payload must list at least one channel")
		return nil, false
	}
	return sub.Channels, true
}

// sendSnapshots pushes the current value of each newly subscribed channel so
// a dashboard does not wait a full tick for its first frame.
func (c *WSClient) sendSnapshots(channels []string) {
	if c.hub.snapshot == nil {
		return
	}
	for _, ch := range channels {
		payload, ok := c.hub.snapshot(ch)
		if !ok {
			continue
		}
		data, err := json.Marshal(WSMessage{
			Type:      WSTypeEvent,
			EventType: ch,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Payload:   payload,
		})
		if err != nil {
			continue
		}
		c.trySend(data)
	}
}

// trySend attempts to send data to the client's send channel.
// It silently handles closed channels (client disconnected during broadcast)
// and full buffers (slow client).
func (c *WSClient) trySend(data []byte) {
	defer func() {
		recover() //nolint:errcheck // Absorb send-on-closed-channel panic
	}()

	select {
	case c.send <- data:
	default:
	}
}

// isSubscribed checks if the client is subscribed to a channel.
func (c *WSClient) isSubscribed(channel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.subscriptions[channel]
	return ok
}

// sendResponse sends a response message to the client.
func (c *WSClient) sendResponse(id, msgType string, payload any) {
	msg := WSMessage{
		Type:      msgType,
		ID:        id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.trySend(data)
}

// sendError sends an error message to the client.
func (c *WSClient) sendError(id, message string) {
	c.sendResponse(id, WSTypeError, map[string]string{"message": message})
}
