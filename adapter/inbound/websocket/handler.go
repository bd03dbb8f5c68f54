package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ajkula/GoArrival/domain/model"
	"github.com/ajkula/GoArrival/domain/port/inbound"
	"github.com/ajkula/GoArrival/domain/port/outbound"
)

const writeWait = 5 * time.Second

// Handler streams recorded detection results to websocket clients
type Handler struct {
	arrivalService inbound.ArrivalService
	logger         outbound.Logger
	upgrader       websocket.Upgrader
	connections    map[*feedConnection]struct{}
	mu             sync.RWMutex
}

// feedConnection is one live client. Writes come from the subscription
// callback and the read loop, so they go through writeMu.
type feedConnection struct {
	conn           *websocket.Conn
	subscriptionID string
	writeMu        sync.Mutex
}

func (c *feedConnection) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

func NewHandler(arrivalService inbound.ArrivalService, logger outbound.Logger) *Handler {
	return &Handler{
		arrivalService: arrivalService,
		logger:         logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// the API binds to loopback by default
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		connections: make(map[*feedConnection]struct{}),
	}
}

// HandleArrivals upgrades the request and pushes every recorded result until the client leaves
func (h *Handler) HandleArrivals(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Error upgrading to WebSocket", "error", err)
		return
	}

	fc := &feedConnection{conn: conn}

	h.mu.Lock()
	h.connections[fc] = struct{}{}
	h.mu.Unlock()

	fc.subscriptionID = h.arrivalService.Subscribe(func(result *model.DetectionResult) {
		if err := fc.writeJSON(map[string]any{"type": "arrival", "result": result}); err != nil {
			h.logger.Debug("Failed to push arrival", "error", err)
		}
	})

	fc.writeJSON(map[string]string{
		"type":           "connected",
		"subscriptionId": fc.subscriptionID,
	})

	h.logger.Debug("Arrival feed client connected", "subscription", fc.subscriptionID, "remote", r.RemoteAddr)

	go h.readLoop(fc)
}

func (h *Handler) readLoop(fc *feedConnection) {
	defer h.release(fc)

	for {
		messageType, data, err := fc.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket error", "subscription", fc.subscriptionID, "error", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var message struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &message); err != nil {
			h.logger.Debug("Ignoring malformed client message", "error", err)
			continue
		}

		if message.Type == "ping" {
			fc.writeJSON(map[string]string{"type": "pong"})
		}
	}
}

// release is safe to call more than once for the same connection
func (h *Handler) release(fc *feedConnection) {
	h.mu.Lock()
	_, tracked := h.connections[fc]
	delete(h.connections, fc)
	h.mu.Unlock()

	if !tracked {
		return
	}

	h.arrivalService.Unsubscribe(fc.subscriptionID)
	fc.conn.Close()
	h.logger.Debug("Arrival feed client disconnected", "subscription", fc.subscriptionID)
}

// ConnectionCount reports how many clients are attached
func (h *Handler) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// Cleanup closes every client with a normal closure
func (h *Handler) Cleanup() {
	h.mu.RLock()
	conns := make([]*feedConnection, 0, len(h.connections))
	for fc := range h.connections {
		conns = append(conns, fc)
	}
	h.mu.RUnlock()

	for _, fc := range conns {
		fc.writeMu.Lock()
		fc.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "Server shutting down"),
			time.Now().Add(writeWait))
		fc.writeMu.Unlock()
		h.release(fc)
	}

	h.logger.Info("WebSocket handler cleanup complete", "clients", len(conns))
}
