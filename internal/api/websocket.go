package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/autoops-ai/backend/internal/ingest"
	"github.com/autoops-ai/backend/internal/models"
)

// WebSocket message types for the notification protocol
const (
	// Client -> Server messages
	MsgTypePing = "ping"

	// Server -> Client messages
	MsgTypeConnected = "connected"
	MsgTypeCreated   = "created"
	MsgTypeCompleted = "completed"
	MsgTypeFailed    = "failed"
	MsgTypeToast     = "toast"
	MsgTypeError     = "error"
	MsgTypePong      = "pong"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBufferSize = 64
)

// WSMessage is a notification frame
type WSMessage struct {
	Type      string           `json:"type"`
	Document  *models.Document `json:"document,omitempty"`
	Message   string           `json:"message,omitempty"`
	Code      string           `json:"code,omitempty"`
	Timestamp int64            `json:"timestamp"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NotificationHub fans simulator events and toast messages out to every
// connected WebSocket client. It implements ingest.Observer and ingest.Notifier.
type NotificationHub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	clients  map[*wsClient]struct{}
	closed   bool
	now      func() time.Time
	log      *zap.SugaredLogger
}

// NewNotificationHub creates a hub with no clients
func NewNotificationHub() *NotificationHub {
	return &NotificationHub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// CORS middleware governs origins
				return true
			},
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
		},
		clients: make(map[*wsClient]struct{}),
		now:     time.Now,
		log:     zap.S().Named("notifications"),
	}
}

// HandleNotifications upgrades the connection and streams notifications
// until the client disconnects
func (hub *NotificationHub) HandleNotifications(c echo.Context) error {
	ws, err := hub.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &wsClient{conn: ws, send: make(chan []byte, sendBufferSize)}
	if !hub.register(client) {
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		ws.Close()
		return nil
	}
	hub.log.Debugw("client connected", "remote", c.RealIP(), "clients", hub.ClientCount())

	go hub.writePump(client)
	hub.enqueue(client, WSMessage{Type: MsgTypeConnected})
	hub.readPump(client)

	hub.unregister(client)
	hub.log.Debugw("client disconnected", "remote", c.RealIP(), "clients", hub.ClientCount())
	return nil
}

func (hub *NotificationHub) register(client *wsClient) bool {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	if hub.closed {
		return false
	}
	hub.clients[client] = struct{}{}
	return true
}

// unregister removes the client and stops its write pump. Safe to call twice.
func (hub *NotificationHub) unregister(client *wsClient) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	if _, ok := hub.clients[client]; ok {
		delete(hub.clients, client)
		close(client.send)
	}
}

func (hub *NotificationHub) readPump(client *wsClient) {
	ws := client.conn
	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				hub.log.Debugw("connection error", "error", err)
			}
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))

		switch msg.Type {
		case MsgTypePing:
			hub.enqueue(client, WSMessage{Type: MsgTypePong})
		default:
			hub.enqueue(client, WSMessage{
				Type:    MsgTypeError,
				Message: "Unknown message type: " + msg.Type,
				Code:    "INVALID_TYPE",
			})
		}
	}
}

func (hub *NotificationHub) writePump(client *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case data, ok := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (hub *NotificationHub) encode(msg WSMessage) ([]byte, bool) {
	msg.Timestamp = hub.now().UnixMilli()
	data, err := json.Marshal(msg)
	if err != nil {
		hub.log.Errorw("failed to encode notification", "type", msg.Type, "error", err)
		return nil, false
	}
	return data, true
}

// enqueue sends a frame to a single client
func (hub *NotificationHub) enqueue(client *wsClient, msg WSMessage) {
	data, ok := hub.encode(msg)
	if !ok {
		return
	}

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	if _, ok := hub.clients[client]; !ok {
		return
	}
	select {
	case client.send <- data:
	default:
		hub.log.Warn("dropping frame for slow client")
	}
}

// Broadcast sends a frame to every client. Clients whose buffer is full are
// disconnected.
func (hub *NotificationHub) Broadcast(msg WSMessage) {
	data, ok := hub.encode(msg)
	if !ok {
		return
	}

	var slow []*wsClient
	hub.mu.RLock()
	for client := range hub.clients {
		select {
		case client.send <- data:
		default:
			slow = append(slow, client)
		}
	}
	hub.mu.RUnlock()

	for _, client := range slow {
		hub.log.Warn("disconnecting slow client")
		hub.unregister(client)
	}
}

// OnEvent implements ingest.Observer
func (hub *NotificationHub) OnEvent(e ingest.Event) {
	var msgType string
	switch e.Kind {
	case ingest.EventCreated:
		msgType = MsgTypeCreated
	case ingest.EventCompleted:
		msgType = MsgTypeCompleted
	case ingest.EventFailed:
		msgType = MsgTypeFailed
	default:
		return
	}
	doc := e.Document
	hub.Broadcast(WSMessage{Type: msgType, Document: &doc, Message: e.Message})
}

// Notify implements ingest.Notifier
func (hub *NotificationHub) Notify(message string) {
	hub.Broadcast(WSMessage{Type: MsgTypeToast, Message: message})
}

// ClientCount returns the number of connected clients
func (hub *NotificationHub) ClientCount() int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.clients)
}

// Close disconnects every client and rejects new connections
func (hub *NotificationHub) Close() {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	if hub.closed {
		return
	}
	hub.closed = true
	for client := range hub.clients {
		delete(hub.clients, client)
		close(client.send)
	}
}
