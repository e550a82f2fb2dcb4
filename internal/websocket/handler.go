package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Dhiren507/skillsync/internal/domain/models"
	"github.com/Dhiren507/skillsync/internal/domain/services"
	"github.com/Dhiren507/skillsync/internal/infrastructure/queue"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Connection is one websocket client watching generation progress for a
// single video.
type Connection struct {
	ID        string
	VideoID   string
	UserID    int64
	conn      *websocket.Conn
	send      chan []byte
	streaming *queue.StreamingRedisQueue
	ctx       context.Context
	cancel    context.CancelFunc
	writeMu   sync.Mutex

	subMu sync.Mutex
	subID string
}

func (c *Connection) setSubscriptionID(id string) {
	c.subMu.Lock()
	c.subID = id
	c.subMu.Unlock()
}

// touch refreshes the stream subscription's liveness so hub housekeeping
// keeps it open while this client is active.
func (c *Connection) touch() {
	c.subMu.Lock()
	id := c.subID
	c.subMu.Unlock()
	if id != "" {
		c.streaming.Touch(id)
	}
}

// Hub tracks live connections and fans redis stream events out to them.
type Hub struct {
	connections map[string]*Connection
	register    chan *Connection
	unregister  chan *Connection
	streaming   *queue.StreamingRedisQueue
	jwtService  services.JWTService
	log         *logrus.Logger
	mu          sync.RWMutex
}

func NewHub(streaming *queue.StreamingRedisQueue, jwtService services.JWTService, log *logrus.Logger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		connections: make(map[string]*Connection),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		streaming:   streaming,
		jwtService:  jwtService,
		log:         log,
	}
}

func (h *Hub) Run() {
	// Housekeeping reaps redis subscriptions whose websocket died without
	// unsubscribing; live connections stay touched via pong traffic.
	housekeeping := time.NewTicker(10 * time.Minute)
	defer housekeeping.Stop()

	for {
		select {
		case conn := <-h.register:
			h.registerConnection(conn)
		case conn := <-h.unregister:
			h.unregisterConnection(conn)
		case <-housekeeping.C:
			h.streaming.CleanupSubscriptions()
		}
	}
}

// HandleWebSocket upgrades GET /stream/video/:id. Auth comes from the
// Authorization header or, for browser clients that cannot set headers on a
// websocket dial, a token query parameter.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	urlPath := strings.TrimPrefix(r.URL.Path, "/stream/video/")
	videoID := strings.Split(urlPath, "/")[0]
	if videoID == "" {
		http.Error(w, "video id is required", http.StatusBadRequest)
		return
	}

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" || token == r.Header.Get("Authorization") {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		http.Error(w, "Authorization required", http.StatusUnauthorized)
		return
	}

	claims, err := h.jwtService.Verify(token)
	if err != nil {
		http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Error("websocket upgrade failed")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Connection{
		ID:        fmt.Sprintf("ws_%s_%d_%d", videoID, claims.UserID, time.Now().UnixNano()),
		VideoID:   videoID,
		UserID:    claims.UserID,
		conn:      conn,
		send:      make(chan []byte, 256),
		streaming: h.streaming,
		ctx:       ctx,
		cancel:    cancel,
	}

	h.register <- c
	go c.writePump(h)
	go c.readPump(h)
}

func (h *Hub) registerConnection(c *Connection) {
	h.mu.Lock()
	h.connections[c.ID] = c
	h.mu.Unlock()

	h.log.WithFields(logrus.Fields{
		"connection": c.ID,
		"video_id":   c.VideoID,
		"user_id":    c.UserID,
	}).Info("websocket connected")

	go c.subscribeToStream(h.log)

	c.enqueueJSON(map[string]interface{}{
		"type":          "connection_established",
		"connection_id": c.ID,
		"video_id":      c.VideoID,
		"timestamp":     time.Now(),
	})
}

func (h *Hub) unregisterConnection(c *Connection) {
	h.mu.Lock()
	if _, exists := h.connections[c.ID]; exists {
		delete(h.connections, c.ID)
		close(c.send)
		c.cancel()
	}
	h.mu.Unlock()
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

func (h *Hub) Status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"active_connections": h.ConnectionCount(),
		"timestamp":          time.Now(),
	})
}

func (c *Connection) subscribeToStream(log *logrus.Logger) {
	sub, err := c.streaming.Subscribe(c.ctx, c.VideoID, c.UserID)
	if err != nil {
		log.WithError(err).WithField("connection", c.ID).Error("stream subscription failed")
		c.enqueueJSON(map[string]interface{}{
			"type":    "subscription_failed",
			"message": err.Error(),
		})
		return
	}
	defer c.streaming.Unsubscribe(sub.ID)
	c.setSubscriptionID(sub.ID)

	c.enqueueJSON(map[string]interface{}{
		"type":            "subscription_success",
		"video_id":        c.VideoID,
		"subscription_id": sub.ID,
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		case msg, ok := <-sub.Channel:
			if !ok {
				c.enqueueJSON(map[string]interface{}{
					"type":      "channel_closed",
					"timestamp": time.Now(),
				})
				return
			}
			c.enqueueJSON(streamUpdate(msg))
		}
	}
}

func streamUpdate(msg *models.StreamMessage) map[string]interface{} {
	update := map[string]interface{}{
		"type":         "stream_update",
		"event_type":   string(msg.EventType),
		"video_id":     msg.VideoID,
		"content_type": string(msg.ContentType),
		"timestamp":    msg.Timestamp,
		"sequence":     msg.Sequence,
	}
	if msg.Stage != "" {
		update["stage"] = msg.Stage
	}
	if msg.Error != nil {
		update["error"] = map[string]interface{}{
			"code":    msg.Error.Code,
			"message": msg.Error.Message,
			"stage":   msg.Error.Stage,
		}
	}
	return update
}

func (c *Connection) enqueueJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
		// slow consumer, drop
	}
}

func (c *Connection) readPump(hub *Hub) {
	defer func() {
		hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		c.touch()
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				hub.log.WithError(err).WithField("connection", c.ID).Warn("websocket read error")
			}
			return
		}

		var msg map[string]interface{}
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		if msgType, _ := msg["type"].(string); msgType == "ping" {
			c.touch()
			c.enqueueJSON(map[string]interface{}{
				"type":      "pong",
				"timestamp": time.Now(),
			})
		}
	}
}

func (c *Connection) writePump(hub *Hub) {
	ticker := time.NewTicker(25 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.writeMu.Lock()
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				_ = c.conn.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "server shutdown"),
					time.Now().Add(2*time.Second),
				)
				c.writeMu.Unlock()
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.writeMu.Unlock()
				return
			}
			c.writeMu.Unlock()

		case <-ticker.C:
			c.writeMu.Lock()
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.writeMu.Unlock()
				return
			}
			c.writeMu.Unlock()
		}
	}
}

// Handler adapts the hub to http.Handler for gin.WrapH.
type Handler struct {
	hub *Hub
}

func NewHandler(streaming *queue.StreamingRedisQueue, jwtService services.JWTService, log *logrus.Logger) *Handler {
	hub := NewHub(streaming, jwtService, log)
	go hub.Run()
	return &Handler{hub: hub}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.hub.HandleWebSocket(w, r)
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	h.hub.Status(w, r)
}
