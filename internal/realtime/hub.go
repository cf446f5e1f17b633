package realtime

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	pingInterval = 30 * time.Second
	pongWait     = 40 * time.Second
	writeWait    = 10 * time.Second
	readLimit    = 64 * 1024
)

// Hub upgrades HTTP requests to websocket connections and keeps the session
// registry in sync with connection lifecycle: register on open, unregister
// on close.
type Hub struct {
	upgrader websocket.Upgrader
	registry *Registry
	logger   *zap.Logger
}

func NewHub(registry *Registry, logger *zap.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		registry: registry,
		logger:   logger,
	}
}

// wsConn serializes writes; gorilla connections allow one concurrent writer.
type wsConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsConn) Send(payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

func (c *wsConn) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeWait))
}

// Serve upgrades the request and registers the connection for the
// authenticated user. It returns once the connection is established; reading
// and heartbeats run in their own goroutines.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &wsConn{conn: conn}
	h.registry.Register(userID, c)
	h.logger.Info("websocket connected", zap.String("user_id", userID))

	go h.readLoop(c, userID)
	go h.heartbeatLoop(c)
	return nil
}

func (h *Hub) readLoop(c *wsConn, userID string) {
	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		// Clients do not send application messages; the read loop exists to
		// process control frames and detect closure.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.registry.Unregister(c)
			_ = c.Close()
			h.logger.Info("websocket disconnected", zap.String("user_id", userID))
			return
		}
	}
}

func (h *Hub) heartbeatLoop(c *wsConn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for range ticker.C {
		if err := c.ping(); err != nil {
			h.registry.Unregister(c)
			_ = c.Close()
			return
		}
	}
}
