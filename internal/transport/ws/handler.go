package ws

import (
	"context"
	"net/http"
	"time"
	"wellbeing/internal/logger"
	"wellbeing/internal/model"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// MsgSnapshot is the first message a new dashboard receives
const MsgSnapshot = "stats_snapshot"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StatsSource supplies the snapshot sent on connect
type StatsSource interface {
	Stats(ctx context.Context) *model.DerivedStatistics
}

// Handler handles WebSocket connections
type Handler struct {
	hub   *Hub
	stats StatsSource
	log   *logger.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, stats StatsSource, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		hub:   hub,
		stats: stats,
		log:   log,
	}
}

// DashboardWS handles GET /v1/ws/dashboard
func (h *Handler) DashboardWS(w http.ResponseWriter, r *http.Request) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade error", "error", err)
		return
	}

	conn := &Connection{
		ID:   uuid.NewString(),
		Send: make(chan []byte, 256),
		Hub:  h.hub,
	}

	if h.stats != nil {
		if err := h.sendSnapshot(r.Context(), wsConn); err != nil {
			h.log.Warn("Sending snapshot failed", "error", err)
			wsConn.Close()
			return
		}
	}

	h.hub.Register(conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) sendSnapshot(ctx context.Context, wsConn *websocket.Conn) error {
	stats := h.stats.Stats(ctx)
	wsConn.SetWriteDeadline(time.Now().Add(writeWait))
	return wsConn.WriteJSON(struct {
		Type    string                   `json:"type"`
		Payload *model.DerivedStatistics `json:"payload"`
	}{MsgSnapshot, stats})
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// dashboards are receive-only; reads only drive pong and close handling
	for {
		if _, _, err := wsConn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Debug("WebSocket error", "conn", conn.ID, "error", err)
			}
			break
		}
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
