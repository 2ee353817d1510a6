package ws

import (
	"encoding/json"
	"sync"
	"wellbeing/internal/logger"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Connection is one dashboard subscriber
type Connection struct {
	ID   string
	Send chan []byte
	Hub  *Hub
}

// Hub fans statistics updates out to every connected dashboard
type Hub struct {
	conns map[*Connection]struct{}
	mu    sync.RWMutex
	log   *logger.Logger

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan []byte
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a new WebSocket hub and starts its loop
func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	h := &Hub{
		conns:      make(map[*Connection]struct{}),
		log:        log,
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.conns[conn] = struct{}{}
			h.mu.Unlock()
			h.log.Debug("Dashboard connected", "conn", conn.ID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.conns[conn]; ok {
				delete(h.conns, conn)
				close(conn.Send)
				h.log.Debug("Dashboard disconnected", "conn", conn.ID)
			}
			h.mu.Unlock()

		case data := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.conns {
				select {
				case conn.Send <- data:
				default:
					// slow reader, drop
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			for conn := range h.conns {
				delete(h.conns, conn)
				close(conn.Send)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Count returns the number of connected dashboards
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Broadcast sends a message to every dashboard (implements service.Broadcaster).
// It never blocks the caller; messages are dropped once the queue is full.
func (h *Hub) Broadcast(msgType string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		h.log.Warn("Encoding broadcast payload failed", "type", msgType, "error", err)
		return
	}
	data, _ := json.Marshal(&Message{Type: msgType, Payload: body})

	select {
	case h.broadcast <- data:
	case <-h.done:
	default:
		h.log.Warn("Broadcast queue full, dropping message", "type", msgType)
	}
}

// Close disconnects every dashboard and stops the hub loop
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}
