package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Hub tracks active conversation-list viewers per user. Each connection
// owns its own feed subscription; the hub exists for accounting and for
// tearing every viewer down on shutdown.
type Hub struct {
	viewers map[int64]map[*websocket.Conn]ConnInfo
	mu      sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{viewers: make(map[int64]map[*websocket.Conn]ConnInfo)}
}

// AddViewer registers a websocket connection for a user.
func (h *Hub) AddViewer(userID int64, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.viewers[userID]; !ok {
		h.viewers[userID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.viewers[userID][conn] = info
}

// RemoveViewer removes a websocket connection.
func (h *Hub) RemoveViewer(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.viewers[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.viewers, userID)
		}
	}
}

// ViewerCount reports the number of connections a user has open.
func (h *Hub) ViewerCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.viewers[userID])
}

// Info returns the connection metadata recorded at registration.
func (h *Hub) Info(userID int64, conn *websocket.Conn) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if conns, ok := h.viewers[userID]; ok {
		info, exists := conns[conn]
		return info, exists
	}
	return ConnInfo{}, false
}

// CloseAll disconnects every viewer. Used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, conns := range h.viewers {
		for conn := range conns {
			if conn != nil {
				_ = conn.Close()
			}
		}
		delete(h.viewers, userID)
	}
}
