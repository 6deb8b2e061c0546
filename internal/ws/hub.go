// Package ws carries the websocket transport: the connection hub enforcing
// one live connection per session, and the handler that bridges frames to
// the chat router.
package ws

import (
	"sync"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"
)

// Close codes sent to clients. 4000-range codes are application-defined.
const (
	StatusMissingToken   websocket.StatusCode = 4001
	StatusInvalidToken   websocket.StatusCode = 4002
	StatusUserInactive   websocket.StatusCode = 4003
	StatusInvalidSession websocket.StatusCode = 4004
	StatusSuperseded     websocket.StatusCode = 4008
)

// Hub tracks the live connection for each session id. A second connection
// for the same session supersedes the first: the old one is closed with
// StatusSuperseded and the new one takes over.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*websocket.Conn
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string]*websocket.Conn)}
}

// Register installs conn as the live connection for sessionID, displacing
// any previous one.
func (h *Hub) Register(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.conns[sessionID]; ok && existing != conn {
		_ = existing.Close(StatusSuperseded, "superseded by a newer connection")
		log.Info().Str("sessionId", sessionID).Msg("existing connection superseded")
	}

	h.conns[sessionID] = conn
}

// Unregister removes conn if it is still the live connection for sessionID.
// A connection that was already superseded is left alone, so the call is
// safe from any disconnect path.
func (h *Hub) Unregister(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.conns[sessionID]; ok && current == conn {
		delete(h.conns, sessionID)
	}
}

// Get returns the live connection for sessionID, or nil.
func (h *Hub) Get(sessionID string) *websocket.Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.conns[sessionID]
}

// Count reports the number of live connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// CloseAll closes every live connection. Used during shutdown.
func (h *Hub) CloseAll(reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sessionID, conn := range h.conns {
		_ = conn.Close(websocket.StatusGoingAway, reason)
		delete(h.conns, sessionID)
	}
}
