package handler

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WSEvent is the envelope for every message pushed to clients.
type WSEvent struct {
	Type   string `json:"type"`
	GameID string `json:"game_id"`
	Data   any    `json:"data"`
}

// ClientMessage is what a client may send: subscribe or unsubscribe to a
// game channel.
type ClientMessage struct {
	Action string `json:"action"`
	GameID string `json:"game_id"`
}

// WSConn is one websocket connection and the seat it authenticated as.
type WSConn struct {
	conn   *websocket.Conn
	gameID string
	power  string
	send   chan []byte
}

// Hub tracks live connections and which game channels each one follows.
// Both indexes are kept in step under mu.
type Hub struct {
	mu     sync.RWMutex
	follow map[*WSConn]map[string]struct{} // conn -> games
	games  map[string]map[*WSConn]struct{} // game -> conns
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		follow: make(map[*WSConn]map[string]struct{}),
		games:  make(map[string]map[*WSConn]struct{}),
	}
}

// Register starts tracking c with no subscriptions.
func (h *Hub) Register(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.follow[c]; !ok {
		h.follow[c] = make(map[string]struct{})
	}
}

// Unregister forgets c and closes its send channel. Calling it again is a no-op.
func (h *Hub) Unregister(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	games, ok := h.follow[c]
	if !ok {
		return
	}
	for gameID := range games {
		h.leave(c, gameID)
	}
	delete(h.follow, c)
	close(c.send)
}

// Subscribe adds c to gameID's channel. Unregistered connections are ignored.
func (h *Hub) Subscribe(c *WSConn, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	games, ok := h.follow[c]
	if !ok {
		return
	}
	games[gameID] = struct{}{}
	if h.games[gameID] == nil {
		h.games[gameID] = make(map[*WSConn]struct{})
	}
	h.games[gameID][c] = struct{}{}
}

// Unsubscribe removes c from gameID's channel.
func (h *Hub) Unsubscribe(c *WSConn, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if games, ok := h.follow[c]; ok {
		delete(games, gameID)
	}
	h.leave(c, gameID)
}

// leave drops c from the game index. Caller holds mu.
func (h *Hub) leave(c *WSConn, gameID string) {
	conns := h.games[gameID]
	delete(conns, c)
	if len(conns) == 0 {
		delete(h.games, gameID)
	}
}

// Publish queues ev for every subscriber of gameID. A subscriber whose
// buffer is full misses the event rather than stalling the others.
func (h *Hub) Publish(gameID string, ev WSEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("gameId", gameID).Str("type", ev.Type).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.games[gameID] {
		select {
		case c.send <- data:
		default:
			log.Warn().Str("gameId", gameID).Str("power", c.power).Str("type", ev.Type).Msg("Dropping WebSocket event, buffer full")
		}
	}
}

// OnlinePowers lists the powers of gameID with at least one connected seat
// following the game.
func (h *Hub) OnlinePowers(gameID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	seen := make(map[string]bool)
	powers := []string{}
	for c := range h.games[gameID] {
		if c.gameID == gameID && !seen[c.power] {
			seen[c.power] = true
			powers = append(powers, c.power)
		}
	}
	sort.Strings(powers)
	return powers
}

// ConnectionCount returns the number of registered connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.follow)
}

// GameSubscriberCount returns how many connections follow gameID.
func (h *Hub) GameSubscriberCount(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}
