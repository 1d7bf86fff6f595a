package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/polite-betrayal/adjudicator/internal/auth"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = (pongWait * 9) / 10
	maxMsgSize  = 4096
	sendBufSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Any origin may connect; the seat token is the credential.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades seat-authenticated requests to websocket connections.
type WSHandler struct {
	hub *Hub
}

// NewWSHandler creates a WSHandler.
func NewWSHandler(hub *Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// ServeWS handles GET /api/v1/ws. Browsers cannot set headers on an
// upgrade, so the seat usually arrives as ?token=. The socket starts out
// following the seat's own game.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	seat := auth.SeatFromContext(r.Context())
	if seat == nil {
		writeError(w, http.StatusUnauthorized, "missing seat")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Str("gameId", seat.GameID).Msg("WebSocket upgrade failed")
		return
	}

	c := &WSConn{conn: conn, gameID: seat.GameID, power: seat.Power, send: make(chan []byte, sendBufSize)}
	h.hub.Register(c)
	h.hub.Subscribe(c, seat.GameID)

	hello, _ := json.Marshal(WSEvent{
		Type:   "connected",
		GameID: seat.GameID,
		Data:   map[string]any{"power": seat.Power},
	})
	c.send <- hello
	h.hub.announceSeat(c)

	go c.writeLoop()
	go c.readLoop(h.hub)

	log.Info().Str("gameId", seat.GameID).Str("power", seat.Power).
		Int("connections", h.hub.ConnectionCount()).Msg("Seat connected")
}

// readLoop applies subscribe and unsubscribe requests until the socket
// closes, then unregisters c.
func (c *WSConn) readLoop(hub *Hub) {
	defer func() {
		hub.Unregister(c)
		c.conn.Close()
		log.Info().Str("gameId", c.gameID).Str("power", c.power).Msg("Seat disconnected")
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("gameId", c.gameID).Str("power", c.power).Msg("WebSocket closed unexpectedly")
			}
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		if msg.GameID == "" {
			continue
		}
		switch msg.Action {
		case "subscribe":
			hub.Subscribe(c, msg.GameID)
		case "unsubscribe":
			hub.Unsubscribe(c, msg.GameID)
		}
	}
}

// writeLoop drains c.send one event per frame and pings between events.
func (c *WSConn) writeLoop() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		var (
			kind    int
			payload []byte
		)
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			kind, payload = websocket.TextMessage, msg
		case <-ping.C:
			kind = websocket.PingMessage
		}
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(kind, payload); err != nil {
			return
		}
	}
}
