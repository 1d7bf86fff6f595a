package handler

import (
	"github.com/freeeve/polite-betrayal/adjudicator/internal/service"
)

var _ service.Broadcaster = (*Hub)(nil)

// BroadcastGameEvent lets the services push events through the hub.
func (h *Hub) BroadcastGameEvent(gameID string, eventType string, data any) {
	h.Publish(gameID, WSEvent{Type: eventType, GameID: gameID, Data: data})
}

// EventSeatConnected is pushed to a game when one of its seats opens a socket.
const EventSeatConnected = "seat_connected"

// announceSeat tells the seat's game who is online now that c joined.
func (h *Hub) announceSeat(c *WSConn) {
	h.Publish(c.gameID, WSEvent{
		Type:   EventSeatConnected,
		GameID: c.gameID,
		Data: map[string]any{
			"power":  c.power,
			"online": h.OnlinePowers(c.gameID),
		},
	})
}
