package handler

import (
	"net/http"

	"github.com/freeeve/polite-betrayal/adjudicator/internal/model"
	"github.com/freeeve/polite-betrayal/adjudicator/internal/service"
)

// GameHandler handles game creation and board queries.
type GameHandler struct {
	gameSvc *service.GameService
}

// NewGameHandler creates a GameHandler.
func NewGameHandler(gameSvc *service.GameService) *GameHandler {
	return &GameHandler{gameSvc: gameSvc}
}

type createGameResponse struct {
	Game  *model.Game  `json:"game"`
	Seats []model.Seat `json:"seats"`
}

// CreateGame handles POST /api/v1/games
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req service.CreateGameInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	game, seats, err := h.gameSvc.CreateGame(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createGameResponse{Game: game, Seats: seats})
}

// GetGame handles GET /api/v1/games/{id}
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	game, err := h.gameSvc.GetGame(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

// GetState handles GET /api/v1/games/{id}/state
func (h *GameHandler) GetState(w http.ResponseWriter, r *http.Request) {
	st, err := h.gameSvc.State(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// GetMap handles GET /api/v1/games/{id}/map as plain text.
func (h *GameHandler) GetMap(w http.ResponseWriter, r *http.Request) {
	text, err := h.gameSvc.MapText(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text))
}

// Orderable handles GET /api/v1/games/{id}/orderable for the caller's power.
func (h *GameHandler) Orderable(w http.ResponseWriter, r *http.Request) {
	seat, ok := seatForGame(w, r)
	if !ok {
		return
	}
	locs, err := h.gameSvc.Orderable(r.Context(), seat.GameID, seat.Power)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"power": seat.Power, "locations": locs})
}
