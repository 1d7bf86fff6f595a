package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/polite-betrayal/adjudicator/internal/auth"
	"github.com/freeeve/polite-betrayal/adjudicator/internal/logger"
	"github.com/freeeve/polite-betrayal/adjudicator/internal/service"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Error encoding response")
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads and decodes JSON from a request body.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// writeServiceError maps service errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrGameNotFound), errors.Is(err, service.ErrPhaseNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrWrongPower):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrGameFinished), errors.Is(err, service.ErrNoActivePhase):
		writeError(w, http.StatusConflict, err.Error())
	default:
		l := logger.ForRequest(r.Context())
		l.Error().Err(err).Msg("Request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// seatForGame returns the caller's seat when it belongs to the game in the
// path, writing a 403 otherwise.
func seatForGame(w http.ResponseWriter, r *http.Request) (*auth.SeatClaims, bool) {
	seat := auth.SeatFromContext(r.Context())
	if seat == nil {
		writeError(w, http.StatusUnauthorized, "missing seat")
		return nil, false
	}
	if seat.GameID != r.PathValue("id") {
		writeError(w, http.StatusForbidden, "seat belongs to another game")
		return nil, false
	}
	return seat, true
}
