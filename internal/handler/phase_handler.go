package handler

import (
	"net/http"

	"github.com/freeeve/polite-betrayal/adjudicator/internal/service"
)

// PhaseHandler handles phase history endpoints.
type PhaseHandler struct {
	phaseSvc *service.PhaseService
}

// NewPhaseHandler creates a PhaseHandler.
func NewPhaseHandler(phaseSvc *service.PhaseService) *PhaseHandler {
	return &PhaseHandler{phaseSvc: phaseSvc}
}

// ListPhases handles GET /api/v1/games/{id}/phases
func (h *PhaseHandler) ListPhases(w http.ResponseWriter, r *http.Request) {
	phases, err := h.phaseSvc.ListPhases(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, phases)
}

// PhaseOrders handles GET /api/v1/games/{id}/phases/{phaseId}/orders
func (h *PhaseHandler) PhaseOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.phaseSvc.PhaseOrders(r.Context(), r.PathValue("id"), r.PathValue("phaseId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}
