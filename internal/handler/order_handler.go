package handler

import (
	"net/http"

	"github.com/freeeve/polite-betrayal/adjudicator/internal/service"
)

// OrderHandler handles order staging and readiness for the caller's seat.
type OrderHandler struct {
	orderSvc *service.OrderService
}

// NewOrderHandler creates an OrderHandler.
func NewOrderHandler(orderSvc *service.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// SubmitOrders handles POST /api/v1/games/{id}/orders
func (h *OrderHandler) SubmitOrders(w http.ResponseWriter, r *http.Request) {
	seat, ok := seatForGame(w, r)
	if !ok {
		return
	}
	var req service.OrderSubmission
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	feedback, err := h.orderSvc.SubmitOrders(r.Context(), seat.GameID, seat.Power, req.Orders)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"power": seat.Power, "orders": feedback})
}

// GetOrders handles GET /api/v1/games/{id}/orders
func (h *OrderHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	seat, ok := seatForGame(w, r)
	if !ok {
		return
	}
	orders, err := h.orderSvc.StagedOrders(r.Context(), seat.GameID, seat.Power)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"power": seat.Power, "orders": orders})
}

// MarkReady handles POST /api/v1/games/{id}/orders/ready
func (h *OrderHandler) MarkReady(w http.ResponseWriter, r *http.Request) {
	seat, ok := seatForGame(w, r)
	if !ok {
		return
	}
	status, err := h.orderSvc.MarkReady(r.Context(), seat.GameID, seat.Power)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
