package handler

import (
	"net/http"

	"github.com/freeeve/polite-betrayal/adjudicator/internal/auth"
	"github.com/freeeve/polite-betrayal/adjudicator/internal/middleware"
	"github.com/freeeve/polite-betrayal/adjudicator/internal/service"
)

// Services bundles what the HTTP layer calls into.
type Services struct {
	Games  *service.GameService
	Orders *service.OrderService
	Phases *service.PhaseService
	Seats  *auth.SeatManager
	Hub    *Hub
}

// NewRouter builds the /api/v1 routes and wraps them in the global middleware.
func NewRouter(svc Services, allowedOrigins string) http.Handler {
	gameHandler := NewGameHandler(svc.Games)
	orderHandler := NewOrderHandler(svc.Orders)
	phaseHandler := NewPhaseHandler(svc.Phases)
	wsHandler := NewWSHandler(svc.Hub)
	seatMw := auth.Middleware(svc.Seats)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	api := http.NewServeMux()
	api.HandleFunc("POST /games", gameHandler.CreateGame)
	api.HandleFunc("GET /games/{id}", gameHandler.GetGame)
	api.HandleFunc("GET /games/{id}/state", gameHandler.GetState)
	api.HandleFunc("GET /games/{id}/map", gameHandler.GetMap)
	api.HandleFunc("GET /games/{id}/phases", phaseHandler.ListPhases)
	api.HandleFunc("GET /games/{id}/phases/{phaseId}/orders", phaseHandler.PhaseOrders)

	// Seat-authenticated routes
	api.Handle("GET /games/{id}/orderable", seatMw(http.HandlerFunc(gameHandler.Orderable)))
	api.Handle("GET /games/{id}/orders", seatMw(http.HandlerFunc(orderHandler.GetOrders)))
	api.Handle("POST /games/{id}/orders", seatMw(http.HandlerFunc(orderHandler.SubmitOrders)))
	api.Handle("POST /games/{id}/orders/ready", seatMw(http.HandlerFunc(orderHandler.MarkReady)))
	api.Handle("GET /ws", seatMw(http.HandlerFunc(wsHandler.ServeWS)))

	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", api))

	return middleware.Chain(mux, middleware.Recover, middleware.Logger, middleware.CORS(allowedOrigins), middleware.JSON)
}
