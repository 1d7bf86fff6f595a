package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const seatKey contextKey = "seat"

// Middleware requires a seat token, taken from a Bearer Authorization
// header or, for websocket upgrades, the token query parameter.
func Middleware(seats *SeatManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := tokenFromRequest(r)
			if !ok {
				http.Error(w, `{"error":"invalid authorization format"}`, http.StatusUnauthorized)
				return
			}
			if token == "" {
				http.Error(w, `{"error":"missing authorization token"}`, http.StatusUnauthorized)
				return
			}

			claims, err := seats.ValidateSeat(token)
			if err != nil {
				http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSeat(r.Context(), claims)))
		})
	}
}

func tokenFromRequest(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return r.URL.Query().Get("token"), true
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// WithSeat stores a seat in ctx.
func WithSeat(ctx context.Context, seat *SeatClaims) context.Context {
	return context.WithValue(ctx, seatKey, seat)
}

// SeatFromContext returns the authenticated seat, or nil.
func SeatFromContext(ctx context.Context) *SeatClaims {
	seat, _ := ctx.Value(seatKey).(*SeatClaims)
	return seat
}
