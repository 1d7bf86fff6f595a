package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seatCapture(got **SeatClaims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = SeatFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddlewareBearer(t *testing.T) {
	mgr := NewSeatManager("test-secret", 0)
	token, _ := mgr.IssueSeat("g1", "turkey")

	var seat *SeatClaims
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	Middleware(mgr)(seatCapture(&seat)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seat)
	assert.Equal(t, "turkey", seat.Power)
}

func TestMiddlewareQueryToken(t *testing.T) {
	mgr := NewSeatManager("test-secret", 0)
	token, _ := mgr.IssueSeat("g1", "russia")

	var seat *SeatClaims
	rec := httptest.NewRecorder()
	Middleware(mgr)(seatCapture(&seat)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seat)
	assert.Equal(t, "g1", seat.GameID)
}

func TestMiddlewareRejects(t *testing.T) {
	mgr := NewSeatManager("test-secret", 0)
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"wrong scheme", "Basic abc"},
		{"no token", "Bearer"},
		{"garbage", "Bearer not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			Middleware(mgr)(inner).ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestSeatFromContext(t *testing.T) {
	assert.Nil(t, SeatFromContext(context.Background()))
	ctx := SetSeatForTest(context.Background(), "g", "austria")
	assert.Equal(t, "austria", SeatFromContext(ctx).Power)
}
