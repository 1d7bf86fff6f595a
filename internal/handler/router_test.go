package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freeeve/polite-betrayal/adjudicator/internal/auth"
	"github.com/freeeve/polite-betrayal/adjudicator/internal/model"
	"github.com/freeeve/polite-betrayal/adjudicator/internal/repository/memory"
	"github.com/freeeve/polite-betrayal/adjudicator/internal/service"
)

type testServer struct {
	handler http.Handler
	hub     *Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.New()
	hub := NewHub()
	seats := auth.NewSeatManager("test-secret", 0)
	phases := service.NewPhaseService(store, store, store, hub)
	defaults := service.GameDefaults{
		MovementDuration: time.Hour,
		RetreatDuration:  time.Hour,
		BuildDuration:    time.Hour,
		MaxYears:         30,
	}
	return &testServer{
		hub: hub,
		handler: NewRouter(Services{
			Games:  service.NewGameService(store, store, store, seats, defaults),
			Orders: service.NewOrderService(store, store, store, phases, hub),
			Phases: phases,
			Seats:  seats,
			Hub:    hub,
		}, "*"),
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// createGame starts a seven-power game and returns it with a token per power.
func (s *testServer) createGame(t *testing.T) (*model.Game, map[string]string) {
	t.Helper()
	seed := uint64(3)
	rec := s.do(t, http.MethodPost, "/api/v1/games", "", service.CreateGameInput{
		Name: "lunch", NumPowers: 7, Seed: &seed,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp createGameResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	tokens := make(map[string]string, len(resp.Seats))
	for _, seat := range resp.Seats {
		tokens[seat.Power] = seat.Token
	}
	return resp.Game, tokens
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateGameIssuesSeats(t *testing.T) {
	s := newTestServer(t)
	game, tokens := s.createGame(t)

	assert.Equal(t, model.StatusActive, game.Status)
	assert.Len(t, game.Powers, 7)
	assert.Len(t, tokens, 7)
	for _, p := range game.Powers {
		assert.NotEmpty(t, tokens[p], p)
	}
}

func TestCreateGameRejectsBadInput(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/v1/games", "", map[string]any{"name": "x", "num_powers": 9})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/games", strings.NewReader("{"))
	raw := httptest.NewRecorder()
	s.handler.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestGetGameAndState(t *testing.T) {
	s := newTestServer(t)
	game, _ := s.createGame(t)

	rec := s.do(t, http.MethodGet, "/api/v1/games/"+game.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got model.Game
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, game.ID, got.ID)

	rec = s.do(t, http.MethodGet, "/api/v1/games/"+game.ID+"/state", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var st map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, float64(1901), st["year"])
	assert.Equal(t, "spring", st["season"])
	assert.Equal(t, "movement", st["phase"])

	rec = s.do(t, http.MethodGet, "/api/v1/games/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetMapIsPlainText(t *testing.T) {
	s := newTestServer(t)
	game, _ := s.createGame(t)

	rec := s.do(t, http.MethodGet, "/api/v1/games/"+game.ID+"/map", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "DIPLOMACY MAP OVERVIEW"))
}

func TestSeatRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	game, tokens := s.createGame(t)
	other, _ := s.createGame(t)

	rec := s.do(t, http.MethodGet, "/api/v1/games/"+game.ID+"/orderable", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/games/"+game.ID+"/orderable", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/games/"+other.ID+"/orderable", tokens["france"], nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/games/"+game.ID+"/orderable", tokens["france"], nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Power     string   `json:"power"`
		Locations []string `json:"locations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "france", resp.Power)
	assert.ElementsMatch(t, []string{"PAR", "MAR", "BRE"}, resp.Locations)
}

func TestSubmitAndReadOrders(t *testing.T) {
	s := newTestServer(t)
	game, tokens := s.createGame(t)
	path := "/api/v1/games/" + game.ID + "/orders"

	rec := s.do(t, http.MethodPost, path, tokens["france"], service.OrderSubmission{
		Orders: []string{"A PAR - BUR", "A MAR - MOS", " "},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Power  string                  `json:"power"`
		Orders []service.OrderFeedback `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Orders, 2)
	assert.True(t, resp.Orders[0].Valid)
	assert.False(t, resp.Orders[1].Valid)
	assert.NotEmpty(t, resp.Orders[1].Reason)

	rec = s.do(t, http.MethodGet, path, tokens["france"], nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var staged struct {
		Orders []string `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &staged))
	assert.Equal(t, []string{"A PAR - BUR", "A MAR - MOS"}, staged.Orders)

	rec = s.do(t, http.MethodGet, path, tokens["germany"], nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &staged))
	assert.Empty(t, staged.Orders)
}

func TestAllReadyResolvesPhase(t *testing.T) {
	s := newTestServer(t)
	game, tokens := s.createGame(t)
	base := "/api/v1/games/" + game.ID

	rec := s.do(t, http.MethodPost, base+"/orders", tokens["france"], service.OrderSubmission{
		Orders: []string{"A PAR - BUR"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var status service.ReadyStatus
	for i, p := range game.Powers {
		rec = s.do(t, http.MethodPost, base+"/orders/ready", tokens[p], nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		assert.Equal(t, i == len(game.Powers)-1, status.Resolved, p)
	}

	rec = s.do(t, http.MethodGet, base+"/phases", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var phases []model.Phase
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &phases))
	require.Len(t, phases, 2)
	assert.NotNil(t, phases[0].ResolvedAt)
	assert.Equal(t, "fall", phases[1].Season)

	rec = s.do(t, http.MethodGet, base+"/phases/"+phases[0].ID+"/orders", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []model.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	var found bool
	for _, o := range orders {
		if o.Power == "france" && o.Text == "A PAR - BUR" {
			found = true
			assert.Equal(t, "succeeded", o.Result)
		}
	}
	assert.True(t, found, "move should be in the phase history")

	rec = s.do(t, http.MethodGet, base+"/phases/nope/orders", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebSocketReceivesGameEvents(t *testing.T) {
	s := newTestServer(t)
	game, tokens := s.createGame(t)
	srv := httptest.NewServer(s.handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws?token=" + tokens["england"]
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	defer conn.Close()

	read := func() WSEvent {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var ev WSEvent
		require.NoError(t, conn.ReadJSON(&ev))
		return ev
	}

	welcome := read()
	assert.Equal(t, "connected", welcome.Type)
	assert.Equal(t, game.ID, welcome.GameID)
	assert.Equal(t, 1, s.hub.GameSubscriberCount(game.ID))

	joined := read()
	assert.Equal(t, EventSeatConnected, joined.Type)
	assert.Equal(t, map[string]any{"power": "england", "online": []any{"england"}}, joined.Data)

	rec := s.do(t, http.MethodPost, "/api/v1/games/"+game.ID+"/orders", tokens["france"], service.OrderSubmission{
		Orders: []string{"A PAR H"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	ev := read()
	assert.Equal(t, service.EventOrdersSubmitted, ev.Type)
	assert.Equal(t, map[string]any{"power": "france", "count": float64(1)}, ev.Data)
}

func TestWebSocketRejectsMissingToken(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
