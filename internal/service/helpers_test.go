package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/freeeve/polite-betrayal/adjudicator/internal/model"
	"github.com/freeeve/polite-betrayal/adjudicator/internal/repository/memory"
)

type fakeSeats struct{}

func (fakeSeats) IssueSeat(gameID, power string) (string, error) {
	return "seat:" + gameID + ":" + power, nil
}

type event struct {
	gameID string
	kind   string
	data   any
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []event
}

func (b *recordingBroadcaster) BroadcastGameEvent(gameID, kind string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event{gameID, kind, data})
}

func (b *recordingBroadcaster) kinds() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.kind
	}
	return out
}

func (b *recordingBroadcaster) last(kind string) map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.events) - 1; i >= 0; i-- {
		if b.events[i].kind == kind {
			data, _ := b.events[i].data.(map[string]any)
			return data
		}
	}
	return nil
}

var testDefaults = GameDefaults{
	MovementDuration: 24 * time.Hour,
	RetreatDuration:  12 * time.Hour,
	BuildDuration:    12 * time.Hour,
	MaxYears:         30,
}

type testEnv struct {
	store  *memory.Store
	bc     *recordingBroadcaster
	games  *GameService
	orders *OrderService
	phases *PhaseService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.New()
	bc := &recordingBroadcaster{}
	phases := NewPhaseService(store, store, store, bc)
	return &testEnv{
		store:  store,
		bc:     bc,
		games:  NewGameService(store, store, store, fakeSeats{}, testDefaults),
		orders: NewOrderService(store, store, store, phases, bc),
		phases: phases,
	}
}

// createGame starts a seven-power game so every power's position is known.
func (e *testEnv) createGame(t *testing.T, maxYears int) *model.Game {
	t.Helper()
	seed := uint64(7)
	g, _, err := e.games.CreateGame(context.Background(), CreateGameInput{
		Name: "test", NumPowers: 7, Seed: &seed, MaxYears: maxYears,
	})
	require.NoError(t, err)
	return g
}

// play stages orders for the listed powers and marks every power with
// something to order ready, which resolves the phase.
func (e *testEnv) play(t *testing.T, gameID string, orders map[string][]string) {
	t.Helper()
	ctx := context.Background()
	for p, texts := range orders {
		_, err := e.orders.SubmitOrders(ctx, gameID, p, texts)
		require.NoError(t, err)
	}
	game, err := e.games.GetGame(ctx, gameID)
	require.NoError(t, err)
	for _, p := range game.Powers {
		locs, err := e.games.Orderable(ctx, gameID, p)
		require.NoError(t, err)
		if len(locs) == 0 {
			continue
		}
		_, err = e.orders.MarkReady(ctx, gameID, p)
		require.NoError(t, err)
	}
}
