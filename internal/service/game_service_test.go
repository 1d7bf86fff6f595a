package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freeeve/polite-betrayal/adjudicator/pkg/diplomacy"
)

func TestCreateGame(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	env.games.now = func() time.Time { return fixed }

	seed := uint64(99)
	game, seats, err := env.games.CreateGame(ctx, CreateGameInput{Name: "  Friday game ", NumPowers: 3, Seed: &seed})
	require.NoError(t, err)

	assert.Equal(t, "Friday game", game.Name)
	assert.Equal(t, uint64(99), game.Seed)
	assert.Equal(t, 30, game.MaxYears)
	assert.Equal(t, "24h0m0s", game.MovementDuration)
	require.Len(t, game.Powers, 3)
	require.Len(t, seats, 3)
	for i, seat := range seats {
		assert.Equal(t, game.Powers[i], seat.Power)
		assert.Equal(t, "seat:"+game.ID+":"+seat.Power, seat.Token)
	}

	phase, err := env.store.CurrentPhase(ctx, game.ID)
	require.NoError(t, err)
	require.NotNil(t, phase)
	assert.Equal(t, 1901, phase.Year)
	assert.Equal(t, "spring", phase.Season)
	assert.Equal(t, "movement", phase.PhaseType)
	assert.Equal(t, fixed.Add(24*time.Hour), phase.Deadline)

	deadline, ok := env.store.Timer(game.ID)
	require.True(t, ok)
	assert.Equal(t, phase.Deadline, deadline)

	st, err := env.games.State(ctx, game.ID)
	require.NoError(t, err)
	assert.Len(t, st.Powers, 3)
}

func TestCreateGameSameSeedSamePowers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seed := uint64(12345)

	a, _, err := env.games.CreateGame(ctx, CreateGameInput{Name: "a", NumPowers: 4, Seed: &seed})
	require.NoError(t, err)
	b, _, err := env.games.CreateGame(ctx, CreateGameInput{Name: "b", NumPowers: 4, Seed: &seed})
	require.NoError(t, err)
	assert.Equal(t, a.Powers, b.Powers)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestCreateGameInvalidInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateGameInput
	}{
		{"blank name", CreateGameInput{Name: " ", NumPowers: 7}},
		{"too few powers", CreateGameInput{Name: "g", NumPowers: 2}},
		{"too many powers", CreateGameInput{Name: "g", NumPowers: 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := env.games.CreateGame(ctx, tt.in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	active, _ := env.store.ListActive(ctx)
	assert.Empty(t, active, "no game is stored for rejected input")
}

func TestGameQueries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	game := env.createGame(t, 0)

	text, err := env.games.MapText(ctx, game.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "DIPLOMACY MAP OVERVIEW\n"))
	assert.Contains(t, text, "Spring 1901 Movement")

	locs, err := env.games.Orderable(ctx, game.ID, string(diplomacy.France))
	require.NoError(t, err)
	assert.Equal(t, []string{"BRE", "MAR", "PAR"}, locs)

	_, err = env.games.GetGame(ctx, "missing")
	assert.ErrorIs(t, err, ErrGameNotFound)
	_, err = env.games.State(ctx, "missing")
	assert.ErrorIs(t, err, ErrGameNotFound)
	_, err = env.games.Orderable(ctx, "missing", "france")
	assert.ErrorIs(t, err, ErrGameNotFound)
}
