package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewClientFromPool(rdb), mr
}

func TestGameStateRoundTrip(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	got, err := c.GetGameState(ctx, "g1")
	require.NoError(t, err)
	assert.Nil(t, got)

	state := json.RawMessage(`{"year":1901,"season":"spring"}`)
	require.NoError(t, c.SetGameState(ctx, "g1", state))
	got, err = c.GetGameState(ctx, "g1")
	require.NoError(t, err)
	assert.JSONEq(t, string(state), string(got))
}

func TestOrdersPerPower(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.SetOrders(ctx, "g1", "France", []string{"A PAR - BUR", "F BRE H"}))
	require.NoError(t, c.SetOrders(ctx, "g1", "Germany", []string{"A MUN H"}))

	fr, err := c.GetOrders(ctx, "g1", "France")
	require.NoError(t, err)
	assert.Equal(t, []string{"A PAR - BUR", "F BRE H"}, fr)

	missing, err := c.GetOrders(ctx, "g1", "England")
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := c.GetAllOrders(ctx, "g1", []string{"France", "Germany", "England"})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, []string{"A MUN H"}, all["Germany"])
	assert.NotContains(t, all, "England")

	// Resubmitting replaces the earlier batch.
	require.NoError(t, c.SetOrders(ctx, "g1", "France", []string{"A PAR H"}))
	fr, err = c.GetOrders(ctx, "g1", "France")
	require.NoError(t, err)
	assert.Equal(t, []string{"A PAR H"}, fr)
}

func TestReadySet(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	ready, err := c.ReadyPowers(ctx, "g1")
	require.NoError(t, err)
	assert.Empty(t, ready)

	require.NoError(t, c.MarkReady(ctx, "g1", "France"))
	require.NoError(t, c.MarkReady(ctx, "g1", "Germany"))
	require.NoError(t, c.MarkReady(ctx, "g1", "France"))

	ready, err = c.ReadyPowers(ctx, "g1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"France", "Germany"}, ready)
}

func TestTimerTTL(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.SetTimer(ctx, "g1", time.Now().Add(10*time.Second)))
	ttl := mr.TTL(timerKey("g1"))
	assert.Greater(t, ttl, 10*time.Second)
	assert.LessOrEqual(t, ttl, 10*time.Second+phaseGracePeriod)

	require.NoError(t, c.SetTimer(ctx, "g2", time.Now().Add(-time.Minute)))
	assert.Equal(t, time.Second, mr.TTL(timerKey("g2")))

	require.NoError(t, c.ClearTimer(ctx, "g1"))
	assert.False(t, mr.Exists(timerKey("g1")))
}

func TestClearPhaseDataKeepsState(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()
	powers := []string{"France", "Germany"}

	require.NoError(t, c.SetGameState(ctx, "g1", json.RawMessage(`{}`)))
	require.NoError(t, c.SetOrders(ctx, "g1", "France", []string{"A PAR H"}))
	require.NoError(t, c.MarkReady(ctx, "g1", "France"))
	require.NoError(t, c.SetTimer(ctx, "g1", time.Now().Add(time.Minute)))

	require.NoError(t, c.ClearPhaseData(ctx, "g1", powers))
	assert.False(t, mr.Exists(ordersKey("g1", "France")))
	assert.False(t, mr.Exists(readyKey("g1")))
	assert.False(t, mr.Exists(timerKey("g1")))
	assert.True(t, mr.Exists(stateKey("g1")))

	require.NoError(t, c.DeleteGameData(ctx, "g1", powers))
	assert.False(t, mr.Exists(stateKey("g1")))
}

func TestTimerGameID(t *testing.T) {
	tests := []struct {
		key  string
		id   string
		want bool
	}{
		{"game:abc:timer", "abc", true},
		{"game:abc:state", "", false},
		{"game::timer", "", false},
		{"game:abc:orders:France", "", false},
		{"other:abc:timer", "", false},
	}
	for _, tt := range tests {
		id, ok := TimerGameID(tt.key)
		assert.Equal(t, tt.want, ok, tt.key)
		assert.Equal(t, tt.id, id, tt.key)
	}
}
