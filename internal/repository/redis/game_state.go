package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "game:"

func stateKey(gameID string) string         { return keyPrefix + gameID + ":state" }
func ordersKey(gameID, power string) string { return keyPrefix + gameID + ":orders:" + power }
func readyKey(gameID string) string         { return keyPrefix + gameID + ":ready" }
func timerKey(gameID string) string         { return keyPrefix + gameID + ":timer" }

// TimerGameID returns the game id of a timer key, or false for any other key.
func TimerGameID(key string) (string, bool) {
	if !strings.HasPrefix(key, keyPrefix) || !strings.HasSuffix(key, ":timer") {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(key, keyPrefix), ":timer")
	if id == "" || strings.Contains(id, ":") {
		return "", false
	}
	return id, true
}

// SetGameState stores the engine snapshot JSON.
func (c *Client) SetGameState(ctx context.Context, gameID string, state json.RawMessage) error {
	return c.rdb.Set(ctx, stateKey(gameID), []byte(state), 0).Err()
}

// GetGameState returns the engine snapshot JSON, or nil if none is cached.
func (c *Client) GetGameState(ctx context.Context, gameID string) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, stateKey(gameID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get game state: %w", err)
	}
	return json.RawMessage(data), nil
}

// SetOrders replaces a power's staged orders for the current phase.
func (c *Client) SetOrders(ctx context.Context, gameID, power string, orders []string) error {
	data, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("marshal orders: %w", err)
	}
	return c.rdb.Set(ctx, ordersKey(gameID, power), data, 0).Err()
}

// GetOrders returns a power's staged orders, or nil if none were staged.
func (c *Client) GetOrders(ctx context.Context, gameID, power string) ([]string, error) {
	data, err := c.rdb.Get(ctx, ordersKey(gameID, power)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get orders: %w", err)
	}
	var orders []string
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("decode orders for %s: %w", power, err)
	}
	return orders, nil
}

// GetAllOrders returns staged orders for every listed power that has any.
func (c *Client) GetAllOrders(ctx context.Context, gameID string, powers []string) (map[string][]string, error) {
	out := make(map[string][]string, len(powers))
	for _, power := range powers {
		orders, err := c.GetOrders(ctx, gameID, power)
		if err != nil {
			return nil, err
		}
		if orders != nil {
			out[power] = orders
		}
	}
	return out, nil
}

// MarkReady adds a power to the game's ready set.
func (c *Client) MarkReady(ctx context.Context, gameID, power string) error {
	return c.rdb.SAdd(ctx, readyKey(gameID), power).Err()
}

// ReadyPowers returns the powers that have marked ready.
func (c *Client) ReadyPowers(ctx context.Context, gameID string) ([]string, error) {
	return c.rdb.SMembers(ctx, readyKey(gameID)).Result()
}

// phaseGracePeriod lets the timer key expire a little after the displayed deadline.
const phaseGracePeriod = 5 * time.Second

// SetTimer writes a key that expires at the deadline plus a grace period;
// its expiry event triggers resolution.
func (c *Client) SetTimer(ctx context.Context, gameID string, deadline time.Time) error {
	ttl := time.Until(deadline) + phaseGracePeriod
	if ttl <= 0 {
		ttl = time.Second
	}
	return c.rdb.Set(ctx, timerKey(gameID), deadline.Unix(), ttl).Err()
}

// ClearTimer removes the game's timer.
func (c *Client) ClearTimer(ctx context.Context, gameID string) error {
	return c.rdb.Del(ctx, timerKey(gameID)).Err()
}

// ClearPhaseData drops staged orders, the ready set and the timer.
func (c *Client) ClearPhaseData(ctx context.Context, gameID string, powers []string) error {
	keys := []string{readyKey(gameID), timerKey(gameID)}
	for _, power := range powers {
		keys = append(keys, ordersKey(gameID, power))
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// DeleteGameData drops everything cached for a finished game.
func (c *Client) DeleteGameData(ctx context.Context, gameID string, powers []string) error {
	keys := []string{stateKey(gameID), readyKey(gameID), timerKey(gameID)}
	for _, power := range powers {
		keys = append(keys, ordersKey(gameID, power))
	}
	return c.rdb.Del(ctx, keys...).Err()
}
