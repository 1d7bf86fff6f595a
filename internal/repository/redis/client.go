package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Client keeps live game data in Redis.
type Client struct {
	rdb *redis.Client
}

// NewClient connects from a redis:// URL and pings the server.
func NewClient(ctx context.Context, redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// NewClientFromPool wraps an existing redis.Client.
func NewClientFromPool(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Close closes the connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Underlying exposes the raw client for keyspace notifications.
func (c *Client) Underlying() *redis.Client {
	return c.rdb
}

// EnableExpiryEvents turns on keyspace notifications for expired keys.
func (c *Client) EnableExpiryEvents(ctx context.Context) error {
	return c.rdb.ConfigSet(ctx, "notify-keyspace-events", "Ex").Err()
}
