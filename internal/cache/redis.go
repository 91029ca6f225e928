// Package cache provides Redis access for sessions, rate limits and notification state.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// namespace prefixes every key this service writes, so the Redis database
// can be shared with other tools.
const namespace = "canteen"

// key joins a namespaced Redis key, e.g. key("session", h) -> "canteen:session:<h>".
func key(parts ...string) string {
	return namespace + ":" + strings.Join(parts, ":")
}

// Cache is the Redis store behind sessions, last-seen statuses and rate limits.
type Cache struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection.
// Pool settings given as URL query parameters (pool_size, min_idle_conns)
// take precedence over the defaults below.
func New(ctx context.Context, redisURL string) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	applyPoolDefaults(opt)

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// Requests touch Redis a handful of times each (session, rate limit,
// notification hash), so a small pool is enough.
func applyPoolDefaults(opt *redis.Options) {
	if opt.PoolSize == 0 {
		opt.PoolSize = 10
	}
	if opt.MinIdleConns == 0 {
		opt.MinIdleConns = 2
	}
	if opt.PoolTimeout == 0 {
		opt.PoolTimeout = 4 * time.Second
	}
	if opt.ConnMaxIdleTime == 0 {
		opt.ConnMaxIdleTime = 5 * time.Minute
	}
}

// Ping is used by the readiness probe.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client exposes the raw client to test helpers that flush the database.
func (c *Cache) Client() *redis.Client {
	return c.client
}
