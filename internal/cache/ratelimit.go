package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitResult is the outcome of one token bucket draw.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// bucket describes a token bucket: refill rate in tokens per second,
// capacity, and how long an idle bucket lives in Redis.
type bucket struct {
	rate  float64
	burst int
	idle  time.Duration
}

// tokenBucket refills and draws one token atomically.
// KEYS[1] bucket hash; ARGV rate/s, burst, now (ms), idle ttl (ms).
// Returns {allowed, retry_after_ms, tokens_left}.
var tokenBucket = redis.NewScript(`
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local idle = tonumber(ARGV[4])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(state[1]) or burst
local ts = tonumber(state[2]) or now

tokens = math.min(burst, tokens + math.max(0, now - ts) / 1000 * rate)

local allowed = 0
local wait = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
else
	wait = math.ceil((1 - tokens) / rate * 1000)
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', now)
redis.call('PEXPIRE', KEYS[1], idle)

return {allowed, wait, math.floor(tokens)}
`)

// AllowOrder draws from a student's order placement bucket.
// perMinute <= 0 disables the limit.
func (c *Cache) AllowOrder(ctx context.Context, userID string, perMinute, burst int) (*RateLimitResult, error) {
	if perMinute <= 0 {
		return &RateLimitResult{Allowed: true, Remaining: int64(burst), ResetAt: time.Now().Add(time.Minute)}, nil
	}

	b := bucket{rate: float64(perMinute) / 60, burst: burst, idle: 2 * time.Minute}
	return c.draw(ctx, key("ratelimit", "orders", userID), b)
}

// AllowLogin draws from the login bucket of a client IP.
// The IP is hashed so raw addresses never reach Redis.
func (c *Cache) AllowLogin(ctx context.Context, ip string, perSecond, burst int) (*RateLimitResult, error) {
	if perSecond <= 0 {
		return &RateLimitResult{Allowed: true, Remaining: int64(burst), ResetAt: time.Now().Add(time.Second)}, nil
	}

	b := bucket{rate: float64(perSecond), burst: burst, idle: 10 * time.Second}
	return c.draw(ctx, key("ratelimit", "login", hashIP(ip)), b)
}

func (c *Cache) draw(ctx context.Context, k string, b bucket) (*RateLimitResult, error) {
	now := time.Now()

	res, err := tokenBucket.Run(ctx, c.client, []string{k},
		b.rate, b.burst, now.UnixMilli(), b.idle.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("token bucket %s: %w", k, err)
	}
	if len(res) != 3 {
		return nil, fmt.Errorf("token bucket %s: unexpected reply %v", k, res)
	}

	return &RateLimitResult{
		Allowed:    res[0] == 1,
		Remaining:  res[2],
		ResetAt:    now.Add(time.Duration(float64(time.Second) / b.rate)),
		RetryAfter: time.Duration(res[1]) * time.Millisecond,
	}, nil
}

func hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:8])
}
