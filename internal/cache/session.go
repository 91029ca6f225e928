package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/canteenrush/canteenrush/internal/model"
)

// CachedSession represents a session stored in Redis.
type CachedSession struct {
	Role      model.Role `json:"role"`
	UserID    string     `json:"user_id,omitempty"`
	VendorID  int64      `json:"vendor_id,omitempty"`
	AdminID   int64      `json:"admin_id,omitempty"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
}

func sessionKey(tokenHash string) string {
	return key("session", tokenHash)
}

// SetSession stores a session under the hash of its bearer token.
func (c *Cache) SetSession(ctx context.Context, tokenHash string, sess *model.Session, ttl time.Duration) error {
	cached := CachedSession{
		Role:      sess.Role,
		UserID:    sess.UserID,
		VendorID:  sess.VendorID,
		AdminID:   sess.AdminID,
		Name:      sess.Name,
		CreatedAt: sess.CreatedAt,
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return c.client.Set(ctx, sessionKey(tokenHash), data, ttl).Err()
}

// GetSession retrieves a session by token hash.
// Returns nil if not found or expired.
func (c *Cache) GetSession(ctx context.Context, tokenHash string) (*model.Session, error) {
	data, err := c.client.Get(ctx, sessionKey(tokenHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get session failed: %w", err)
	}

	var cached CachedSession
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted entry - treat as logged out
		return nil, nil //nolint:nilerr
	}

	return &model.Session{
		ID:        tokenHash,
		Role:      cached.Role,
		UserID:    cached.UserID,
		VendorID:  cached.VendorID,
		AdminID:   cached.AdminID,
		Name:      cached.Name,
		CreatedAt: cached.CreatedAt,
	}, nil
}

// DeleteSession removes a session and its notification state.
func (c *Cache) DeleteSession(ctx context.Context, tokenHash string) error {
	return c.client.Del(ctx, sessionKey(tokenHash), seenKey(tokenHash)).Err()
}
