package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/canteenrush/canteenrush/internal/model"
)

func seenKey(sessionID string) string {
	return key("seen", sessionID)
}

// LastSeenStatuses returns the order statuses last shown to a session,
// keyed by order ID. A session that never polled gets an empty map.
func (c *Cache) LastSeenStatuses(ctx context.Context, sessionID string) (map[string]model.Status, error) {
	result, err := c.client.HGetAll(ctx, seenKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}
	return decodeSeen(result), nil
}

// SaveLastSeen replaces the statuses stored for a session.
func (c *Cache) SaveLastSeen(ctx context.Context, sessionID string, statuses map[string]model.Status, ttl time.Duration) error {
	key := seenKey(sessionID)

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(statuses) > 0 {
		pipe.HSet(ctx, key, encodeSeen(statuses)...)
		pipe.Expire(ctx, key, ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save last seen failed: %w", err)
	}
	return nil
}

func decodeSeen(raw map[string]string) map[string]model.Status {
	statuses := make(map[string]model.Status, len(raw))
	for id, status := range raw {
		statuses[id] = model.Status(status)
	}
	return statuses
}

func encodeSeen(statuses map[string]model.Status) []any {
	values := make([]any, 0, len(statuses)*2)
	for id, status := range statuses {
		values = append(values, id, string(status))
	}
	return values
}
