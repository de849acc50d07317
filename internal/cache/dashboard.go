package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// GetDashboard loads a user's cached dashboard into dst.
// Returns ErrCacheMiss if nothing usable is cached.
func (c *Cache) GetDashboard(ctx context.Context, userID string, dst any) error {
	data, err := c.client.Get(ctx, key("dashboard", userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		// Corrupted entry - treat as miss
		return ErrCacheMiss
	}
	return nil
}

// SetDashboard caches a user's dashboard for ttl.
func (c *Cache) SetDashboard(ctx context.Context, userID string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal dashboard: %w", err)
	}
	return c.client.Set(ctx, key("dashboard", userID), data, ttl).Err()
}

// InvalidateDashboards drops the cached dashboards of the given users.
func (c *Cache) InvalidateDashboards(ctx context.Context, userIDs ...string) error {
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if id != "" {
			keys = append(keys, key("dashboard", id))
		}
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
