// Package cache wraps the Redis instance Rentdesk uses for dashboards,
// rate-limit buckets and the logout denylist.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces every key so the database can be shared.
const keyPrefix = "rentdesk:"

// Cache holds the Redis client behind all cache operations.
type Cache struct {
	client *redis.Client
	now    func() time.Time
}

// New parses redisURL, applies pool settings and pings the server.
func New(ctx context.Context, redisURL string) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opt.PoolSize = 20
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Cache{client: client, now: time.Now}, nil
}

// Ping reports whether Redis answers; used by /readyz.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client exposes the raw client for the activity stream.
func (c *Cache) Client() *redis.Client {
	return c.client
}

// key joins parts under the application prefix.
func key(parts ...string) string {
	return keyPrefix + strings.Join(parts, ":")
}
