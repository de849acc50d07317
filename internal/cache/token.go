package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevokeToken denylists a token ID until the token would have expired anyway.
func (c *Cache) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(c.now())
	if ttl <= 0 {
		return nil
	}
	if err := c.client.Set(ctx, key("revoked", tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsTokenRevoked reports whether a token ID has been denylisted.
func (c *Cache) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := c.client.Get(ctx, key("revoked", tokenID)).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, fmt.Errorf("check revoked token: %w", err)
	}
}

// RevokeUserTokens invalidates every token the user was issued up to cutoff.
// The marker lives for ttl, after which those tokens have expired on their own.
func (c *Cache) RevokeUserTokens(ctx context.Context, userID string, cutoff time.Time, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := c.client.Set(ctx, key("revoked", "user", userID), cutoff.Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("revoke user tokens: %w", err)
	}
	return nil
}

// UserTokenCutoff returns the instant up to which the user's tokens are
// invalid, or the zero time when none is set.
func (c *Cache) UserTokenCutoff(ctx context.Context, userID string) (time.Time, error) {
	secs, err := c.client.Get(ctx, key("revoked", "user", userID)).Int64()
	switch {
	case err == nil:
		return time.Unix(secs, 0).UTC(), nil
	case errors.Is(err, redis.Nil):
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("check user token cutoff: %w", err)
	}
}
