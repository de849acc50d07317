package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
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

// tokenBucketScript refills and draws from a bucket atomically.
// Times are in milliseconds so sub-second refill is not lost.
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local data = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(data[1]) or burst
local ts = tonumber(data[2]) or now
if now > ts then
	tokens = math.min(burst, tokens + (now - ts) * rate / 1000)
end

local allowed = 0
local wait = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
else
	wait = math.ceil((1 - tokens) * 1000 / rate)
end

redis.call('HSET', key, 'tokens', tokens, 'ts', now)
redis.call('PEXPIRE', key, ttl)

local full = math.ceil((burst - tokens) * 1000 / rate)
return {allowed, wait, math.floor(tokens), full}
`)

// CheckUserRateLimit draws from an authenticated user's API bucket.
func (c *Cache) CheckUserRateLimit(ctx context.Context, userID string, ratePerMinute, burst int) (*RateLimitResult, error) {
	return c.draw(ctx, key("ratelimit", "user", userID), ratePerMinute, burst)
}

// CheckIPRateLimit draws from an anonymous client's bucket. The IP is
// hashed so raw addresses never land in Redis.
func (c *Cache) CheckIPRateLimit(ctx context.Context, ip string, ratePerMinute, burst int) (*RateLimitResult, error) {
	return c.draw(ctx, key("ratelimit", "ip", hashIP(ip)), ratePerMinute, burst)
}

func (c *Cache) draw(ctx context.Context, bucket string, ratePerMinute, burst int) (*RateLimitResult, error) {
	now := c.now()
	if ratePerMinute <= 0 {
		return &RateLimitResult{Allowed: true, Remaining: int64(burst), ResetAt: now}, nil
	}
	if burst < 1 {
		burst = 1
	}

	perSecond := float64(ratePerMinute) / 60
	res, err := tokenBucketScript.Run(ctx, c.client, []string{bucket},
		perSecond, burst, now.UnixMilli(), bucketTTL(ratePerMinute, burst).Milliseconds(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit %s: %w", bucket, err)
	}
	if len(res) != 4 {
		return nil, fmt.Errorf("rate limit %s: unexpected script reply %v", bucket, res)
	}

	return &RateLimitResult{
		Allowed:    res[0] == 1,
		RetryAfter: time.Duration(res[1]) * time.Millisecond,
		Remaining:  res[2],
		ResetAt:    now.Add(time.Duration(res[3]) * time.Millisecond),
	}, nil
}

// bucketTTL keeps a bucket just long enough to refill completely;
// an expired bucket is equivalent to a full one.
func bucketTTL(ratePerMinute, burst int) time.Duration {
	refill := time.Duration(math.Ceil(float64(burst)*60/float64(ratePerMinute))) * time.Second
	return refill + time.Minute
}

func hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:8])
}
