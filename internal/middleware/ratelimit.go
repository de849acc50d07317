package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/rentdesk/rentdesk/internal/auth"
	"github.com/rentdesk/rentdesk/internal/cache"
)

// RateLimiter is the Redis-backed token bucket.
type RateLimiter interface {
	CheckUserRateLimit(ctx context.Context, userID string, ratePerMinute, burst int) (*cache.RateLimitResult, error)
	CheckIPRateLimit(ctx context.Context, ip string, ratePerMinute, burst int) (*cache.RateLimitResult, error)
}

// RateLimitConfig holds configuration for rate limiting middleware.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Limiter RateLimiter
	Enabled bool
	// Requests per minute and burst per bucket
	RequestsPerMinute int
	Burst             int
}

// RateLimitAPI returns middleware that rate limits API requests per user.
// Must be applied after Auth middleware. Redis errors fail open.
func RateLimitAPI(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			authCtx := auth.AuthFromContext(r.Context())
			if authCtx == nil {
				// No auth context - should not happen if Auth middleware ran first
				next.ServeHTTP(w, r)
				return
			}

			result, err := cfg.Limiter.CheckUserRateLimit(r.Context(), authCtx.UserID, cfg.RequestsPerMinute, cfg.Burst)
			if err != nil {
				cfg.Logger.Error("rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("user_id", authCtx.UserID),
				)
				next.ServeHTTP(w, r)
				return
			}

			setRateLimitHeaders(w, cfg.RequestsPerMinute, result.Remaining, result.ResetAt)

			if !result.Allowed {
				cfg.Logger.Warn("rate limit exceeded",
					slog.String("user_id", authCtx.UserID),
					slog.String("type", "api"),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int64("retry_after_seconds", int64(result.RetryAfter.Seconds())),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeRateLimitError(w, result.RetryAfter)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitIP returns middleware that rate limits anonymous requests per IP
// in Redis, shared by every API instance. Used on public auth routes.
func RateLimitIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			ip := getClientIP(r)
			result, err := cfg.Limiter.CheckIPRateLimit(r.Context(), ip, cfg.RequestsPerMinute, cfg.Burst)
			if err != nil {
				cfg.Logger.Error("IP rate limit check failed", slog.String("error", err.Error()))
				next.ServeHTTP(w, r)
				return
			}

			if !result.Allowed {
				cfg.Logger.Warn("rate limit exceeded",
					slog.String("type", "ip"),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeRateLimitError(w, result.RetryAfter)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LoginThrottle limits login attempts per client IP in process memory.
type LoginThrottle struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	now      func() time.Time
	onReject func()
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLoginThrottle allows perMinute attempts per IP with the given burst.
// onReject, when set, is called for every throttled attempt.
func NewLoginThrottle(perMinute, burst int, onReject func()) *LoginThrottle {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60)
	}
	return &LoginThrottle{
		limiters: make(map[string]*ipLimiter),
		limit:    limit,
		burst:    burst,
		idleTTL:  10 * time.Minute,
		now:      time.Now,
		onReject: onReject,
	}
}

// Allow reports whether ip may attempt a login now, and if not how long to wait.
func (t *LoginThrottle) Allow(ip string) (bool, time.Duration) {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.limiters[ip]
	if !ok {
		l = &ipLimiter{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.limiters[ip] = l
	}
	l.lastSeen = now

	res := l.limiter.ReserveN(now, 1)
	delay := res.DelayFrom(now)
	if delay == 0 {
		return true, 0
	}
	res.CancelAt(now)
	return false, delay
}

// Sweep forgets IPs idle for longer than the idle TTL.
func (t *LoginThrottle) Sweep() {
	cutoff := t.now().Add(-t.idleTTL)

	t.mu.Lock()
	defer t.mu.Unlock()
	for ip, l := range t.limiters {
		if l.lastSeen.Before(cutoff) {
			delete(t.limiters, ip)
		}
	}
}

// Middleware rejects throttled attempts with 429.
func (t *LoginThrottle) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, wait := t.Allow(getClientIP(r))
		if !allowed {
			if t.onReject != nil {
				t.onReject()
			}
			writeRateLimitError(w, wait)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// setRateLimitHeaders sets standard rate limit response headers.
func setRateLimitHeaders(w http.ResponseWriter, limit int, remaining int64, resetAt time.Time) {
	if limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
	}
}

// writeRateLimitError writes a 429 Too Many Requests response.
func writeRateLimitError(w http.ResponseWriter, retryAfter time.Duration) {
	seconds := int(math.Ceil(retryAfter.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	writeErrorJSON(w, http.StatusTooManyRequests, "RATE_LIMITED",
		fmt.Sprintf("Rate limit exceeded. Retry after %d seconds.", seconds))
}

// getClientIP extracts the client IP from the request.
// chi's RealIP middleware has already folded proxy headers into RemoteAddr.
func getClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
