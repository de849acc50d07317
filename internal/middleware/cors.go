// Package middleware provides HTTP middleware for the Rentdesk API.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig controls cross-origin access for browser clients.
type CORSConfig struct {
	// AllowedOrigins lists exact origins or "*.domain" subdomain patterns.
	// An empty list rejects every cross-origin request.
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	ExposedHeaders []string
	// AllowCredentials must stay false when origins are broad patterns.
	AllowCredentials bool
	// MaxAge caches preflight results, in seconds.
	MaxAge int
}

// DefaultCORSConfig allows no origins until configured.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Accept", RequestIDHeader, TraceIDHeader},
		ExposedHeaders: []string{RequestIDHeader, "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:         12 * 60 * 60,
	}
}

type originMatcher struct {
	exact    map[string]struct{}
	suffixes []string
}

func newOriginMatcher(origins []string) originMatcher {
	m := originMatcher{exact: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		o = strings.ToLower(strings.TrimSpace(o))
		if rest, ok := strings.CutPrefix(o, "*."); ok {
			m.suffixes = append(m.suffixes, "."+rest)
			continue
		}
		if o != "" {
			m.exact[o] = struct{}{}
		}
	}
	return m
}

// allows matches an Origin header such as "https://app.example.com".
// Wildcard patterns only match a host that has a label before the suffix.
func (m originMatcher) allows(origin string) bool {
	origin = strings.ToLower(origin)
	if _, ok := m.exact[origin]; ok {
		return true
	}
	_, host, ok := strings.Cut(origin, "://")
	if !ok {
		return false
	}
	for _, suffix := range m.suffixes {
		if label, found := strings.CutSuffix(host, suffix); found && label != "" && !strings.Contains(label, "/") {
			return true
		}
	}
	return false
}

// CORS answers preflight requests and decorates responses for allowed origins.
// Requests from other origins pass through untouched so the browser blocks them;
// their preflights get 403.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	matcher := newOriginMatcher(cfg.AllowedOrigins)
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	exposed := strings.Join(cfg.ExposedHeaders, ", ")
	var maxAge string
	if cfg.MaxAge > 0 {
		maxAge = strconv.Itoa(cfg.MaxAge)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Add("Vary", "Origin")
			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""

			if !matcher.allows(origin) {
				if preflight {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			h.Set("Access-Control-Allow-Origin", origin)
			if cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			if exposed != "" {
				h.Set("Access-Control-Expose-Headers", exposed)
			}

			if !preflight {
				next.ServeHTTP(w, r)
				return
			}
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			if maxAge != "" {
				h.Set("Access-Control-Max-Age", maxAge)
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
