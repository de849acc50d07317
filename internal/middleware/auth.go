package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rentdesk/rentdesk/internal/auth"
	"github.com/rentdesk/rentdesk/internal/model"
)

// TokenParser verifies a bearer token and returns its caller.
type TokenParser interface {
	Parse(token string) (*model.AuthContext, error)
}

// RevocationChecker reports logged-out token IDs and per-user cutoffs set
// when an account is disabled or changes role.
type RevocationChecker interface {
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
	UserTokenCutoff(ctx context.Context, userID string) (time.Time, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger      *slog.Logger
	Tokens      TokenParser
	Revocations RevocationChecker
}

// Auth returns a middleware that authenticates API requests.
// It verifies the bearer JWT, rejects revoked tokens and injects the
// auth context into the request.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reject := func(reason string) {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", reason),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
			}

			token := extractBearerToken(r)
			if token == "" {
				reject("missing_token")
				return
			}

			authCtx, err := cfg.Tokens.Parse(token)
			if err != nil {
				reject("invalid_token")
				return
			}

			if cfg.Revocations != nil {
				if reason := revocationReason(r.Context(), cfg, authCtx); reason != "" {
					reject(reason)
					return
				}
			}

			setLogUserID(r.Context(), authCtx.UserID)
			ctx := auth.ContextWithAuth(r.Context(), authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// revocationReason names why a verified token may no longer be used, or
// returns "". Redis errors fail open and are logged.
func revocationReason(ctx context.Context, cfg AuthConfig, caller *model.AuthContext) string {
	logFailure := func(check string, err error) {
		cfg.Logger.Error("token revocation check failed",
			slog.String("check", check),
			slog.String("error", err.Error()),
			slog.String("request_id", GetRequestID(ctx)),
		)
	}

	revoked, err := cfg.Revocations.IsTokenRevoked(ctx, caller.TokenID)
	switch {
	case err != nil:
		logFailure("token", err)
	case revoked:
		return "revoked_token"
	}

	// iat has second precision, so a token issued in the cutoff second is
	// treated as issued before it.
	cutoff, err := cfg.Revocations.UserTokenCutoff(ctx, caller.UserID)
	switch {
	case err != nil:
		logFailure("user", err)
	case !cutoff.IsZero() && !caller.IssuedAt.After(cutoff):
		return "superseded_token"
	}
	return ""
}

// extractBearerToken extracts the token from "Authorization: Bearer <token>".
func extractBearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
// Clients drop their stored token on this code and return to /login.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="rentdesk"`)
	writeErrorJSON(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing bearer token")
}
