package middleware

import (
	"encoding/json"
	"net/http"
	"slices"

	"github.com/rentdesk/rentdesk/internal/auth"
	"github.com/rentdesk/rentdesk/internal/model"
)

// RequireRole returns middleware that enforces role requirements.
// Must be applied after Auth middleware.
// Having ANY of the roles is sufficient and admins pass every gate.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := auth.AuthFromContext(r.Context())
			if authCtx == nil {
				writeAuthError(w)
				return
			}

			if authCtx.IsAdmin() || slices.Contains(roles, authCtx.Role) {
				next.ServeHTTP(w, r)
				return
			}

			writeErrorJSON(w, http.StatusForbidden, "FORBIDDEN", "Your role cannot access this resource")
		})
	}
}

// RequireLandlord is a convenience middleware for landlord-only routes.
func RequireLandlord() func(http.Handler) http.Handler {
	return RequireRole(model.RoleLandlord)
}

// RequireAdmin is a convenience middleware for admin-only routes.
func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRole(model.RoleAdmin)
}

// writeErrorJSON writes the API error envelope.
func writeErrorJSON(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
