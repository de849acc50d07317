package auth

import (
	"context"

	"github.com/rentdesk/rentdesk/internal/model"
)

type callerKey struct{}

// ContextWithAuth attaches the verified caller to ctx.
func ContextWithAuth(ctx context.Context, caller *model.AuthContext) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// AuthFromContext returns the caller set by the auth middleware, or nil.
func AuthFromContext(ctx context.Context) *model.AuthContext {
	caller, _ := ctx.Value(callerKey{}).(*model.AuthContext)
	return caller
}

// MustAuthFromContext is AuthFromContext for handlers mounted behind the
// auth middleware. It panics when the middleware is missing.
func MustAuthFromContext(ctx context.Context) *model.AuthContext {
	if caller := AuthFromContext(ctx); caller != nil {
		return caller
	}
	panic("auth: no caller in context")
}
