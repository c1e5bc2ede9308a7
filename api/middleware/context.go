package middleware

import (
	"context"

	"github.com/casspea/casspea-backend/internal/identity"
)

type contextKey string

const ctxIdentity contextKey = "identity"

// WithIdentity injects the resolved caller into the context.
func WithIdentity(ctx context.Context, id identity.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, id)
}

// IdentityFromContext returns the caller resolved by the session middleware.
func IdentityFromContext(ctx context.Context) (identity.Identity, bool) {
	if ctx == nil {
		return identity.Identity{}, false
	}
	id, ok := ctx.Value(ctxIdentity).(identity.Identity)
	return id, ok
}
