package middleware

import (
	"context"

	"github.com/obrentanasic/drs-projekat/internal/application/ports"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// WithClaims injects the validated token claims into the context.
func WithClaims(ctx context.Context, claims *ports.TokenClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext returns the claims set by AuthValidator, or nil.
func ClaimsFromContext(ctx context.Context) *ports.TokenClaims {
	v := ctx.Value(claimsContextKey)
	if v == nil {
		return nil
	}
	c, _ := v.(*ports.TokenClaims)
	return c
}
