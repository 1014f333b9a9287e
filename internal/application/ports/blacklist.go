package ports

import (
	"context"
	"time"
)

// TokenBlacklist revokes JWTs by their JTI until they would have expired
// anyway. Logout and refresh rotation both write here.
type TokenBlacklist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
