package throttle

import (
	"context"
	"time"
)

// Store is expiring key->Record storage. A nil record with a nil error means
// "no history", which reads as not blocked with zero failures.
type Store interface {
	Get(ctx context.Context, identifier string) (*Record, error)
	Put(ctx context.Context, identifier string, rec Record, ttl time.Duration) error
	Delete(ctx context.Context, identifier string) error
}

// FailureIncrementer is an optional Store capability: apply OnFailure
// atomically so two simultaneous failed attempts for the same identifier
// cannot lose an update on the read-modify-write. Both bundled stores
// implement it; the Service falls back to Get+OnFailure+Put otherwise.
type FailureIncrementer interface {
	IncrementFailure(ctx context.Context, identifier string, now time.Time, cfg Config) (Record, error)
}
