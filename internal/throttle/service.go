package throttle

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrEmptyIdentifier is returned when a caller passes a blank identifier.
// Treating it as a valid bucket would make every anonymous caller collide
// on the empty-string key.
var ErrEmptyIdentifier = errors.New("throttle: empty identifier")

// Decision is the outcome of a blocked check across one or more identifiers.
type Decision struct {
	Blocked          bool
	RemainingSeconds int
	// Identifier is the first identifier found blocked, for the
	// user-facing message. Empty when not blocked.
	Identifier string
}

// Service orchestrates the attempt store and the policy. It is the only
// entry point the authentication flow uses; store failures never surface
// here because the store degrades fail-open.
type Service struct {
	store Store
	cfg   Config
	now   func() time.Time
}

// NewService creates a throttle service over the given store.
func NewService(store Store, cfg Config) *Service {
	return &Service{
		store: store,
		cfg:   cfg.Normalize(),
		now:   time.Now,
	}
}

// Config returns the policy the service was built with.
func (s *Service) Config() Config { return s.cfg }

// CheckBlocked checks the identifiers in order and short-circuits on the
// first one found locked out. A lockout whose duration has passed is cleared
// on the spot, so a stale failure count cannot resurrect it.
func (s *Service) CheckBlocked(ctx context.Context, identifiers ...string) (Decision, error) {
	now := s.now()
	for _, id := range identifiers {
		if strings.TrimSpace(id) == "" {
			return Decision{}, ErrEmptyIdentifier
		}
		rec, err := s.store.Get(ctx, id)
		if err != nil || rec == nil {
			continue
		}
		if IsBlocked(rec, now) {
			return Decision{
				Blocked:          true,
				RemainingSeconds: Remaining(rec, now),
				Identifier:       id,
			}, nil
		}
		if Expired(rec, now, s.cfg) {
			_ = s.store.Delete(ctx, id)
		}
	}
	return Decision{}, nil
}

// RecordFailure folds one failed attempt into the identifier's record and
// returns the new failure count. Stores implementing FailureIncrementer apply
// the update atomically so two simultaneous failures cannot lose an update
// and let an attacker slip under the threshold; for other stores the
// read-modify-write may overcount under contention, which is the safe side.
func (s *Service) RecordFailure(ctx context.Context, identifier string) (int, error) {
	if strings.TrimSpace(identifier) == "" {
		return 0, ErrEmptyIdentifier
	}
	if inc, ok := s.store.(FailureIncrementer); ok {
		next, err := inc.IncrementFailure(ctx, identifier, s.now(), s.cfg)
		if err == nil {
			return next.FailureCount, nil
		}
	}
	rec, err := s.store.Get(ctx, identifier)
	if err != nil {
		rec = nil
	}
	next := OnFailure(identifier, rec, s.now(), s.cfg)
	_ = s.store.Put(ctx, identifier, next, s.cfg.RecordTTL())
	return next.FailureCount, nil
}

// RecordSuccess clears the identifier's record entirely. A correct credential
// proves the current actor is legitimate, so any prior streak is forgiven.
func (s *Service) RecordSuccess(ctx context.Context, identifier string) error {
	if strings.TrimSpace(identifier) == "" {
		return ErrEmptyIdentifier
	}
	return s.store.Delete(ctx, identifier)
}

// AttemptsRemaining converts a failure count into the attempts-left figure
// shown to the user.
func (s *Service) AttemptsRemaining(failureCount int) int {
	left := s.cfg.MaxAttempts - failureCount
	if left < 0 {
		return 0
	}
	return left
}
