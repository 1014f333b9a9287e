package throttle

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// FailoverStore wraps a shared store and degrades to an in-process fallback
// for the lifetime of the process on the first error. Login availability is
// prioritized over exact cross-instance consistency, so callers never see a
// store error.
type FailoverStore struct {
	primary  Store
	fallback Store
	log      zerolog.Logger
	degraded atomic.Bool
	warnOnce sync.Once
}

// NewFailoverStore wraps primary with an in-process fallback.
func NewFailoverStore(primary Store, log zerolog.Logger) *FailoverStore {
	return &FailoverStore{
		primary:  primary,
		fallback: NewMemoryStore(),
		log:      log,
	}
}

func (s *FailoverStore) degrade(err error) {
	s.degraded.Store(true)
	s.warnOnce.Do(func() {
		s.log.Warn().Err(err).Msg("throttle store unreachable; falling back to in-process store")
	})
}

func (s *FailoverStore) Get(ctx context.Context, identifier string) (*Record, error) {
	if s.degraded.Load() {
		return s.fallback.Get(ctx, identifier)
	}
	rec, err := s.primary.Get(ctx, identifier)
	if err != nil {
		s.degrade(err)
		return s.fallback.Get(ctx, identifier)
	}
	return rec, nil
}

func (s *FailoverStore) Put(ctx context.Context, identifier string, rec Record, ttl time.Duration) error {
	if s.degraded.Load() {
		return s.fallback.Put(ctx, identifier, rec, ttl)
	}
	if err := s.primary.Put(ctx, identifier, rec, ttl); err != nil {
		s.degrade(err)
		return s.fallback.Put(ctx, identifier, rec, ttl)
	}
	return nil
}

func (s *FailoverStore) Delete(ctx context.Context, identifier string) error {
	if s.degraded.Load() {
		return s.fallback.Delete(ctx, identifier)
	}
	if err := s.primary.Delete(ctx, identifier); err != nil {
		s.degrade(err)
		return s.fallback.Delete(ctx, identifier)
	}
	return nil
}

// IncrementFailure forwards to whichever backend is active. The fallback is
// always a MemoryStore, so the atomic path survives degradation.
func (s *FailoverStore) IncrementFailure(ctx context.Context, identifier string, now time.Time, cfg Config) (Record, error) {
	if s.degraded.Load() {
		return s.incrementOn(ctx, s.fallback, identifier, now, cfg)
	}
	rec, err := s.incrementOn(ctx, s.primary, identifier, now, cfg)
	if err != nil {
		s.degrade(err)
		return s.incrementOn(ctx, s.fallback, identifier, now, cfg)
	}
	return rec, nil
}

func (s *FailoverStore) incrementOn(ctx context.Context, st Store, identifier string, now time.Time, cfg Config) (Record, error) {
	if inc, ok := st.(FailureIncrementer); ok {
		return inc.IncrementFailure(ctx, identifier, now, cfg)
	}
	rec, err := st.Get(ctx, identifier)
	if err != nil {
		return Record{}, err
	}
	next := OnFailure(identifier, rec, now, cfg)
	if err := st.Put(ctx, identifier, next, cfg.RecordTTL()); err != nil {
		return Record{}, err
	}
	return next, nil
}

var (
	_ Store              = (*FailoverStore)(nil)
	_ FailureIncrementer = (*FailoverStore)(nil)
)
