package throttle

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	rec      Record
	expireAt time.Time
}

// MemoryStore is an in-process Store suitable for single-instance deployment
// and as the fail-open fallback when Redis is unreachable. The map has no
// native timers, so expired entries are reaped on read.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]memoryEntry
	now  func() time.Time
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]memoryEntry),
		now:  time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, identifier string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[identifier]
	if !ok {
		return nil, nil
	}
	if !s.now().Before(e.expireAt) {
		delete(s.data, identifier)
		return nil, nil
	}
	rec := e.rec
	return &rec, nil
}

func (s *MemoryStore) Put(ctx context.Context, identifier string, rec Record, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[identifier] = memoryEntry{rec: rec, expireAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, identifier)
	return nil
}

// IncrementFailure applies OnFailure while holding the store lock, so the
// read-modify-write cannot lose concurrent updates.
func (s *MemoryStore) IncrementFailure(ctx context.Context, identifier string, now time.Time, cfg Config) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rec *Record
	if e, ok := s.data[identifier]; ok && s.now().Before(e.expireAt) {
		r := e.rec
		rec = &r
	}
	next := OnFailure(identifier, rec, now, cfg)
	s.data[identifier] = memoryEntry{rec: next, expireAt: s.now().Add(cfg.RecordTTL())}
	return next, nil
}

var (
	_ Store              = (*MemoryStore)(nil)
	_ FailureIncrementer = (*MemoryStore)(nil)
)
