package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/obrentanasic/drs-projekat/internal/application/ports"
)

const blacklistKeyPrefix = "token_blacklist:"

// RedisBlacklist stores revoked token IDs with a TTL matching the token's
// remaining lifetime, so entries disappear exactly when the token would have
// expired anyway.
type RedisBlacklist struct {
	client *redis.Client
}

func NewRedisBlacklist(client *redis.Client) *RedisBlacklist {
	return &RedisBlacklist{client: client}
}

func (b *RedisBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, blacklistKeyPrefix+jti, "1", ttl).Err()
}

func (b *RedisBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, blacklistKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemoryBlacklist is the single-instance fallback when Redis is not
// configured. Expired entries are reaped lazily on read.
type MemoryBlacklist struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{entries: make(map[string]time.Time)}
}

func (b *MemoryBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[jti] = time.Now().Add(ttl)
	return nil
}

func (b *MemoryBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	expireAt, ok := b.entries[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(expireAt) {
		delete(b.entries, jti)
		return false, nil
	}
	return true, nil
}

var (
	_ ports.TokenBlacklist = (*RedisBlacklist)(nil)
	_ ports.TokenBlacklist = (*MemoryBlacklist)(nil)
)
