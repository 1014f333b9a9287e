package throttle

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "login_throttle:"

// redisCallTimeout bounds every store round-trip so an unhealthy cache
// degrades to the fallback instead of hanging the login request.
const redisCallTimeout = 2 * time.Second

// redisRecord is the wire form of a Record. Timestamps are millisecond epochs
// so the increment script can do arithmetic on them with cjson.
type redisRecord struct {
	Identifier     string `json:"id"`
	FailureCount   int    `json:"fc"`
	WindowStartMS  int64  `json:"ws"`
	BlockedUntilMS int64  `json:"bu,omitempty"`
}

func toWire(rec Record) redisRecord {
	w := redisRecord{
		Identifier:    rec.Identifier,
		FailureCount:  rec.FailureCount,
		WindowStartMS: rec.WindowStart.UnixMilli(),
	}
	if rec.BlockedUntil != nil {
		w.BlockedUntilMS = rec.BlockedUntil.UnixMilli()
	}
	return w
}

func fromWire(w redisRecord) Record {
	rec := Record{
		Identifier:   w.Identifier,
		FailureCount: w.FailureCount,
		WindowStart:  time.UnixMilli(w.WindowStartMS).UTC(),
	}
	if w.BlockedUntilMS != 0 {
		until := time.UnixMilli(w.BlockedUntilMS).UTC()
		rec.BlockedUntil = &until
	}
	return rec
}

// incrementScript mirrors OnFailure: start a fresh streak when the record is
// absent, its block has expired, or its window has elapsed; otherwise bump
// the count and set the block at the threshold. Runs atomically in Redis so
// concurrent failures cannot lose updates.
var incrementScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local max = tonumber(ARGV[2])
local block_ms = tonumber(ARGV[3])
local window_ms = tonumber(ARGV[4])
local ttl_ms = tonumber(ARGV[5])
local id = ARGV[6]

local rec
local raw = redis.call('GET', key)
if raw then
  rec = cjson.decode(raw)
  if rec['bu'] then
    if now_ms >= rec['bu'] then rec = nil end
  elseif now_ms - rec['ws'] > window_ms then
    rec = nil
  end
end
if rec == nil then
  rec = { id = id, fc = 1, ws = now_ms }
else
  rec['fc'] = rec['fc'] + 1
end
if rec['fc'] >= max then
  rec['bu'] = now_ms + block_ms
end
redis.call('SET', key, cjson.encode(rec), 'PX', ttl_ms)
return { rec['fc'], rec['bu'] or 0 }
`)

// RedisStore is a shared Store backed by Redis with native TTL expiry, for
// multi-instance deployments where lockout state must survive restarts.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, identifier string) (*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, redisCallTimeout)
	defer cancel()
	val, err := s.client.Get(ctx, redisKeyPrefix+identifier).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var w redisRecord
	if err := json.Unmarshal([]byte(val), &w); err != nil {
		// Corrupt value reads as no history rather than failing the login.
		return nil, nil
	}
	rec := fromWire(w)
	return &rec, nil
}

func (s *RedisStore) Put(ctx context.Context, identifier string, rec Record, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, redisCallTimeout)
	defer cancel()
	payload, err := json.Marshal(toWire(rec))
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKeyPrefix+identifier, payload, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, identifier string) error {
	ctx, cancel := context.WithTimeout(ctx, redisCallTimeout)
	defer cancel()
	return s.client.Del(ctx, redisKeyPrefix+identifier).Err()
}

// IncrementFailure runs the atomic increment script.
func (s *RedisStore) IncrementFailure(ctx context.Context, identifier string, now time.Time, cfg Config) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, redisCallTimeout)
	defer cancel()
	res, err := incrementScript.Run(ctx, s.client,
		[]string{redisKeyPrefix + identifier},
		now.UnixMilli(),
		cfg.MaxAttempts,
		cfg.BlockDuration.Milliseconds(),
		cfg.WindowDuration.Milliseconds(),
		cfg.RecordTTL().Milliseconds(),
		identifier,
	).Int64Slice()
	if err != nil {
		return Record{}, err
	}
	w := redisRecord{Identifier: identifier, WindowStartMS: now.UnixMilli()}
	if len(res) == 2 {
		w.FailureCount = int(res[0])
		w.BlockedUntilMS = res[1]
	}
	return fromWire(w), nil
}

var (
	_ Store              = (*RedisStore)(nil)
	_ FailureIncrementer = (*RedisStore)(nil)
)
