// Package throttle implements the login attempt throttle: failed
// authentication attempts are counted per identifier (normalized email or
// source IP) inside a rolling window, and crossing the threshold converts
// into a time-boxed lockout. State lives in an attempt store that is either
// an in-process map or Redis, with silent fail-open degradation from Redis
// to the map when the cache is unreachable.
package throttle

import "time"

// Record tracks the failure streak for one identifier. BlockedUntil is set
// iff the identifier is currently locked out; an expired block is cleared
// lazily on the next read.
type Record struct {
	Identifier   string     `json:"identifier"`
	FailureCount int        `json:"failure_count"`
	WindowStart  time.Time  `json:"window_start"`
	BlockedUntil *time.Time `json:"blocked_until,omitempty"`
}

// Config is the process-wide throttle policy, immutable after load.
type Config struct {
	// MaxAttempts is the number of consecutive failures that triggers a
	// lockout.
	MaxAttempts int
	// BlockDuration is how long a lockout lasts once triggered.
	BlockDuration time.Duration
	// WindowDuration is how long a failure streak accumulates before the
	// counter resets on its own. Must be >= BlockDuration.
	WindowDuration time.Duration
}

// DefaultConfig returns the production policy: three attempts, fifteen
// minute lockout, window equal to the lockout.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		BlockDuration:  15 * time.Minute,
		WindowDuration: 15 * time.Minute,
	}
}

// Normalize fills in defaults and enforces WindowDuration >= BlockDuration.
func (c Config) Normalize() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BlockDuration <= 0 {
		c.BlockDuration = 15 * time.Minute
	}
	if c.WindowDuration < c.BlockDuration {
		c.WindowDuration = c.BlockDuration
	}
	return c
}

// RecordTTL is how long a record needs to stay reachable in the store.
func (c Config) RecordTTL() time.Duration {
	if c.WindowDuration > c.BlockDuration {
		return c.WindowDuration
	}
	return c.BlockDuration
}
