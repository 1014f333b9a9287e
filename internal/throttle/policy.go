package throttle

import "time"

// Pure decision logic over a Record and the current time. No I/O here; the
// Service owns store round-trips.

// IsBlocked reports whether the record is locked out at the given instant.
func IsBlocked(rec *Record, now time.Time) bool {
	return rec != nil && rec.BlockedUntil != nil && now.Before(*rec.BlockedUntil)
}

// Remaining returns the whole seconds left on an active lockout, rounded up,
// or 0 if the record is not blocked.
func Remaining(rec *Record, now time.Time) int {
	if !IsBlocked(rec, now) {
		return 0
	}
	d := rec.BlockedUntil.Sub(now)
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 0 {
		return 0
	}
	return secs
}

// Expired reports whether the record carries state that should be discarded
// on read: a lockout whose duration has passed, or a failure streak whose
// window elapsed without triggering a block. A stale count must never
// combine with later failures.
func Expired(rec *Record, now time.Time, cfg Config) bool {
	if rec == nil {
		return false
	}
	if rec.BlockedUntil != nil {
		return !now.Before(*rec.BlockedUntil)
	}
	return now.Sub(rec.WindowStart) > cfg.WindowDuration
}

// OnFailure folds one failed attempt into the record and returns the next
// state. A nil or expired record starts a fresh streak.
func OnFailure(identifier string, rec *Record, now time.Time, cfg Config) Record {
	if rec == nil || Expired(rec, now, cfg) {
		return Record{
			Identifier:   identifier,
			FailureCount: 1,
			WindowStart:  now,
		}
	}
	next := *rec
	next.FailureCount++
	if next.FailureCount >= cfg.MaxAttempts {
		until := now.Add(cfg.BlockDuration)
		next.BlockedUntil = &until
	}
	return next
}
