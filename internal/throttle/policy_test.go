package throttle

import (
	"testing"
	"time"
)

var testCfg = Config{
	MaxAttempts:    3,
	BlockDuration:  60 * time.Second,
	WindowDuration: 60 * time.Second,
}

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func at(seconds int) time.Time { return t0.Add(time.Duration(seconds) * time.Second) }

func TestOnFailureThreshold(t *testing.T) {
	var rec *Record
	for i := 0; i < testCfg.MaxAttempts; i++ {
		next := OnFailure("a@x.com", rec, at(i), testCfg)
		rec = &next
		blocked := IsBlocked(rec, at(i))
		if i < testCfg.MaxAttempts-1 && blocked {
			t.Fatalf("blocked after %d failures, want threshold %d", i+1, testCfg.MaxAttempts)
		}
		if i == testCfg.MaxAttempts-1 && !blocked {
			t.Fatalf("not blocked after %d failures", testCfg.MaxAttempts)
		}
	}
	if rec.BlockedUntil == nil {
		t.Fatal("BlockedUntil not set at threshold")
	}
	if want := at(2).Add(testCfg.BlockDuration); !rec.BlockedUntil.Equal(want) {
		t.Fatalf("BlockedUntil = %v, want %v", rec.BlockedUntil, want)
	}
}

func TestBlockDecay(t *testing.T) {
	until := t0.Add(60 * time.Second)
	rec := &Record{Identifier: "a@x.com", FailureCount: 3, WindowStart: t0, BlockedUntil: &until}

	if !IsBlocked(rec, t0.Add(59*time.Second)) {
		t.Error("should still be blocked one second before expiry")
	}
	if IsBlocked(rec, t0.Add(60*time.Second)) {
		t.Error("should be unblocked exactly at expiry")
	}
	if !Expired(rec, t0.Add(60*time.Second), testCfg) {
		t.Error("expired block should read as discardable")
	}
}

func TestRemaining(t *testing.T) {
	until := t0.Add(60 * time.Second)
	rec := &Record{Identifier: "a@x.com", FailureCount: 3, WindowStart: t0, BlockedUntil: &until}

	if got := Remaining(rec, t0.Add(3*time.Second)); got != 57 {
		t.Errorf("Remaining = %d, want 57", got)
	}
	if got := Remaining(rec, t0.Add(61*time.Second)); got != 0 {
		t.Errorf("Remaining after expiry = %d, want 0", got)
	}
	if got := Remaining(nil, t0); got != 0 {
		t.Errorf("Remaining on nil record = %d, want 0", got)
	}
}

func TestWindowExpiryResetsCount(t *testing.T) {
	first := OnFailure("a@x.com", nil, at(0), testCfg)
	second := OnFailure("a@x.com", &first, at(100), testCfg)

	if second.FailureCount != 1 {
		t.Fatalf("FailureCount after window expiry = %d, want 1", second.FailureCount)
	}
	if !second.WindowStart.Equal(at(100)) {
		t.Errorf("WindowStart not reset: %v", second.WindowStart)
	}
	if second.BlockedUntil != nil {
		t.Error("fresh streak must not carry a block")
	}
}

func TestWindowDoesNotResetWithinWindow(t *testing.T) {
	first := OnFailure("a@x.com", nil, at(0), testCfg)
	second := OnFailure("a@x.com", &first, at(30), testCfg)

	if second.FailureCount != 2 {
		t.Fatalf("FailureCount = %d, want 2", second.FailureCount)
	}
	if !second.WindowStart.Equal(at(0)) {
		t.Errorf("WindowStart moved within the window: %v", second.WindowStart)
	}
}

func TestFailureAfterExpiredBlockStartsFresh(t *testing.T) {
	until := at(60)
	rec := &Record{Identifier: "a@x.com", FailureCount: 3, WindowStart: t0, BlockedUntil: &until}

	next := OnFailure("a@x.com", rec, at(61), testCfg)
	if next.FailureCount != 1 {
		t.Fatalf("FailureCount after expired block = %d, want 1", next.FailureCount)
	}
	if next.BlockedUntil != nil {
		t.Error("expired block must not carry over")
	}
}

func TestConfigNormalize(t *testing.T) {
	cfg := Config{MaxAttempts: 5, BlockDuration: time.Minute, WindowDuration: time.Second}.Normalize()
	if cfg.WindowDuration != time.Minute {
		t.Errorf("WindowDuration = %v, want clamped to BlockDuration", cfg.WindowDuration)
	}

	cfg = Config{}.Normalize()
	if cfg.MaxAttempts != 3 || cfg.BlockDuration != 15*time.Minute {
		t.Errorf("zero config not defaulted: %+v", cfg)
	}
}
