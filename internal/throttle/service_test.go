package throttle

import (
	"context"
	"testing"
	"time"
)

func newTestService(t *testing.T) (*Service, *clock) {
	t.Helper()
	clk := &clock{t: t0}
	svc := NewService(NewMemoryStore(), testCfg)
	svc.now = clk.Now
	return svc, clk
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Set(seconds int)         { c.t = at(seconds) }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func failTimes(t *testing.T, svc *Service, clk *clock, id string, times []int) {
	t.Helper()
	for _, sec := range times {
		clk.Set(sec)
		if _, err := svc.RecordFailure(context.Background(), id); err != nil {
			t.Fatalf("RecordFailure(%q) at t=%d: %v", id, sec, err)
		}
	}
}

func TestThresholdLockout(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	failTimes(t, svc, clk, "a@x.com", []int{0, 1})
	clk.Set(2)
	dec, err := svc.CheckBlocked(ctx, "a@x.com")
	if err != nil || dec.Blocked {
		t.Fatalf("blocked after 2 of 3 failures: %+v, %v", dec, err)
	}

	failTimes(t, svc, clk, "a@x.com", []int{2})
	clk.Set(3)
	dec, err = svc.CheckBlocked(ctx, "a@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if !dec.Blocked {
		t.Fatal("not blocked after 3 failures")
	}
	if dec.Identifier != "a@x.com" {
		t.Errorf("blocking identifier = %q", dec.Identifier)
	}
	// Block set at t=2 for 60s, so 59s remain at t=3.
	if dec.RemainingSeconds != 59 {
		t.Errorf("RemainingSeconds = %d, want 59", dec.RemainingSeconds)
	}
}

func TestBlockDecaysAndClearsCount(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	failTimes(t, svc, clk, "a@x.com", []int{0, 1, 2})

	clk.Set(61)
	if dec, _ := svc.CheckBlocked(ctx, "a@x.com"); !dec.Blocked {
		t.Fatal("should still be blocked one second before expiry")
	}

	clk.Set(62)
	if dec, _ := svc.CheckBlocked(ctx, "a@x.com"); dec.Blocked {
		t.Fatal("block should decay once its duration passes")
	}

	// The expired record was cleared by the read, so the next failure
	// starts a fresh streak.
	clk.Set(63)
	count, err := svc.RecordFailure(ctx, "a@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("failure count after decay = %d, want 1", count)
	}
}

func TestResetOnSuccess(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	failTimes(t, svc, clk, "a@x.com", []int{0, 1, 2})
	clk.Set(3)
	if err := svc.RecordSuccess(ctx, "a@x.com"); err != nil {
		t.Fatal(err)
	}

	clk.Set(4)
	dec, err := svc.CheckBlocked(ctx, "a@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if dec.Blocked || dec.RemainingSeconds != 0 {
		t.Fatalf("state after success = %+v, want cleared", dec)
	}

	count, _ := svc.RecordFailure(ctx, "a@x.com")
	if count != 1 {
		t.Fatalf("failure count after success = %d, want full reset to 1", count)
	}
}

func TestWindowExpiry(t *testing.T) {
	svc, clk := newTestService(t)

	failTimes(t, svc, clk, "a@x.com", []int{0})
	clk.Set(100)
	count, err := svc.RecordFailure(context.Background(), "a@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("count after window gap = %d, want 1", count)
	}
}

func TestIdentifierIndependence(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	failTimes(t, svc, clk, "alice@example.com", []int{0, 1, 2})
	clk.Set(3)

	if dec, _ := svc.CheckBlocked(ctx, "alice@example.com"); !dec.Blocked {
		t.Fatal("email identifier should be blocked")
	}
	if dec, _ := svc.CheckBlocked(ctx, "1.2.3.4"); dec.Blocked {
		t.Fatal("untouched IP identifier must not be affected")
	}
	if dec, _ := svc.CheckBlocked(ctx, "9.9.9.9"); dec.Blocked {
		t.Fatal("identifier with no history must not be blocked")
	}
}

func TestCheckBlockedShortCircuits(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	failTimes(t, svc, clk, "1.2.3.4", []int{0, 1, 2})
	clk.Set(3)

	dec, err := svc.CheckBlocked(ctx, "a@x.com", "1.2.3.4")
	if err != nil {
		t.Fatal(err)
	}
	if !dec.Blocked || dec.Identifier != "1.2.3.4" {
		t.Fatalf("decision = %+v, want blocked by 1.2.3.4", dec)
	}
}

func TestIdempotentRead(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	failTimes(t, svc, clk, "a@x.com", []int{0, 1, 2})
	clk.Set(10)

	first, _ := svc.CheckBlocked(ctx, "a@x.com")
	second, _ := svc.CheckBlocked(ctx, "a@x.com")
	if first != second {
		t.Fatalf("consecutive reads differ: %+v vs %+v", first, second)
	}
}

func TestEmptyIdentifierRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CheckBlocked(ctx, " "); err != ErrEmptyIdentifier {
		t.Errorf("CheckBlocked blank: err = %v", err)
	}
	if _, err := svc.RecordFailure(ctx, ""); err != ErrEmptyIdentifier {
		t.Errorf("RecordFailure empty: err = %v", err)
	}
	if err := svc.RecordSuccess(ctx, ""); err != ErrEmptyIdentifier {
		t.Errorf("RecordSuccess empty: err = %v", err)
	}
}

func TestAttemptsRemaining(t *testing.T) {
	svc, _ := newTestService(t)
	for count, want := range map[int]int{0: 3, 1: 2, 2: 1, 3: 0, 5: 0} {
		if got := svc.AttemptsRemaining(count); got != want {
			t.Errorf("AttemptsRemaining(%d) = %d, want %d", count, got, want)
		}
	}
}

func TestConcurrentFailuresNeverMissLockout(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_, _ = svc.RecordFailure(ctx, "a@x.com")
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	dec, err := svc.CheckBlocked(ctx, "a@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if !dec.Blocked {
		t.Fatal("8 concurrent failures with threshold 3 must end locked out")
	}
}
