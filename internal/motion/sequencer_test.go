package motion

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestAdvance_ProgressIsDeterministic(t *testing.T) {
	start := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	cfg := Config{StepDuration: 800 * time.Millisecond}

	// Three columns of travel: 2.4s total.
	s := New(cfg, 0, 3, func() {}, func(context.Context) {}, func() {})
	s.Start(context.Background(), start)

	f := s.Advance(start)
	if f.Progress != 0 || f.ColumnIndex != 0 || f.Landing {
		t.Fatalf("at t=0: %+v", f)
	}

	f = s.Advance(start.Add(1200 * time.Millisecond))
	if f.Progress != 0.5 {
		t.Errorf("at t=1.2s expected progress 0.5, got %v", f.Progress)
	}
	if f.ColumnIndex != 1 {
		t.Errorf("at t=1.2s expected column 1, got %d", f.ColumnIndex)
	}

	f = s.Advance(start.Add(2300 * time.Millisecond))
	if f.Landing {
		t.Error("landed before duration elapsed")
	}
	if f.ColumnIndex != 2 {
		t.Errorf("at t=2.3s expected column 2, got %d", f.ColumnIndex)
	}
}

func TestAdvance_LeftwardMove(t *testing.T) {
	start := time.Unix(0, 0)
	s := New(Config{StepDuration: time.Second}, 2, 0, func() {}, func(context.Context) {}, func() {})
	s.Start(context.Background(), start)

	f := s.Advance(start.Add(1100 * time.Millisecond))
	if f.ColumnIndex != 1 {
		t.Errorf("expected interpolated column 1 moving left, got %d", f.ColumnIndex)
	}
}

func TestLanding_AppliesMoveAndCompletesOnce(t *testing.T) {
	start := time.Unix(0, 0)
	var applied, completed atomic.Int32
	actionCalled := make(chan struct{}, 1)

	s := New(Config{StepDuration: 100 * time.Millisecond}, 0, 1,
		func() { applied.Add(1) },
		func(context.Context) { actionCalled <- struct{}{} },
		func() { completed.Add(1) },
	)
	s.Start(context.Background(), start)

	// Two frames past the end: apply and action must fire only once.
	f := s.Advance(start.Add(200 * time.Millisecond))
	if !f.Landing || f.Progress != 1 {
		t.Fatalf("expected landing frame, got %+v", f)
	}
	s.Advance(start.Add(300 * time.Millisecond))

	waitFor(t, "action", func() bool { return len(actionCalled) == 1 })
	waitFor(t, "completion", func() bool { return s.Done() })

	if got := applied.Load(); got != 1 {
		t.Errorf("optimistic apply ran %d times", got)
	}
	if got := completed.Load(); got != 1 {
		t.Errorf("onComplete ran %d times", got)
	}
}

func TestZeroStepMove_CompletesImmediately(t *testing.T) {
	start := time.Unix(0, 0)
	var completed, acted atomic.Int32

	s := New(Config{}, 1, 1,
		func() {},
		func(context.Context) { acted.Add(1) },
		func() { completed.Add(1) },
	)
	s.Start(context.Background(), start)

	f := s.Advance(start)
	if f.Progress != 1 || !f.Landing {
		t.Fatalf("expected immediate landing for zero-step move, got %+v", f)
	}

	waitFor(t, "completion", func() bool { return s.Done() })
	if got := completed.Load(); got != 1 {
		t.Errorf("onComplete ran %d times", got)
	}
	if got := acted.Load(); got != 1 {
		t.Errorf("move action ran %d times; a same-column move still calls it", got)
	}
}

func TestStart_ReentrantIgnored(t *testing.T) {
	start := time.Unix(0, 0)
	s := New(Config{StepDuration: time.Second}, 0, 2, func() {}, func(context.Context) {}, func() {})

	s.Start(context.Background(), start)
	// A second start from an effect re-run must not reset the clock.
	s.Start(context.Background(), start.Add(10*time.Second))

	f := s.Advance(start.Add(time.Second))
	if f.Progress != 0.5 {
		t.Errorf("expected progress from the first start instant, got %v", f.Progress)
	}
}

func TestFallback_CompletesWithoutFrames(t *testing.T) {
	var completed atomic.Int32
	s := New(Config{StepDuration: time.Hour, FallbackTimeout: 20 * time.Millisecond},
		0, 2, func() {}, func(context.Context) {}, func() { completed.Add(1) })
	s.Start(context.Background(), time.Now())

	// No Advance calls at all: the ceiling alone must fire completion.
	waitFor(t, "fallback completion", func() bool { return s.Done() })
	if got := completed.Load(); got != 1 {
		t.Errorf("onComplete ran %d times", got)
	}
}

func TestFallbackAndAction_CompleteExactlyOnce(t *testing.T) {
	start := time.Unix(0, 0)
	var completed atomic.Int32
	release := make(chan struct{})

	s := New(Config{StepDuration: 10 * time.Millisecond, FallbackTimeout: 30 * time.Millisecond},
		0, 1,
		func() {},
		func(ctx context.Context) { <-release }, // action hangs past the ceiling
		func() { completed.Add(1) },
	)
	s.Start(context.Background(), start)
	s.Advance(start.Add(time.Second))

	waitFor(t, "fallback completion", func() bool { return s.Done() })
	close(release)

	// Give the action goroutine a moment to return and try to complete again.
	time.Sleep(50 * time.Millisecond)
	if got := completed.Load(); got != 1 {
		t.Errorf("onComplete ran %d times, want exactly 1", got)
	}
}

func TestContextCancel_Completes(t *testing.T) {
	var completed atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	s := New(Config{StepDuration: time.Hour}, 0, 2,
		func() {}, func(context.Context) {}, func() { completed.Add(1) })
	s.Start(ctx, time.Now())

	cancel()
	waitFor(t, "cancel completion", func() bool { return s.Done() })
	if got := completed.Load(); got != 1 {
		t.Errorf("onComplete ran %d times", got)
	}

	f := s.Advance(time.Now())
	if !f.Done {
		t.Error("expected Done frame after completion")
	}
}
