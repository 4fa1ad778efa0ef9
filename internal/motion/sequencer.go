// Package motion runs the timed simulation of a task travelling between
// columns. The sequencer is a clock-driven state machine: the caller feeds
// it time through Advance and renders the returned frame, so tests can
// drive it with synthetic instants instead of waiting on a wall clock.
// When the travel finishes, the sequencer applies the optimistic board
// move, fires the authoritative move action, and signals completion
// exactly once - whether the action resolves, the context is cancelled,
// or the fallback ceiling is hit first.
package motion

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultStepDuration is the travel time per column traversed.
	DefaultStepDuration = 800 * time.Millisecond

	// DefaultFallbackTimeout bounds how long the overlay can stay up if
	// the move action never resolves.
	DefaultFallbackTimeout = 15 * time.Second
)

// Config holds sequencer timing knobs. Zero values fall back to the
// package defaults.
type Config struct {
	StepDuration    time.Duration
	FallbackTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.StepDuration <= 0 {
		c.StepDuration = DefaultStepDuration
	}
	if c.FallbackTimeout <= 0 {
		c.FallbackTimeout = DefaultFallbackTimeout
	}
	return c
}

// Frame is one rendered instant of the travel animation.
type Frame struct {
	// Progress runs 0..1 over the whole travel.
	Progress float64
	// ColumnIndex is the interpolated column the task is visually over.
	ColumnIndex int
	// Landing is true once the task has arrived and the move action is
	// in flight.
	Landing bool
	// Done is true after completion has been signalled.
	Done bool
}

// Sequencer animates a single move. It is single-use: create one per move.
type Sequencer struct {
	cfg       Config
	fromIndex int
	toIndex   int
	duration  time.Duration

	// apply performs the optimistic board mutation; ran exactly once at
	// landing.
	apply func()
	// action is the authoritative move call. It must not panic; errors
	// are its own business (the dispatch layer reverts and logs).
	action func(context.Context)
	// onComplete is the exactly-once completion signal.
	onComplete func()

	mu      sync.Mutex
	started bool
	startAt time.Time
	landed  bool
	done    bool

	once     sync.Once
	doneCh   chan struct{}
	fallback *time.Timer
}

// New builds a sequencer for a move from column index fromIndex to
// toIndex. A zero-step move (equal indices) completes on the first
// Advance.
func New(cfg Config, fromIndex, toIndex int, apply func(), action func(context.Context), onComplete func()) *Sequencer {
	cfg = cfg.withDefaults()
	steps := toIndex - fromIndex
	if steps < 0 {
		steps = -steps
	}
	return &Sequencer{
		cfg:        cfg,
		fromIndex:  fromIndex,
		toIndex:    toIndex,
		duration:   time.Duration(steps) * cfg.StepDuration,
		apply:      apply,
		action:     action,
		onComplete: onComplete,
		doneCh:     make(chan struct{}),
	}
}

// Start arms the sequencer at the given instant. Repeat calls are ignored,
// so effect re-runs cannot double-start the animation. The sequencer's
// lifetime is bound to ctx: cancellation completes it immediately.
func (s *Sequencer) Start(ctx context.Context, now time.Time) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.startAt = now
	s.fallback = time.AfterFunc(s.cfg.FallbackTimeout, s.complete)
	s.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			s.complete()
		case <-s.doneCh:
		}
	}()
}

// Advance computes the frame for the given instant. On the frame where
// progress first reaches 1 it applies the optimistic move and launches the
// move action; completion is signalled when the action returns.
func (s *Sequencer) Advance(now time.Time) Frame {
	s.mu.Lock()

	if !s.started {
		s.mu.Unlock()
		return Frame{ColumnIndex: s.fromIndex}
	}
	if s.done {
		s.mu.Unlock()
		return Frame{Progress: 1, ColumnIndex: s.toIndex, Landing: true, Done: true}
	}

	progress := 1.0
	if s.duration > 0 {
		progress = float64(now.Sub(s.startAt)) / float64(s.duration)
		if progress < 0 {
			progress = 0
		}
		if progress > 1 {
			progress = 1
		}
	}

	steps := s.toIndex - s.fromIndex
	if steps < 0 {
		steps = -steps
	}
	step := int(progress * float64(steps))
	index := s.fromIndex + step
	if s.toIndex < s.fromIndex {
		index = s.fromIndex - step
	}

	if progress < 1 {
		s.mu.Unlock()
		return Frame{Progress: progress, ColumnIndex: index, Landing: s.landed}
	}

	// Arrived. Trigger the landing transition once.
	firstLanding := !s.landed
	s.landed = true
	s.mu.Unlock()

	if firstLanding {
		s.apply()
		go func() {
			s.action(s.actionContext())
			s.complete()
		}()
	}

	return Frame{Progress: 1, ColumnIndex: s.toIndex, Landing: true}
}

// actionContext returns a context that is cancelled once the sequencer
// completes, so a fallback-completed sequencer does not leave the move
// action running against a dismissed overlay forever.
func (s *Sequencer) actionContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-s.doneCh
		cancel()
	}()
	return ctx
}

// Done reports whether completion has been signalled.
func (s *Sequencer) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

func (s *Sequencer) complete() {
	s.once.Do(func() {
		s.mu.Lock()
		s.done = true
		if s.fallback != nil {
			s.fallback.Stop()
		}
		s.mu.Unlock()
		close(s.doneCh)
		s.onComplete()
	})
}
