// Package session tracks which tasks are mid-operation and which single
// task, if any, is travelling between columns. The TUI reads this state to
// disable controls, render spinners and highlight the destination column;
// the dispatch layer uses the same state as a hard mutual-exclusion gate,
// so a second operation on a busy task is rejected rather than merely
// discouraged.
package session

import (
	"errors"
	"sync"
)

var (
	// ErrTaskBusy is returned when an operation is already in flight for
	// the task id.
	ErrTaskBusy = errors.New("task has an operation in flight")

	// ErrMoveInProgress is returned when a move is requested while another
	// task is still animating. Only one task may move at a time.
	ErrMoveInProgress = errors.New("another task is already moving")
)

// Move identifies the task currently undergoing a cross-column move.
type Move struct {
	TaskID       string
	FromColumnID string
	ToColumnID   string
}

// State is the per-session coordination state. The zero value is not
// usable; construct with New.
type State struct {
	mu       sync.RWMutex
	loading  map[string]bool
	inFlight map[string]bool
	moving   *Move
}

// New returns an empty coordination state.
func New() *State {
	return &State{
		loading:  make(map[string]bool),
		inFlight: make(map[string]bool),
	}
}

// SetTaskLoading adds or removes the task id from the loading set.
func (s *State) SetTaskLoading(id string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if loading {
		s.loading[id] = true
	} else {
		delete(s.loading, id)
	}
}

// IsTaskLoading reports whether the task id is in the loading set.
func (s *State) IsTaskLoading(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading[id]
}

// Begin claims the per-task operation lock. It fails with ErrTaskBusy when
// an earlier operation on the same id has not finished yet.
func (s *State) Begin(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[id] {
		return ErrTaskBusy
	}
	s.inFlight[id] = true
	return nil
}

// End releases the per-task operation lock. Releasing an id that was never
// claimed is a no-op.
func (s *State) End(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, id)
}

// Busy reports whether any operation, loading task or move is currently
// in flight. Reload paths check this before replacing the board snapshot
// so stale server data cannot clobber optimistic edits mid-operation.
func (s *State) Busy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.loading) > 0 || len(s.inFlight) > 0 || s.moving != nil
}

// StartMove records the singleton moving-task descriptor. A second move
// while one is active is rejected with ErrMoveInProgress.
func (s *State) StartMove(m Move) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.moving != nil {
		return ErrMoveInProgress
	}
	cp := m
	s.moving = &cp
	return nil
}

// FinishMove clears the moving-task descriptor.
func (s *State) FinishMove() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moving = nil
}

// ActiveMove returns a copy of the current descriptor, or nil when no move
// is in progress.
func (s *State) ActiveMove() *Move {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.moving == nil {
		return nil
	}
	cp := *s.moving
	return &cp
}
