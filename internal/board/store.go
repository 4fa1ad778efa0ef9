// Package board holds the in-memory view of the kanban board and its
// optimistic mutation API. The store is the single source of truth for
// what the UI renders; persistence results are reconciled into it and
// failed operations are undone through the Revert* methods.
package board

import "sync"

// Store is the shared, mutable board state. Every mutator builds a fresh
// snapshot instead of editing slices in place, so a snapshot handed to a
// consumer is never changed underneath it and reference comparison is a
// valid change check.
type Store struct {
	mu      sync.RWMutex
	columns []Column
}

// NewStore returns an empty board store.
func NewStore() *Store {
	return &Store{}
}

// Snapshot returns the current board. The returned slice and everything
// reachable from it must be treated as read-only.
func (s *Store) Snapshot() []Column {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.columns
}

// SeedColumns installs the initial server snapshot. It is a no-op when the
// store already holds data, so a late re-seed cannot clobber optimistic
// edits made since the first load.
func (s *Store) SeedColumns(columns []Column) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.columns) > 0 {
		return
	}
	s.columns = cloneColumns(columns)
}

// Reload unconditionally replaces the board with a fresh snapshot.
// Callers must ensure no optimistic operation is in flight.
func (s *Store) Reload(columns []Column) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.columns = cloneColumns(columns)
}

// AddTask inserts a fully-formed task into the column matching
// task.ColumnID. The caller owns id uniqueness.
func (s *Store) AddTask(task Task) {
	s.mapColumns(func(c Column) Column {
		if c.ID != task.ColumnID {
			return c
		}
		c.Tasks = append(cloneTasks(c.Tasks), task)
		return c
	})
}

// ReplaceTask swaps the placeholder task with tempID for the
// server-confirmed task, inside the column the real task belongs to.
// An unknown tempID is a silent no-op.
func (s *Store) ReplaceTask(tempID string, real Task) {
	s.mapColumns(func(c Column) Column {
		if c.ID != real.ColumnID {
			return c
		}
		tasks := cloneTasks(c.Tasks)
		for i := range tasks {
			if tasks[i].ID == tempID {
				tasks[i] = real
			}
		}
		c.Tasks = tasks
		return c
	})
}

// RevertAdd removes the task with the given id from every column,
// undoing a failed optimistic create.
func (s *Store) RevertAdd(id string) {
	s.RemoveTask(id)
}

// UpdateTask merges the patch into the task with the given id, wherever
// it lives.
func (s *Store) UpdateTask(id string, patch TaskPatch) {
	s.mapColumns(func(c Column) Column {
		tasks := cloneTasks(c.Tasks)
		for i := range tasks {
			if tasks[i].ID == id {
				tasks[i] = patch.Apply(tasks[i])
			}
		}
		c.Tasks = tasks
		return c
	})
}

// RevertUpdate re-applies the original field values captured before a
// failed optimistic update. The merge itself is identical to UpdateTask;
// the separate name keeps call sites honest about which path they are on.
func (s *Store) RevertUpdate(id string, original TaskPatch) {
	s.UpdateTask(id, original)
}

// RemoveTask deletes the task from whichever column holds it.
func (s *Store) RemoveTask(id string) {
	s.mapColumns(func(c Column) Column {
		tasks := make([]Task, 0, len(c.Tasks))
		for _, t := range c.Tasks {
			if t.ID != id {
				tasks = append(tasks, t)
			}
		}
		c.Tasks = tasks
		return c
	})
}

// RevertDelete re-inserts a previously removed task into the column it
// belonged to, undoing a failed optimistic delete.
func (s *Store) RevertDelete(task Task) {
	s.AddTask(task)
}

// MoveTask removes the task from the source column and appends it to the
// destination column with its ColumnID rewritten. A move to the task's
// own column is a no-op, and if the task cannot be found in the source
// column the board is left untouched.
func (s *Store) MoveTask(id, fromColumnID, toColumnID string) {
	if fromColumnID == toColumnID {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var moved *Task
	for _, c := range s.columns {
		if c.ID != fromColumnID {
			continue
		}
		for _, t := range c.Tasks {
			if t.ID == id {
				cp := t
				moved = &cp
				break
			}
		}
	}
	if moved == nil {
		return
	}
	moved.ColumnID = toColumnID

	next := make([]Column, len(s.columns))
	for i, c := range s.columns {
		switch c.ID {
		case fromColumnID:
			tasks := make([]Task, 0, len(c.Tasks))
			for _, t := range c.Tasks {
				if t.ID != id {
					tasks = append(tasks, t)
				}
			}
			c.Tasks = tasks
		case toColumnID:
			c.Tasks = append(cloneTasks(c.Tasks), *moved)
		}
		next[i] = c
	}
	s.columns = next
}

// FindTask returns a copy of the task with the given id and whether it
// was found.
func (s *Store) FindTask(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.columns {
		for _, t := range c.Tasks {
			if t.ID == id {
				return t, true
			}
		}
	}
	return Task{}, false
}

// ColumnIndex returns the display index of the column with the given id,
// or -1 when it is unknown.
func (s *Store) ColumnIndex(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i, c := range s.columns {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// mapColumns rebuilds the column slice by passing each column through fn
// under the write lock.
func (s *Store) mapColumns(fn func(Column) Column) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]Column, len(s.columns))
	for i, c := range s.columns {
		next[i] = fn(c)
	}
	s.columns = next
}

func cloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}

func cloneColumns(columns []Column) []Column {
	out := make([]Column, len(columns))
	for i, c := range columns {
		c.Tasks = cloneTasks(c.Tasks)
		out[i] = c
	}
	return out
}
