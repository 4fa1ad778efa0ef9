// Package dispatch translates user intents (create, update, delete, move)
// into an optimistic board mutation, a persistence call, and either a
// reconciliation with the server row or a revert of the optimistic change.
// Persistence errors never cross this boundary as error values; every
// operation returns a Result and logs the underlying cause.
package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/taskdeck/deck/internal/board"
	"github.com/taskdeck/deck/internal/session"
)

// Persistence is the external collaborator performing the authoritative
// create/update/delete/move against the database. *store.Store satisfies
// it.
type Persistence interface {
	CreateTask(ctx context.Context, draft board.TaskDraft) (*board.Task, error)
	UpdateTask(ctx context.Context, id string, patch board.TaskPatch) (*board.Task, error)
	DeleteTask(ctx context.Context, id string) error
	MoveTask(ctx context.Context, id, toColumnID string, position int) (*board.Task, error)
}

// Result is the outcome of a dispatched operation. Err is a user-facing
// message; the underlying error is logged, not returned.
type Result struct {
	OK   bool
	Task *board.Task
	Err  string
}

func failure(msg string) Result { return Result{Err: msg} }

// Dispatcher wires the optimistic board store, the session coordination
// state and the persistence collaborator together.
type Dispatcher struct {
	board   *board.Store
	state   *session.State
	persist Persistence
	log     *logrus.Logger
}

// New returns a dispatcher over the given collaborators.
func New(b *board.Store, st *session.State, p Persistence, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{board: b, state: st, persist: p, log: log}
}

// CreateTask inserts a placeholder task with a client-generated id, calls
// the persistence collaborator, and swaps the placeholder for the
// canonical row on success. On failure the placeholder is removed again.
func (d *Dispatcher) CreateTask(ctx context.Context, draft board.TaskDraft) Result {
	now := time.Now().UTC()
	temp := board.Task{
		ID:          uuid.NewString(),
		Title:       draft.Title,
		Description: draft.Description,
		Priority:    draft.Priority,
		Assignee:    draft.Assignee,
		DueDate:     draft.DueDate,
		ColumnID:    draft.ColumnID,
		Position:    draft.Position,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if temp.Priority == "" {
		temp.Priority = board.PriorityMedium
	}

	d.state.SetTaskLoading(temp.ID, true)
	defer d.state.SetTaskLoading(temp.ID, false)

	d.board.AddTask(temp)

	created, err := d.persist.CreateTask(ctx, draft)
	if err != nil {
		d.board.RevertAdd(temp.ID)
		d.log.WithField("column", draft.ColumnID).WithError(err).Error("create task failed")
		return failure("Failed to create task")
	}

	d.board.ReplaceTask(temp.ID, *created)
	return Result{OK: true, Task: created}
}

// UpdateTask merges the patch optimistically, persists it, and reconciles
// with the returned canonical row. On failure the original field values
// are re-applied.
func (d *Dispatcher) UpdateTask(ctx context.Context, id string, patch board.TaskPatch) Result {
	if err := d.state.Begin(id); err != nil {
		return failure("Task is busy")
	}
	defer d.state.End(id)

	d.state.SetTaskLoading(id, true)
	defer d.state.SetTaskLoading(id, false)

	original, ok := d.board.FindTask(id)
	if !ok {
		return failure("Task not found")
	}
	undo := board.PatchOf(original, patch)

	d.board.UpdateTask(id, patch)

	updated, err := d.persist.UpdateTask(ctx, id, patch)
	if err != nil {
		d.board.RevertUpdate(id, undo)
		d.log.WithField("task", id).WithError(err).Error("update task failed")
		return failure("Failed to update task")
	}

	d.board.UpdateTask(id, serverPatch(*updated))
	return Result{OK: true, Task: updated}
}

// DeleteTask removes the task optimistically and persists the delete. On
// failure the removed task is re-inserted.
func (d *Dispatcher) DeleteTask(ctx context.Context, id string) Result {
	if err := d.state.Begin(id); err != nil {
		return failure("Task is busy")
	}
	defer d.state.End(id)

	d.state.SetTaskLoading(id, true)
	defer d.state.SetTaskLoading(id, false)

	original, ok := d.board.FindTask(id)
	if !ok {
		return failure("Task not found")
	}

	d.board.RemoveTask(id)

	if err := d.persist.DeleteTask(ctx, id); err != nil {
		d.board.RevertDelete(original)
		d.log.WithField("task", id).WithError(err).Error("delete task failed")
		return failure("Failed to delete task")
	}

	return Result{OK: true}
}

// MoveTask confirms a cross-column move whose optimistic board mutation
// has already been applied by the animation sequencer at landing. The
// caller owns the session bracket (op lock, loading flag, moving
// descriptor) because it spans the whole animation, not just this call.
// On failure the board move is reverted by moving the task back.
func (d *Dispatcher) MoveTask(ctx context.Context, id, fromColumnID, toColumnID string) Result {
	// Degenerate move to the same column: nothing to persist.
	if fromColumnID == toColumnID {
		return Result{OK: true}
	}

	moved, err := d.persist.MoveTask(ctx, id, toColumnID, 0)
	if err != nil {
		d.board.MoveTask(id, toColumnID, fromColumnID)
		d.log.WithField("task", id).WithError(err).Error("move task failed")
		return failure("Failed to move task")
	}

	d.board.UpdateTask(id, board.TaskPatch{UpdatedAt: &moved.UpdatedAt})
	return Result{OK: true, Task: moved}
}

// serverPatch converts a canonical row into a patch that overwrites every
// editable field plus the server timestamp.
func serverPatch(t board.Task) board.TaskPatch {
	return board.TaskPatch{
		Title:       &t.Title,
		Description: &t.Description,
		Priority:    &t.Priority,
		Assignee:    &t.Assignee,
		DueDate:     t.DueDate,
		SetDueDate:  true,
		UpdatedAt:   &t.UpdatedAt,
	}
}
