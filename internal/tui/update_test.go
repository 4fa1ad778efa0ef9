package tui

import (
	"testing"

	"github.com/taskdeck/deck/internal/board"
	"github.com/taskdeck/deck/internal/config"
	"github.com/taskdeck/deck/internal/dispatch"
	"github.com/taskdeck/deck/internal/session"
)

func testModel(t *testing.T) Model {
	t.Helper()
	b := board.NewStore()
	b.SeedColumns([]board.Column{
		{ID: "todo", Title: "Todo", Position: 0},
		{ID: "done", Title: "Done", Position: 1},
	})
	m := New(nil, b, session.New(), nil, config.DefaultConfig())
	m.refreshColumns()
	return m
}

func TestBoardLoaded_DeferredWhileOperationInFlight(t *testing.T) {
	m := testModel(t)
	m.board.AddTask(board.Task{ID: "tmp-1", Title: "Draft", ColumnID: "todo", Priority: board.PriorityMedium})
	m.state.Begin("tmp-1")
	m.state.SetTaskLoading("tmp-1", true)

	// A reload raced the in-flight create: the stale snapshot has no tmp-1.
	stale := []board.Column{
		{ID: "todo", Title: "Todo", Position: 0},
		{ID: "done", Title: "Done", Position: 1},
	}
	next, _ := m.Update(boardLoadedMsg{columns: stale})
	nm := next.(Model)

	if _, ok := nm.board.FindTask("tmp-1"); !ok {
		t.Fatal("reload clobbered the optimistic task while its create was in flight")
	}
	if !nm.pendingReload {
		t.Fatal("expected the reload to be queued for when the operation settles")
	}
}

func TestBoardLoaded_SeedDoesNotClobberPopulatedBoard(t *testing.T) {
	m := testModel(t)
	m.board.AddTask(board.Task{ID: "t1", Title: "Keep", ColumnID: "todo", Priority: board.PriorityMedium})

	// A late-arriving initial load must not replace the board.
	next, _ := m.Update(boardLoadedMsg{columns: []board.Column{{ID: "todo", Title: "Todo"}}, seed: true})
	nm := next.(Model)

	if _, ok := nm.board.FindTask("t1"); !ok {
		t.Fatal("seed load replaced a board that already held data")
	}
}

func TestExternalChange_DeferredWhileBusy(t *testing.T) {
	m := testModel(t)
	m.state.Begin("t1")

	next, cmd := m.Update(ExternalChangeMsg{})
	nm := next.(Model)

	if cmd != nil {
		t.Fatal("expected no reload command while an operation is in flight")
	}
	if !nm.pendingReload {
		t.Fatal("expected the external change to be queued")
	}

	// Once the operation settles, its completion flushes the reload.
	nm.state.End("t1")
	next, cmd = nm.Update(dispatchDoneMsg{verb: "Edit", res: dispatch.Result{OK: true}})
	nm = next.(Model)

	if cmd == nil {
		t.Fatal("expected the queued reload to run after the operation settled")
	}
	if nm.pendingReload {
		t.Fatal("expected the pending reload flag cleared")
	}
}
