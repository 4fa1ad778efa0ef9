package board

import (
	"testing"
	"time"
)

func seedStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	s.SeedColumns([]Column{
		{ID: "todo", Title: "Todo", Position: 0},
		{ID: "doing", Title: "In Progress", Position: 1},
		{ID: "done", Title: "Done", Position: 2},
	})
	return s
}

func task(id, columnID string) Task {
	return Task{
		ID:          id,
		Title:       "Task " + id,
		Description: "desc",
		Priority:    PriorityMedium,
		ColumnID:    columnID,
	}
}

// checkClosure asserts that every task sits in the column its ColumnID
// names and that no task id appears twice.
func checkClosure(t *testing.T, s *Store) {
	t.Helper()
	seen := map[string]bool{}
	for _, c := range s.Snapshot() {
		for _, task := range c.Tasks {
			if task.ColumnID != c.ID {
				t.Errorf("task %s filed under column %s but ColumnID is %s", task.ID, c.ID, task.ColumnID)
			}
			if seen[task.ID] {
				t.Errorf("task %s appears in more than one column", task.ID)
			}
			seen[task.ID] = true
		}
	}
}

func columnTasks(t *testing.T, s *Store, columnID string) []Task {
	t.Helper()
	for _, c := range s.Snapshot() {
		if c.ID == columnID {
			return c.Tasks
		}
	}
	t.Fatalf("column %s not found", columnID)
	return nil
}

func TestSeedColumns_NoOpWhenPopulated(t *testing.T) {
	s := seedStore(t)
	s.AddTask(task("t1", "todo"))

	// A second seed (stale server props re-delivered) must not clobber
	// the optimistic add.
	s.SeedColumns([]Column{{ID: "todo", Title: "Todo"}})

	if got := len(columnTasks(t, s, "todo")); got != 1 {
		t.Fatalf("expected optimistic task to survive re-seed, got %d tasks", got)
	}
}

func TestReload_ReplacesUnconditionally(t *testing.T) {
	s := seedStore(t)
	s.AddTask(task("t1", "todo"))

	s.Reload([]Column{{ID: "todo", Title: "Todo"}})

	if got := len(columnTasks(t, s, "todo")); got != 0 {
		t.Fatalf("expected reload to replace snapshot, got %d tasks", got)
	}
}

func TestAddTask(t *testing.T) {
	s := seedStore(t)
	s.AddTask(task("t1", "todo"))

	todo := columnTasks(t, s, "todo")
	if len(todo) != 1 || todo[0].ID != "t1" {
		t.Fatalf("expected todo == [t1], got %v", todo)
	}
	if got := len(columnTasks(t, s, "done")); got != 0 {
		t.Fatalf("expected done to stay empty, got %d tasks", got)
	}
	checkClosure(t, s)
}

func TestAddThenRevertRestoresSnapshot(t *testing.T) {
	s := seedStore(t)
	s.AddTask(task("t0", "todo"))
	before := s.Snapshot()

	s.AddTask(task("t1", "todo"))
	s.RevertAdd("t1")

	after := s.Snapshot()
	if len(after) != len(before) {
		t.Fatalf("column count changed: %d != %d", len(after), len(before))
	}
	for i := range before {
		if len(after[i].Tasks) != len(before[i].Tasks) {
			t.Fatalf("column %s task count changed", before[i].ID)
		}
		for j := range before[i].Tasks {
			if after[i].Tasks[j].ID != before[i].Tasks[j].ID {
				t.Errorf("column %s task %d: %s != %s",
					before[i].ID, j, after[i].Tasks[j].ID, before[i].Tasks[j].ID)
			}
		}
	}
	checkClosure(t, s)
}

func TestMoveTask(t *testing.T) {
	s := seedStore(t)
	s.AddTask(task("t1", "todo"))

	s.MoveTask("t1", "todo", "done")

	if got := len(columnTasks(t, s, "todo")); got != 0 {
		t.Fatalf("expected todo empty after move, got %d tasks", got)
	}
	done := columnTasks(t, s, "done")
	if len(done) != 1 || done[0].ID != "t1" {
		t.Fatalf("expected done == [t1], got %v", done)
	}
	if done[0].ColumnID != "done" {
		t.Errorf("expected ColumnID rewritten to done, got %s", done[0].ColumnID)
	}
	checkClosure(t, s)
}

func TestMoveTask_RoundTrip(t *testing.T) {
	s := seedStore(t)
	s.AddTask(task("t1", "todo"))

	s.MoveTask("t1", "todo", "done")
	s.MoveTask("t1", "done", "todo")

	todo := columnTasks(t, s, "todo")
	if len(todo) != 1 || todo[0].ID != "t1" {
		t.Fatalf("expected t1 back in todo, got %v", todo)
	}
	if todo[0].ColumnID != "todo" {
		t.Errorf("expected ColumnID todo, got %s", todo[0].ColumnID)
	}
	checkClosure(t, s)
}

func TestMoveTask_SameColumnIsNoOp(t *testing.T) {
	s := seedStore(t)
	s.AddTask(task("t1", "todo"))

	// A zero-step move lands in the column the task already occupies; the
	// task must stay on the board.
	s.MoveTask("t1", "todo", "todo")

	todo := columnTasks(t, s, "todo")
	if len(todo) != 1 || todo[0].ID != "t1" {
		t.Fatalf("expected t1 to stay in todo, got %v", todo)
	}
	if todo[0].ColumnID != "todo" {
		t.Errorf("expected ColumnID todo, got %s", todo[0].ColumnID)
	}
	checkClosure(t, s)
}

func TestMoveTask_UnknownSourceIsNoOp(t *testing.T) {
	s := seedStore(t)
	s.AddTask(task("t1", "todo"))

	// t1 is not in done, so nothing should change.
	s.MoveTask("t1", "done", "doing")

	if got := len(columnTasks(t, s, "todo")); got != 1 {
		t.Fatalf("expected t1 to stay in todo, got %d tasks", got)
	}
	checkClosure(t, s)
}

func TestUpdateAndRevert(t *testing.T) {
	s := seedStore(t)
	s.AddTask(task("t1", "todo"))

	title := "Renamed"
	prio := PriorityHigh
	patch := TaskPatch{Title: &title, Priority: &prio}

	orig, _ := s.FindTask("t1")
	undo := PatchOf(orig, patch)

	s.UpdateTask("t1", patch)
	got, _ := s.FindTask("t1")
	if got.Title != "Renamed" || got.Priority != PriorityHigh {
		t.Fatalf("patch not applied: %+v", got)
	}

	s.RevertUpdate("t1", undo)
	got, _ = s.FindTask("t1")
	if got.Title != orig.Title || got.Priority != orig.Priority {
		t.Fatalf("revert did not restore original fields: %+v", got)
	}
}

func TestPatch_DueDateClear(t *testing.T) {
	due := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	tk := task("t1", "todo")
	tk.DueDate = &due

	got := TaskPatch{SetDueDate: true}.Apply(tk)
	if got.DueDate != nil {
		t.Fatalf("expected due date cleared, got %v", got.DueDate)
	}

	// A patch without SetDueDate must leave the date alone.
	got = TaskPatch{}.Apply(tk)
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Fatalf("expected due date untouched, got %v", got.DueDate)
	}
}

func TestReplaceTask(t *testing.T) {
	s := seedStore(t)
	s.AddTask(task("tmp-1", "todo"))

	real := task("srv-1", "todo")
	s.ReplaceTask("tmp-1", real)

	todo := columnTasks(t, s, "todo")
	if len(todo) != 1 || todo[0].ID != "srv-1" {
		t.Fatalf("expected placeholder swapped for srv-1, got %v", todo)
	}

	// Unknown temp id: silent no-op.
	s.ReplaceTask("missing", task("srv-2", "todo"))
	if got := len(columnTasks(t, s, "todo")); got != 1 {
		t.Fatalf("expected no-op replace, got %d tasks", got)
	}
}

func TestRemoveAndRevertDelete(t *testing.T) {
	s := seedStore(t)
	orig := task("t1", "doing")
	s.AddTask(orig)

	s.RemoveTask("t1")
	if _, ok := s.FindTask("t1"); ok {
		t.Fatal("expected t1 removed")
	}

	s.RevertDelete(orig)
	got, ok := s.FindTask("t1")
	if !ok || got.ColumnID != "doing" {
		t.Fatalf("expected t1 restored to doing, got %+v ok=%v", got, ok)
	}
	checkClosure(t, s)
}

func TestSnapshot_ImmuneToLaterMutations(t *testing.T) {
	s := seedStore(t)
	s.AddTask(task("t1", "todo"))

	snap := s.Snapshot()
	s.MoveTask("t1", "todo", "done")

	// The earlier snapshot still shows t1 in todo.
	for _, c := range snap {
		if c.ID == "todo" && (len(c.Tasks) != 1 || c.Tasks[0].ID != "t1") {
			t.Fatalf("old snapshot mutated: %v", c.Tasks)
		}
	}
}
