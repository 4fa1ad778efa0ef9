package session

import "testing"

func TestTaskLoading(t *testing.T) {
	s := New()

	if s.IsTaskLoading("t1") {
		t.Fatal("new state should have no loading tasks")
	}

	s.SetTaskLoading("t1", true)
	if !s.IsTaskLoading("t1") {
		t.Fatal("expected t1 loading after SetTaskLoading(true)")
	}

	s.SetTaskLoading("t1", false)
	if s.IsTaskLoading("t1") {
		t.Fatal("expected t1 not loading after SetTaskLoading(false)")
	}
}

func TestBeginEnd(t *testing.T) {
	s := New()

	if err := s.Begin("t1"); err != nil {
		t.Fatalf("first Begin: %v", err)
	}
	if err := s.Begin("t1"); err != ErrTaskBusy {
		t.Fatalf("expected ErrTaskBusy, got %v", err)
	}

	// A different task is unaffected.
	if err := s.Begin("t2"); err != nil {
		t.Fatalf("Begin t2: %v", err)
	}

	s.End("t1")
	if err := s.Begin("t1"); err != nil {
		t.Fatalf("Begin after End: %v", err)
	}
}

func TestEnd_UnknownIDIsNoOp(t *testing.T) {
	s := New()
	s.End("never-claimed")
	if err := s.Begin("never-claimed"); err != nil {
		t.Fatalf("Begin after stray End: %v", err)
	}
}

func TestBusy(t *testing.T) {
	s := New()
	if s.Busy() {
		t.Fatal("new state should not be busy")
	}

	s.Begin("t1")
	if !s.Busy() {
		t.Fatal("expected busy while an operation is in flight")
	}
	s.End("t1")
	if s.Busy() {
		t.Fatal("expected idle after End")
	}

	s.SetTaskLoading("t1", true)
	if !s.Busy() {
		t.Fatal("expected busy while a task is loading")
	}
	s.SetTaskLoading("t1", false)

	s.StartMove(Move{TaskID: "t1", FromColumnID: "a", ToColumnID: "b"})
	if !s.Busy() {
		t.Fatal("expected busy while a move is active")
	}
	s.FinishMove()
	if s.Busy() {
		t.Fatal("expected idle after FinishMove")
	}
}

func TestStartMove_SecondRejected(t *testing.T) {
	s := New()

	m := Move{TaskID: "t1", FromColumnID: "todo", ToColumnID: "done"}
	if err := s.StartMove(m); err != nil {
		t.Fatalf("StartMove: %v", err)
	}

	err := s.StartMove(Move{TaskID: "t2", FromColumnID: "todo", ToColumnID: "done"})
	if err != ErrMoveInProgress {
		t.Fatalf("expected ErrMoveInProgress, got %v", err)
	}

	got := s.ActiveMove()
	if got == nil || got.TaskID != "t1" {
		t.Fatalf("expected active move t1, got %+v", got)
	}

	s.FinishMove()
	if s.ActiveMove() != nil {
		t.Fatal("expected no active move after FinishMove")
	}
	if err := s.StartMove(m); err != nil {
		t.Fatalf("StartMove after FinishMove: %v", err)
	}
}

func TestActiveMove_ReturnsCopy(t *testing.T) {
	s := New()
	s.StartMove(Move{TaskID: "t1", FromColumnID: "a", ToColumnID: "b"})

	got := s.ActiveMove()
	got.TaskID = "mutated"

	if s.ActiveMove().TaskID != "t1" {
		t.Fatal("mutating the returned descriptor leaked into the state")
	}
}
