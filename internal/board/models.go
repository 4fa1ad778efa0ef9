package board

import "time"

// Priority ranks how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a unit of work on the board. A task belongs to exactly one
// column at any committed instant; Position ranks it within that column.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	Assignee    string     `json:"assignee,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	ColumnID    string     `json:"column_id"`
	Position    int        `json:"position"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Column is a named, ordered bucket of tasks (e.g. Todo / In Progress / Done).
type Column struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Tasks     []Task    `json:"tasks"`
}

// TaskDraft holds the caller-supplied fields of a task to be created.
// The persistence layer assigns the id and timestamps.
type TaskDraft struct {
	Title       string
	Description string
	Priority    Priority
	Assignee    string
	DueDate     *time.Time
	ColumnID    string
	Position    int
}

// TaskPatch carries a partial set of task fields for merge operations.
// Nil pointers mean "leave unchanged". Because DueDate is itself nullable,
// it only applies when SetDueDate is true.
type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *Priority
	Assignee    *string
	DueDate     *time.Time
	SetDueDate  bool
	UpdatedAt   *time.Time
}

// Apply merges the patch into a copy of t and returns it.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Assignee != nil {
		t.Assignee = *p.Assignee
	}
	if p.SetDueDate {
		t.DueDate = p.DueDate
	}
	if p.UpdatedAt != nil {
		t.UpdatedAt = *p.UpdatedAt
	}
	return t
}

// PatchOf captures the fields of t that a patch would overwrite, so a
// failed optimistic update can be undone by re-applying the original values.
func PatchOf(t Task, p TaskPatch) TaskPatch {
	orig := TaskPatch{}
	if p.Title != nil {
		v := t.Title
		orig.Title = &v
	}
	if p.Description != nil {
		v := t.Description
		orig.Description = &v
	}
	if p.Priority != nil {
		v := t.Priority
		orig.Priority = &v
	}
	if p.Assignee != nil {
		v := t.Assignee
		orig.Assignee = &v
	}
	if p.SetDueDate {
		orig.SetDueDate = true
		orig.DueDate = t.DueDate
	}
	return orig
}
