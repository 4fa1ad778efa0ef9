// Package store persists the kanban board in SQLite. It is a passive
// collaborator: the optimistic core calls into it and reconciles with the
// rows it returns, but it knows nothing about in-flight UI state.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/taskdeck/deck/internal/board"
)

// Store provides access to the deck database.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at the given path.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent access.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS columns (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		position    INTEGER NOT NULL DEFAULT 0,
		created_at  DATETIME NOT NULL,
		updated_at  DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id           TEXT PRIMARY KEY,
		title        TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		priority     TEXT NOT NULL DEFAULT 'medium',
		assignee     TEXT DEFAULT '',
		due_date     DATETIME,
		column_id    TEXT NOT NULL REFERENCES columns(id) ON DELETE CASCADE,
		position     INTEGER NOT NULL DEFAULT 0,
		created_at   DATETIME NOT NULL,
		updated_at   DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_column ON tasks(column_id, position);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// taskColumns is the standard column list for task queries.
const taskColumns = `id, title, description, priority, assignee, due_date, column_id, position, created_at, updated_at`

// CreateColumn inserts a new column and returns it with its generated id.
func (s *Store) CreateColumn(ctx context.Context, title string, position int) (*board.Column, error) {
	now := time.Now().UTC()
	col := board.Column{
		ID:        uuid.NewString(),
		Title:     title,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO columns (id, title, position, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		col.ID, col.Title, col.Position, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert column: %w", err)
	}
	return &col, nil
}

// ListColumns returns all columns ascending by position, without tasks.
func (s *Store) ListColumns(ctx context.Context) ([]board.Column, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, position, created_at, updated_at FROM columns ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	var cols []board.Column
	for rows.Next() {
		var c board.Column
		if err := rows.Scan(&c.ID, &c.Title, &c.Position, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// CreateTask inserts a new task and returns the canonical row.
func (s *Store) CreateTask(ctx context.Context, draft board.TaskDraft) (*board.Task, error) {
	now := time.Now().UTC()
	if draft.Priority == "" {
		draft.Priority = board.PriorityMedium
	}
	if !draft.Priority.Valid() {
		return nil, fmt.Errorf("create task: invalid priority %q", draft.Priority)
	}

	t := board.Task{
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

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, title, description, priority, assignee, due_date, column_id, position, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Description, string(t.Priority), t.Assignee, nullTime(t.DueDate), t.ColumnID, t.Position, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return &t, nil
}

// GetTask returns a single task by id.
func (s *Store) GetTask(ctx context.Context, id string) (*board.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id,
	)
	return scanTask(row)
}

// UpdateTask applies the patch, bumps updated_at, and returns the
// canonical row.
func (s *Store) UpdateTask(ctx context.Context, id string, patch board.TaskPatch) (*board.Task, error) {
	current, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	next := patch.Apply(*current)
	if !next.Priority.Valid() {
		return nil, fmt.Errorf("update task: invalid priority %q", next.Priority)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, priority = ?, assignee = ?, due_date = ?, updated_at = ? WHERE id = ?`,
		next.Title, next.Description, string(next.Priority), next.Assignee, nullTime(next.DueDate), now, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	next.UpdatedAt = now
	return &next, nil
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete task: no task with id %s", id)
	}
	return nil
}

// MoveTask reassigns a task to a column at the given position and returns
// the canonical row. Moving a task to the column it is already in leaves
// the row untouched.
func (s *Store) MoveTask(ctx context.Context, id, toColumnID string, position int) (*board.Task, error) {
	current, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.ColumnID == toColumnID {
		return current, nil
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`UPDATE tasks SET column_id = ?, position = ?, updated_at = ? WHERE id = ?`,
		toColumnID, position, now, id,
	)
	if err != nil {
		return nil, fmt.Errorf("move task: %w", err)
	}

	current.ColumnID = toColumnID
	current.Position = position
	current.UpdatedAt = now
	return current, nil
}

// BoardData returns the full board snapshot: columns ascending by
// position, each embedding its tasks ascending by position.
func (s *Store) BoardData(ctx context.Context) ([]board.Column, error) {
	cols, err := s.ListColumns(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	byColumn := make(map[string][]board.Task)
	for rows.Next() {
		t, err := scanTaskRows(rows)
		if err != nil {
			return nil, err
		}
		byColumn[t.ColumnID] = append(byColumn[t.ColumnID], *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range cols {
		cols[i].Tasks = byColumn[cols[i].ID]
	}
	return cols, nil
}

// Seed populates an empty database with the default three-column board
// and a handful of sample tasks. A board that already has columns is left
// alone.
func (s *Store) Seed(ctx context.Context) error {
	cols, err := s.ListColumns(ctx)
	if err != nil {
		return err
	}
	if len(cols) > 0 {
		return nil
	}

	titles := []string{"Todo", "In Progress", "Done"}
	created := make([]*board.Column, len(titles))
	for i, title := range titles {
		c, err := s.CreateColumn(ctx, title, i)
		if err != nil {
			return err
		}
		created[i] = c
	}

	samples := []board.TaskDraft{
		{Title: "Design user interface", Description: "Create wireframes and mockups for the new feature", Priority: board.PriorityHigh, Assignee: "Alice Johnson", ColumnID: created[0].ID, Position: 0},
		{Title: "Set up database", Description: "Configure the database schema and migrations", Priority: board.PriorityMedium, Assignee: "Bob Smith", ColumnID: created[0].ID, Position: 1},
		{Title: "Implement authentication", Description: "Add user authentication and authorization", Priority: board.PriorityHigh, Assignee: "Charlie Brown", ColumnID: created[1].ID, Position: 0},
		{Title: "Project setup", Description: "Initialize the project and its dependencies", Priority: board.PriorityLow, Assignee: "David Wilson", ColumnID: created[2].ID, Position: 0},
	}
	for _, draft := range samples {
		if _, err := s.CreateTask(ctx, draft); err != nil {
			return err
		}
	}
	return nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// scanTask scans a single task from a *sql.Row.
func scanTask(row *sql.Row) (*board.Task, error) {
	var t board.Task
	var due sql.NullTime
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Priority, &t.Assignee,
		&due, &t.ColumnID, &t.Position, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan task: %w", err)
	}
	if due.Valid {
		t.DueDate = &due.Time
	}
	return &t, nil
}

// scanTaskRows scans a single task from *sql.Rows.
func scanTaskRows(rows *sql.Rows) (*board.Task, error) {
	var t board.Task
	var due sql.NullTime
	err := rows.Scan(
		&t.ID, &t.Title, &t.Description, &t.Priority, &t.Assignee,
		&due, &t.ColumnID, &t.Position, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan task: %w", err)
	}
	if due.Valid {
		t.DueDate = &due.Time
	}
	return &t, nil
}
