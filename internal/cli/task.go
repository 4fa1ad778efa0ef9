package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskdeck/deck/internal/board"
	"github.com/taskdeck/deck/internal/store"
)

var (
	taskPriority    string
	taskDescription string
	taskAssignee    string
	taskDue         string
	taskColumn      string
	taskClearDue    bool
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Create or manage tasks",
	Long:  "Create a new task or manage existing ones on the board.",
}

var taskAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new task",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTaskAdd,
}

var taskListCmd = &cobra.Command{
	Use:   "list [column]",
	Short: "List tasks, optionally filtered by column",
	RunE:  runTaskList,
}

var taskShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskShow,
}

var taskEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit task fields",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskEdit,
}

var taskDelCmd = &cobra.Command{
	Use:   "del [id]",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskDel,
}

var taskMoveCmd = &cobra.Command{
	Use:   "move [id] [column]",
	Short: "Move a task to another column",
	Args:  cobra.ExactArgs(2),
	RunE:  runTaskMove,
}

func init() {
	taskAddCmd.Flags().StringVarP(&taskPriority, "priority", "p", "medium", "Priority: high, medium, low")
	taskAddCmd.Flags().StringVarP(&taskDescription, "desc", "d", "", "Task description (markdown)")
	taskAddCmd.Flags().StringVarP(&taskAssignee, "assignee", "a", "", "Assignee name")
	taskAddCmd.Flags().StringVar(&taskDue, "due", "", "Due date (YYYY-MM-DD)")
	taskAddCmd.Flags().StringVarP(&taskColumn, "column", "c", "", "Column title (default: first column)")

	taskEditCmd.Flags().StringVarP(&taskPriority, "priority", "p", "", "Priority: high, medium, low")
	taskEditCmd.Flags().StringVarP(&taskDescription, "desc", "d", "", "Task description (markdown)")
	taskEditCmd.Flags().StringVarP(&taskAssignee, "assignee", "a", "", "Assignee name")
	taskEditCmd.Flags().StringVar(&taskDue, "due", "", "Due date (YYYY-MM-DD)")
	taskEditCmd.Flags().BoolVar(&taskClearDue, "clear-due", false, "Remove the due date")

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskShowCmd)
	taskCmd.AddCommand(taskEditCmd)
	taskCmd.AddCommand(taskDelCmd)
	taskCmd.AddCommand(taskMoveCmd)
}

// findColumn resolves a column by title, case-insensitively. An empty
// title picks the first column. Tasks are loaded so callers can append
// at the end of the column.
func findColumn(ctx context.Context, s *store.Store, title string) (*board.Column, error) {
	columns, err := s.BoardData(ctx)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("board has no columns. Run: deck init --seed")
	}
	if title == "" {
		return &columns[0], nil
	}
	for i := range columns {
		if strings.EqualFold(columns[i].Title, title) {
			return &columns[i], nil
		}
	}
	return nil, fmt.Errorf("no column named %q", title)
}

func parseDue(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q, want YYYY-MM-DD", value)
	}
	return &t, nil
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	s, _, err := mustStore()
	if err != nil {
		return err
	}
	defer s.Close()
	ctx := context.Background()

	col, err := findColumn(ctx, s, taskColumn)
	if err != nil {
		return err
	}
	due, err := parseDue(taskDue)
	if err != nil {
		return err
	}

	task, err := s.CreateTask(ctx, board.TaskDraft{
		Title:       strings.Join(args, " "),
		Description: taskDescription,
		Priority:    board.Priority(taskPriority),
		Assignee:    taskAssignee,
		DueDate:     due,
		ColumnID:    col.ID,
		Position:    len(col.Tasks),
	})
	if err != nil {
		return err
	}

	fmt.Printf("Created task %s: %s [%s] in %s\n", shortID(task.ID), task.Title, task.Priority, col.Title)
	return nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	s, _, err := mustStore()
	if err != nil {
		return err
	}
	defer s.Close()
	ctx := context.Background()

	columns, err := s.BoardData(ctx)
	if err != nil {
		return err
	}

	filter := ""
	if len(args) > 0 {
		filter = args[0]
	}

	found := false
	for _, c := range columns {
		if filter != "" && !strings.EqualFold(c.Title, filter) {
			continue
		}
		for _, t := range c.Tasks {
			found = true
			assignee := ""
			if t.Assignee != "" {
				assignee = fmt.Sprintf(" [@%s]", t.Assignee)
			}
			due := ""
			if t.DueDate != nil {
				due = " due " + t.DueDate.Format("2006-01-02")
			}
			fmt.Printf("%s %-14s %-6s %s%s%s\n", shortID(t.ID), c.Title, t.Priority, t.Title, assignee, due)
		}
	}
	if !found {
		fmt.Println("No tasks found.")
	}
	return nil
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	s, _, err := mustStore()
	if err != nil {
		return err
	}
	defer s.Close()
	ctx := context.Background()

	task, err := resolveTask(ctx, s, args[0])
	if err != nil {
		return err
	}

	columns, _ := s.ListColumns(ctx)
	colTitle := task.ColumnID
	for _, c := range columns {
		if c.ID == task.ColumnID {
			colTitle = c.Title
			break
		}
	}

	fmt.Printf("Task %s\n", shortID(task.ID))
	fmt.Printf("  Title:    %s\n", task.Title)
	fmt.Printf("  Column:   %s\n", colTitle)
	fmt.Printf("  Priority: %s\n", task.Priority)
	if task.Description != "" {
		fmt.Printf("  Desc:     %s\n", task.Description)
	}
	if task.Assignee != "" {
		fmt.Printf("  Assignee: %s\n", task.Assignee)
	}
	if task.DueDate != nil {
		fmt.Printf("  Due:      %s\n", task.DueDate.Format("2006-01-02"))
	}
	fmt.Printf("  Created:  %s\n", task.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Printf("  Updated:  %s\n", task.UpdatedAt.Local().Format("2006-01-02 15:04"))
	return nil
}

func runTaskEdit(cmd *cobra.Command, args []string) error {
	s, _, err := mustStore()
	if err != nil {
		return err
	}
	defer s.Close()
	ctx := context.Background()

	task, err := resolveTask(ctx, s, args[0])
	if err != nil {
		return err
	}

	var patch board.TaskPatch
	if cmd.Flags().Changed("priority") {
		p := board.Priority(taskPriority)
		if !p.Valid() {
			return fmt.Errorf("invalid priority %q", taskPriority)
		}
		patch.Priority = &p
	}
	if cmd.Flags().Changed("desc") {
		patch.Description = &taskDescription
	}
	if cmd.Flags().Changed("assignee") {
		patch.Assignee = &taskAssignee
	}
	if taskClearDue {
		patch.SetDueDate = true
	} else if cmd.Flags().Changed("due") {
		due, err := parseDue(taskDue)
		if err != nil {
			return err
		}
		patch.SetDueDate = true
		patch.DueDate = due
	}

	updated, err := s.UpdateTask(ctx, task.ID, patch)
	if err != nil {
		return err
	}

	fmt.Printf("Updated task %s: %s\n", shortID(updated.ID), updated.Title)
	return nil
}

func runTaskDel(cmd *cobra.Command, args []string) error {
	s, _, err := mustStore()
	if err != nil {
		return err
	}
	defer s.Close()
	ctx := context.Background()

	task, err := resolveTask(ctx, s, args[0])
	if err != nil {
		return err
	}
	if err := s.DeleteTask(ctx, task.ID); err != nil {
		return err
	}

	fmt.Printf("Deleted task %s: %s\n", shortID(task.ID), task.Title)
	return nil
}

func runTaskMove(cmd *cobra.Command, args []string) error {
	s, _, err := mustStore()
	if err != nil {
		return err
	}
	defer s.Close()
	ctx := context.Background()

	task, err := resolveTask(ctx, s, args[0])
	if err != nil {
		return err
	}
	col, err := findColumn(ctx, s, args[1])
	if err != nil {
		return err
	}

	moved, err := s.MoveTask(ctx, task.ID, col.ID, len(col.Tasks))
	if err != nil {
		return err
	}

	fmt.Printf("Moved task %s to %s\n", shortID(moved.ID), col.Title)
	return nil
}

// resolveTask looks a task up by full ID or unambiguous ID prefix.
func resolveTask(ctx context.Context, s *store.Store, ref string) (*board.Task, error) {
	if t, err := s.GetTask(ctx, ref); err == nil {
		return t, nil
	}

	columns, err := s.BoardData(ctx)
	if err != nil {
		return nil, err
	}
	var match *board.Task
	for _, c := range columns {
		for i := range c.Tasks {
			if strings.HasPrefix(c.Tasks[i].ID, ref) {
				if match != nil {
					return nil, fmt.Errorf("task ID %q is ambiguous", ref)
				}
				t := c.Tasks[i]
				match = &t
			}
		}
	}
	if match == nil {
		return nil, fmt.Errorf("task %q not found", ref)
	}
	return match, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
