package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/taskdeck/deck/internal/board"
	"github.com/taskdeck/deck/internal/motion"
	"github.com/taskdeck/deck/internal/session"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// If popup is active, handle popup keys first.
		if m.popup != popupNone {
			return m.handlePopupKey(msg)
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.markdown = nil
		return m, nil

	case boardLoadedMsg:
		if msg.err != nil {
			m.setStatus("Failed to load board: " + msg.err.Error())
			return m, nil
		}
		if msg.seed {
			m.board.SeedColumns(msg.columns)
		} else if m.seq != nil || m.state.Busy() {
			// A reload that raced an in-flight operation would swallow
			// its optimistic state; apply it once the operation settles.
			m.pendingReload = true
			return m, nil
		} else {
			m.board.Reload(msg.columns)
		}
		m.refreshColumns()
		if m.detailTask != nil {
			if t, ok := m.board.FindTask(m.detailTask.ID); ok {
				m.detailTask = &t
			} else {
				m.detailTask = nil
				m.screen = screenBoard
			}
		}
		return m, nil

	case dispatchDoneMsg:
		m.refreshColumns()
		if msg.res.OK {
			m.setStatus(msg.verb + " saved")
		} else {
			m.setStatus(msg.verb + " failed: " + msg.res.Err)
		}
		if m.detailTask != nil {
			if t, ok := m.board.FindTask(m.detailTask.ID); ok {
				m.detailTask = &t
			} else {
				m.detailTask = nil
				m.screen = screenBoard
			}
		}
		if m.pendingReload && m.seq == nil && !m.state.Busy() {
			m.pendingReload = false
			return m, m.loadBoard(false)
		}
		return m, nil

	case ExternalChangeMsg:
		// Don't clobber an in-flight animation or operation; reload once
		// everything settles.
		if m.seq != nil || m.state.Busy() {
			m.pendingReload = true
			return m, nil
		}
		return m, m.loadBoard(false)

	case frameMsg:
		return m.handleFrame()
	}

	// Spinner runs on its own tick.
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m Model) handleFrame() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.frameTick()}

	if m.statusMsg != "" && time.Since(m.statusTime) > 5*time.Second {
		m.statusMsg = ""
	}

	if m.seq != nil {
		m.frame = m.seq.Advance(time.Now())
		m.refreshColumns()
		if m.frame.Done {
			cmds = append(cmds, m.finishMove())
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) finishMove() tea.Cmd {
	task := m.moving
	m.state.FinishMove()
	m.state.End(task.ID)
	m.state.SetTaskLoading(task.ID, false)

	switch res := m.moveOutcome.get(); {
	case res == nil:
		m.setStatus("Move timed out, board may be stale")
	case !res.OK:
		m.setStatus("Move failed: " + res.Err + " (reverted)")
	default:
		m.setStatus("Moved \"" + truncate(task.Title, 30) + "\"")
	}

	m.seq = nil
	m.moving = nil
	m.moveOutcome = nil
	m.refreshColumns()

	if m.pendingReload && !m.state.Busy() {
		m.pendingReload = false
		return m.loadBoard(false)
	}
	return nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.screen == screenBoard {
			m.quitting = true
			return m, tea.Quit
		}
		m.screen = screenBoard
		m.detailTask = nil
		return m, nil

	case "esc":
		if m.screen == screenDetail {
			m.screen = screenBoard
			m.detailTask = nil
		}
		return m, nil
	}

	switch m.screen {
	case screenBoard:
		return m.handleBoardKey(msg)
	case screenDetail:
		return m.handleDetailKey(msg)
	}

	return m, nil
}

// --- Board screen keys ---

func (m Model) handleBoardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "h", "left":
		m.cursorCol--
		m.clampCursor()
	case "l", "right":
		m.cursorCol++
		m.clampCursor()
	case "j", "down":
		m.cursorRow++
		m.clampCursor()
	case "k", "up":
		m.cursorRow--
		m.clampCursor()

	case "enter", " ":
		if t := m.selectedTask(); t != nil {
			m.detailTask = t
			m.screen = screenDetail
		}

	case "c":
		return m.openCreatePopup()

	case "e":
		if t := m.selectedTask(); t != nil {
			return m.openEditPopup(t)
		}

	case "d", "x":
		if t := m.selectedTask(); t != nil {
			m.popupTaskID = t.ID
			m.popup = popupDelete
		}

	case "m":
		if t := m.selectedTask(); t != nil {
			m.popupTaskID = t.ID
			m.moveTarget = m.cursorCol
			m.popup = popupMove
		}

	case "R":
		return m, m.loadBoard(false)
	}

	return m, nil
}

// --- Detail screen keys ---

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.detailTask == nil {
		m.screen = screenBoard
		return m, nil
	}

	switch msg.String() {
	case "e":
		return m.openEditPopup(m.detailTask)
	case "d", "x":
		m.popupTaskID = m.detailTask.ID
		m.popup = popupDelete
	case "m":
		m.popupTaskID = m.detailTask.ID
		m.moveTarget = m.board.ColumnIndex(m.detailTask.ColumnID)
		m.popup = popupMove
	case "backspace":
		m.screen = screenBoard
		m.detailTask = nil
	}

	return m, nil
}

// --- Popup open helpers ---

func (m Model) openCreatePopup() (tea.Model, tea.Cmd) {
	m.popup = popupCreate
	m.popupTaskID = ""
	m.titleInput.Reset()
	m.descInput.Reset()
	m.assigneeInput.Reset()
	m.titleInput.Focus()
	m.descInput.Blur()
	m.assigneeInput.Blur()
	m.inputFocused = 0
	m.inputPriority = board.PriorityMedium
	return m, textinput.Blink
}

func (m Model) openEditPopup(t *board.Task) (tea.Model, tea.Cmd) {
	m.popup = popupEdit
	m.popupTaskID = t.ID
	m.titleInput.SetValue(t.Title)
	m.descInput.SetValue(t.Description)
	m.assigneeInput.SetValue(t.Assignee)
	m.titleInput.Focus()
	m.descInput.Blur()
	m.assigneeInput.Blur()
	m.inputFocused = 0
	m.inputPriority = t.Priority
	return m, textinput.Blink
}

// --- Popup keys ---

func (m Model) handlePopupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.popup {
	case popupCreate, popupEdit:
		return m.handleTaskFormPopup(msg)
	case popupDelete:
		return m.handleDeletePopup(msg)
	case popupMove:
		return m.handleMovePopup(msg)
	}
	return m, nil
}

func (m Model) handleTaskFormPopup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.popup = popupNone
		return m, nil

	case "tab", "shift+tab":
		inputs := []*textinput.Model{&m.titleInput, &m.descInput, &m.assigneeInput}
		inputs[m.inputFocused].Blur()
		if msg.String() == "tab" {
			m.inputFocused = (m.inputFocused + 1) % len(inputs)
		} else {
			m.inputFocused = (m.inputFocused + len(inputs) - 1) % len(inputs)
		}
		inputs[m.inputFocused].Focus()
		return m, textinput.Blink

	case "ctrl+p":
		switch m.inputPriority {
		case board.PriorityHigh:
			m.inputPriority = board.PriorityMedium
		case board.PriorityMedium:
			m.inputPriority = board.PriorityLow
		case board.PriorityLow:
			m.inputPriority = board.PriorityHigh
		}
		return m, nil

	case "enter":
		title := m.titleInput.Value()
		if title == "" {
			m.setStatus("Title cannot be empty")
			return m, nil
		}
		if m.popup == popupCreate {
			return m.submitCreate(title)
		}
		return m.submitEdit(title)
	}

	var cmd tea.Cmd
	switch m.inputFocused {
	case 0:
		m.titleInput, cmd = m.titleInput.Update(msg)
	case 1:
		m.descInput, cmd = m.descInput.Update(msg)
	default:
		m.assigneeInput, cmd = m.assigneeInput.Update(msg)
	}
	return m, cmd
}

func (m Model) submitCreate(title string) (tea.Model, tea.Cmd) {
	if len(m.columns) == 0 {
		m.setStatus("No columns to add to")
		m.popup = popupNone
		return m, nil
	}
	col := m.columns[m.cursorCol]
	draft := board.TaskDraft{
		Title:       title,
		Description: m.descInput.Value(),
		Priority:    m.inputPriority,
		Assignee:    m.assigneeInput.Value(),
		ColumnID:    col.ID,
		Position:    len(col.Tasks),
	}
	m.popup = popupNone

	d := m.dispatch
	return m, func() tea.Msg {
		return dispatchDoneMsg{verb: "Create", res: d.CreateTask(context.Background(), draft)}
	}
}

func (m Model) submitEdit(title string) (tea.Model, tea.Cmd) {
	desc := m.descInput.Value()
	assignee := m.assigneeInput.Value()
	prio := m.inputPriority
	patch := board.TaskPatch{
		Title:       &title,
		Description: &desc,
		Assignee:    &assignee,
		Priority:    &prio,
	}
	id := m.popupTaskID
	m.popup = popupNone

	d := m.dispatch
	return m, func() tea.Msg {
		return dispatchDoneMsg{verb: "Edit", res: d.UpdateTask(context.Background(), id, patch)}
	}
}

func (m Model) handleDeletePopup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		id := m.popupTaskID
		m.popup = popupNone
		if m.detailTask != nil && m.detailTask.ID == id {
			m.detailTask = nil
			m.screen = screenBoard
		}
		d := m.dispatch
		return m, func() tea.Msg {
			return dispatchDoneMsg{verb: "Delete", res: d.DeleteTask(context.Background(), id)}
		}
	case "n", "esc":
		m.popup = popupNone
	}
	return m, nil
}

func (m Model) handleMovePopup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.popup = popupNone
		return m, nil
	case "h", "left":
		if m.moveTarget > 0 {
			m.moveTarget--
		}
	case "l", "right":
		if m.moveTarget < len(m.columns)-1 {
			m.moveTarget++
		}
	case "enter":
		m.popup = popupNone
		return m.startMove()
	}
	return m, nil
}

// startMove claims the task and the single move slot, then hands the
// animation to the sequencer. The board mutation happens when the card
// lands; persistence confirms it in the background.
func (m Model) startMove() (tea.Model, tea.Cmd) {
	task, ok := m.board.FindTask(m.popupTaskID)
	if !ok {
		m.setStatus("Task is gone")
		return m, nil
	}
	if m.moveTarget >= len(m.columns) {
		return m, nil
	}
	from := m.board.ColumnIndex(task.ColumnID)
	to := m.moveTarget
	toColumnID := m.columns[to].ID

	if err := m.state.Begin(task.ID); err != nil {
		if errors.Is(err, session.ErrTaskBusy) {
			m.setStatus("Task has an operation in flight")
		}
		return m, nil
	}
	if err := m.state.StartMove(session.Move{
		TaskID:       task.ID,
		FromColumnID: task.ColumnID,
		ToColumnID:   toColumnID,
	}); err != nil {
		m.state.End(task.ID)
		if errors.Is(err, session.ErrMoveInProgress) {
			m.setStatus("Another move is already in progress")
		}
		return m, nil
	}
	m.state.SetTaskLoading(task.ID, true)

	outcome := &moveOutcome{}
	b, d := m.board, m.dispatch
	id, fromColumnID := task.ID, task.ColumnID
	seq := motion.New(
		motion.Config{
			StepDuration:    m.cfg.Animation.StepDuration(),
			FallbackTimeout: m.cfg.Animation.FallbackTimeout(),
		},
		from, to,
		func() { b.MoveTask(id, fromColumnID, toColumnID) },
		func(ctx context.Context) {
			outcome.set(d.MoveTask(ctx, id, fromColumnID, toColumnID))
		},
		func() {},
	)
	seq.Start(context.Background(), time.Now())

	t := task
	m.seq = seq
	m.frame = motion.Frame{ColumnIndex: from}
	m.moving = &t
	m.moveOutcome = outcome
	if m.screen == screenDetail {
		m.screen = screenBoard
		m.detailTask = nil
	}
	return m, nil
}
