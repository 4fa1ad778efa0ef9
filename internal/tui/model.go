package tui

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/taskdeck/deck/internal/board"
	"github.com/taskdeck/deck/internal/config"
	"github.com/taskdeck/deck/internal/dispatch"
	"github.com/taskdeck/deck/internal/motion"
	"github.com/taskdeck/deck/internal/session"
	"github.com/taskdeck/deck/internal/store"
)

// screen represents which screen the TUI is in.
type screen int

const (
	screenBoard  screen = iota // Kanban board (main)
	screenDetail               // Task detail panel
)

// popup represents the active overlay dialog, if any.
type popup int

const (
	popupNone popup = iota
	popupCreate
	popupEdit
	popupDelete
	popupMove
)

// Model is the top-level bubbletea model.
type Model struct {
	db       *store.Store
	board    *board.Store
	state    *session.State
	dispatch *dispatch.Dispatcher
	cfg      *config.Config

	width  int
	height int

	screen screen
	popup  popup

	// Board state, rebuilt from the optimistic store after every change.
	columns   []board.Column
	cursorCol int
	cursorRow int

	// Per-task loading indicator.
	spinner spinner.Model

	// Active move animation.
	seq           *motion.Sequencer
	frame         motion.Frame
	moving        *board.Task
	moveOutcome   *moveOutcome
	pendingReload bool

	// Move destination picker.
	moveTarget int

	// Text inputs for create/edit dialogs.
	titleInput    textinput.Model
	descInput     textinput.Model
	assigneeInput textinput.Model
	inputFocused  int
	inputPriority board.Priority

	// Task targeted by the edit/delete popups.
	popupTaskID string

	// Selected task for detail view.
	detailTask *board.Task
	markdown   *glamour.TermRenderer

	// Status message at the bottom.
	statusMsg  string
	statusTime time.Time

	quitting bool
}

// moveOutcome carries the persistence result from the animation's
// background confirmation into the model at landing time.
type moveOutcome struct {
	mu  sync.Mutex
	res *dispatch.Result
}

func (o *moveOutcome) set(res dispatch.Result) {
	o.mu.Lock()
	o.res = &res
	o.mu.Unlock()
}

func (o *moveOutcome) get() *dispatch.Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.res
}

// New creates a new TUI model.
func New(db *store.Store, b *board.Store, st *session.State, d *dispatch.Dispatcher, cfg *config.Config) Model {
	ti := textinput.New()
	ti.Placeholder = "Task title..."
	ti.CharLimit = 120
	ti.Width = 50

	di := textinput.New()
	di.Placeholder = "Description (optional, markdown)..."
	di.CharLimit = 2000
	di.Width = 50

	ai := textinput.New()
	ai.Placeholder = "Assignee (optional)..."
	ai.CharLimit = 60
	ai.Width = 50

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(clrHighlight)

	return Model{
		db:            db,
		board:         b,
		state:         st,
		dispatch:      d,
		cfg:           cfg,
		screen:        screenBoard,
		titleInput:    ti,
		descInput:     di,
		assigneeInput: ai,
		inputPriority: board.PriorityMedium,
		spinner:       sp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadBoard(true), m.frameTick(), m.spinner.Tick)
}

// ExternalChangeMsg is sent by the database watcher when another process
// changes the board.
type ExternalChangeMsg struct{}

type boardLoadedMsg struct {
	columns []board.Column
	err     error
	// seed marks the initial load, which must not clobber a board that
	// already holds data.
	seed bool
}

type dispatchDoneMsg struct {
	verb string
	res  dispatch.Result
}

type frameMsg time.Time

func (m Model) loadBoard(seed bool) tea.Cmd {
	return func() tea.Msg {
		columns, err := m.db.BoardData(context.Background())
		return boardLoadedMsg{columns: columns, err: err, seed: seed}
	}
}

func (m Model) frameTick() tea.Cmd {
	return tea.Tick(m.cfg.Animation.FrameInterval(), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m *Model) refreshColumns() {
	m.columns = m.board.Snapshot()
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if len(m.columns) == 0 {
		m.cursorCol, m.cursorRow = 0, 0
		return
	}
	if m.cursorCol < 0 {
		m.cursorCol = 0
	}
	if m.cursorCol >= len(m.columns) {
		m.cursorCol = len(m.columns) - 1
	}
	col := m.columns[m.cursorCol]
	if m.cursorRow >= len(col.Tasks) {
		m.cursorRow = len(col.Tasks) - 1
	}
	if m.cursorRow < 0 {
		m.cursorRow = 0
	}
}

func (m *Model) selectedTask() *board.Task {
	if m.cursorCol >= len(m.columns) {
		return nil
	}
	col := m.columns[m.cursorCol]
	if m.cursorRow < len(col.Tasks) {
		t := col.Tasks[m.cursorRow]
		return &t
	}
	return nil
}

func (m *Model) setStatus(msg string) {
	m.statusMsg = msg
	m.statusTime = time.Now()
}
