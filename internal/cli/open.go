package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/taskdeck/deck/internal/board"
	"github.com/taskdeck/deck/internal/dispatch"
	"github.com/taskdeck/deck/internal/session"
	"github.com/taskdeck/deck/internal/tui"
	"github.com/taskdeck/deck/internal/watcher"
)

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open the interactive board",
	Long:  "Opens the interactive kanban board with animated card moves.\nChanges made by other processes show up live.",
	RunE:  runOpen,
}

func runOpen(cmd *cobra.Command, args []string) error {
	s, cfg, err := mustStore()
	if err != nil {
		return err
	}
	defer s.Close()

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	b := board.NewStore()
	st := session.New()
	d := dispatch.New(b, st, s, logger)

	p := tea.NewProgram(tui.New(s, b, st, d, cfg), tea.WithAltScreen())

	// Refresh the board when another process writes the database.
	w, err := watcher.New(deckPath(cfg.Database.Path), func() {
		p.Send(tui.ExternalChangeMsg{})
	})
	if err != nil {
		return fmt.Errorf("watch database: %w", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx, func(err error) {
		logger.WithError(err).Warn("database watcher error")
	})

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
