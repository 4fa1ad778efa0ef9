package cli

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/taskdeck/deck/internal/config"
	"github.com/taskdeck/deck/internal/store"
)

const deckDirName = ".deck"

// deckPath returns the path to a file inside .deck/.
func deckPath(parts ...string) string {
	elems := append([]string{deckDirName}, parts...)
	return filepath.Join(elems...)
}

// loadConfig reads .deck/config.yaml, returning an error if deck is not
// initialized.
func loadConfig() (*config.Config, error) {
	cfgPath := deckPath("config.yaml")
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("deck not initialized. Run: deck init")
	}
	return config.Load(cfgPath)
}

// mustStore opens the store for the board in the current directory.
func mustStore() (*store.Store, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	s, err := store.New(deckPath(cfg.Database.Path))
	if err != nil {
		return nil, nil, err
	}
	return s, cfg, nil
}

// newLogger builds the file logger. The TUI owns the terminal, so log
// lines never go to stderr while a board is open.
func newLogger(cfg *config.Config) (*log.Logger, func(), error) {
	logger := log.New()

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = log.WarnLevel
	}
	logger.SetLevel(level)

	f, err := os.OpenFile(deckPath(cfg.Log.Path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(f)

	return logger, func() { f.Close() }, nil
}
