package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskdeck/deck/internal/config"
	"github.com/taskdeck/deck/internal/store"
)

var initSeed bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize deck in the current directory",
	Long:  "Creates a .deck/ directory with default config and database.",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initSeed, "seed", false, "Create starter columns and sample tasks")
}

func runInit(cmd *cobra.Command, args []string) error {
	// Check if already initialized.
	if _, err := os.Stat(deckDirName); err == nil {
		return fmt.Errorf("deck already initialized in this directory (.deck/ exists)")
	}

	if err := os.MkdirAll(deckDirName, 0755); err != nil {
		return fmt.Errorf("create .deck: %w", err)
	}

	cfg := config.DefaultConfig()
	if err := config.Save(deckPath("config.yaml"), cfg); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	// Opening the store runs the migration.
	s, err := store.New(deckPath(cfg.Database.Path))
	if err != nil {
		return fmt.Errorf("create database: %w", err)
	}
	defer s.Close()

	ctx := context.Background()
	if initSeed {
		if err := s.Seed(ctx); err != nil {
			return fmt.Errorf("seed board: %w", err)
		}
	} else {
		for i, title := range []string{"Todo", "In Progress", "Done"} {
			if _, err := s.CreateColumn(ctx, title, i); err != nil {
				return fmt.Errorf("create column: %w", err)
			}
		}
	}

	fmt.Println("Initialized deck in .deck/")
	fmt.Println("")
	fmt.Println("Next steps:")
	if !initSeed {
		fmt.Println("  1. Run: deck task add \"your first task\"")
		fmt.Println("  2. Run: deck board")
		fmt.Println("  3. Run: deck open")
	} else {
		fmt.Println("  1. Run: deck board")
		fmt.Println("  2. Run: deck open")
	}

	return nil
}
