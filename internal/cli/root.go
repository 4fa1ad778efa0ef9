package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "deck",
	Short: "Kanban board in your terminal",
	Long:  "deck — a local kanban board with optimistic updates and animated card moves.\nState lives in a .deck/ directory next to your project.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(openCmd)
}
