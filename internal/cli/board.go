package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskdeck/deck/internal/board"
)

// ANSI color codes.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Print the kanban board",
	RunE:  runBoard,
}

func runBoard(cmd *cobra.Command, args []string) error {
	s, _, err := mustStore()
	if err != nil {
		return err
	}
	defer s.Close()

	columns, err := s.BoardData(context.Background())
	if err != nil {
		return err
	}

	if len(columns) == 0 {
		fmt.Printf("%sBoard is empty.%s Set it up: %sdeck init --seed%s\n",
			colorDim, colorReset, colorCyan, colorReset)
		return nil
	}

	colWidth := 28

	// Print header.
	headerLine := ""
	sepLine := ""
	for _, c := range columns {
		count := len(c.Tasks)
		label := strings.ToUpper(c.Title)
		header := fmt.Sprintf(" %s%s%s (%d)", colorBlue+colorBold, label, colorReset, count)
		// padRight needs visible length, not byte length (ANSI codes add bytes).
		visibleLen := len(fmt.Sprintf(" %s (%d)", label, count))
		padding := colWidth - visibleLen
		if padding < 0 {
			padding = 0
		}
		headerLine += header + strings.Repeat(" ", padding)
		sepLine += strings.Repeat("─", colWidth)
	}
	fmt.Println(headerLine)
	fmt.Println(colorDim + sepLine + colorReset)

	// Find max rows.
	maxRows := 0
	for _, c := range columns {
		if len(c.Tasks) > maxRows {
			maxRows = len(c.Tasks)
		}
	}

	total := 0
	for i := 0; i < maxRows; i++ {
		// Task title line.
		line := ""
		for _, c := range columns {
			if i < len(c.Tasks) {
				t := c.Tasks[i]
				priColor := priorityColor(t.Priority)
				title := truncate(t.Title, colWidth-5)
				card := fmt.Sprintf(" %s●%s %s", priColor, colorReset, title)
				visibleLen := len(fmt.Sprintf(" * %s", title))
				padding := colWidth - visibleLen
				if padding < 0 {
					padding = 0
				}
				line += card + strings.Repeat(" ", padding)
			} else {
				line += strings.Repeat(" ", colWidth)
			}
		}
		fmt.Println(line)

		// Assignee/due line.
		detailLine := ""
		for _, c := range columns {
			if i < len(c.Tasks) {
				t := c.Tasks[i]
				detail := ""
				visibleDetail := ""
				if t.Assignee != "" {
					detail = fmt.Sprintf("    %s@%s%s", colorCyan, t.Assignee, colorReset)
					visibleDetail = fmt.Sprintf("    @%s", t.Assignee)
				}
				if t.DueDate != nil {
					due := t.DueDate.Format("Jan 2")
					detail += fmt.Sprintf(" %sdue %s%s", colorDim, due, colorReset)
					visibleDetail += fmt.Sprintf(" due %s", due)
				}
				padding := colWidth - len(visibleDetail)
				if padding < 0 {
					padding = 0
				}
				detailLine += detail + strings.Repeat(" ", padding)
			} else {
				detailLine += strings.Repeat(" ", colWidth)
			}
		}
		fmt.Println(detailLine)
		fmt.Println() // spacing between cards
	}

	for _, c := range columns {
		total += len(c.Tasks)
	}
	fmt.Printf("%s%d tasks%s across %d columns\n", colorBold, total, colorReset, len(columns))

	return nil
}

func priorityColor(priority board.Priority) string {
	switch priority {
	case board.PriorityHigh:
		return colorRed + colorBold
	case board.PriorityMedium:
		return colorYellow
	case board.PriorityLow:
		return colorDim
	default:
		return ""
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
