package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/taskdeck/deck/internal/board"
)

// --- Color palette ---
var (
	clrSubtle    = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#666666"}
	clrHighlight = lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#2DD4BF"}
	clrGreen     = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	clrYellow    = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"}
	clrRed       = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	clrBlue      = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
	clrDim       = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#555555"}
)

// --- Styles ---
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(clrHighlight)
	dimStyle    = lipgloss.NewStyle().Foreground(clrDim)
	subtleStyle = lipgloss.NewStyle().Foreground(clrSubtle)

	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(clrSubtle).
			Padding(0, 1)

	columnActiveStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(clrHighlight).
				Padding(0, 1)

	columnTargetStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(clrBlue).
				Padding(0, 1)

	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(clrHighlight).
			Padding(1, 2).
			Width(60)

	statusStyle = lipgloss.NewStyle().Foreground(clrGreen).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(clrRed).Bold(true)

	footerKeyStyle  = lipgloss.NewStyle().Bold(true).Foreground(clrHighlight)
	footerDescStyle = lipgloss.NewStyle().Foreground(clrSubtle)
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.screen {
	case screenBoard:
		content = m.viewBoard()
	case screenDetail:
		content = m.viewDetail()
	}

	if m.popup != popupNone {
		content = m.overlayPopup(content)
	}

	return content
}

// ════════════════════════════════════════════════
// BOARD VIEW
// ════════════════════════════════════════════════

func (m Model) viewBoard() string {
	var b strings.Builder

	total := 0
	for _, c := range m.columns {
		total += len(c.Tasks)
	}
	header := titleStyle.Render("deck")
	header += dimStyle.Render(fmt.Sprintf(" — %d tasks", total))

	rightHelp := footerKeyStyle.Render("c") + footerDescStyle.Render(" new  ") +
		footerKeyStyle.Render("q") + footerDescStyle.Render(" quit")

	headerLine := header
	if m.width > 0 {
		pad := m.width - lipgloss.Width(header) - lipgloss.Width(rightHelp)
		if pad > 0 {
			headerLine = header + strings.Repeat(" ", pad) + rightHelp
		}
	}
	b.WriteString(headerLine + "\n")

	if m.seq != nil && m.moving != nil {
		b.WriteString(m.renderMoveBar() + "\n")
	} else {
		b.WriteString("\n")
	}

	if len(m.columns) == 0 {
		b.WriteString(dimStyle.Render("  No columns. Run ") +
			footerKeyStyle.Render("deck init --seed") +
			dimStyle.Render(" to set up a board.\n"))
		return b.String()
	}

	colWidth := 30
	if m.width > 0 && len(m.columns) > 0 {
		colWidth = m.width/len(m.columns) - 3
		if colWidth < 22 {
			colWidth = 22
		}
		if colWidth > 40 {
			colWidth = 40
		}
	}

	var rendered []string
	for i, col := range m.columns {
		rendered = append(rendered, m.renderColumn(i, col, colWidth))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	b.WriteString("\n")

	if m.statusMsg != "" {
		b.WriteString("\n")
		lower := strings.ToLower(m.statusMsg)
		if strings.Contains(lower, "failed") || strings.Contains(lower, "error") {
			b.WriteString(errorStyle.Render("  " + m.statusMsg))
		} else {
			b.WriteString(statusStyle.Render("  " + m.statusMsg))
		}
	}

	b.WriteString("\n")
	keys := []struct{ key, desc string }{
		{"↑↓←→", "navigate"},
		{"enter", "open"},
		{"c", "new"},
		{"e", "edit"},
		{"m", "move"},
		{"d", "delete"},
		{"R", "refresh"},
	}
	b.WriteString(renderFooter(keys))

	return b.String()
}

// renderMoveBar draws the travel progress of the in-flight move.
func (m Model) renderMoveBar() string {
	const cells = 24
	filled := int(m.frame.Progress * cells)
	if filled > cells {
		filled = cells
	}
	bar := lipgloss.NewStyle().Foreground(clrBlue).Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", cells-filled))

	label := "Moving \"" + truncate(m.moving.Title, 24) + "\""
	if m.frame.Landing {
		label = "Landing \"" + truncate(m.moving.Title, 24) + "\""
	}
	return "  " + subtleStyle.Render(label) + "  " + bar +
		dimStyle.Render(fmt.Sprintf(" %3.0f%%", m.frame.Progress*100))
}

func (m Model) renderColumn(idx int, col board.Column, width int) string {
	var content strings.Builder

	count := dimStyle.Render(fmt.Sprintf(" %d", len(col.Tasks)))
	content.WriteString(lipgloss.NewStyle().Bold(true).Render(strings.ToUpper(col.Title)) + count + "\n\n")

	if len(col.Tasks) == 0 {
		content.WriteString(dimStyle.Render("empty") + "\n")
	}
	for row, t := range col.Tasks {
		selected := m.screen == screenBoard && m.popup == popupNone &&
			idx == m.cursorCol && row == m.cursorRow
		content.WriteString(m.renderCard(t, selected, width-4))
		content.WriteString("\n")
	}

	style := columnStyle
	if m.seq != nil {
		// The traveling card's current column gets the accent border.
		if idx == m.frame.ColumnIndex {
			style = columnTargetStyle
		}
	} else if m.popup == popupMove && idx == m.moveTarget {
		style = columnTargetStyle
	} else if idx == m.cursorCol && m.screen == screenBoard {
		style = columnActiveStyle
	}

	return style.Width(width).Render(content.String())
}

func (m Model) renderCard(t board.Task, selected bool, width int) string {
	cursor := "  "
	if selected {
		cursor = lipgloss.NewStyle().Foreground(clrHighlight).Render("▸ ")
	}

	marker := priorityDot(t.Priority)
	if m.state.IsTaskLoading(t.ID) {
		marker = m.spinner.View()
	}

	title := truncate(t.Title, width-4)
	if m.moving != nil && m.moving.ID == t.ID {
		title = dimStyle.Render(title)
	} else if selected {
		title = lipgloss.NewStyle().Bold(true).Render(title)
	}

	line := cursor + marker + " " + title

	var meta []string
	if t.Assignee != "" {
		meta = append(meta, "@"+t.Assignee)
	}
	if t.DueDate != nil {
		meta = append(meta, "due "+t.DueDate.Format("Jan 2"))
	}
	if len(meta) > 0 {
		line += "\n    " + dimStyle.Render(truncate(strings.Join(meta, "  "), width-4))
	}

	return line
}

func priorityDot(p board.Priority) string {
	switch p {
	case board.PriorityHigh:
		return lipgloss.NewStyle().Foreground(clrRed).Render("●")
	case board.PriorityLow:
		return dimStyle.Render("○")
	default:
		return lipgloss.NewStyle().Foreground(clrYellow).Render("◉")
	}
}

// ════════════════════════════════════════════════
// DETAIL VIEW
// ════════════════════════════════════════════════

func (m Model) viewDetail() string {
	if m.detailTask == nil {
		return "No task selected"
	}
	t := m.detailTask

	var b strings.Builder
	b.WriteString(titleStyle.Render(t.Title))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("esc back"))
	b.WriteString("\n\n")

	b.WriteString("  " + priorityDot(t.Priority) + " " + subtleStyle.Render(string(t.Priority)))
	if m.state.IsTaskLoading(t.ID) {
		b.WriteString("  " + m.spinner.View() + subtleStyle.Render(" saving"))
	}
	b.WriteString("\n")
	if t.Assignee != "" {
		b.WriteString("  " + dimStyle.Render("assignee: "+t.Assignee) + "\n")
	}
	if t.DueDate != nil {
		b.WriteString("  " + dimStyle.Render("due: "+t.DueDate.Format("2006-01-02")) + "\n")
	}
	b.WriteString("  " + dimStyle.Render("updated: "+t.UpdatedAt.Local().Format("2006-01-02 15:04")) + "\n\n")

	if t.Description != "" {
		b.WriteString(m.renderMarkdown(t.Description))
	} else {
		b.WriteString(dimStyle.Render("  No description.\n"))
	}

	b.WriteString("\n")
	keys := []struct{ key, desc string }{
		{"e", "edit"},
		{"m", "move"},
		{"d", "delete"},
		{"esc", "back"},
	}
	b.WriteString(renderFooter(keys))

	return b.String()
}

func (m *Model) renderMarkdown(src string) string {
	if m.markdown == nil {
		wrap := 78
		if m.width > 0 && m.width-4 < wrap {
			wrap = m.width - 4
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			return "  " + src + "\n"
		}
		m.markdown = r
	}
	out, err := m.markdown.Render(src)
	if err != nil {
		return "  " + src + "\n"
	}
	return out
}

// ════════════════════════════════════════════════
// POPUPS
// ════════════════════════════════════════════════

func (m Model) overlayPopup(bg string) string {
	var popup string

	switch m.popup {
	case popupCreate, popupEdit:
		popup = m.viewTaskFormPopup()
	case popupDelete:
		popup = m.viewDeletePopup()
	case popupMove:
		popup = m.viewMovePopup()
	default:
		return bg
	}

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height,
			lipgloss.Center, lipgloss.Center,
			popup,
			lipgloss.WithWhitespaceChars(" "),
		)
	}

	return popup
}

func (m Model) viewTaskFormPopup() string {
	var b strings.Builder

	heading := "Create Task"
	if m.popup == popupEdit {
		heading = "Edit Task"
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(clrHighlight).Render(heading) + "\n\n")

	b.WriteString("Title:\n")
	b.WriteString(m.titleInput.View() + "\n\n")

	b.WriteString("Description:\n")
	b.WriteString(m.descInput.View() + "\n\n")

	b.WriteString("Assignee:\n")
	b.WriteString(m.assigneeInput.View() + "\n\n")

	priStyle := lipgloss.NewStyle().Bold(true)
	switch m.inputPriority {
	case board.PriorityHigh:
		priStyle = priStyle.Foreground(clrRed)
	case board.PriorityMedium:
		priStyle = priStyle.Foreground(clrYellow)
	case board.PriorityLow:
		priStyle = priStyle.Foreground(clrSubtle)
	}
	b.WriteString(fmt.Sprintf("Priority: %s\n\n", priStyle.Render(string(m.inputPriority))))

	b.WriteString(footerDescStyle.Render("enter save • tab switch field • ctrl+p priority • esc cancel"))

	return m.popupBoxStyle().Render(b.String())
}

func (m Model) viewDeletePopup() string {
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(clrRed).Render("Delete Task") + "\n\n")

	if t, ok := m.board.FindTask(m.popupTaskID); ok {
		b.WriteString("Delete \"" + truncate(t.Title, 50) + "\"?\n\n")
	}
	b.WriteString(footerKeyStyle.Render("y") + footerDescStyle.Render(" confirm  ") +
		footerKeyStyle.Render("n") + footerDescStyle.Render(" cancel"))

	return m.popupBoxStyle().Render(b.String())
}

func (m Model) viewMovePopup() string {
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(clrBlue).Render("Move Task") + "\n\n")

	if t, ok := m.board.FindTask(m.popupTaskID); ok {
		b.WriteString("Move \"" + truncate(t.Title, 50) + "\" to:\n\n")
	}

	var parts []string
	for i, col := range m.columns {
		label := col.Title
		if i == m.moveTarget {
			label = lipgloss.NewStyle().Bold(true).Foreground(clrBlue).Render("[" + label + "]")
		} else {
			label = dimStyle.Render(" " + label + " ")
		}
		parts = append(parts, label)
	}
	b.WriteString("  " + strings.Join(parts, "  ") + "\n\n")

	b.WriteString(footerDescStyle.Render("←→ pick column • enter move • esc cancel"))

	return m.popupBoxStyle().Render(b.String())
}

func (m Model) popupBoxStyle() lipgloss.Style {
	w := 60
	if m.width > 0 {
		w = m.width - 12
		if w < 42 {
			w = 42
		}
		if w > 84 {
			w = 84
		}
	}
	return popupStyle.Width(w)
}

// ════════════════════════════════════════════════
// SHARED HELPERS
// ════════════════════════════════════════════════

func renderFooter(keys []struct{ key, desc string }) string {
	var parts []string
	for _, k := range keys {
		key := footerKeyStyle.Render(k.key)
		desc := footerDescStyle.Render(k.desc)
		parts = append(parts, key+" "+desc)
	}
	return "  " + strings.Join(parts, "  ")
}

func truncate(s string, max int) string {
	if max < 1 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}
