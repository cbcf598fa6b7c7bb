// Package cli — render.go holds the shared text-output styling for the
// listing commands (ls, status, clean).
package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles for table output. lipgloss degrades to plain text when stdout is
// not a terminal, so piped output stays machine-friendly.
var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dirtyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mergedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

// renderTable lays out rows under a styled header with columns padded to the
// widest cell. Cells may arrive pre-styled, so widths are measured with
// lipgloss.Width, which counts visible cells and ignores ANSI escapes.
func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	var b strings.Builder
	for i, h := range headers {
		b.WriteString(headerStyle.Render(pad(h, widths[i])))
		if i < len(headers)-1 {
			b.WriteString("  ")
		}
	}
	b.WriteString("\n")

	for _, row := range rows {
		for i, cell := range row {
			b.WriteString(pad(cell, widths[i]))
			if i < len(row)-1 {
				b.WriteString("  ")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// pad right-pads a cell to the column width, measuring visible cells rather
// than bytes so styled content does not throw the columns off.
func pad(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// formatAheadBehind renders the ahead/behind counts the way git's own
// status does: "+2 -1", or "=" when level.
func formatAheadBehind(ahead, behind int) string {
	if ahead == 0 && behind == 0 {
		return "="
	}
	parts := make([]string, 0, 2)
	if ahead > 0 {
		parts = append(parts, fmt.Sprintf("+%d", ahead))
	}
	if behind > 0 {
		parts = append(parts, fmt.Sprintf("-%d", behind))
	}
	return strings.Join(parts, " ")
}
