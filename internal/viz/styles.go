package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styles is the set of lipgloss styles derived from the active theme.
type styles struct {
	canvas   lipgloss.Style
	stats    lipgloss.Style
	header   lipgloss.Style
	label    lipgloss.Style
	value    lipgloss.Style
	active   lipgloss.Style
	pending  lipgloss.Style
	graph    lipgloss.Style
	help     lipgloss.Style
	running  lipgloss.Style
	idle     lipgloss.Style
	errorMsg lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		canvas:   lipgloss.NewStyle().Padding(1, 2),
		stats:    lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(t.Muted).Padding(1, 2).Width(48),
		header:   lipgloss.NewStyle().Foreground(t.Title).Bold(true).MarginBottom(1),
		label:    lipgloss.NewStyle().Foreground(t.Muted).Width(14),
		value:    lipgloss.NewStyle().Foreground(t.Text),
		active:   lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		pending:  lipgloss.NewStyle().Foreground(t.Idle).Italic(true),
		graph:    lipgloss.NewStyle().Padding(1, 0),
		help:     lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1),
		running:  lipgloss.NewStyle().Bold(true).Foreground(t.Running),
		idle:     lipgloss.NewStyle().Bold(true).Foreground(t.Idle),
		errorMsg: lipgloss.NewStyle().Foreground(t.Error),
	}
}

// SliderBar renders a fill bar for a value at fraction of its range.
func SliderBar(fraction float64, width int) string {
	filled := int(fraction*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-filled) + "]"
}
