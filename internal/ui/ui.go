package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"labctl/internal/metrics"
	"labctl/internal/runtime"
)

// Palette tuned for dark terminals.
var (
	green  = lipgloss.Color("76")
	red    = lipgloss.Color("204")
	yellow = lipgloss.Color("214")
	dim    = lipgloss.Color("243")
	faint  = lipgloss.Color("238")
)

var (
	SuccessStyle = lipgloss.NewStyle().Foreground(green)
	ErrorStyle   = lipgloss.NewStyle().Foreground(red)
	WarnStyle    = lipgloss.NewStyle().Foreground(yellow)
	MutedStyle   = lipgloss.NewStyle().Foreground(dim)
	FaintStyle   = lipgloss.NewStyle().Foreground(faint)
	BoldStyle    = lipgloss.NewStyle().Bold(true)
)

// Status indicator palette, matching the studio's node badges.
var statusStyles = map[runtime.Status]lipgloss.Style{
	runtime.StatusRunning:  SuccessStyle,
	runtime.StatusBooting:  WarnStyle,
	runtime.StatusStopping: WarnStyle,
	runtime.StatusStopped:  MutedStyle,
	runtime.StatusError:    ErrorStyle,
}

// StatusLabel is the text shown for a status; the none status renders
// as a dash rather than an empty cell.
func StatusLabel(s runtime.Status) string {
	if s == runtime.StatusNone {
		return "-"
	}
	return string(s)
}

// Status renders a fixed-width, colored status cell. Text is padded
// before styling so ANSI codes don't break column alignment.
func Status(s runtime.Status, width int) string {
	cell := fmt.Sprintf("%-*s", width, StatusLabel(s))
	style, ok := statusStyles[s]
	if !ok {
		return FaintStyle.Render(cell)
	}
	return style.Render(cell)
}

var levelStyles = map[metrics.Level]lipgloss.Style{
	metrics.LevelOK:       SuccessStyle,
	metrics.LevelWarn:     WarnStyle,
	metrics.LevelCritical: ErrorStyle,
}

// Percent renders a usage percentage colored by its threshold level.
func Percent(pct float64, width int) string {
	cell := fmt.Sprintf("%*.1f%%", width-1, pct)
	return levelStyles[metrics.LevelFor(pct)].Render(cell)
}

// Ready renders the readiness flag as a fixed five-wide cell.
func Ready(v bool) string {
	if v {
		return SuccessStyle.Render("yes  ")
	}
	return MutedStyle.Render("no   ")
}
