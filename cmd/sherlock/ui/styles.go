// Package ui provides the visual styling for the sherlock CLI output.
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	Success     = lipgloss.Color("#8BC34A") // Lime Green
	Destructive = lipgloss.Color("#e53935") // Red
	Warning     = lipgloss.Color("#FFC107") // Yellow
	Info        = lipgloss.Color("#2196F3") // Blue
	MutedGray   = lipgloss.Color("#808080")

	TitleStyle   = lipgloss.NewStyle().Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(Success)
	ErrorStyle   = lipgloss.NewStyle().Foreground(Destructive)
	WarnStyle    = lipgloss.NewStyle().Foreground(Warning)
	InfoStyle    = lipgloss.NewStyle().Foreground(Info)
	DimStyle     = lipgloss.NewStyle().Foreground(MutedGray)
	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(Info)
)

// ScoreStyle picks a color for a 1-5 score: green for passing, yellow for
// middling, red for failing.
func ScoreStyle(score int) lipgloss.Style {
	switch {
	case score >= 4:
		return SuccessStyle
	case score >= 3:
		return WarnStyle
	default:
		return ErrorStyle
	}
}

// Separator renders a dim horizontal rule.
func Separator() string {
	return DimStyle.Render("─────────────────────────────────────────────────")
}

// Successf renders a green checkmarked line.
func Successf(format string, args ...interface{}) string {
	return SuccessStyle.Render("✓ " + fmt.Sprintf(format, args...))
}

// Errorf renders a red error line.
func Errorf(format string, args ...interface{}) string {
	return ErrorStyle.Render("✗ " + fmt.Sprintf(format, args...))
}
