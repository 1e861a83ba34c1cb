// Package theme holds the terminal styles used by coursetrail's report
// output.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Palette
var (
	Primary = lipgloss.Color("#8B5CF6") // Purple
	Teal    = lipgloss.Color("#14B8A6")
	Amber   = lipgloss.Color("#F59E0B")
	Green   = lipgloss.Color("#22C55E")
	Rose    = lipgloss.Color("#F43F5E")
	Dim     = lipgloss.Color("#94A3B8") // Slate
	Border  = lipgloss.Color("#334155")
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Hint = lipgloss.NewStyle().
		Foreground(Dim).
		Italic(true)

	HeaderCell = lipgloss.NewStyle().
			Bold(true).
			Foreground(Dim).
			PaddingRight(2)

	Cell = lipgloss.NewStyle().
		PaddingRight(2)

	Rule = lipgloss.NewStyle().
		Foreground(Border)

	Error = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)
)

var statusColors = map[string]color.Color{
	"locked":      Dim,
	"available":   Teal,
	"in-progress": Amber,
	"completed":   Green,
	"passed":      Primary,
}

// Status returns the style for a progress status name.
func Status(name string) lipgloss.Style {
	c, ok := statusColors[name]
	if !ok {
		c = Dim
	}
	return lipgloss.NewStyle().Foreground(c).Bold(name == "passed")
}
