// Package ui renders search results, suggestions, and index stats for the
// terminal. Colors are dropped automatically when stdout is not a TTY.
package ui

import "github.com/charmbracelet/lipgloss"

// Color palette - single lime accent over grays.
const (
	ColorLime     = "154" // primary accent - scores, exact matches
	ColorLimeDim  = "106" // dimmed lime - fuzzy matches
	ColorWhite    = "255" // file names
	ColorGray     = "245" // secondary text, labels
	ColorDarkGray = "238" // separators, metadata
	ColorRed      = "196" // errors
	ColorYellow   = "220" // warnings, degraded notices
)

// Styles holds the render styles for CLI output.
type Styles struct {
	Name      lipgloss.Style
	Score     lipgloss.Style
	Exact     lipgloss.Style
	Fuzzy     lipgloss.Style
	Semantic  lipgloss.Style
	Filter    lipgloss.Style
	Meta      lipgloss.Style
	Label     lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Separator lipgloss.Style
}

// DefaultStyles returns the colored styles.
func DefaultStyles() Styles {
	return Styles{
		Name:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorWhite)),
		Score:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime)),
		Exact:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime)),
		Fuzzy:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLimeDim)),
		Semantic:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Filter:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Meta:      lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Label:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Warning:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
	}
}

// NoColorStyles returns unstyled equivalents for plain output.
func NoColorStyles() Styles {
	return Styles{
		Name:      lipgloss.NewStyle(),
		Score:     lipgloss.NewStyle(),
		Exact:     lipgloss.NewStyle(),
		Fuzzy:     lipgloss.NewStyle(),
		Semantic:  lipgloss.NewStyle(),
		Filter:    lipgloss.NewStyle(),
		Meta:      lipgloss.NewStyle(),
		Label:     lipgloss.NewStyle(),
		Warning:   lipgloss.NewStyle(),
		Error:     lipgloss.NewStyle(),
		Separator: lipgloss.NewStyle(),
	}
}

// GetStyles returns the styles matching the color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}
