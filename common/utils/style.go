package utils

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func init() {
	lipgloss.SetColorProfile(termenv.ANSI256)
}

var (
	RedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#cc0000"))
	OrangeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff7c28"))
	YellowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#cc9500"))
	GreenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#06cc00"))
	LightBlueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3cc5ff"))
	PurpleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7400e0"))
	GrayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#adadad"))

	// OptimalStyle is used when logging a solution that a strategy asserted to be optimal.
	OptimalStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("#06ff00"))

	// StrategyStyles maps a strategy result to the style used when logging it.
	StrategyStyles = map[string]lipgloss.Style{
		"feasible":   GreenStyle,
		"infeasible": YellowStyle,
		"fault":      RedStyle,
		"timeout":    OrangeStyle,
	}
)

// StrategyStyle returns the style for the given strategy result, or GrayStyle if there is none.
func StrategyStyle(result string) lipgloss.Style {
	if style, ok := StrategyStyles[result]; ok {
		return style
	}

	return GrayStyle
}
