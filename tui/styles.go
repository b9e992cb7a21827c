package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("39")
	colorAccent  = lipgloss.Color("86")
	colorSafe    = lipgloss.Color("42")
	colorWarn    = lipgloss.Color("220")
	colorDanger  = lipgloss.Color("196")
	colorDim     = lipgloss.Color("241")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	tabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(colorDim)

	activeTabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Bold(true).
			Foreground(colorAccent).
			Underline(true)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	dangerStyle = lipgloss.NewStyle().
			Foreground(colorDanger)

	warnStyle = lipgloss.NewStyle().
			Foreground(colorWarn)

	safeStyle = lipgloss.NewStyle().
			Foreground(colorSafe)

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)
)

// riskStyle picks the color band for a risk score.
func riskStyle(score float64) lipgloss.Style {
	switch {
	case score >= 50:
		return dangerStyle
	case score >= 25:
		return warnStyle
	default:
		return safeStyle
	}
}

// healthStyle picks the color band for a health score.
func healthStyle(health int) lipgloss.Style {
	switch {
	case health >= 70:
		return safeStyle
	case health >= 40:
		return warnStyle
	default:
		return dangerStyle
	}
}
