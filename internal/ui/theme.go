package ui

import (
	"image/color"

	"charm.land/bubbles/v2/textinput"
	"charm.land/lipgloss/v2"
)

// Theme defines the colors used by the suggestion UI.
type Theme struct {
	InputFG    color.Color // Typed text
	GhostFG    color.Color // Placeholder
	OptionFG   color.Color // Unselected suggestions
	SelectedFG color.Color // Selected suggestion foreground
	SelectedBG color.Color // Selected suggestion background
	FooterFG   color.Color // Key help line
	BorderFG   color.Color // List border
}

// DefaultTheme is the dark palette.
func DefaultTheme() Theme {
	return Theme{
		InputFG:    lipgloss.Color("250"),
		GhostFG:    lipgloss.Color("243"),
		OptionFG:   lipgloss.Color("246"),
		SelectedFG: lipgloss.Color("250"),
		SelectedBG: lipgloss.Color("24"),
		FooterFG:   lipgloss.Color("241"),
		BorderFG:   lipgloss.Color("238"),
	}
}

type styles struct {
	option   lipgloss.Style
	selected lipgloss.Style
	footer   lipgloss.Style
	list     lipgloss.Style
}

func newStyles(th Theme, noColor bool) styles {
	if noColor {
		return styles{
			option:   lipgloss.NewStyle(),
			selected: lipgloss.NewStyle(),
			footer:   lipgloss.NewStyle(),
			list:     lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).PaddingLeft(1),
		}
	}
	return styles{
		option:   lipgloss.NewStyle().Foreground(th.OptionFG),
		selected: lipgloss.NewStyle().Foreground(th.SelectedFG).Background(th.SelectedBG),
		footer:   lipgloss.NewStyle().Foreground(th.FooterFG),
		list: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), false, false, false, true).
			BorderForeground(th.BorderFG).
			PaddingLeft(1),
	}
}

// applyInputStyles colors the typed text and placeholder of ti.
func applyInputStyles(ti *textinput.Model, th Theme) {
	s := ti.Styles()
	for _, state := range []*textinput.StyleState{&s.Focused, &s.Blurred} {
		state.Text = state.Text.Foreground(th.InputFG)
		state.Placeholder = state.Placeholder.Foreground(th.GhostFG)
	}
	ti.SetStyles(s)
}
