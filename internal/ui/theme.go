package ui

import (
	"image/color"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
)

// isDarkBg caches the terminal background detection result at package init.
var isDarkBg = lipgloss.HasDarkBackground(os.Stdin, os.Stdout)

// AdaptiveColor picks between a light-mode and dark-mode hex color based on
// the detected terminal background.
func AdaptiveColor(light, dark string) color.Color {
	if isDarkBg {
		return lipgloss.Color(dark)
	}
	return lipgloss.Color(light)
}

// IsDarkBackground reports whether the terminal has a dark background.
func IsDarkBackground() bool {
	return isDarkBg
}

var currentTheme = DefaultTheme()

// GetTheme returns the active UI theme.
func GetTheme() Theme {
	return currentTheme
}

// SetTheme replaces the active UI theme for all subsequent rendering.
func SetTheme(theme Theme) {
	currentTheme = theme
}

// Theme holds the semantic colors used across the editor.
type Theme struct {
	Primary     color.Color
	Secondary   color.Color
	Success     color.Color
	Warning     color.Color
	Error       color.Color
	Text        color.Color
	Muted       color.Color
	VeryMuted   color.Color
	Border      color.Color
	MutedBorder color.Color
	Accent      color.Color
}

// DefaultTheme is based on the Catppuccin Latte (light) and Mocha (dark)
// palettes.
func DefaultTheme() Theme {
	return Theme{
		Primary:     AdaptiveColor("#8839ef", "#cba6f7"), // Mauve
		Secondary:   AdaptiveColor("#04a5e5", "#89dceb"), // Sky
		Success:     AdaptiveColor("#40a02b", "#a6e3a1"), // Green
		Warning:     AdaptiveColor("#df8e1d", "#f9e2af"), // Yellow
		Error:       AdaptiveColor("#d20f39", "#f38ba8"), // Red
		Text:        AdaptiveColor("#4c4f69", "#cdd6f4"), // Text
		Muted:       AdaptiveColor("#6c6f85", "#a6adc8"), // Subtext 0
		VeryMuted:   AdaptiveColor("#9ca0b0", "#6c7086"), // Overlay 0
		Border:      AdaptiveColor("#acb0be", "#585b70"), // Surface 2
		MutedBorder: AdaptiveColor("#ccd0da", "#313244"), // Surface 0
		Accent:      AdaptiveColor("#ea76cb", "#f5c2e7"), // Pink
	}
}

// StyleMuted renders secondary text.
func StyleMuted(theme Theme) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Muted)
}

// StyleError renders failure text.
func StyleError(theme Theme) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Error).Bold(true)
}

// StyleSuccess renders success text.
func StyleSuccess(theme Theme) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Success)
}

// StyleLabel renders a field label; focused labels use the primary color.
func StyleLabel(theme Theme, focused bool) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)
	if focused {
		return s.Foreground(theme.Primary)
	}
	return s.Foreground(theme.Muted)
}

// StylePanel is the bordered box around a field or side panel.
func StylePanel(theme Theme, focused bool) lipgloss.Style {
	c := theme.MutedBorder
	if focused {
		c = theme.Border
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(c).
		Padding(0, 1)
}

// CreateSeparator returns a horizontal rule of width cells.
func CreateSeparator(width int, char string, c color.Color) string {
	if width < 1 {
		return ""
	}
	return lipgloss.NewStyle().Foreground(c).Render(strings.Repeat(char, width))
}

// CreateBadge renders text as a small colored tag.
func CreateBadge(text string, c color.Color) string {
	return lipgloss.NewStyle().
		Foreground(c).
		Bold(true).
		Render("[" + text + "]")
}
