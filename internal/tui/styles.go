package tui

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Package-level styles instance (nil until initialized)
var appStyles *Styles

// Styles holds all application styles using terminal default colors
type Styles struct {
	Subtle color.Color

	BorderStyle     lipgloss.Style
	FocusedStyle    lipgloss.Style
	SelectedStyle   lipgloss.Style
	InputStyle      lipgloss.Style
	LabelStyle      lipgloss.Style
	MarkedStyle     lipgloss.Style
	ButtonStyle     lipgloss.Style
	BusyButtonStyle lipgloss.Style
	FooterStyle     lipgloss.Style
	SubtleStyle     lipgloss.Style
	BrokenStyle     lipgloss.Style
	ErrorStyle      lipgloss.Style
	SuccessStyle    lipgloss.Style
	DialogStyle     lipgloss.Style
}

// newStyles creates a new Styles instance using terminal default colors (NoColor)
func newStyles() *Styles {
	// NoColor{} tells lipgloss to use the terminal's default colors
	noColor := lipgloss.NoColor{}

	return &Styles{
		Subtle: noColor,

		BorderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(noColor),

		FocusedStyle: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(noColor),

		SelectedStyle: lipgloss.NewStyle().
			Foreground(noColor).
			Bold(true),

		InputStyle: lipgloss.NewStyle().
			Foreground(noColor),

		LabelStyle: lipgloss.NewStyle().
			Foreground(noColor).
			Bold(true),

		MarkedStyle: lipgloss.NewStyle().
			Foreground(noColor).
			Faint(true).
			Strikethrough(true),

		ButtonStyle: lipgloss.NewStyle().
			Foreground(noColor).
			Bold(true),

		BusyButtonStyle: lipgloss.NewStyle().
			Foreground(noColor).
			Faint(true),

		FooterStyle: lipgloss.NewStyle().
			Foreground(noColor).
			Italic(true),

		SubtleStyle: lipgloss.NewStyle().
			Foreground(noColor),

		BrokenStyle: lipgloss.NewStyle().
			Foreground(noColor).
			Italic(true),

		ErrorStyle: lipgloss.NewStyle().
			Foreground(noColor).
			Bold(true),

		SuccessStyle: lipgloss.NewStyle().
			Foreground(noColor),

		DialogStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(noColor).
			Padding(0, 1),
	}
}

// getStyles returns the current styles instance, with fallback for startup
func getStyles() *Styles {
	if appStyles == nil {
		return newStyles()
	}
	return appStyles
}
