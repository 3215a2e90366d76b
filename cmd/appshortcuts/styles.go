package main

import "github.com/charmbracelet/lipgloss"

// Color palette for dark terminal backgrounds
const (
	ColorPrimary   = lipgloss.Color("#7C3AED")
	ColorMuted     = lipgloss.Color("#6B7280")
	ColorSuccess   = lipgloss.Color("#10B981")
	ColorError     = lipgloss.Color("#EF4444")
	ColorWarning   = lipgloss.Color("#F59E0B")
	ColorHighlight = lipgloss.Color("#3B82F6")
)

var (
	// TitleStyle is for package names and section titles.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)

	// SubtitleStyle is for counts and secondary text.
	SubtitleStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	SuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	ErrorStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorError)
	WarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)

	// IDStyle is for shortcut ids.
	IDStyle = lipgloss.NewStyle().Foreground(ColorHighlight)

	// labelStyle pads detail keys into a column.
	labelStyle = lipgloss.NewStyle().Foreground(ColorMuted).Width(10)
)
