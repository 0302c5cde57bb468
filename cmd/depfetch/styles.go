// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Palette shared by every command. Tuned for dark terminals.
const (
	ColorPrimary   = lipgloss.Color("#7C3AED")
	ColorMuted     = lipgloss.Color("#6B7280")
	ColorSuccess   = lipgloss.Color("#10B981")
	ColorError     = lipgloss.Color("#EF4444")
	ColorWarning   = lipgloss.Color("#F59E0B")
	ColorHighlight = lipgloss.Color("#3B82F6")
)

var (
	// TitleStyle renders command titles and section headers.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle renders descriptions and placeholder values.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle renders completed steps.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle renders the "Error:" prefix of failures.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle renders recoverable problems such as drifted lock entries.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// KeyStyle renders keys in key/value listings.
	KeyStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)
)
