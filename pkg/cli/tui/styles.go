package tui

import (
	"strings"

	"scrape-client-go/pkg/cli/display"

	"github.com/charmbracelet/lipgloss"
)

// Define a consistent color palette
var (
	// Colors
	colorPrimary   = lipgloss.Color("62")  // Purple/blue
	colorSecondary = lipgloss.Color("244") // Gray
	colorSuccess   = lipgloss.Color("42")  // Green
	colorError     = lipgloss.Color("196") // Red
	colorWarning   = lipgloss.Color("214") // Orange/Yellow
	colorInfo      = lipgloss.Color("39")  // Cyan
	colorMuted     = lipgloss.Color("240") // Dark gray
	colorBorder    = lipgloss.Color("238") // Border gray
	colorTag       = lipgloss.Color("141") // Lavender
)

// Reusable style definitions
var (
	// Title/Header styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252"))

	// Text styles
	boldStyle = lipgloss.NewStyle().Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	// Status styles
	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	infoStyle = lipgloss.NewStyle().
			Foreground(colorInfo)

	// Alert box for submission errors
	alertStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(colorError).
			PaddingLeft(1)

	// Job/document styles
	jobIDStyle = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Bold(true)

	docTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	urlStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	tagStyle = lipgloss.NewStyle().
			Foreground(colorTag)

	// Field label styles
	fieldLabelStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true).
			MarginRight(2)

	// List/item styles
	selectedStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	selectedMarkerStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	// Divider
	dividerStyle = lipgloss.NewStyle().
			Foreground(colorBorder)

	// Help text
	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)
)

// badgeStyles maps each badge kind to its color
var badgeStyles = map[display.BadgeKind]lipgloss.Style{
	display.BadgeWarning: lipgloss.NewStyle().Foreground(colorWarning).Bold(true),
	display.BadgeInfo:    lipgloss.NewStyle().Foreground(colorInfo).Bold(true),
	display.BadgeSuccess: lipgloss.NewStyle().Foreground(colorSuccess).Bold(true),
	display.BadgeDanger:  lipgloss.NewStyle().Foreground(colorError).Bold(true),
	display.BadgeNeutral: lipgloss.NewStyle().Foreground(colorSecondary),
}

// Helper functions for common formatting patterns
func renderTitle(title string) string {
	return "\n" + titleStyle.Render(title) + "\n"
}

func renderSection(title string) string {
	return sectionStyle.Render(title) + "\n"
}

func renderSuccess(msg string) string {
	return successStyle.Render("✓ " + msg)
}

func renderError(msg string) string {
	return errorStyle.Render("❌ " + msg)
}

func renderWarning(msg string) string {
	return warningStyle.Render("⚠ " + msg)
}

func renderDivider(length int) string {
	return dividerStyle.Render(strings.Repeat("─", length))
}
