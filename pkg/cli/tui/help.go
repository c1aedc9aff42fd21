package tui

import (
	"fmt"
	"strings"
)

// HelpItem represents a single keyboard shortcut and its description
type HelpItem struct {
	Key         string
	Description string
}

// CommonHelpContent returns help for common commands
func CommonHelpContent() string {
	items := []HelpItem{
		{"?", "Toggle help"},
		{"m", "Return to main menu"},
		{"q / Esc", "Quit application"},
		{"Ctrl+C", "Force quit"},
	}
	return renderHelpItems(items)
}

// RootMenuHelpContent returns help for root menu
func RootMenuHelpContent() string {
	items := []HelpItem{
		{"1-2", "Select menu option (Job monitor / Document search)"},
		{"q / Esc", "Quit"},
		{"?", "Show this help"},
	}
	return renderHelpItems(items)
}

// JobMonitorHelpContent returns help for the job monitor
func JobMonitorHelpContent() string {
	items := []HelpItem{
		{"Tab", "Switch between URL input and job list"},
		{"Enter", "Start scraping (URL input) / Open job (list)"},
		{"↑ / ↓ / j / k", "Navigate job list"},
		{"r", "Refresh jobs"},
		{"x", "Close job details"},
		{"Esc", "Leave URL input / Quit"},
		{"m", "Return to menu"},
		{"?", "Show this help"},
	}
	return renderHelpItems(items)
}

// DocumentSearchHelpContent returns help for the document search
func DocumentSearchHelpContent() string {
	items := []HelpItem{
		{"Enter", "Search (empty query lists every document)"},
		{"Tab", "Switch between query input and results"},
		{"↑ / ↓ / j / k", "Navigate results"},
		{"r", "Refresh results"},
		{"Esc", "Leave query input / Quit"},
		{"m", "Return to menu"},
		{"?", "Show this help"},
	}
	return renderHelpItems(items)
}

// renderHelpItems formats help items into a readable string
func renderHelpItems(items []HelpItem) string {
	var b strings.Builder
	for _, item := range items {
		keyStyle := boldStyle.Foreground(colorPrimary)
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			keyStyle.Render(item.Key),
			item.Description))
	}
	return b.String()
}
