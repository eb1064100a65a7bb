package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type helpSection struct {
	title string
	keys  []helpKey
}

type helpKey struct {
	key  string
	desc string
}

var helpSections = []helpSection{
	{
		title: "Core",
		keys: []helpKey{
			{"s", "Start the core"},
			{"x", "Stop the core"},
			{"c", "Run a health check now"},
		},
	},
	{
		title: "Window",
		keys: []helpKey{
			{"v", "Show and focus the main window"},
			{"h", "Hide the main window to the tray"},
		},
	},
	{
		title: "Dashboard",
		keys: []helpKey{
			{"r", "Refresh status"},
			{"?", "Toggle help"},
			{"q", "Quit (the shell keeps running)"},
		},
	},
}

func renderHelp() string {
	var b strings.Builder
	b.WriteString(overlayTitleStyle.Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	for i, s := range helpSections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(panelTitleStyle.Render(s.title))
		b.WriteString("\n")
		for _, k := range s.keys {
			b.WriteString("  ")
			b.WriteString(lipgloss.NewStyle().Width(4).Render(keyStyle.Render(k.key)))
			b.WriteString(hintStyle.Render(k.desc))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("Esc to close"))
	return overlayStyle.Render(b.String())
}
