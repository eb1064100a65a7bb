package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func renderStatusBar(m Model, width int) string {
	// Error display
	if m.err != nil {
		return renderErrorBar(m.err.Error(), width)
	}

	left := " " + getKeyHints(m)
	if m.busy != "" {
		left = " " + m.spinner.View() + " " + hintStyle.Render(m.busy+"...")
	}

	// Connection status
	right := ""
	if m.connected {
		right = lipgloss.NewStyle().Foreground(colorGreen).Render("Connected") + " "
	} else {
		right = lipgloss.NewStyle().Foreground(colorYellow).Bold(true).Render("⚠ Disconnected") + " "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return statusBarStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func getKeyHints(m Model) string {
	base := keyHint("q", "quit") + "  " + keyHint("?", "help")
	if !m.connected {
		return base
	}
	return base + "  " + keyHint("s", "start") + "  " + keyHint("x", "stop") + "  " +
		keyHint("v", "show") + "  " + keyHint("h", "hide") + "  " + keyHint("c", "check")
}

func keyHint(k, desc string) string {
	if k == "" {
		return hintStyle.Render(desc)
	}
	return keyStyle.Render(k) + " " + hintStyle.Render(desc)
}

func renderErrorBar(msg string, width int) string {
	return statusBarStyle.
		Background(colorRed).
		Width(width).
		Render(" " + msg)
}
