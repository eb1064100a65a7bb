package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/prism-io/prism-shell/internal/shell/probe"
)

func renderHeader(m Model, width int) string {
	name := lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Render("Prism")
	left := fmt.Sprintf(" %s %s", name, hintStyle.Render("shell"))
	if m.hasStatus {
		left += " " + hintStyle.Render(m.status.Version)
	}

	right := renderHealthBadge(m) + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return headerStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func renderHealthBadge(m Model) string {
	if !m.hasStatus {
		return badgeIdleStyle.Render("● Unknown")
	}
	r, ok := healthOf(m.status)
	if !ok {
		return badgeIdleStyle.Render("● Checking")
	}
	switch r.Health {
	case probe.HealthHealthy:
		return badgeHealthyStyle.Render("● Healthy")
	case probe.HealthUnreachable:
		if r.Managed && !r.Running && r.PID == 0 {
			return badgeIdleStyle.Render("● Stopped")
		}
		return badgeDownStyle.Render("● Unreachable")
	default:
		return badgeIdleStyle.Render("● Unknown")
	}
}
