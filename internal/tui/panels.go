package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// renderPanels lays out the core and window panels above the activity list.
func renderPanels(m Model, width, height int) string {
	half := width / 2
	core := renderPanel("Core", coreLines(m), half, 0)
	window := renderPanel("Window", windowLines(m), width-half, 0)
	top := lipgloss.JoinHorizontal(lipgloss.Top, core, window)

	rest := height - lipgloss.Height(top)
	if rest < 3 {
		return top
	}
	activity := renderPanel("Activity", activityLines(m, rest-2), width, rest)
	return lipgloss.JoinVertical(lipgloss.Left, top, activity)
}

// renderPanel draws a bordered box of the given outer size. A zero height
// fits the content.
func renderPanel(title string, lines []string, width, height int) string {
	inner := width - 4 // border + padding
	if inner < 1 {
		inner = 1
	}
	body := []string{panelTitleStyle.Render(title)}
	for _, l := range lines {
		body = append(body, ansi.Truncate(l, inner, "…"))
	}
	style := panelStyle.Width(width - 2)
	if height > 0 {
		style = style.Height(height - 2)
	}
	return style.Render(strings.Join(body, "\n"))
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}

func coreLines(m Model) []string {
	if !m.hasStatus {
		return []string{hintStyle.Render("waiting for shell...")}
	}
	st := m.status
	lines := []string{
		row("Mode", st.Mode),
		row("State", coreState(st)),
	}
	if st.Core.Running && st.Core.PID > 0 {
		lines = append(lines, row("PID", fmt.Sprint(st.Core.PID)))
	}
	lines = append(lines, row("Endpoint", st.Endpoint))
	if r, ok := healthOf(st); ok {
		if r.Probe != nil && r.Probe.Latency > 0 {
			lines = append(lines, row("Latency", r.Probe.Latency.String()))
		}
		if r.Detail != "" {
			lines = append(lines, row("Detail", r.Detail))
		}
		lines = append(lines, row("Checked", r.CheckedAt.Local().Format("15:04:05")))
	}
	return lines
}

func windowLines(m Model) []string {
	if !m.hasStatus {
		return nil
	}
	return []string{
		row("State", windowLabel(m.status)),
		row("Uptime", m.status.Uptime),
	}
}

func activityLines(m Model, limit int) []string {
	if limit < 1 {
		return nil
	}
	events := m.events
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	lines := make([]string, 0, len(events))
	for _, e := range events {
		lines = append(lines, eventTimeStyle.Render(e.at.Format("15:04:05"))+"  "+e.text)
	}
	return lines
}
