package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/prism-io/prism-shell/internal/shell/probe"
	"github.com/prism-io/prism-shell/internal/shell/visibility"
)

// Adaptive colors matching the TUI palette.
var (
	colorWhite  = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
	colorOrange = lipgloss.AdaptiveColor{Light: "166", Dark: "208"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
)

// Semantic styles for CLI output.
var (
	styleBrand   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleVersion = lipgloss.NewStyle().Foreground(colorGreen)
	styleLabel   = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	styleError   = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	styleHint    = lipgloss.NewStyle().Foreground(colorDim)
	styleUpdate  = lipgloss.NewStyle().Bold(true).Foreground(colorOrange)
)

// Health and window badge styles.
var (
	badgeHealthy = lipgloss.NewStyle().Foreground(colorGreen)
	badgeDown    = lipgloss.NewStyle().Foreground(colorRed)
	badgeUnknown = lipgloss.NewStyle().Foreground(colorDim)
	badgeVisible = lipgloss.NewStyle().Foreground(colorCyan)
)

func healthBadge(h probe.Health) string {
	switch h {
	case probe.HealthHealthy:
		return badgeHealthy.Render("● healthy")
	case probe.HealthUnreachable:
		return badgeDown.Render("● unreachable")
	default:
		return badgeUnknown.Render("● unknown")
	}
}

func visibilityBadge(s visibility.State) string {
	switch s {
	case visibility.Visible:
		return badgeVisible.Render("visible")
	case visibility.Hidden:
		return badgeUnknown.Render("hidden")
	default:
		return badgeDown.Render(s.String())
	}
}

// field prints an aligned "label value" line.
func field(label string, value interface{}) {
	fmt.Printf("  %s %s\n", styleLabel.Render(fmt.Sprintf("%-11s", label+":")), styleValue.Render(fmt.Sprint(value)))
}
