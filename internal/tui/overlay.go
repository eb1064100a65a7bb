package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// renderOverlay renders an overlay centered on top of the base view.
func renderOverlay(base, overlayContent string, width, height int) string {
	// Dim the background
	baseLines := strings.Split(base, "\n")
	for i, line := range baseLines {
		baseLines[i] = overlayDimStyle.Render(ansi.Strip(line))
	}

	overlayLines := strings.Split(overlayContent, "\n")
	overlayWidth := 0
	for _, l := range overlayLines {
		if w := lipgloss.Width(l); w > overlayWidth {
			overlayWidth = w
		}
	}

	top := (height - len(overlayLines)) / 2
	left := (width - overlayWidth) / 2
	if top < 1 {
		top = 1
	}
	if left < 1 {
		left = 1
	}

	// Place overlay on top of dimmed background using ANSI-aware slicing
	for i, line := range overlayLines {
		r := top + i
		if r >= len(baseLines) {
			continue
		}
		bg := baseLines[r]
		bgWidth := lipgloss.Width(bg)

		leftPart := ansi.Truncate(bg, left, "")
		if w := lipgloss.Width(leftPart); w < left {
			leftPart += strings.Repeat(" ", left-w)
		}

		rightPart := ""
		rightStart := left + lipgloss.Width(line)
		if rightStart < bgWidth {
			rightPart = ansi.Cut(bg, rightStart, bgWidth)
		}

		baseLines[r] = leftPart + "\033[0m" + line + "\033[0m" + rightPart
	}

	return strings.Join(baseLines, "\n")
}
