package tui

import "github.com/charmbracelet/bubbles/key"

// DashboardKeys are active when no overlay is shown.
type DashboardKeys struct {
	Quit      key.Binding
	Help      key.Binding
	StartCore key.Binding
	StopCore  key.Binding
	Show      key.Binding
	Hide      key.Binding
	Check     key.Binding
	Refresh   key.Binding
}

var dashboardKeys = DashboardKeys{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	StartCore: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "start core"),
	),
	StopCore: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "stop core"),
	),
	Show: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "show window"),
	),
	Hide: key.NewBinding(
		key.WithKeys("h"),
		key.WithHelp("h", "hide window"),
	),
	Check: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "check health"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
}

// OverlayKeys are active when the help overlay is shown.
type OverlayKeys struct {
	Close key.Binding
}

var overlayKeys = OverlayKeys{
	Close: key.NewBinding(
		key.WithKeys("esc", "?", "q"),
		key.WithHelp("Esc", "close"),
	),
}
