package tui

import (
	"github.com/prism-io/prism-shell/internal/shell/supervisor"
	"github.com/prism-io/prism-shell/internal/shell/surface"
	"github.com/prism-io/prism-shell/internal/shell/visibility"
)

// ShellConnectedMsg signals a successful gRPC connection.
type ShellConnectedMsg struct {
	Client ShellClient
}

// ShellDisconnectedMsg signals the shell connection was lost.
type ShellDisconnectedMsg struct{}

// StatusLoadedMsg carries a snapshot from GetStatus.
type StatusLoadedMsg struct {
	Status surface.Status
}

// HealthCheckedMsg carries an on-demand health report.
type HealthCheckedMsg struct {
	Report supervisor.Report
}

// ActionDoneMsg signals a core or window command finished.
type ActionDoneMsg struct {
	Text string
}

// VisibilityMsg carries one update from the WatchVisibility stream.
type VisibilityMsg struct {
	Update visibility.Update
}

// StreamEndedMsg signals the visibility stream ended.
type StreamEndedMsg struct{}

// ErrorMsg carries an error to display.
type ErrorMsg struct {
	Err error
}

// TickMsg is a periodic tick for polling.
type TickMsg struct{}

// ClearErrorMsg clears the error display.
type ClearErrorMsg struct{}

// ReconnectMsg triggers a reconnection attempt.
type ReconnectMsg struct{}
