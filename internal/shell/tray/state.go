// Package tray implements the system tray icon and menu for the shell.
package tray

import "github.com/prism-io/prism-shell/internal/shell/visibility"

// ShellState is what the tray needs from the running shell.
type ShellState interface {
	Port() int
	Dispatch(e visibility.Event) (visibility.Change, error)
}
