// Package visibility implements the main window's show/hide state machine.
//
// Transition is a pure function over explicit states and events so it can be
// exercised without any native windowing callback. Machine applies the
// resulting effects to a Window and serializes dispatch.
package visibility

// State is the main window's visibility.
type State int

const (
	// Visible is the initial state: the window is shown once setup completes.
	Visible State = iota
	// Hidden means the window is hidden and the shell keeps running in the tray.
	Hidden
	// Terminated is reached only through the tray quit action.
	Terminated
)

func (s State) String() string {
	switch s {
	case Visible:
		return "visible"
	case Hidden:
		return "hidden"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Event is something that may change visibility.
type Event int

const (
	// EventTrayClick is a primary click on the tray icon.
	EventTrayClick Event = iota
	// EventMenuShow is the tray menu "show" item.
	EventMenuShow
	// EventMenuHide is the tray menu "hide" item.
	EventMenuHide
	// EventMenuQuit is the tray menu "quit" item.
	EventMenuQuit
	// EventCloseRequested is the window's close button.
	EventCloseRequested
	// EventMinimizeToTray is the explicit "minimize to tray" command.
	EventMinimizeToTray
	// EventShowFromTray is the explicit "show from tray" command.
	EventShowFromTray
)

func (e Event) String() string {
	switch e {
	case EventTrayClick:
		return "tray-click"
	case EventMenuShow:
		return "menu-show"
	case EventMenuHide:
		return "menu-hide"
	case EventMenuQuit:
		return "menu-quit"
	case EventCloseRequested:
		return "close-requested"
	case EventMinimizeToTray:
		return "minimize-to-tray"
	case EventShowFromTray:
		return "show-from-tray"
	default:
		return "unknown"
	}
}

// Effect lists the side effects a transition requires.
type Effect struct {
	Show  bool
	Hide  bool
	Focus bool
	// PreventClose suppresses the window system's default close.
	PreventClose bool
	// Quit terminates the application.
	Quit bool
}

// Transition returns the next state and the effects to apply.
// Terminated absorbs every event.
func Transition(from State, e Event) (State, Effect) {
	if from == Terminated {
		return Terminated, Effect{}
	}

	switch e {
	case EventTrayClick:
		if from == Visible {
			return Hidden, Effect{Hide: true}
		}
		return Visible, Effect{Show: true, Focus: true}
	case EventMenuShow, EventShowFromTray:
		return Visible, Effect{Show: true, Focus: true}
	case EventMenuHide, EventMinimizeToTray:
		return Hidden, Effect{Hide: true}
	case EventCloseRequested:
		return Hidden, Effect{Hide: true, PreventClose: true}
	case EventMenuQuit:
		return Terminated, Effect{Quit: true}
	default:
		return from, Effect{}
	}
}
