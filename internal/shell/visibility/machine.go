package visibility

import (
	"fmt"
	"log"
	"sync"
)

// Window is the native window the machine drives.
type Window interface {
	Show() error
	Hide() error
	Focus() error
}

// Change describes an applied transition.
type Change struct {
	From    State
	To      State
	Event   Event
	Effect  Effect
	Focused bool
}

// Machine owns the window's visibility state.
type Machine struct {
	mu       sync.Mutex
	state    State
	focused  bool
	window   Window
	quit     func()
	observer func(Change)
}

// NewMachine creates a machine in the Visible state. quit is called once,
// when the tray quit action is dispatched.
func NewMachine(window Window, quit func()) *Machine {
	return &Machine{state: Visible, focused: true, window: window, quit: quit}
}

// SetQuit replaces the quit callback. It is used when the quit mechanism only
// becomes available after the machine is built (the tray loop).
func (m *Machine) SetQuit(quit func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quit = quit
}

// OnChange registers an observer called after every applied transition.
func (m *Machine) OnChange(fn func(Change)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observer = fn
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Focused reports whether the last show acquired input focus.
func (m *Machine) Focused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.focused
}

// Dispatch applies e. If a window side effect fails the state is left
// unchanged and the error is returned.
func (m *Machine) Dispatch(e Event) (Change, error) {
	m.mu.Lock()

	from := m.state
	to, eff := Transition(from, e)
	change := Change{From: from, To: to, Event: e, Effect: eff}

	if err := m.apply(eff); err != nil {
		m.mu.Unlock()
		return change, fmt.Errorf("failed to apply %s: %w", e, err)
	}

	m.state = to
	switch {
	case eff.Focus:
		m.focused = true
	case eff.Hide || eff.Quit:
		m.focused = false
	}
	change.Focused = m.focused

	quit := m.quit
	observer := m.observer
	m.mu.Unlock()

	if observer != nil && (from != to || eff != (Effect{})) {
		observer(change)
	}
	if eff.Quit {
		log.Printf("[window] Quit requested from %s", from)
		if quit != nil {
			quit()
		}
	}
	return change, nil
}

func (m *Machine) apply(eff Effect) error {
	if m.window == nil {
		return nil
	}
	if eff.Hide {
		if err := m.window.Hide(); err != nil {
			return err
		}
	}
	if eff.Show {
		if err := m.window.Show(); err != nil {
			return err
		}
	}
	if eff.Focus {
		if err := m.window.Focus(); err != nil {
			return err
		}
	}
	return nil
}
