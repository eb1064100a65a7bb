// Package tui implements the prismctl live dashboard.
package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// programRef is a shared reference to the tea.Program for goroutine sends.
// It's set after tea.NewProgram but before p.Run().
type programRef struct {
	mu sync.Mutex
	p  *tea.Program
}

func (r *programRef) Set(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = p
}

func (r *programRef) Send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// Clear nils out the program reference, preventing post-exit sends.
func (r *programRef) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = nil
}

// Run launches the dashboard against the shell recorded in shell.yaml.
func Run() error {
	ref := &programRef{}
	model := NewModel(dialShell, ref)

	p := tea.NewProgram(model, tea.WithAltScreen())

	// Store program reference for goroutine sends
	ref.Set(p)
	defer ref.Clear()

	final, err := p.Run()
	if m, ok := final.(Model); ok {
		m.close()
	}
	return err
}
