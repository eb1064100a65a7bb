package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/prism-io/prism-shell/internal/shell/supervisor"
	"github.com/prism-io/prism-shell/internal/shell/surface"
	"github.com/prism-io/prism-shell/internal/shell/visibility"
)

// maxEvents bounds the activity list.
const maxEvents = 50

// event is one line in the activity list.
type event struct {
	at   time.Time
	text string
}

// Model is the root Bubbletea model for the dashboard.
type Model struct {
	// gRPC connection
	dial      DialFunc
	client    ShellClient
	connected bool

	// Shell data
	status    surface.Status
	hasStatus bool
	events    []event

	// UI state
	width    int
	height   int
	showHelp bool
	busy     string
	spinner  spinner.Model
	err      error

	// Program reference for goroutine Send()
	program *programRef

	// Streaming state
	streamCtx    context.Context
	streamCancel context.CancelFunc

	now func() time.Time
}

// NewModel creates the initial dashboard model.
func NewModel(dial DialFunc, program *programRef) Model {
	ctx, cancel := context.WithCancel(context.Background())
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = badgeVisibleStyle
	return Model{
		dial:         dial,
		spinner:      sp,
		program:      program,
		streamCtx:    ctx,
		streamCancel: cancel,
		now:          time.Now,
	}
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return connectShellCmd(m.dial)
}

// Update processes messages and returns an updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	// ── Connection ─────────────────────────────────────────────────
	case ShellConnectedMsg:
		m.client = msg.Client
		m.connected = true
		m.err = nil
		m.addEvent("connected to shell")
		return m, tea.Batch(
			loadStatusCmd(m.client),
			watchVisibilityCmd(m.streamCtx, m.client, m.program),
			pollTick(),
		)

	case ShellDisconnectedMsg:
		if m.connected {
			m.addEvent("shell connection lost")
		}
		m.dropClient()
		return m, reconnectTick()

	case ReconnectMsg:
		if !m.connected {
			return m, connectShellCmd(m.dial)
		}
		return m, nil

	// ── Shell data ─────────────────────────────────────────────────
	case StatusLoadedMsg:
		m.noteChanges(msg.Status)
		m.status = msg.Status
		m.hasStatus = true
		return m, nil

	case HealthCheckedMsg:
		m.busy = ""
		r := msg.Report
		m.status.Health = &r
		m.addEvent("health check: " + r.Health.String())
		return m, nil

	case ActionDoneMsg:
		m.busy = ""
		m.addEvent(msg.Text)
		if m.connected {
			return m, loadStatusCmd(m.client)
		}
		return m, nil

	case VisibilityMsg:
		prev := m.status.Visibility
		m.status.Visibility = msg.Update.State
		m.status.Focused = msg.Update.Focus
		if msg.Update.State != prev || !m.hasStatus {
			m.addEvent("window " + msg.Update.State.String())
		}
		return m, nil

	case StreamEndedMsg:
		if m.connected {
			m.addEvent("window stream ended")
		}
		return m, nil

	case ErrorMsg:
		m.busy = ""
		m.err = msg.Err
		cmds := []tea.Cmd{clearErrorAfter(5 * time.Second)}
		if !m.connected {
			cmds = append(cmds, reconnectTick())
		}
		return m, tea.Batch(cmds...)

	case ClearErrorMsg:
		m.err = nil
		return m, nil

	case TickMsg:
		if m.connected {
			return m, tea.Batch(loadStatusCmd(m.client), pollTick())
		}
		return m, nil

	case spinner.TickMsg:
		if m.busy == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleKey processes key events.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		if key.Matches(msg, overlayKeys.Close) {
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, dashboardKeys.Quit):
		m.streamCancel()
		return m, tea.Quit
	case key.Matches(msg, dashboardKeys.Help):
		m.showHelp = true
		return m, nil
	}

	if !m.connected || m.busy != "" {
		return m, nil
	}

	switch {
	case key.Matches(msg, dashboardKeys.StartCore):
		return m.startBusy("starting core", coreCmd(m.client, true))
	case key.Matches(msg, dashboardKeys.StopCore):
		return m.startBusy("stopping core", coreCmd(m.client, false))
	case key.Matches(msg, dashboardKeys.Check):
		return m.startBusy("checking health", checkHealthCmd(m.client))
	case key.Matches(msg, dashboardKeys.Show):
		return m, windowCmd(m.client, true)
	case key.Matches(msg, dashboardKeys.Hide):
		return m, windowCmd(m.client, false)
	case key.Matches(msg, dashboardKeys.Refresh):
		return m, loadStatusCmd(m.client)
	}
	return m, nil
}

func (m Model) startBusy(label string, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.busy = label
	return m, tea.Batch(cmd, m.spinner.Tick)
}

// noteChanges records core and health transitions between two snapshots.
func (m *Model) noteChanges(next surface.Status) {
	if !m.hasStatus {
		return
	}
	prev := m.status
	if prev.Core.Running != next.Core.Running && next.Mode == "managed" {
		if next.Core.Running {
			m.addEvent(fmt.Sprintf("core running (PID %d)", next.Core.PID))
		} else {
			m.addEvent("core stopped")
		}
	}
	if next.Health != nil && (prev.Health == nil || prev.Health.Health != next.Health.Health) {
		m.addEvent("core " + next.Health.Health.String())
	}
}

func (m *Model) addEvent(text string) {
	m.events = append(m.events, event{at: m.now(), text: text})
	if len(m.events) > maxEvents {
		m.events = m.events[len(m.events)-maxEvents:]
	}
}

func (m *Model) dropClient() {
	if m.client != nil {
		_ = m.client.Close()
	}
	m.client = nil
	m.connected = false
	m.streamCancel()
	m.streamCtx, m.streamCancel = context.WithCancel(context.Background())
}

func (m Model) close() {
	m.streamCancel()
	if m.client != nil {
		_ = m.client.Close()
	}
}

// View renders the dashboard.
func (m Model) View() string {
	if m.width == 0 {
		return "Connecting..."
	}
	base := renderHeader(m, m.width) + "\n" +
		renderPanels(m, m.width, m.height-2) + "\n" +
		renderStatusBar(m, m.width)
	if m.showHelp {
		return renderOverlay(base, renderHelp(), m.width, m.height)
	}
	return base
}

// coreState is the short label for the core panel and header.
func coreState(st surface.Status) string {
	if st.Mode != "managed" {
		return "external"
	}
	if st.Core.Running {
		return "running"
	}
	return "stopped"
}

// healthOf returns the last reported health, if any.
func healthOf(st surface.Status) (supervisor.Report, bool) {
	if st.Health == nil {
		return supervisor.Report{}, false
	}
	return *st.Health, true
}

func windowLabel(st surface.Status) string {
	label := st.Visibility.String()
	if st.Visibility == visibility.Visible && st.Focused {
		label += " (focused)"
	}
	return label
}
