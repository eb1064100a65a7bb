package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/prism-io/prism-shell/internal/config"
	"github.com/prism-io/prism-shell/internal/shell/rpc"
	"github.com/prism-io/prism-shell/internal/shell/supervisor"
	"github.com/prism-io/prism-shell/internal/shell/surface"
	"github.com/prism-io/prism-shell/internal/shell/visibility"
)

// pollInterval is how often the dashboard refreshes the status snapshot.
const pollInterval = 2 * time.Second

// ShellClient is the subset of *rpc.Client the dashboard uses.
type ShellClient interface {
	GetStatus(ctx context.Context) (surface.Status, error)
	StartCore(ctx context.Context) (supervisor.Status, error)
	StopCore(ctx context.Context) (supervisor.Status, error)
	CoreHealth(ctx context.Context) (supervisor.Report, error)
	ShowFromTray(ctx context.Context) (visibility.State, error)
	MinimizeToTray(ctx context.Context) (visibility.State, error)
	WatchVisibility(ctx context.Context) (<-chan visibility.Update, error)
	Close() error
}

// DialFunc connects to the running shell.
type DialFunc func() (ShellClient, error)

func dialShell() (ShellClient, error) {
	info, err := config.LoadShellInfo()
	if err != nil || info == nil {
		return nil, fmt.Errorf("shell not running")
	}
	client, err := rpc.Dial(fmt.Sprintf("%s:%d", info.Host, info.Port))
	if err != nil {
		return nil, err
	}
	return client, nil
}

func connectShellCmd(dial DialFunc) tea.Cmd {
	return func() tea.Msg {
		client, err := dial()
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return ShellConnectedMsg{Client: client}
	}
}

func loadStatusCmd(client ShellClient) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		st, err := client.GetStatus(ctx)
		if err != nil {
			if isConnectionLost(err) {
				return ShellDisconnectedMsg{}
			}
			return ErrorMsg{Err: fmt.Errorf("failed to load status: %w", err)}
		}
		return StatusLoadedMsg{Status: st}
	}
}

func coreCmd(client ShellClient, start bool) tea.Cmd {
	return func() tea.Msg {
		// Start waits for the spawn grace and stop for termination.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		var (
			st  supervisor.Status
			err error
		)
		if start {
			st, err = client.StartCore(ctx)
		} else {
			st, err = client.StopCore(ctx)
		}
		if err != nil {
			verb := "stop"
			if start {
				verb = "start"
			}
			return ErrorMsg{Err: fmt.Errorf("failed to %s core: %s", verb, status.Convert(err).Message())}
		}
		return ActionDoneMsg{Text: st.Message}
	}
}

func windowCmd(client ShellClient, show bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var err error
		if show {
			_, err = client.ShowFromTray(ctx)
		} else {
			_, err = client.MinimizeToTray(ctx)
		}
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("window command failed: %s", status.Convert(err).Message())}
		}
		return nil
	}
}

func checkHealthCmd(client ShellClient) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		r, err := client.CoreHealth(ctx)
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("health check failed: %s", status.Convert(err).Message())}
		}
		return HealthCheckedMsg{Report: r}
	}
}

// watchVisibilityCmd forwards stream updates to the program from a goroutine.
func watchVisibilityCmd(ctx context.Context, client ShellClient, program *programRef) tea.Cmd {
	return func() tea.Msg {
		updates, err := client.WatchVisibility(ctx)
		if err != nil {
			return StreamEndedMsg{}
		}
		go func() {
			for u := range updates {
				program.Send(VisibilityMsg{Update: u})
			}
			if ctx.Err() == nil {
				program.Send(StreamEndedMsg{})
			}
		}()
		return nil
	}
}

func pollTick() tea.Cmd {
	return tea.Tick(pollInterval, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

func clearErrorAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(_ time.Time) tea.Msg {
		return ClearErrorMsg{}
	})
}

func reconnectTick() tea.Cmd {
	return tea.Tick(3*time.Second, func(_ time.Time) tea.Msg {
		return ReconnectMsg{}
	})
}

// isConnectionLost checks if a gRPC error indicates the server is gone.
func isConnectionLost(err error) bool {
	code := status.Code(err)
	return code == codes.Unavailable || code == codes.Canceled
}
