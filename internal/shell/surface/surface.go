// Package surface implements the command surface the UI layer calls. Each
// command is independent and maps to one operation on the supervisor, the
// visibility machine, or an auxiliary utility.
package surface

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/prism-io/prism-shell/internal/buildinfo"
	"github.com/prism-io/prism-shell/internal/shell/notify"
	"github.com/prism-io/prism-shell/internal/shell/supervisor"
	"github.com/prism-io/prism-shell/internal/shell/visibility"
	"github.com/prism-io/prism-shell/internal/updater"
)

// Core is the supervisor as seen by the command surface.
type Core interface {
	Start(ctx context.Context) (supervisor.Status, error)
	Stop(ctx context.Context) (supervisor.Status, error)
	Current(ctx context.Context) (supervisor.Status, error)
	HealthCheck(ctx context.Context) supervisor.Report
	Managed() bool
	Endpoint() string
}

// Connectivity answers whether a core address is reachable.
type Connectivity interface {
	Reachable(ctx context.Context, base string) bool
}

// Updates checks for a newer shell release.
type Updates interface {
	Check(ctx context.Context) (updater.Result, error)
}

// Window is the visibility machine.
type Window interface {
	Dispatch(e visibility.Event) (visibility.Change, error)
	State() visibility.State
	Focused() bool
}

// Reports exposes the background loop's last health report.
type Reports interface {
	Last() (supervisor.Report, bool)
}

// SystemInfo describes the host and the shell build.
type SystemInfo struct {
	OS        string
	Arch      string
	Version   string
	Uptime    string
	Hostname  string
	GoVersion string
	Commit    string
}

// Status is a combined snapshot for dashboards and the tray.
type Status struct {
	Version    string
	Uptime     string
	Mode       string
	Endpoint   string
	Core       supervisor.Status
	Health     *supervisor.Report
	Visibility visibility.State
	Focused    bool
}

// Surface is the command surface.
type Surface struct {
	core      Core
	conn      Connectivity
	window    Window
	notifier  notify.Notifier
	updates   Updates
	reports   Reports
	startedAt time.Time
	now       func() time.Time
}

// Deps are the collaborators of a Surface. Reports may be nil.
type Deps struct {
	Core     Core
	Conn     Connectivity
	Window   Window
	Notifier notify.Notifier
	Updates  Updates
	Reports  Reports
}

// New creates a Surface whose uptime is measured from now.
func New(d Deps) *Surface {
	s := &Surface{
		core:     d.Core,
		conn:     d.Conn,
		window:   d.Window,
		notifier: d.Notifier,
		updates:  d.Updates,
		reports:  d.Reports,
		now:      time.Now,
	}
	if s.notifier == nil {
		s.notifier = notify.Discard{}
	}
	if s.updates == nil {
		s.updates = updater.NewChecker("")
	}
	s.startedAt = s.now()
	return s
}

// StartCore starts the core. Errors are *supervisor.SpawnError.
func (s *Surface) StartCore(ctx context.Context) (supervisor.Status, error) {
	return s.core.Start(ctx)
}

// StopCore stops the core. Errors are *supervisor.TerminationError.
func (s *Surface) StopCore(ctx context.Context) (supervisor.Status, error) {
	return s.core.Stop(ctx)
}

// CoreHealth runs a health check now.
func (s *Surface) CoreHealth(ctx context.Context) supervisor.Report {
	return s.core.HealthCheck(ctx)
}

// GetSystemInfo returns static host and build information.
func (s *Surface) GetSystemInfo() SystemInfo {
	host, _ := os.Hostname()
	return SystemInfo{
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		Version:   buildinfo.Version,
		Uptime:    FormatUptime(s.now().Sub(s.startedAt)),
		Hostname:  host,
		GoVersion: runtime.Version(),
		Commit:    buildinfo.CommitHash,
	}
}

// ShowNotification displays a desktop notification. Failure is non-fatal.
func (s *Surface) ShowNotification(title, body string) error {
	return s.notifier.Notify(title, body)
}

// CheckForUpdates compares the running version with the latest release.
func (s *Surface) CheckForUpdates(ctx context.Context) (updater.Result, error) {
	res, err := s.updates.Check(ctx)
	if err != nil {
		return updater.Result{}, fmt.Errorf("failed to check for updates: %w", err)
	}
	return res, nil
}

// CheckCoreConnection probes url, or the configured endpoint when url is
// empty. It never fails: an unreachable address is false.
func (s *Surface) CheckCoreConnection(ctx context.Context, url string) bool {
	url = strings.TrimSpace(url)
	if url == "" {
		url = s.core.Endpoint()
	}
	return s.conn.Reachable(ctx, url)
}

// MinimizeToTray hides the main window.
func (s *Surface) MinimizeToTray() error {
	if _, err := s.window.Dispatch(visibility.EventMinimizeToTray); err != nil {
		return fmt.Errorf("failed to minimize to tray: %w", err)
	}
	return nil
}

// ShowFromTray shows and focuses the main window.
func (s *Surface) ShowFromTray() error {
	if _, err := s.window.Dispatch(visibility.EventShowFromTray); err != nil {
		return fmt.Errorf("failed to show from tray: %w", err)
	}
	return nil
}

// CloseRequested handles the window's close button: the window is hidden
// and the caller must suppress the default close.
func (s *Surface) CloseRequested() (visibility.Change, error) {
	change, err := s.window.Dispatch(visibility.EventCloseRequested)
	if err != nil {
		return change, fmt.Errorf("failed to hide on close: %w", err)
	}
	return change, nil
}

// Status returns a snapshot of the core and window.
func (s *Surface) Status(ctx context.Context) (Status, error) {
	cur, err := s.core.Current(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("failed to read core state: %w", err)
	}
	mode := "external"
	if s.core.Managed() {
		mode = "managed"
	}
	st := Status{
		Version:    buildinfo.Version,
		Uptime:     FormatUptime(s.now().Sub(s.startedAt)),
		Mode:       mode,
		Endpoint:   s.core.Endpoint(),
		Core:       cur,
		Visibility: s.window.State(),
		Focused:    s.window.Focused(),
	}
	if s.reports != nil {
		if r, ok := s.reports.Last(); ok {
			st.Health = &r
		}
	}
	return st, nil
}

// FormatUptime renders d as "3d 4h", "2h 34m" or "12m".
func FormatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int(d / (24 * time.Hour))
	hours := int(d/time.Hour) % 24
	mins := int(d/time.Minute) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	default:
		return fmt.Sprintf("%dm", mins)
	}
}
