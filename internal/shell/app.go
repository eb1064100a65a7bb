// Package shell assembles the host shell: the core supervisor, the
// background monitor, the window state machine, and the command surface
// server.
package shell

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/prism-io/prism-shell/internal/config"
	"github.com/prism-io/prism-shell/internal/models"
	"github.com/prism-io/prism-shell/internal/shell/metrics"
	"github.com/prism-io/prism-shell/internal/shell/monitor"
	"github.com/prism-io/prism-shell/internal/shell/notify"
	"github.com/prism-io/prism-shell/internal/shell/probe"
	"github.com/prism-io/prism-shell/internal/shell/server"
	"github.com/prism-io/prism-shell/internal/shell/supervisor"
	"github.com/prism-io/prism-shell/internal/shell/surface"
	"github.com/prism-io/prism-shell/internal/shell/telemetry"
	"github.com/prism-io/prism-shell/internal/shell/tray"
	"github.com/prism-io/prism-shell/internal/shell/visibility"
	"github.com/prism-io/prism-shell/internal/shell/watcher"
	"github.com/prism-io/prism-shell/internal/updater"
)

// Run modes recorded in shell.yaml.
const (
	ModeTray       = "tray"
	ModeForeground = "foreground"
)

// App is the running shell. It is created once at startup and torn down by
// Shutdown.
type App struct {
	settingsPath string
	settings     *models.Settings

	prober     *probe.Prober
	supervisor *supervisor.Supervisor
	windows    *visibility.Broadcaster
	machine    *visibility.Machine
	notifier   notify.Notifier
	monitor    *monitor.Monitor
	updates    *updater.Checker
	surface    *surface.Surface
	telemetry  *telemetry.Tracker
	server     *server.Server
	watcher    *watcher.Watcher
	closers    []io.Closer

	wasHealthy atomic.Bool
	errCh      chan error
	done       chan struct{}

	quitMu   sync.Mutex
	quitFn   func()
	quitOnce sync.Once
	stopOnce sync.Once
}

// Option configures an App.
type Option func(*App)

// WithNotifier replaces the desktop notifier.
func WithNotifier(n notify.Notifier) Option {
	return func(a *App) { a.notifier = n }
}

// New builds the shell from settings. Nothing runs until Start.
func New(settings *models.Settings, settingsPath string, opts ...Option) (*App, error) {
	a := &App{
		settingsPath: settingsPath,
		settings:     settings,
		notifier:     notify.NewDesktop(nil),
		errCh:        make(chan error, 1),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}

	installID, err := config.InstallID()
	if err != nil {
		log.Printf("Failed to read install id: %v", err)
	}
	a.telemetry, err = telemetry.New(settings.Telemetry, installID)
	if err != nil {
		log.Printf("Telemetry disabled: %v", err)
		a.telemetry = &telemetry.Tracker{}
	}

	a.prober = probe.New(
		probe.WithPath(settings.Core.HealthPath),
		probe.WithTimeout(settings.Monitor.ProbeTimeout),
	)

	var launcher supervisor.Launcher
	if settings.Core.IsManaged() {
		launcher = a.execLauncher()
	}
	a.supervisor = supervisor.New(supervisor.Config{
		Managed:     settings.Core.IsManaged(),
		Endpoint:    settings.Core.Endpoint,
		Command:     settings.Core.Command,
		StartGrace:  settings.Core.StartGrace,
		StopTimeout: settings.Core.StopTimeout,
	}, launcher, a.prober,
		supervisor.WithRecorder(config.CoreRecord{Command: settings.Core.Command}),
		supervisor.WithHooks(supervisor.Hooks{OnStarted: a.coreStarted, OnStopped: a.coreStopped}),
	)

	a.windows = visibility.NewBroadcaster()
	a.machine = visibility.NewMachine(a.windows, a.requestQuit)
	a.machine.OnChange(a.visibilityChanged)

	a.monitor, err = monitor.New(a.supervisor, settings.Monitor.Recovery,
		monitor.WithInterval(settings.Monitor.Interval),
		monitor.WithNotifier(a.notifier),
		monitor.WithRestarter(a.supervisor),
	)
	if err != nil {
		return nil, err
	}
	a.monitor.OnReport(a.reportHealth)

	a.updates = updater.NewChecker(settings.Updates.FeedURL)
	a.surface = surface.New(surface.Deps{
		Core:     a.supervisor,
		Conn:     a.prober,
		Window:   a.machine,
		Notifier: a.notifier,
		Updates:  a.updates,
		Reports:  a.monitor,
	})
	return a, nil
}

func (a *App) execLauncher() *supervisor.ExecLauncher {
	l := &supervisor.ExecLauncher{
		Command: a.settings.Core.Command,
		Args:    a.settings.Core.Args,
		Dir:     a.settings.Core.Dir,
		Env:     a.settings.Core.Env,
	}
	dir, err := config.LogsDir(a.settings.Logs.Dir)
	if err != nil {
		log.Printf("Core output not captured: %v", err)
		return l
	}
	files := supervisor.LogFiles{
		Dir:        dir,
		MaxSizeMB:  a.settings.Logs.MaxSizeMB,
		MaxBackups: a.settings.Logs.MaxBackups,
		MaxAgeDays: a.settings.Logs.MaxAgeDays,
		Compress:   a.settings.Logs.Compress,
	}
	stdout, stderr := files.Writers("core")
	if stdout != nil {
		l.Stdout, l.Stderr = stdout, stderr
		a.closers = append(a.closers, stdout, stderr)
	}
	return l
}

// Start opens the command surface on port (0 for dynamic), records the
// shell in shell.yaml, and starts the background loop.
func (a *App) Start(port int, mode string) error {
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		log.Printf("Failed to register metrics: %v", err)
	}

	srv, err := server.New(port, a.surface, a.windows)
	if err != nil {
		return err
	}
	a.server = srv

	info := models.NewShellInfo(server.DefaultHost, srv.Port(), os.Getpid(), mode)
	if err := config.SaveShellInfo(info); err != nil {
		srv.Stop()
		return fmt.Errorf("failed to write shell info: %w", err)
	}

	go func() {
		if err := srv.Serve(); err != nil {
			select {
			case a.errCh <- err:
			default:
			}
		}
	}()

	if stale, err := config.StaleCore(); err == nil && stale != nil {
		log.Printf("Core from a previous shell is still running (pid %d, %s)", stale.PID, stale.Command)
	}

	a.monitor.Start()
	a.startWatcher()
	if a.settings.Updates.CheckOnStartup {
		a.updates.CheckInBackground(context.Background())
	}
	a.telemetry.Track(telemetry.EventShellStarted, map[string]any{
		"mode":      mode,
		"core_mode": a.settings.Core.Mode,
	})

	log.Printf("Shell started on port %d (PID %d, core %s)", srv.Port(), os.Getpid(), a.settings.Core.Mode)
	return nil
}

// Shutdown tears the shell down: stop the loop, stop a held core, close the
// server, flush telemetry, and remove shell.yaml. Safe to call twice.
func (a *App) Shutdown() {
	a.stopOnce.Do(func() {
		close(a.done)
		a.monitor.Stop()
		if a.watcher != nil {
			a.watcher.Stop()
		}

		ctx, cancel := context.WithTimeout(context.Background(), a.settings.Core.StopTimeout+5*time.Second)
		a.supervisor.Shutdown(ctx)
		cancel()

		if a.server != nil {
			a.server.Stop()
		}
		a.telemetry.Close()
		for _, c := range a.closers {
			_ = c.Close()
		}
		if err := config.RemoveShellInfo(); err != nil {
			log.Printf("Failed to remove shell info: %v", err)
		}
	})
}

// SetQuit sets what the tray quit action does.
func (a *App) SetQuit(fn func()) {
	a.quitMu.Lock()
	defer a.quitMu.Unlock()
	a.quitFn = fn
}

func (a *App) requestQuit() {
	a.quitOnce.Do(func() {
		a.quitMu.Lock()
		fn := a.quitFn
		a.quitMu.Unlock()
		if fn != nil {
			fn()
		}
	})
}

// Errors delivers a fatal server error.
func (a *App) Errors() <-chan error {
	return a.errCh
}

// Port returns the command surface port, or 0 before Start.
func (a *App) Port() int {
	if a.server == nil {
		return 0
	}
	return a.server.Port()
}

// Dispatch feeds a window event to the visibility machine.
func (a *App) Dispatch(e visibility.Event) (visibility.Change, error) {
	return a.machine.Dispatch(e)
}

// Labels returns the tray labels for the configured locale.
func (a *App) Labels() tray.Labels {
	locale := a.settings.Locale
	if locale == "" {
		locale = tray.HostLocale()
	}
	return tray.LabelsFor(locale)
}

// Hooks. Supervisor hooks run with the core slot held and must not call
// back into the supervisor.

func (a *App) coreStarted(pid int) {
	metrics.IncCoreStart()
	a.telemetry.Track(telemetry.EventCoreStarted, map[string]any{"pid": pid})
}

func (a *App) coreStopped(pid int) {
	metrics.IncCoreStop()
	a.telemetry.Track(telemetry.EventCoreStopped, map[string]any{"pid": pid})
}

func (a *App) reportHealth(r supervisor.Report) {
	tray.SetHealth(r)
	healthy := r.Health == probe.HealthHealthy
	if a.wasHealthy.Swap(healthy) && !healthy {
		a.telemetry.Track(telemetry.EventCoreUnhealthy, map[string]any{
			"health":  r.Health.String(),
			"managed": r.Managed,
		})
	}
}

func (a *App) visibilityChanged(c visibility.Change) {
	metrics.RecordTransition(c.Event.String(), c.From.String(), c.To.String())
	tray.SetVisibility(c.To)
}

func (a *App) startWatcher() {
	if a.settingsPath == "" {
		return
	}
	if err := config.EnsureGlobalDir(); err != nil {
		log.Printf("Settings reload disabled: %v", err)
		return
	}
	w, err := watcher.New(a.settingsPath, config.LoadSettings)
	if err != nil {
		log.Printf("Settings reload disabled: %v", err)
		return
	}
	if err := w.Start(); err != nil {
		log.Printf("Settings reload disabled: %v", err)
		w.Stop()
		return
	}
	a.watcher = w
	go a.applySettings(w.Events())
}

func (a *App) applySettings(events <-chan watcher.Event) {
	current := a.settings
	for {
		select {
		case <-a.done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Type {
			case watcher.EventSettingsInvalid:
				log.Printf("Ignoring invalid settings %s: %v", ev.Path, ev.Err)
				continue
			case watcher.EventSettingsRemoved:
				log.Printf("Settings file %s removed, keeping current settings", ev.Path)
				continue
			}
			d := watcher.Compare(current, ev.Settings)
			if d.Recovery != "" {
				if err := a.monitor.SetPolicy(d.Recovery); err != nil {
					log.Printf("Failed to apply recovery policy: %v", err)
				}
			}
			if len(d.RestartRequired) > 0 {
				log.Printf("Settings changed (%v): restart required", d.RestartRequired)
			}
			current = ev.Settings
		}
	}
}
