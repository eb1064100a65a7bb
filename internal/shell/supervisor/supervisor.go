// Package supervisor owns the lifecycle of the core service process and
// reports its health.
package supervisor

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/prism-io/prism-shell/internal/shell/probe"
)

// Status messages returned to the command surface.
const (
	MsgStarted        = "core service started successfully"
	MsgAlreadyRunning = "core service already running"
	MsgStopped        = "core service stopped successfully"
	MsgAlreadyStopped = "core service already stopped"
)

// Prober evaluates the core's health endpoint.
type Prober interface {
	Probe(ctx context.Context, base string) probe.Result
}

// Recorder persists the running core's PID outside the process.
type Recorder interface {
	Save(pid int, startedAt time.Time) error
	Clear() error
}

// Hooks are called after the slot changes, while the lock is still held.
// They must not call back into the Supervisor.
type Hooks struct {
	OnStarted func(pid int)
	OnStopped func(pid int)
}

// Config controls how the supervisor treats the core.
type Config struct {
	// Managed is true when the shell spawns and owns the core process.
	Managed bool
	// Endpoint is the core's base URL. Empty disables HTTP probing.
	Endpoint string
	// Command names the core executable in messages and errors.
	Command string
	// StartGrace, when positive, is how long a new child must stay alive
	// before Start reports success.
	StartGrace time.Duration
	// StopTimeout is how long Stop waits after SIGTERM before killing.
	StopTimeout time.Duration
}

// Status is the outcome of a Start or Stop call.
type Status struct {
	Running   bool
	PID       int
	Message   string
	Changed   bool
	StartedAt time.Time
}

// Report is the outcome of a health check.
type Report struct {
	Health    probe.Health
	Managed   bool
	Running   bool
	PID       int
	Detail    string
	CheckedAt time.Time
	Probe     *probe.Result
}

// Supervisor owns the core handle. All mutations of the handle go through
// its slot, so at most one start, stop, or liveness check runs at a time.
type Supervisor struct {
	cfg      Config
	launcher Launcher
	prober   Prober
	recorder Recorder
	hooks    Hooks
	slot     *coreSlot
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithRecorder persists PID records on start and stop.
func WithRecorder(r Recorder) Option {
	return func(s *Supervisor) { s.recorder = r }
}

// WithHooks registers lifecycle hooks.
func WithHooks(h Hooks) Option {
	return func(s *Supervisor) { s.hooks = h }
}

// New creates a Supervisor. launcher may be nil when cfg.Managed is false.
func New(cfg Config, launcher Launcher, prober Prober, opts ...Option) *Supervisor {
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = 5 * time.Second
	}
	s := &Supervisor{
		cfg:      cfg,
		launcher: launcher,
		prober:   prober,
		slot:     newCoreSlot(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Managed reports whether the shell owns the core process.
func (s *Supervisor) Managed() bool {
	return s.cfg.Managed
}

// Endpoint returns the configured core address.
func (s *Supervisor) Endpoint() string {
	return s.cfg.Endpoint
}

// Start spawns the core unless one is already running. Concurrent calls
// collapse to a single spawn; every caller sees success.
func (s *Supervisor) Start(ctx context.Context) (Status, error) {
	if !s.cfg.Managed {
		return Status{Message: ErrExternal.Error()}, nil
	}

	var st Status
	err := s.slot.with(ctx, func(o *occupant) error {
		if o.handle != nil {
			if o.handle.Alive() {
				st = Status{Running: true, PID: o.handle.PID(), Message: MsgAlreadyRunning, StartedAt: o.startedAt}
				return nil
			}
			// An observed exit counts as confirmed stopped.
			logf("Reaping exited core (pid %d): %v", o.handle.PID(), o.handle.ExitErr())
			s.release(o)
		}

		h, err := s.launcher.Launch(ctx)
		if err != nil {
			return &SpawnError{Command: s.cfg.Command, Err: err}
		}
		if err := s.awaitGrace(ctx, h); err != nil {
			return &SpawnError{Command: s.cfg.Command, Err: err}
		}

		o.handle = h
		o.startedAt = time.Now().UTC()
		if s.recorder != nil {
			if err := s.recorder.Save(h.PID(), o.startedAt); err != nil {
				logf("Failed to record core pid: %v", err)
			}
		}
		if s.hooks.OnStarted != nil {
			s.hooks.OnStarted(h.PID())
		}
		logf("Core started (pid %d)", h.PID())
		st = Status{Running: true, PID: h.PID(), Message: MsgStarted, Changed: true, StartedAt: o.startedAt}
		return nil
	})
	if err != nil {
		return Status{}, err
	}
	return st, nil
}

// awaitGrace fails if h exits before the configured start grace elapses.
func (s *Supervisor) awaitGrace(ctx context.Context, h Handle) error {
	if s.cfg.StartGrace <= 0 {
		return nil
	}
	timer := time.NewTimer(s.cfg.StartGrace)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-h.Done():
		return fmt.Errorf("exited within %s: %v", s.cfg.StartGrace, h.ExitErr())
	case <-ctx.Done():
		_ = h.Terminate(context.Background(), s.cfg.StopTimeout)
		return ctx.Err()
	}
}

// Stop terminates the core if one is held. On TerminationError the handle
// is kept so the caller can retry.
func (s *Supervisor) Stop(ctx context.Context) (Status, error) {
	if !s.cfg.Managed {
		return Status{Message: ErrExternal.Error()}, nil
	}

	var st Status
	err := s.slot.with(ctx, func(o *occupant) error {
		if o.handle == nil {
			st = Status{Message: MsgAlreadyStopped}
			return nil
		}
		pid := o.handle.PID()
		if !o.handle.Alive() {
			logf("Core (pid %d) had already exited: %v", pid, o.handle.ExitErr())
			s.release(o)
			st = Status{PID: pid, Message: MsgAlreadyStopped, Changed: true}
			return nil
		}

		if err := o.handle.Terminate(ctx, s.cfg.StopTimeout); err != nil {
			return &TerminationError{PID: pid, Err: err}
		}
		s.release(o)
		logf("Core stopped (pid %d)", pid)
		st = Status{PID: pid, Message: MsgStopped, Changed: true}
		return nil
	})
	if err != nil {
		return Status{}, err
	}
	return st, nil
}

// Restart stops and then starts the core.
func (s *Supervisor) Restart(ctx context.Context) (Status, error) {
	if _, err := s.Stop(ctx); err != nil {
		return Status{}, err
	}
	return s.Start(ctx)
}

// release clears the slot and its external record. Caller holds the slot.
func (s *Supervisor) release(o *occupant) {
	pid := o.handle.PID()
	o.clear()
	if s.recorder != nil {
		if err := s.recorder.Clear(); err != nil {
			logf("Failed to clear core record: %v", err)
		}
	}
	if s.hooks.OnStopped != nil {
		s.hooks.OnStopped(pid)
	}
}

// Current returns the slot's state without changing it.
func (s *Supervisor) Current(ctx context.Context) (Status, error) {
	var st Status
	err := s.slot.with(ctx, func(o *occupant) error {
		if o.handle != nil {
			st = Status{Running: o.handle.Alive(), PID: o.handle.PID(), StartedAt: o.startedAt}
		}
		return nil
	})
	return st, err
}

// HealthCheck reports whether the core is reachable. It never changes the
// handle: a dead or unreachable core is a signal for the caller's recovery
// policy, not a reason to clear state here.
func (s *Supervisor) HealthCheck(ctx context.Context) Report {
	r := Report{Managed: s.cfg.Managed, CheckedAt: time.Now().UTC()}

	if s.cfg.Managed {
		err := s.slot.with(ctx, func(o *occupant) error {
			if o.handle == nil {
				r.Health = probe.HealthUnreachable
				r.Detail = "core service not running"
				return nil
			}
			r.PID = o.handle.PID()
			if !o.handle.Alive() {
				r.Health = probe.HealthUnreachable
				r.Detail = fmt.Sprintf("core process exited: %v", o.handle.ExitErr())
				return nil
			}
			r.Running = true
			return nil
		})
		if err != nil {
			r.Health = probe.HealthUnknown
			r.Detail = fmt.Sprintf("liveness check interrupted: %v", err)
			return r
		}
		if !r.Running {
			return r
		}
		if s.cfg.Endpoint == "" || s.prober == nil {
			r.Health = probe.HealthHealthy
			r.Detail = "core process alive"
			return r
		}
	}

	if s.prober == nil {
		r.Health = probe.HealthUnknown
		r.Detail = "no health probe configured"
		return r
	}

	res := s.prober.Probe(ctx, s.cfg.Endpoint)
	r.Probe = &res
	r.Health = res.Health
	switch {
	case res.Health == probe.HealthHealthy:
		r.Detail = fmt.Sprintf("%s answered %d in %s", res.URL, res.StatusCode, res.Latency.Round(time.Millisecond))
	case res.Err != nil:
		r.Detail = res.Err.Error()
	default:
		r.Detail = res.Health.String()
	}
	return r
}

// Shutdown stops a held core on application exit. Errors are logged.
func (s *Supervisor) Shutdown(ctx context.Context) {
	if !s.cfg.Managed {
		return
	}
	st, err := s.Stop(ctx)
	if err != nil {
		logf("Failed to stop core on shutdown: %v", err)
		return
	}
	if st.Changed {
		logf("Core stopped on shutdown (pid %d)", st.PID)
	}
}

func logf(format string, args ...interface{}) {
	log.Printf("[supervisor] "+format, args...)
}
