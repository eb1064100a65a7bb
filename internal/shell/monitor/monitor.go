// Package monitor runs the periodic core health check and applies the
// configured recovery policy.
package monitor

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/prism-io/prism-shell/internal/models"
	"github.com/prism-io/prism-shell/internal/shell/metrics"
	"github.com/prism-io/prism-shell/internal/shell/notify"
	"github.com/prism-io/prism-shell/internal/shell/probe"
	"github.com/prism-io/prism-shell/internal/shell/supervisor"
)

// DefaultInterval is the reference cadence of the health loop.
const DefaultInterval = 30 * time.Second

const notifyTitle = "Prism"

// Checker evaluates core health.
type Checker interface {
	HealthCheck(ctx context.Context) supervisor.Report
}

// Restarter restarts a managed core.
type Restarter interface {
	Restart(ctx context.Context) (supervisor.Status, error)
}

// Monitor is a cancellable periodic task. Start and Stop bound its lifetime;
// Run drives the same loop from a caller's context.
type Monitor struct {
	checker   Checker
	restarter Restarter
	notifier  notify.Notifier
	interval  time.Duration

	mu       sync.Mutex
	policy   string
	last     *supervisor.Report
	alerted  bool
	hooks    []func(supervisor.Report)
	shutdown chan struct{}
	done     chan struct{}
	cancel   context.CancelFunc
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithInterval sets the tick interval.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithRestarter enables the restart policy. Without one, restart degrades to
// notify.
func WithRestarter(r Restarter) Option {
	return func(m *Monitor) { m.restarter = r }
}

// WithNotifier sets the notifier used by the notify and restart policies.
func WithNotifier(n notify.Notifier) Option {
	return func(m *Monitor) { m.notifier = n }
}

// New creates a Monitor with the given recovery policy.
func New(checker Checker, policy string, opts ...Option) (*Monitor, error) {
	if err := validPolicy(policy); err != nil {
		return nil, err
	}
	m := &Monitor{
		checker:  checker,
		notifier: notify.Discard{},
		interval: DefaultInterval,
		policy:   policy,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func validPolicy(p string) error {
	switch p {
	case models.RecoveryNone, models.RecoveryNotify, models.RecoveryRestart:
		return nil
	default:
		return fmt.Errorf("unknown recovery policy %q", p)
	}
}

// SetPolicy swaps the recovery policy. It takes effect on the next tick.
func (m *Monitor) SetPolicy(p string) error {
	if err := validPolicy(p); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.policy != p {
		logf("Recovery policy %s -> %s", m.policy, p)
		m.policy = p
	}
	return nil
}

// Policy returns the current recovery policy.
func (m *Monitor) Policy() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.policy
}

// OnReport registers fn to receive every report. fn runs on the loop
// goroutine and must not block.
func (m *Monitor) OnReport(fn func(supervisor.Report)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, fn)
}

// Last returns the most recent report, if any.
func (m *Monitor) Last() (supervisor.Report, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil {
		return supervisor.Report{}, false
	}
	return *m.last, true
}

// Start launches the loop in its own goroutine. A second Start is a no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shutdown != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	shutdown := make(chan struct{})
	done := make(chan struct{})
	m.shutdown, m.done, m.cancel = shutdown, done, cancel

	go func() {
		defer close(done)
		m.loop(ctx, shutdown)
	}()
	logf("Started (interval %s)", m.interval)
}

// Stop signals the loop to exit and waits until it has. In-flight checks
// are cancelled.
func (m *Monitor) Stop() {
	m.mu.Lock()
	shutdown, done, cancel := m.shutdown, m.done, m.cancel
	m.shutdown, m.done, m.cancel = nil, nil, nil
	m.mu.Unlock()

	if shutdown == nil {
		return
	}
	close(shutdown)
	cancel()
	<-done
	logf("Stopped")
}

// Run runs the loop until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	m.loop(ctx, nil)
}

func (m *Monitor) loop(ctx context.Context, shutdown <-chan struct{}) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.tick(ctx)
	for {
		select {
		case <-ticker.C:
			m.tick(ctx)
		case <-shutdown:
			return
		case <-ctx.Done():
			return
		}
	}
}

// CheckNow runs one health check outside the schedule and returns it.
func (m *Monitor) CheckNow(ctx context.Context) supervisor.Report {
	return m.tick(ctx)
}

func (m *Monitor) tick(ctx context.Context) (report supervisor.Report) {
	defer func() {
		if r := recover(); r != nil {
			logf("Health check panicked: %v", r)
		}
	}()

	report = m.checker.HealthCheck(ctx)
	if ctx.Err() != nil {
		return report
	}

	var latency float64
	if report.Probe != nil {
		latency = report.Probe.Latency.Seconds()
	}
	metrics.ObserveHealth(report.Health.String(), latency)

	healthy := report.Health == probe.HealthHealthy
	// A managed core that holds no handle was stopped on request.
	idle := report.Managed && !report.Running && report.PID == 0

	// alerted holds from the first failed check until the core is healthy
	// or idle again, so each outage triggers recovery once.
	m.mu.Lock()
	m.last = &report
	wentDown := !healthy && !idle && !m.alerted
	recovered := healthy && m.alerted
	if wentDown {
		m.alerted = true
	}
	if healthy || idle {
		m.alerted = false
	}
	policy := m.policy
	hooks := slices.Clone(m.hooks)
	m.mu.Unlock()

	for _, fn := range hooks {
		fn(report)
	}

	switch {
	case wentDown:
		m.recover(ctx, policy, report)
	case recovered && policy != models.RecoveryNone:
		m.send("Core service is reachable again")
	}
	return report
}

func (m *Monitor) recover(ctx context.Context, policy string, report supervisor.Report) {
	logf("Core became %s: %s", report.Health, report.Detail)

	switch policy {
	case models.RecoveryNone:
		return
	case models.RecoveryRestart:
		if report.Managed && m.restarter != nil {
			st, err := m.restarter.Restart(ctx)
			if err != nil {
				logf("Restart failed: %v", err)
				m.send(fmt.Sprintf("Core service is %s and could not be restarted: %v", report.Health, err))
				return
			}
			metrics.IncCoreRestart()
			logf("Core restarted (pid %d)", st.PID)
			m.send(fmt.Sprintf("Core service was %s and has been restarted", report.Health))
			return
		}
	}
	m.send(fmt.Sprintf("Core service is %s: %s", report.Health, report.Detail))
}

func (m *Monitor) send(body string) {
	if err := m.notifier.Notify(notifyTitle, body); err != nil {
		logf("Notification failed: %v", err)
	}
}

func logf(format string, args ...interface{}) {
	log.Printf("[monitor] "+format, args...)
}
