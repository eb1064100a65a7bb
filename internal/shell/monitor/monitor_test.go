package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prism-io/prism-shell/internal/models"
	"github.com/prism-io/prism-shell/internal/shell/probe"
	"github.com/prism-io/prism-shell/internal/shell/supervisor"
)

type scriptedChecker struct {
	mu      sync.Mutex
	reports []supervisor.Report
	calls   int
}

func (c *scriptedChecker) HealthCheck(context.Context) supervisor.Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.calls
	if i >= len(c.reports) {
		i = len(c.reports) - 1
	}
	c.calls++
	return c.reports[i]
}

type recordingNotifier struct {
	mu     sync.Mutex
	bodies []string
}

func (n *recordingNotifier) Notify(_, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.bodies = append(n.bodies, body)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.bodies)
}

type fakeRestarter struct {
	calls int
	err   error
}

func (r *fakeRestarter) Restart(context.Context) (supervisor.Status, error) {
	r.calls++
	if r.err != nil {
		return supervisor.Status{}, r.err
	}
	return supervisor.Status{Running: true, PID: 99, Changed: true}, nil
}

func up() supervisor.Report {
	return supervisor.Report{Health: probe.HealthHealthy, Managed: true, Running: true, PID: 42}
}

func down() supervisor.Report {
	return supervisor.Report{Health: probe.HealthUnreachable, Managed: true, PID: 42, Detail: "core process exited"}
}

func stopped() supervisor.Report {
	return supervisor.Report{Health: probe.HealthUnreachable, Managed: true, Detail: "core service not running"}
}

func TestNewRejectsUnknownPolicy(t *testing.T) {
	if _, err := New(&scriptedChecker{}, "reboot"); err == nil {
		t.Error("New() error = nil, want error for unknown policy")
	}
}

func TestRecoveryPolicies(t *testing.T) {
	tests := []struct {
		name         string
		policy       string
		restartErr   error
		reports      []supervisor.Report
		wantNotes    int
		wantRestarts int
	}{
		{"none never notifies", models.RecoveryNone, nil, []supervisor.Report{up(), down(), up()}, 0, 0},
		{"notify on edge and recovery", models.RecoveryNotify, nil, []supervisor.Report{up(), down(), down(), up()}, 2, 0},
		{"restart on edge", models.RecoveryRestart, nil, []supervisor.Report{up(), down()}, 1, 1},
		{"restart failure notifies", models.RecoveryRestart, errors.New("spawn failed"), []supervisor.Report{up(), down()}, 1, 1},
		{"down from startup notifies once", models.RecoveryNotify, nil, []supervisor.Report{down(), down()}, 1, 0},
		{"down from startup restarts once", models.RecoveryRestart, nil, []supervisor.Report{down(), down(), down()}, 1, 1},
		{"external down from startup notifies", models.RecoveryRestart, nil, []supervisor.Report{{Health: probe.HealthUnreachable}, {Health: probe.HealthUnreachable}}, 1, 0},
		{"second outage alerts again", models.RecoveryNotify, nil, []supervisor.Report{down(), up(), down()}, 3, 0},
		{"stopped on request is not an edge", models.RecoveryRestart, nil, []supervisor.Report{up(), stopped()}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := &scriptedChecker{reports: tt.reports}
			notes := &recordingNotifier{}
			restarter := &fakeRestarter{err: tt.restartErr}

			m, err := New(checker, tt.policy, WithNotifier(notes), WithRestarter(restarter))
			if err != nil {
				t.Fatal(err)
			}
			for range tt.reports {
				m.CheckNow(context.Background())
			}

			if got := notes.count(); got != tt.wantNotes {
				t.Errorf("notifications = %d (%v), want %d", got, notes.bodies, tt.wantNotes)
			}
			if restarter.calls != tt.wantRestarts {
				t.Errorf("restarts = %d, want %d", restarter.calls, tt.wantRestarts)
			}
		})
	}
}

func TestRestartSkipsExternalCore(t *testing.T) {
	external := func(h probe.Health) supervisor.Report {
		return supervisor.Report{Health: h}
	}
	checker := &scriptedChecker{reports: []supervisor.Report{external(probe.HealthHealthy), external(probe.HealthUnknown)}}
	notes := &recordingNotifier{}
	restarter := &fakeRestarter{}

	m, _ := New(checker, models.RecoveryRestart, WithNotifier(notes), WithRestarter(restarter))
	m.CheckNow(context.Background())
	m.CheckNow(context.Background())

	if restarter.calls != 0 {
		t.Errorf("restarted an external core %d times", restarter.calls)
	}
	if notes.count() != 1 {
		t.Errorf("notifications = %d, want 1", notes.count())
	}
}

func TestSetPolicy(t *testing.T) {
	checker := &scriptedChecker{reports: []supervisor.Report{up(), down()}}
	notes := &recordingNotifier{}
	m, _ := New(checker, models.RecoveryNotify, WithNotifier(notes))

	if err := m.SetPolicy("bogus"); err == nil {
		t.Error("SetPolicy(bogus) error = nil")
	}
	if err := m.SetPolicy(models.RecoveryNone); err != nil {
		t.Fatal(err)
	}
	m.CheckNow(context.Background())
	m.CheckNow(context.Background())

	if m.Policy() != models.RecoveryNone {
		t.Errorf("Policy() = %s", m.Policy())
	}
	if notes.count() != 0 {
		t.Errorf("notifications = %d after switching to none", notes.count())
	}
}

func TestLastAndHooks(t *testing.T) {
	m, _ := New(&scriptedChecker{reports: []supervisor.Report{up()}}, models.RecoveryNone)
	if _, ok := m.Last(); ok {
		t.Error("Last() ok before any check")
	}

	var seen []supervisor.Report
	m.OnReport(func(r supervisor.Report) { seen = append(seen, r) })
	m.CheckNow(context.Background())

	last, ok := m.Last()
	if !ok || last.PID != 42 {
		t.Errorf("Last() = %+v, %v", last, ok)
	}
	if len(seen) != 1 {
		t.Errorf("hook saw %d reports, want 1", len(seen))
	}
}

type panicChecker struct{ calls atomic.Int32 }

func (c *panicChecker) HealthCheck(context.Context) supervisor.Report {
	if c.calls.Add(1) == 1 {
		panic("boom")
	}
	return up()
}

func TestStartStop(t *testing.T) {
	checker := &panicChecker{}
	m, _ := New(checker, models.RecoveryNone, WithInterval(5*time.Millisecond))

	ticks := make(chan struct{}, 64)
	m.OnReport(func(supervisor.Report) {
		select {
		case ticks <- struct{}{}:
		default:
		}
	})

	m.Start()
	m.Start()
	for i := 0; i < 3; i++ {
		select {
		case <-ticks:
		case <-time.After(2 * time.Second):
			t.Fatal("loop did not survive a panicking check")
		}
	}
	m.Stop()

	after := checker.calls.Load()
	time.Sleep(30 * time.Millisecond)
	if got := checker.calls.Load(); got != after {
		t.Errorf("checks continued after Stop: %d -> %d", after, got)
	}
	m.Stop()
}

func TestRunHonorsContext(t *testing.T) {
	m, _ := New(&scriptedChecker{reports: []supervisor.Report{up()}}, models.RecoveryNone, WithInterval(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
