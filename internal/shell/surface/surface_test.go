package surface

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/prism-io/prism-shell/internal/shell/notify"
	"github.com/prism-io/prism-shell/internal/shell/probe"
	"github.com/prism-io/prism-shell/internal/shell/supervisor"
	"github.com/prism-io/prism-shell/internal/shell/visibility"
)

type stubHandle struct {
	pid  int
	once sync.Once
	done chan struct{}
}

func newStubHandle(pid int) *stubHandle {
	return &stubHandle{pid: pid, done: make(chan struct{})}
}

func (h *stubHandle) PID() int              { return h.pid }
func (h *stubHandle) Done() <-chan struct{} { return h.done }
func (h *stubHandle) ExitErr() error        { return nil }

func (h *stubHandle) Alive() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

func (h *stubHandle) Terminate(context.Context, time.Duration) error {
	h.once.Do(func() { close(h.done) })
	return nil
}

type failingWindow struct{}

func (failingWindow) Show() error  { return errors.New("window gone") }
func (failingWindow) Hide() error  { return errors.New("window gone") }
func (failingWindow) Focus() error { return nil }

type recordingNotifier struct {
	title, body string
	err         error
}

func (n *recordingNotifier) Notify(title, body string) error {
	n.title, n.body = title, body
	return n.err
}

func newSurface(t *testing.T, endpoint string, window visibility.Window, n notify.Notifier) (*Surface, *visibility.Machine) {
	t.Helper()
	prober := probe.New(probe.WithTimeout(500 * time.Millisecond))
	launch := supervisor.LaunchFunc(func(context.Context) (supervisor.Handle, error) {
		return newStubHandle(4242), nil
	})
	sup := supervisor.New(supervisor.Config{Managed: true, Endpoint: endpoint, Command: "prism-core"}, launch, prober)
	m := visibility.NewMachine(window, nil)
	return New(Deps{Core: sup, Conn: prober, Window: m, Notifier: n}), m
}

// freeAddr returns a loopback address nothing is listening on.
func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	_ = l.Close()
	return addr
}

func TestLaunchScenario(t *testing.T) {
	addr := freeAddr(t)
	base := "http://" + addr
	s, _ := newSurface(t, base, visibility.NewBroadcaster(), nil)
	ctx := context.Background()

	info := s.GetSystemInfo()
	if info.OS == "" || info.Arch == "" || info.Version == "" || info.Uptime == "" {
		t.Fatalf("GetSystemInfo() = %+v, want non-empty os/arch/version/uptime", info)
	}

	st, err := s.StartCore(ctx)
	if err != nil {
		t.Fatalf("StartCore() error = %v", err)
	}
	if !st.Running || st.Message != supervisor.MsgStarted {
		t.Errorf("StartCore() = %+v", st)
	}

	if s.CheckCoreConnection(ctx, base) {
		t.Fatal("CheckCoreConnection() = true before the core is listening")
	}

	l, err := net.Listen("tcp", addr)
	if err != nil {
		t.Skipf("could not rebind %s: %v", addr, err)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	srv := &http.Server{Handler: mux}
	go func() { _ = srv.Serve(l) }()
	defer srv.Close()

	if !s.CheckCoreConnection(ctx, base) {
		t.Error("CheckCoreConnection() = false once the core is up")
	}
	if !s.CheckCoreConnection(ctx, "") {
		t.Error("CheckCoreConnection(\"\") did not fall back to the configured endpoint")
	}

	st, err = s.StopCore(ctx)
	if err != nil || st.Message != supervisor.MsgStopped {
		t.Errorf("StopCore() = %+v, %v", st, err)
	}
}

func TestCheckCoreConnectionNeverFails(t *testing.T) {
	s, _ := newSurface(t, "", visibility.NewBroadcaster(), nil)
	for _, url := range []string{"", "://", "http://127.0.0.1:1", "not a url"} {
		if s.CheckCoreConnection(context.Background(), url) {
			t.Errorf("CheckCoreConnection(%q) = true", url)
		}
	}
}

func TestWindowCommands(t *testing.T) {
	s, m := newSurface(t, "", visibility.NewBroadcaster(), nil)

	if err := s.MinimizeToTray(); err != nil {
		t.Fatal(err)
	}
	if m.State() != visibility.Hidden {
		t.Errorf("state = %s after MinimizeToTray", m.State())
	}
	if err := s.ShowFromTray(); err != nil {
		t.Fatal(err)
	}
	if m.State() != visibility.Visible || !m.Focused() {
		t.Errorf("state = %s focused = %v after ShowFromTray", m.State(), m.Focused())
	}

	change, err := s.CloseRequested()
	if err != nil {
		t.Fatal(err)
	}
	if !change.Effect.PreventClose || m.State() != visibility.Hidden {
		t.Errorf("CloseRequested() = %+v, state %s", change, m.State())
	}
}

func TestWindowCommandErrors(t *testing.T) {
	s, m := newSurface(t, "", failingWindow{}, nil)
	if err := s.MinimizeToTray(); err == nil {
		t.Error("MinimizeToTray() error = nil with failing window")
	}
	if m.State() != visibility.Visible {
		t.Errorf("state = %s, want unchanged", m.State())
	}
}

func TestShowNotification(t *testing.T) {
	n := &recordingNotifier{}
	s, _ := newSurface(t, "", visibility.NewBroadcaster(), n)

	if err := s.ShowNotification("Hello", "World"); err != nil {
		t.Fatal(err)
	}
	if n.title != "Hello" || n.body != "World" {
		t.Errorf("notified (%q, %q)", n.title, n.body)
	}

	n.err = &notify.NotificationError{Title: "Hello", Err: errors.New("denied")}
	err := s.ShowNotification("Hello", "World")
	var ne *notify.NotificationError
	if !errors.As(err, &ne) {
		t.Errorf("ShowNotification() error = %v, want *NotificationError", err)
	}
}

func TestCheckForUpdatesStub(t *testing.T) {
	s, _ := newSurface(t, "", visibility.NewBroadcaster(), nil)
	res, err := s.CheckForUpdates(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.HasUpdate || res.CurrentVersion != res.LatestVersion {
		t.Errorf("CheckForUpdates() = %+v, want no update", res)
	}
}

func TestStatus(t *testing.T) {
	s, _ := newSurface(t, "http://localhost:9090", visibility.NewBroadcaster(), nil)
	if _, err := s.StartCore(context.Background()); err != nil {
		t.Fatal(err)
	}
	st, err := s.Status(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.Mode != "managed" || !st.Core.Running || st.Core.PID != 4242 || st.Visibility != visibility.Visible {
		t.Errorf("Status() = %+v", st)
	}
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0m"},
		{-time.Second, "0m"},
		{59 * time.Second, "0m"},
		{12 * time.Minute, "12m"},
		{2*time.Hour + 34*time.Minute, "2h 34m"},
		{27 * time.Hour, "1d 3h"},
	}
	for _, tt := range tests {
		if got := FormatUptime(tt.d); got != tt.want {
			t.Errorf("FormatUptime(%s) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
