package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/prism-io/prism-shell/internal/shell/notify"
	"github.com/prism-io/prism-shell/internal/shell/probe"
	"github.com/prism-io/prism-shell/internal/shell/rpc"
	"github.com/prism-io/prism-shell/internal/shell/supervisor"
	"github.com/prism-io/prism-shell/internal/shell/surface"
	"github.com/prism-io/prism-shell/internal/shell/visibility"
)

type stubHandle struct {
	once sync.Once
	done chan struct{}
}

func (h *stubHandle) PID() int              { return 7 }
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

type harness struct {
	srv     *Server
	client  *rpc.Client
	machine *visibility.Machine
}

func startServer(t *testing.T, launch supervisor.LaunchFunc, n notify.Notifier) *harness {
	t.Helper()
	if launch == nil {
		launch = func(context.Context) (supervisor.Handle, error) {
			return &stubHandle{done: make(chan struct{})}, nil
		}
	}
	prober := probe.New(probe.WithTimeout(300 * time.Millisecond))
	sup := supervisor.New(supervisor.Config{Managed: true, Command: "prism-core"}, launch, prober)
	windows := visibility.NewBroadcaster()
	machine := visibility.NewMachine(windows, nil)
	svc := surface.New(surface.Deps{Core: sup, Conn: prober, Window: machine, Notifier: n})

	srv, err := New(0, svc, windows, WithGatherer(prometheus.NewRegistry()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	go func() { _ = srv.Serve() }()
	t.Cleanup(srv.Stop)

	client, err := rpc.Dial(fmt.Sprintf("127.0.0.1:%d", srv.Port()))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return &harness{srv: srv, client: client, machine: machine}
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestCoreLifecycleOverGRPC(t *testing.T) {
	h := startServer(t, nil, nil)
	ctx := testContext(t)

	st, err := h.client.StartCore(ctx)
	if err != nil {
		t.Fatalf("StartCore() error = %v", err)
	}
	if !st.Running || st.PID != 7 || st.Message != supervisor.MsgStarted {
		t.Errorf("StartCore() = %+v", st)
	}

	st, err = h.client.StartCore(ctx)
	if err != nil || st.Message != supervisor.MsgAlreadyRunning {
		t.Errorf("second StartCore() = %+v, %v", st, err)
	}

	report, err := h.client.CoreHealth(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if report.Health != probe.HealthHealthy || report.PID != 7 {
		t.Errorf("CoreHealth() = %+v", report)
	}

	snap, err := h.client.GetStatus(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Mode != "managed" || !snap.Core.Running || snap.Visibility != visibility.Visible {
		t.Errorf("GetStatus() = %+v", snap)
	}

	st, err = h.client.StopCore(ctx)
	if err != nil || st.Message != supervisor.MsgStopped {
		t.Errorf("StopCore() = %+v, %v", st, err)
	}
}

func TestSpawnErrorCode(t *testing.T) {
	h := startServer(t, func(context.Context) (supervisor.Handle, error) {
		return nil, errors.New("executable file not found")
	}, nil)

	_, err := h.client.StartCore(testContext(t))
	if status.Code(err) != codes.FailedPrecondition {
		t.Fatalf("StartCore() code = %s, want FailedPrecondition", status.Code(err))
	}
	if !strings.Contains(status.Convert(err).Message(), "prism-core") {
		t.Errorf("message %q does not name the command", status.Convert(err).Message())
	}
}

func TestSystemInfoAndUpdates(t *testing.T) {
	h := startServer(t, nil, nil)
	ctx := testContext(t)

	info, err := h.client.GetSystemInfo(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if info.OS == "" || info.Arch == "" || info.Version == "" {
		t.Errorf("GetSystemInfo() = %+v", info)
	}

	res, err := h.client.CheckForUpdates(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.HasUpdate {
		t.Errorf("CheckForUpdates() = %+v, want no update", res)
	}
}

func TestCheckCoreConnection(t *testing.T) {
	h := startServer(t, nil, nil)
	ctx := testContext(t)

	ok, err := h.client.CheckCoreConnection(ctx, "http://127.0.0.1:1")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("CheckCoreConnection() = true for a closed port")
	}
}

func TestShowNotificationCodes(t *testing.T) {
	var sent []string
	n := notify.NewDesktop(func(title, body string) error {
		sent = append(sent, title)
		return nil
	})
	h := startServer(t, nil, n)
	ctx := testContext(t)

	if err := h.client.ShowNotification(ctx, "Hello", "World"); err != nil {
		t.Fatalf("ShowNotification() error = %v", err)
	}
	err := h.client.ShowNotification(ctx, "", "no title")
	if status.Code(err) != codes.Unavailable {
		t.Errorf("ShowNotification(empty) code = %s, want Unavailable", status.Code(err))
	}
	if len(sent) != 1 {
		t.Errorf("sent %d notifications, want 1", len(sent))
	}
}

func TestWindowCommandsAndStream(t *testing.T) {
	h := startServer(t, nil, nil)
	ctx := testContext(t)

	updates, err := h.client.WatchVisibility(ctx)
	if err != nil {
		t.Fatal(err)
	}
	next := func() visibility.Update {
		t.Helper()
		select {
		case u, ok := <-updates:
			if !ok {
				t.Fatal("visibility stream closed")
			}
			return u
		case <-ctx.Done():
			t.Fatal("timed out waiting for visibility update")
		}
		return visibility.Update{}
	}

	if u := next(); u.State != visibility.Visible {
		t.Errorf("initial update = %+v", u)
	}

	state, err := h.client.CloseRequested(ctx)
	if err != nil || state != visibility.Hidden {
		t.Fatalf("CloseRequested() = %s, %v", state, err)
	}
	if u := next(); u.State != visibility.Hidden {
		t.Errorf("update after close = %+v", u)
	}
	if h.machine.State() == visibility.Terminated {
		t.Fatal("close request terminated the shell")
	}

	state, err = h.client.ShowFromTray(ctx)
	if err != nil || state != visibility.Visible {
		t.Fatalf("ShowFromTray() = %s, %v", state, err)
	}

	state, err = h.client.MinimizeToTray(ctx)
	if err != nil || state != visibility.Hidden {
		t.Fatalf("MinimizeToTray() = %s, %v", state, err)
	}
}

func TestStopEndsStreams(t *testing.T) {
	h := startServer(t, nil, nil)
	ctx := testContext(t)

	updates, err := h.client.WatchVisibility(ctx)
	if err != nil {
		t.Fatal(err)
	}
	<-updates

	h.srv.Stop()
	select {
	case _, ok := <-updates:
		if ok {
			for range updates {
			}
		}
	case <-ctx.Done():
		t.Fatal("stream still open after Stop")
	}
}

func TestHealthServiceAndHTTPRoutes(t *testing.T) {
	h := startServer(t, nil, nil)
	ctx := testContext(t)
	addr := fmt.Sprintf("127.0.0.1:%d", h.srv.Port())

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: rpc.ServiceName})
	if err != nil {
		t.Fatalf("health Check() error = %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("health status = %s", resp.GetStatus())
	}

	tests := []struct {
		path string
		code int
		body string
	}{
		{"/healthz", http.StatusOK, "ok"},
		{"/metrics", http.StatusOK, ""},
		{"/nope", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			res, err := http.Get("http://" + addr + tt.path)
			if err != nil {
				t.Fatal(err)
			}
			defer res.Body.Close()
			body, _ := io.ReadAll(res.Body)
			if res.StatusCode != tt.code {
				t.Errorf("GET %s = %d, want %d", tt.path, res.StatusCode, tt.code)
			}
			if tt.body != "" && !strings.Contains(string(body), tt.body) {
				t.Errorf("GET %s body = %q", tt.path, body)
			}
		})
	}
}

func TestGRPCWebPreflight(t *testing.T) {
	h := startServer(t, nil, nil)
	url := fmt.Sprintf("http://127.0.0.1:%d%s", h.srv.Port(), rpc.FullMethod(rpc.MethodGetSystemInfo))

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"http://localhost:1420", true},
		{"tauri://localhost", true},
		{"https://evil.example", false},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodOptions, url, nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", "POST")
			req.Header.Set("Access-Control-Request-Headers", "x-grpc-web,content-type")

			res, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			res.Body.Close()

			got := res.Header.Get("Access-Control-Allow-Origin") != ""
			if got != tt.allowed {
				t.Errorf("preflight from %s allowed = %v, want %v", tt.origin, got, tt.allowed)
			}
		})
	}
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{&supervisor.SpawnError{Command: "x", Err: errors.New("missing")}, codes.FailedPrecondition},
		{fmt.Errorf("wrapped: %w", &supervisor.TerminationError{PID: 1, Err: errors.New("eperm")}), codes.Aborted},
		{&notify.NotificationError{Title: "t", Err: errors.New("denied")}, codes.Unavailable},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{errors.New("other"), codes.Internal},
	}
	for _, tt := range tests {
		if got := status.Code(toStatus(tt.err)); got != tt.want {
			t.Errorf("toStatus(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
	if toStatus(nil) != nil {
		t.Error("toStatus(nil) != nil")
	}
}

func TestAllowOrigin(t *testing.T) {
	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"tauri://localhost", true},
		{"http://127.0.0.1:5173", true},
		{"https://tauri.localhost", true},
		{"http://192.168.1.5", false},
		{"ftp://localhost", false},
	}
	for _, tt := range tests {
		if got := allowOrigin(tt.origin); got != tt.want {
			t.Errorf("allowOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
}
