package shell

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prism-io/prism-shell/internal/config"
	"github.com/prism-io/prism-shell/internal/models"
	"github.com/prism-io/prism-shell/internal/shell/notify"
	"github.com/prism-io/prism-shell/internal/shell/rpc"
	"github.com/prism-io/prism-shell/internal/shell/supervisor"
	"github.com/prism-io/prism-shell/internal/shell/visibility"
)

func externalSettings(endpoint string) *models.Settings {
	s := models.NewSettings()
	s.Core.Mode = models.CoreModeExternal
	s.Core.Endpoint = endpoint
	s.Monitor.Recovery = models.RecoveryNone
	s.Updates.CheckOnStartup = false
	return s
}

func startApp(t *testing.T, s *models.Settings) (*App, *rpc.Client) {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)

	app, err := New(s, filepath.Join(home, config.SettingsFileName), WithNotifier(notify.Discard{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := app.Start(0, ModeForeground); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(app.Shutdown)

	client, err := rpc.Dial(fmt.Sprintf("127.0.0.1:%d", app.Port()))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return app, client
}

func TestExternalCoreShell(t *testing.T) {
	core := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/health" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok","version":"3.1.0"}`))
	}))
	defer core.Close()

	app, client := startApp(t, externalSettings(core.URL))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	info, err := config.LoadShellInfo()
	if err != nil || info == nil {
		t.Fatalf("LoadShellInfo() = %v, %v", info, err)
	}
	if info.Port != app.Port() || info.PID != os.Getpid() || info.Mode != ModeForeground {
		t.Errorf("shell.yaml = %+v", info)
	}

	st, err := client.StartCore(ctx)
	if err != nil {
		t.Fatalf("StartCore() error = %v", err)
	}
	if st.Message != supervisor.ErrExternal.Error() || st.Running {
		t.Errorf("StartCore() in external mode = %+v", st)
	}

	ok, err := client.CheckCoreConnection(ctx, "")
	if err != nil || !ok {
		t.Errorf("CheckCoreConnection(\"\") = %v, %v", ok, err)
	}

	report, err := client.CoreHealth(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if report.Managed || report.Health.String() != "healthy" {
		t.Errorf("CoreHealth() = %+v", report)
	}
}

func TestCloseRequestKeepsShellRunning(t *testing.T) {
	app, client := startApp(t, externalSettings("http://127.0.0.1:1"))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	quit := make(chan struct{})
	app.SetQuit(func() { close(quit) })

	for i := 0; i < 2; i++ {
		state, err := client.CloseRequested(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if state != visibility.Hidden {
			t.Errorf("CloseRequested() = %s, want hidden", state)
		}
	}
	select {
	case <-quit:
		t.Fatal("close request quit the shell")
	default:
	}

	if _, err := app.Dispatch(visibility.EventTrayClick); err != nil {
		t.Fatal(err)
	}
	if _, err := app.Dispatch(visibility.EventMenuQuit); err != nil {
		t.Fatal(err)
	}
	select {
	case <-quit:
	case <-time.After(time.Second):
		t.Fatal("tray quit did not reach the quit callback")
	}
}

func TestShutdownRemovesShellInfo(t *testing.T) {
	app, _ := startApp(t, externalSettings("http://127.0.0.1:1"))
	app.Shutdown()
	app.Shutdown()

	info, err := config.LoadShellInfo()
	if err != nil {
		t.Fatal(err)
	}
	if info != nil {
		t.Errorf("shell.yaml still present after Shutdown: %+v", info)
	}
}

func TestSettingsReloadSwapsRecovery(t *testing.T) {
	app, _ := startApp(t, externalSettings("http://127.0.0.1:1"))

	yaml := "core:\n  mode: external\n  endpoint: http://127.0.0.1:1\nmonitor:\n  recovery: notify\n"
	if err := os.WriteFile(app.settingsPath, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if app.monitor.Policy() == models.RecoveryNotify {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Errorf("recovery policy = %s after reload, want notify", app.monitor.Policy())
}
