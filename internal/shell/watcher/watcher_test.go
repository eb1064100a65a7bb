package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/prism-io/prism-shell/internal/models"
)

func waitEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case ev := <-w.Events():
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("no watcher event")
	}
	return Event{}
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(path, func(string) (*models.Settings, error) {
		s := models.NewSettings()
		s.Monitor.Recovery = models.RecoveryRestart
		return s, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("b"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	ev := waitEvent(t, w)
	if ev.Type != EventSettingsChanged || ev.Settings.Monitor.Recovery != models.RecoveryRestart {
		t.Errorf("event = %+v", ev)
	}

	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	deadline := time.After(300 * time.Millisecond)
	for {
		select {
		case ev := <-w.Events():
			if ev.Path != path {
				t.Errorf("unexpected event for unrelated file: %+v", ev)
			}
		case <-deadline:
			return
		}
	}
}

func TestWatcherReportsInvalidSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	w, err := New(path, func(string) (*models.Settings, error) {
		return nil, errors.New("unknown core mode")
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("core: {mode: bogus}"), 0o644); err != nil {
		t.Fatal(err)
	}
	ev := waitEvent(t, w)
	if ev.Type != EventSettingsInvalid || ev.Err == nil {
		t.Errorf("event = %+v", ev)
	}
}

func TestCompare(t *testing.T) {
	base := models.NewSettings()

	recovery := *base
	recovery.Monitor.Recovery = models.RecoveryNone

	endpoint := *base
	endpoint.Core.Endpoint = "http://localhost:9999"
	endpoint.Monitor.Recovery = models.RecoveryRestart

	interval := *base
	interval.Monitor.Interval = time.Minute

	tests := []struct {
		name         string
		next         *models.Settings
		wantRecovery string
		wantRestart  []string
	}{
		{"unchanged", base, "", nil},
		{"recovery only", &recovery, models.RecoveryNone, nil},
		{"endpoint and recovery", &endpoint, models.RecoveryRestart, []string{"core"}},
		{"interval", &interval, "", []string{"monitor"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Compare(base, tt.next)
			if d.Recovery != tt.wantRecovery {
				t.Errorf("Recovery = %q, want %q", d.Recovery, tt.wantRecovery)
			}
			if !reflect.DeepEqual(d.RestartRequired, tt.wantRestart) {
				t.Errorf("RestartRequired = %v, want %v", d.RestartRequired, tt.wantRestart)
			}
		})
	}
}
