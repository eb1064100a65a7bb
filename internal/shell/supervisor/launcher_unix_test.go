//go:build !windows

package supervisor

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

func TestExecLauncherStartStop(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}
	stdout, stderr := LogFiles{Dir: t.TempDir()}.Writers("core")
	defer stdout.Close()
	defer stderr.Close()

	l := &ExecLauncher{Command: "sleep", Args: []string{"30"}, Stdout: stdout, Stderr: stderr}
	s := New(Config{Managed: true, Command: "sleep", StopTimeout: 2 * time.Second}, l, nil)
	ctx := context.Background()

	st, err := s.Start(ctx)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if st.PID <= 0 {
		t.Fatalf("PID = %d", st.PID)
	}

	st, err = s.Stop(ctx)
	if err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if st.Message != MsgStopped {
		t.Errorf("Stop() message = %q", st.Message)
	}
}

func TestExecLauncherMissingBinary(t *testing.T) {
	l := &ExecLauncher{Command: filepath.Join(t.TempDir(), "no-such-core")}
	s := New(Config{Managed: true, Command: "no-such-core"}, l, nil)

	_, err := s.Start(context.Background())
	var spawnErr *SpawnError
	if !errors.As(err, &spawnErr) {
		t.Fatalf("Start() error = %v, want *SpawnError", err)
	}
}
