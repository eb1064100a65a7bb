package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// Handle is a live reference to a spawned core process.
type Handle interface {
	PID() int
	// Alive reports whether the process has not exited yet.
	Alive() bool
	// Done is closed when the process exits.
	Done() <-chan struct{}
	// ExitErr returns the wait error once Done is closed.
	ExitErr() error
	// Terminate asks the process to exit, escalating to a kill after grace.
	Terminate(ctx context.Context, grace time.Duration) error
}

// processHandle wraps an *exec.Cmd started by ExecLauncher.
type processHandle struct {
	cmd     *exec.Cmd
	done    chan struct{}
	exitErr error
}

func newProcessHandle(cmd *exec.Cmd) *processHandle {
	h := &processHandle{cmd: cmd, done: make(chan struct{})}
	go func() {
		h.exitErr = cmd.Wait()
		close(h.done)
	}()
	return h
}

func (h *processHandle) PID() int {
	if h.cmd.Process == nil {
		return 0
	}
	return h.cmd.Process.Pid
}

func (h *processHandle) Alive() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

func (h *processHandle) Done() <-chan struct{} {
	return h.done
}

func (h *processHandle) ExitErr() error {
	select {
	case <-h.done:
		return h.exitErr
	default:
		return nil
	}
}

// Terminate sends SIGTERM (a kill on Windows), waits up to grace, then kills.
func (h *processHandle) Terminate(ctx context.Context, grace time.Duration) error {
	if !h.Alive() {
		return nil
	}
	if grace <= 0 {
		grace = 5 * time.Second
	}

	if err := terminateProcess(h.cmd.Process); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			<-h.done
			return nil
		}
		return fmt.Errorf("send stop signal: %w", err)
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-h.done:
		return nil
	case <-timer.C:
	case <-ctx.Done():
	}

	// Force kill
	if err := h.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill: %w", err)
	}

	select {
	case <-h.done:
		return nil
	case <-time.After(grace):
		return fmt.Errorf("process %d did not exit after kill", h.PID())
	}
}
