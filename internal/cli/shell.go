package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/prism-io/prism-shell/internal/config"
)

const shellBinary = "prism-shell"

// EnsureShell makes sure the shell is running, starting it if necessary.
func EnsureShell(foreground bool) error {
	running, info, err := config.IsShellRunning()
	if err != nil {
		return fmt.Errorf("failed to check shell status: %w", err)
	}

	if running {
		return nil
	}

	// Clean up stale shell info if it exists
	if info != nil {
		_ = config.RemoveShellInfo()
	}

	return startShell(foreground)
}

// startShell starts the shell process in the background.
func startShell(foreground bool) error {
	shellPath, err := findShellBinary()
	if err != nil {
		return err
	}

	var args []string
	if foreground {
		args = append(args, "--foreground")
	}
	cmd := exec.Command(shellPath, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start shell: %w", err)
	}
	// The shell outlives this process.
	_ = cmd.Process.Release()

	// Wait for the shell to be ready (max 5 seconds)
	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		running, _, err := config.IsShellRunning()
		if err == nil && running {
			return nil
		}
	}

	return fmt.Errorf("shell failed to start within timeout")
}

// findShellBinary locates the prism-shell binary.
func findShellBinary() (string, error) {
	// Try PATH first
	path, err := exec.LookPath(shellBinary)
	if err == nil {
		return path, nil
	}

	// Try next to the current executable
	execPath, err := os.Executable()
	if err == nil {
		candidate := filepath.Join(filepath.Dir(execPath), shellBinary+filepath.Ext(execPath))
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	// Try build directory
	if _, err := os.Stat(filepath.Join("build", shellBinary)); err == nil {
		return filepath.Join("build", shellBinary), nil
	}

	return "", fmt.Errorf("%s not found. Install or build it first", shellBinary)
}
