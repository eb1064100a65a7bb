package config

import (
	"os"
	"syscall"

	"github.com/prism-io/prism-shell/internal/models"
)

// LoadShellInfo loads the shell connection info from ~/.prism-shell/shell.yaml.
// Returns nil if the file doesn't exist.
func LoadShellInfo() (*models.ShellInfo, error) {
	path, err := GlobalShellFile()
	if err != nil {
		return nil, err
	}
	return LoadYAMLOrNil[models.ShellInfo](path)
}

// SaveShellInfo saves the shell connection info to ~/.prism-shell/shell.yaml.
func SaveShellInfo(info *models.ShellInfo) error {
	if err := EnsureGlobalDir(); err != nil {
		return err
	}

	path, err := GlobalShellFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, info)
}

// RemoveShellInfo removes the shell.yaml file.
func RemoveShellInfo() error {
	path, err := GlobalShellFile()
	if err != nil {
		return err
	}
	return RemoveFile(path)
}

// IsShellRunning checks if the shell process is still running.
// Returns true if shell.yaml exists and the PID is alive.
func IsShellRunning() (bool, *models.ShellInfo, error) {
	info, err := LoadShellInfo()
	if err != nil {
		return false, nil, err
	}
	if info == nil {
		return false, nil, nil
	}

	if !ProcessAlive(info.PID) {
		// Process doesn't exist, clean up stale file
		_ = RemoveShellInfo()
		return false, info, nil
	}

	return true, info, nil
}

// ProcessAlive reports whether a process with the given PID exists, using signal 0.
func ProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
