package models

import "time"

// ShellInfo represents the running shell's connection information.
// This corresponds to ~/.prism-shell/shell.yaml.
type ShellInfo struct {
	Version   int       `yaml:"version"`
	Host      string    `yaml:"host"`
	Port      int       `yaml:"port"`
	PID       int       `yaml:"pid"`
	Mode      string    `yaml:"mode"` // "tray" | "foreground"
	StartedAt time.Time `yaml:"started_at"`
}

// NewShellInfo creates a new shell info with current values.
func NewShellInfo(host string, port, pid int, mode string) *ShellInfo {
	return &ShellInfo{
		Version:   1,
		Host:      host,
		Port:      port,
		PID:       pid,
		Mode:      mode,
		StartedAt: time.Now().UTC(),
	}
}

// CoreInfo records the core process spawned by the shell.
// This corresponds to ~/.prism-shell/core.yaml.
type CoreInfo struct {
	Version   int       `yaml:"version"`
	PID       int       `yaml:"pid"`
	Command   string    `yaml:"command"`
	ShellPID  int       `yaml:"shell_pid"`
	StartedAt time.Time `yaml:"started_at"`
}
