// Package config handles settings loading, record files, and path management.
package config

import (
	"os"
	"path/filepath"
)

const (
	// GlobalDirName is the name of the global shell directory.
	GlobalDirName = ".prism-shell"

	// LogsDirName is the name of the logs directory.
	LogsDirName = "logs"

	// EnvHome overrides the global directory location.
	EnvHome = "PRISM_SHELL_HOME"
)

// File names
const (
	ShellFileName     = "shell.yaml"
	CoreFileName      = "core.yaml"
	SettingsFileName  = "settings.yaml"
	InstallIDFileName = "install_id"
	ShellLogFileName  = "prism-shell.log"
)

// GlobalDir returns the path to the global shell directory (~/.prism-shell/).
func GlobalDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, GlobalDirName), nil
}

func globalFile(name string) (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// GlobalShellFile returns the path to the shell.yaml file.
func GlobalShellFile() (string, error) {
	return globalFile(ShellFileName)
}

// GlobalCoreFile returns the path to the core.yaml file.
func GlobalCoreFile() (string, error) {
	return globalFile(CoreFileName)
}

// GlobalSettingsFile returns the path to the settings.yaml file.
func GlobalSettingsFile() (string, error) {
	return globalFile(SettingsFileName)
}

// GlobalLogsDir returns the path to the logs directory.
func GlobalLogsDir() (string, error) {
	return globalFile(LogsDirName)
}

// EnsureGlobalDir creates the global shell directory if it doesn't exist.
func EnsureGlobalDir() error {
	dir, err := GlobalDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// LogsDir returns the configured logs directory, falling back to the global one.
func LogsDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	return GlobalLogsDir()
}
