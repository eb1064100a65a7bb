package config

import (
	"os"
	"time"

	"github.com/prism-io/prism-shell/internal/models"
)

// LoadCoreInfo loads the managed core record from ~/.prism-shell/core.yaml.
// Returns nil if the file doesn't exist.
func LoadCoreInfo() (*models.CoreInfo, error) {
	path, err := GlobalCoreFile()
	if err != nil {
		return nil, err
	}
	return LoadYAMLOrNil[models.CoreInfo](path)
}

// RemoveCoreInfo removes the core.yaml file.
func RemoveCoreInfo() error {
	path, err := GlobalCoreFile()
	if err != nil {
		return err
	}
	return RemoveFile(path)
}

// CoreRecord persists the managed core's PID so prismctl and the next shell
// start can see it. It satisfies supervisor.Recorder.
type CoreRecord struct {
	Command string
}

// Save writes core.yaml for a freshly spawned core.
func (r CoreRecord) Save(pid int, startedAt time.Time) error {
	if err := EnsureGlobalDir(); err != nil {
		return err
	}
	path, err := GlobalCoreFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, &models.CoreInfo{
		Version:   1,
		PID:       pid,
		Command:   r.Command,
		ShellPID:  os.Getpid(),
		StartedAt: startedAt.UTC(),
	})
}

// Clear removes core.yaml once the core is confirmed stopped.
func (r CoreRecord) Clear() error {
	return RemoveCoreInfo()
}

// StaleCore returns the recorded core if its PID is still alive, which means a
// previous shell exited without stopping it. A dead record is removed.
func StaleCore() (*models.CoreInfo, error) {
	info, err := LoadCoreInfo()
	if err != nil || info == nil {
		return nil, err
	}
	if !ProcessAlive(info.PID) {
		_ = RemoveCoreInfo()
		return nil, nil
	}
	return info, nil
}
