package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

// InstallID returns the persistent anonymous id of this installation,
// creating it on first use.
func InstallID() (string, error) {
	path, err := globalFile(InstallIDFileName)
	if err != nil {
		return "", err
	}

	if data, err := os.ReadFile(path); err == nil {
		if id, err := uuid.Parse(strings.TrimSpace(string(data))); err == nil {
			return id.String(), nil
		}
	}

	if err := EnsureGlobalDir(); err != nil {
		return "", err
	}
	id := uuid.New().String()
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("failed to write install id: %w", err)
	}
	return id, nil
}
