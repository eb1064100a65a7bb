package watcher

import (
	"os"
	"reflect"

	"github.com/prism-io/prism-shell/internal/models"
)

// Diff splits a settings change into fields applied live and fields that
// need a shell restart.
type Diff struct {
	Recovery        string   // new recovery policy, empty if unchanged
	RestartRequired []string // names of changed sections
}

// Compare returns what changed between old and next.
func Compare(old, next *models.Settings) Diff {
	var d Diff
	if old == nil || next == nil {
		return d
	}
	if old.Monitor.Recovery != next.Monitor.Recovery {
		d.Recovery = next.Monitor.Recovery
	}

	oldMon, nextMon := old.Monitor, next.Monitor
	oldMon.Recovery, nextMon.Recovery = "", ""

	sections := []struct {
		name      string
		old, next any
	}{
		{"core", old.Core, next.Core},
		{"monitor", oldMon, nextMon},
		{"updates", old.Updates, next.Updates},
		{"logs", old.Logs, next.Logs},
		{"telemetry", old.Telemetry, next.Telemetry},
		{"locale", old.Locale, next.Locale},
	}
	for _, s := range sections {
		if !reflect.DeepEqual(s.old, s.next) {
			d.RestartRequired = append(d.RestartRequired, s.name)
		}
	}
	return d
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
