package rpc

import (
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/prism-io/prism-shell/internal/shell/probe"
	"github.com/prism-io/prism-shell/internal/shell/supervisor"
	"github.com/prism-io/prism-shell/internal/shell/surface"
	"github.com/prism-io/prism-shell/internal/shell/visibility"
	"github.com/prism-io/prism-shell/internal/updater"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

// CoreStatus is the wire form of a start/stop result.
func CoreStatus(st supervisor.Status) *structpb.Struct {
	return NewStruct(map[string]any{
		"status":     st.Message,
		"running":    st.Running,
		"pid":        st.PID,
		"changed":    st.Changed,
		"started_at": formatTime(st.StartedAt),
	})
}

// ParseCoreStatus decodes CoreStatus.
func ParseCoreStatus(s *structpb.Struct) supervisor.Status {
	return supervisor.Status{
		Message:   GetString(s, "status"),
		Running:   GetBool(s, "running"),
		PID:       GetInt(s, "pid"),
		Changed:   GetBool(s, "changed"),
		StartedAt: parseTime(GetString(s, "started_at")),
	}
}

// HealthReport is the wire form of a health check.
func HealthReport(r supervisor.Report) *structpb.Struct {
	fields := map[string]any{
		"health":     r.Health.String(),
		"managed":    r.Managed,
		"running":    r.Running,
		"pid":        r.PID,
		"detail":     r.Detail,
		"checked_at": formatTime(r.CheckedAt),
	}
	if r.Probe != nil {
		fields["latency_ms"] = r.Probe.Latency.Milliseconds()
		fields["core_version"] = r.Probe.Version
	}
	return NewStruct(fields)
}

// ParseHealthReport decodes HealthReport. Probe details are not restored.
func ParseHealthReport(s *structpb.Struct) supervisor.Report {
	return supervisor.Report{
		Health:    parseHealth(GetString(s, "health")),
		Managed:   GetBool(s, "managed"),
		Running:   GetBool(s, "running"),
		PID:       GetInt(s, "pid"),
		Detail:    GetString(s, "detail"),
		CheckedAt: parseTime(GetString(s, "checked_at")),
	}
}

func parseHealth(s string) probe.Health {
	switch s {
	case probe.HealthHealthy.String():
		return probe.HealthHealthy
	case probe.HealthUnreachable.String():
		return probe.HealthUnreachable
	default:
		return probe.HealthUnknown
	}
}

// SystemInfo is the wire form of surface.SystemInfo.
func SystemInfo(info surface.SystemInfo) *structpb.Struct {
	return NewStruct(map[string]any{
		"os":         info.OS,
		"arch":       info.Arch,
		"version":    info.Version,
		"uptime":     info.Uptime,
		"hostname":   info.Hostname,
		"go_version": info.GoVersion,
		"commit":     info.Commit,
	})
}

// ParseSystemInfo decodes SystemInfo.
func ParseSystemInfo(s *structpb.Struct) surface.SystemInfo {
	return surface.SystemInfo{
		OS:        GetString(s, "os"),
		Arch:      GetString(s, "arch"),
		Version:   GetString(s, "version"),
		Uptime:    GetString(s, "uptime"),
		Hostname:  GetString(s, "hostname"),
		GoVersion: GetString(s, "go_version"),
		Commit:    GetString(s, "commit"),
	}
}

// UpdateResult is the wire form of an update check.
func UpdateResult(r updater.Result) *structpb.Struct {
	return NewStruct(map[string]any{
		"has_update":      r.HasUpdate,
		"current_version": r.CurrentVersion,
		"latest_version":  r.LatestVersion,
		"release_url":     r.ReleaseURL,
	})
}

// ParseUpdateResult decodes UpdateResult.
func ParseUpdateResult(s *structpb.Struct) updater.Result {
	return updater.Result{
		HasUpdate:      GetBool(s, "has_update"),
		CurrentVersion: GetString(s, "current_version"),
		LatestVersion:  GetString(s, "latest_version"),
		ReleaseURL:     GetString(s, "release_url"),
	}
}

// VisibilityUpdate is the wire form of a window update.
func VisibilityUpdate(u visibility.Update) *structpb.Struct {
	return NewStruct(map[string]any{
		"visibility": u.State.String(),
		"focus":      u.Focus,
	})
}

// ParseVisibilityUpdate decodes VisibilityUpdate.
func ParseVisibilityUpdate(s *structpb.Struct) visibility.Update {
	return visibility.Update{
		State: ParseState(GetString(s, "visibility")),
		Focus: GetBool(s, "focus"),
	}
}

// ParseState maps a state name back to a visibility.State.
func ParseState(name string) visibility.State {
	switch name {
	case visibility.Hidden.String():
		return visibility.Hidden
	case visibility.Terminated.String():
		return visibility.Terminated
	default:
		return visibility.Visible
	}
}

// WindowChange is the wire form of an applied window command.
func WindowChange(c visibility.Change) *structpb.Struct {
	return NewStruct(map[string]any{
		"visibility":    c.To.String(),
		"previous":      c.From.String(),
		"focused":       c.Focused,
		"prevent_close": c.Effect.PreventClose,
	})
}

// ShellStatus is the wire form of surface.Status.
func ShellStatus(st surface.Status) *structpb.Struct {
	fields := map[string]any{
		"version":    st.Version,
		"uptime":     st.Uptime,
		"mode":       st.Mode,
		"endpoint":   st.Endpoint,
		"visibility": st.Visibility.String(),
		"focused":    st.Focused,
		"core":       CoreStatus(st.Core).AsMap(),
	}
	if st.Health != nil {
		fields["health"] = HealthReport(*st.Health).AsMap()
	}
	return NewStruct(fields)
}

// ParseShellStatus decodes ShellStatus.
func ParseShellStatus(s *structpb.Struct) surface.Status {
	st := surface.Status{
		Version:    GetString(s, "version"),
		Uptime:     GetString(s, "uptime"),
		Mode:       GetString(s, "mode"),
		Endpoint:   GetString(s, "endpoint"),
		Visibility: ParseState(GetString(s, "visibility")),
		Focused:    GetBool(s, "focused"),
		Core:       ParseCoreStatus(GetStruct(s, "core")),
	}
	if h := GetStruct(s, "health"); h != nil {
		r := ParseHealthReport(h)
		st.Health = &r
	}
	return st
}
