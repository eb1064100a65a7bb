// Package models defines the persisted records and settings of the shell.
package models

import "time"

// Core deployment modes.
const (
	CoreModeManaged  = "managed"
	CoreModeExternal = "external"
)

// Recovery policies applied by the background monitor.
const (
	RecoveryNone    = "none"
	RecoveryNotify  = "notify"
	RecoveryRestart = "restart"
)

// CoreConfig describes how the core service is reached and, in managed mode, launched.
type CoreConfig struct {
	Mode        string        `yaml:"mode" mapstructure:"mode"` // "managed" | "external"
	Endpoint    string        `yaml:"endpoint" mapstructure:"endpoint"`
	HealthPath  string        `yaml:"health_path" mapstructure:"health_path"`
	Command     string        `yaml:"command" mapstructure:"command"`
	Args        []string      `yaml:"args" mapstructure:"args"`
	Dir         string        `yaml:"dir" mapstructure:"dir"`
	Env         []string      `yaml:"env" mapstructure:"env"`
	StartGrace  time.Duration `yaml:"start_grace" mapstructure:"start_grace"`
	StopTimeout time.Duration `yaml:"stop_timeout" mapstructure:"stop_timeout"`
}

// MonitorConfig holds settings for the background health-check loop.
type MonitorConfig struct {
	Interval     time.Duration `yaml:"interval" mapstructure:"interval"`
	ProbeTimeout time.Duration `yaml:"probe_timeout" mapstructure:"probe_timeout"`
	Recovery     string        `yaml:"recovery" mapstructure:"recovery"` // "none" | "notify" | "restart"
}

// UpdatesConfig holds settings for update checking.
type UpdatesConfig struct {
	FeedURL        string `yaml:"feed_url" mapstructure:"feed_url"`
	CheckOnStartup bool   `yaml:"check_on_startup" mapstructure:"check_on_startup"`
}

// LogsConfig holds rotation settings for the shell and core log files.
type LogsConfig struct {
	Dir        string `yaml:"dir" mapstructure:"dir"`
	MaxSizeMB  int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
}

// TelemetryConfig holds opt-in usage event settings.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	APIKey   string `yaml:"api_key" mapstructure:"api_key"`
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
}

// Settings represents global shell settings.
// This corresponds to ~/.prism-shell/settings.yaml.
type Settings struct {
	Version   int             `yaml:"version" mapstructure:"version"`
	Core      CoreConfig      `yaml:"core" mapstructure:"core"`
	Monitor   MonitorConfig   `yaml:"monitor" mapstructure:"monitor"`
	Updates   UpdatesConfig   `yaml:"updates" mapstructure:"updates"`
	Logs      LogsConfig      `yaml:"logs" mapstructure:"logs"`
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
	Locale    string          `yaml:"locale" mapstructure:"locale"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version: 1,
		Core: CoreConfig{
			Mode:        CoreModeManaged,
			Endpoint:    "http://localhost:9090",
			HealthPath:  "/api/v1/health",
			Command:     "prism-core",
			StopTimeout: 5 * time.Second,
		},
		Monitor: MonitorConfig{
			Interval:     30 * time.Second,
			ProbeTimeout: 5 * time.Second,
			Recovery:     RecoveryNotify,
		},
		Updates: UpdatesConfig{
			CheckOnStartup: true,
		},
		Logs: LogsConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}
}

// IsManaged reports whether the shell owns the core process.
func (c CoreConfig) IsManaged() bool {
	return c.Mode != CoreModeExternal
}
