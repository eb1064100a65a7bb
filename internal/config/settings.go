package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/prism-io/prism-shell/internal/models"
)

// EnvPrefix is the prefix for environment overrides, e.g. PRISM_SHELL_CORE_ENDPOINT.
const EnvPrefix = "PRISM_SHELL"

// LoadSettings loads settings from path (or ~/.prism-shell/settings.yaml when
// empty). Missing files yield defaults; environment variables override both.
func LoadSettings(path string) (*models.Settings, error) {
	if path == "" {
		p, err := GlobalSettingsFile()
		if err != nil {
			return nil, err
		}
		path = p
	}

	v := viper.New()
	setDefaults(v, models.NewSettings())

	v.SetConfigType("yaml")
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if FileExists(path) {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
		}
	}

	settings := &models.Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := Validate(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// SettingsPath resolves the settings path the same way LoadSettings does.
func SettingsPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return GlobalSettingsFile()
}

// Validate rejects settings the shell cannot run with.
func Validate(s *models.Settings) error {
	switch s.Core.Mode {
	case models.CoreModeManaged:
		if s.Core.Command == "" {
			return fmt.Errorf("core.command is required in %s mode", models.CoreModeManaged)
		}
	case models.CoreModeExternal:
		if s.Core.Endpoint == "" {
			return fmt.Errorf("core.endpoint is required in %s mode", models.CoreModeExternal)
		}
	default:
		return fmt.Errorf("invalid core.mode %q (want %q or %q)", s.Core.Mode, models.CoreModeManaged, models.CoreModeExternal)
	}

	switch s.Monitor.Recovery {
	case models.RecoveryNone, models.RecoveryNotify, models.RecoveryRestart:
	default:
		return fmt.Errorf("invalid monitor.recovery %q", s.Monitor.Recovery)
	}

	if s.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor.interval must be positive, got %s", s.Monitor.Interval)
	}
	if s.Monitor.ProbeTimeout <= 0 {
		return fmt.Errorf("monitor.probe_timeout must be positive, got %s", s.Monitor.ProbeTimeout)
	}
	return nil
}

func setDefaults(v *viper.Viper, d *models.Settings) {
	v.SetDefault("version", d.Version)

	v.SetDefault("core.mode", d.Core.Mode)
	v.SetDefault("core.endpoint", d.Core.Endpoint)
	v.SetDefault("core.health_path", d.Core.HealthPath)
	v.SetDefault("core.command", d.Core.Command)
	v.SetDefault("core.args", d.Core.Args)
	v.SetDefault("core.dir", d.Core.Dir)
	v.SetDefault("core.env", d.Core.Env)
	v.SetDefault("core.start_grace", d.Core.StartGrace)
	v.SetDefault("core.stop_timeout", d.Core.StopTimeout)

	v.SetDefault("monitor.interval", d.Monitor.Interval)
	v.SetDefault("monitor.probe_timeout", d.Monitor.ProbeTimeout)
	v.SetDefault("monitor.recovery", d.Monitor.Recovery)

	v.SetDefault("updates.feed_url", d.Updates.FeedURL)
	v.SetDefault("updates.check_on_startup", d.Updates.CheckOnStartup)

	v.SetDefault("logs.dir", d.Logs.Dir)
	v.SetDefault("logs.max_size_mb", d.Logs.MaxSizeMB)
	v.SetDefault("logs.max_backups", d.Logs.MaxBackups)
	v.SetDefault("logs.max_age_days", d.Logs.MaxAgeDays)
	v.SetDefault("logs.compress", d.Logs.Compress)

	v.SetDefault("telemetry.enabled", d.Telemetry.Enabled)
	v.SetDefault("telemetry.api_key", d.Telemetry.APIKey)
	v.SetDefault("telemetry.endpoint", d.Telemetry.Endpoint)

	v.SetDefault("locale", d.Locale)
}
