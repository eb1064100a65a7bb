// Package buildinfo holds version information injected at build time via ldflags.
package buildinfo

// AppID identifies the shell to the OS notification and tray subsystems.
const AppID = "com.prism.desktop"

var (
	Version    = "dev"
	Codename   = "unknown"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)
