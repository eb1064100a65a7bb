// Package cmd implements the prism-shell command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	lj "gopkg.in/natefinch/lumberjack.v2"

	"github.com/prism-io/prism-shell/internal/config"
	"github.com/prism-io/prism-shell/internal/models"
	"github.com/prism-io/prism-shell/internal/shell"
	"github.com/prism-io/prism-shell/internal/shell/tray"
)

var (
	foreground   bool
	port         int
	settingsFile string
)

var rootCmd = &cobra.Command{
	Use:          "prism-shell",
	Short:        "Prism desktop host shell",
	Long:         "prism-shell supervises the Prism core service, keeps the app alive in the system tray, and serves the UI's command surface.",
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.Flags().BoolVar(&foreground, "foreground", false, "Run in foreground (no system tray)")
	rootCmd.Flags().IntVar(&port, "port", 0, "Port to listen on (0 for dynamic allocation)")
	rootCmd.Flags().StringVar(&settingsFile, "config", "", "Settings file (default ~/.prism-shell/settings.yaml)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func run() error {
	log.SetPrefix("[prism-shell] ")
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	// Ensure global directory exists
	if err := config.EnsureGlobalDir(); err != nil {
		return fmt.Errorf("failed to create global directory: %w", err)
	}

	settingsPath, err := config.SettingsPath(settingsFile)
	if err != nil {
		return err
	}
	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		return err
	}
	if closer := setupLogging(settings.Logs); closer != nil {
		defer closer.Close()
	}

	// Check if the shell is already running
	running, info, err := config.IsShellRunning()
	if err != nil {
		return fmt.Errorf("failed to check shell status: %w", err)
	}
	if running {
		return fmt.Errorf("shell already running on port %d (PID %d)", info.Port, info.PID)
	}

	app, err := shell.New(settings, settingsPath)
	if err != nil {
		return err
	}

	if foreground {
		log.Println("Running in foreground mode (no system tray)")
		return runForeground(app)
	}
	log.Println("Running in background mode (with system tray)")
	runWithTray(app)
	return nil
}

// setupLogging tees the standard logger into a rotating file.
func setupLogging(cfg models.LogsConfig) io.Closer {
	dir, err := config.LogsDir(cfg.Dir)
	if err != nil {
		log.Printf("Logging to stderr only: %v", err)
		return nil
	}
	out := &lj.Logger{
		Filename:   filepath.Join(dir, config.ShellLogFileName),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, out))
	return out
}

// runForeground runs the shell without a system tray, blocking on signals.
func runForeground(app *shell.App) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Start(port, shell.ModeForeground); err != nil {
		return err
	}
	app.SetQuit(stop)

	select {
	case <-ctx.Done():
		log.Println("Shutting down...")
	case err := <-app.Errors():
		log.Printf("Server error: %v", err)
	}

	app.Shutdown()
	fmt.Println("Shell stopped")
	return nil
}

// runWithTray runs the shell with a system tray icon on the main goroutine.
// systray.Run must occupy the main goroutine on macOS (Cocoa requirement).
func runWithTray(app *shell.App) {
	onStart := func() {
		if err := app.Start(port, shell.ModeTray); err != nil {
			log.Fatalf("Failed to start shell: %v", err)
		}
		app.SetQuit(tray.Quit)

		go func() {
			if err := <-app.Errors(); err != nil {
				log.Printf("Server error: %v", err)
				tray.Quit()
			}
		}()

		// Handle OS signals: quit tray on SIGINT/SIGTERM
		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			log.Printf("Received signal %v, shutting down...", sig)
			tray.Quit()
		}()
	}

	onExit := func() {
		app.Shutdown()
		fmt.Println("Shell stopped")
	}

	// This blocks the main goroutine until tray exits.
	tray.Run(app, app.Labels(), onStart, onExit)
}
