package cli

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/prism-io/prism-shell/internal/config"
)

var shellForeground bool

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Manage the prism-shell process",
}

var shellStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the shell is running",
	RunE:  runShellStatus,
}

var shellStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the shell in the background",
	RunE:  runShellStart,
}

var shellStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the shell",
	RunE:  runShellStop,
}

func init() {
	shellStartCmd.Flags().BoolVar(&shellForeground, "no-tray", false, "Start without a system tray icon")

	shellCmd.AddCommand(shellStartCmd)
	shellCmd.AddCommand(shellStatusCmd)
	shellCmd.AddCommand(shellStopCmd)
}

func runShellStart(cmd *cobra.Command, args []string) error {
	running, info, err := config.IsShellRunning()
	if err != nil {
		return fmt.Errorf("failed to check shell status: %w", err)
	}

	if running && info != nil {
		fmt.Printf("Shell is already running (PID %d, port %d).\n", info.PID, info.Port)
		return nil
	}

	fmt.Print("Starting shell...")
	if err := EnsureShell(shellForeground); err != nil {
		fmt.Println()
		return err
	}

	_, fresh, err := config.IsShellRunning()
	if err != nil || fresh == nil {
		fmt.Println(" started.")
		return nil
	}

	fmt.Printf(" started (PID %d, port %d).\n", fresh.PID, fresh.Port)
	return nil
}

func runShellStatus(cmd *cobra.Command, args []string) error {
	running, info, err := config.IsShellRunning()
	if err != nil {
		return err
	}

	if !running || info == nil {
		fmt.Println("Shell is not running.")
		return nil
	}

	fmt.Println(styleSuccess.Render("Shell is running."))
	field("Host", info.Host)
	field("Port", info.Port)
	field("PID", info.PID)
	field("Mode", info.Mode)
	field("Uptime", time.Since(info.StartedAt).Truncate(time.Second))

	core, err := config.StaleCore()
	if err != nil || core == nil {
		return nil
	}
	if core.ShellPID == info.PID {
		field("Core PID", core.PID)
	} else {
		fmt.Println()
		fmt.Println(styleWarning.Render(fmt.Sprintf("Orphaned core process recorded (PID %d)", core.PID)))
	}
	return nil
}

func runShellStop(cmd *cobra.Command, args []string) error {
	running, info, err := config.IsShellRunning()
	if err != nil {
		return fmt.Errorf("failed to check shell status: %w", err)
	}

	if !running || info == nil {
		fmt.Println("Shell is not running.")
		return nil
	}

	process, err := os.FindProcess(info.PID)
	if err != nil {
		return fmt.Errorf("failed to find shell process: %w", err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send stop signal: %w", err)
	}

	// Poll for shutdown (max 10 seconds, the shell stops the core first)
	for i := 0; i < 100; i++ {
		time.Sleep(100 * time.Millisecond)
		stillRunning, _, err := config.IsShellRunning()
		if err == nil && !stillRunning {
			fmt.Println("Shell stopped.")
			return nil
		}
	}

	return fmt.Errorf("shell did not stop within timeout")
}
