// Package cli implements the prismctl commands.
package cli

import (
	"time"

	"github.com/spf13/cobra"
)

// callTimeout bounds every unary call to the shell.
var callTimeout time.Duration

var rootCmd = &cobra.Command{
	Use:   "prismctl",
	Short: "Control the Prism desktop shell",
	Long: `prismctl talks to a running prism-shell over its local gRPC port.
It starts and stops the core service, toggles the main window, and reports health.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&callTimeout, "timeout", 10*time.Second, "Timeout for calls to the shell")

	// Add subcommands (alphabetical)
	rootCmd.AddCommand(coreCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(notifyCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(windowCmd)
}
