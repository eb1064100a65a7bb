package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prism-io/prism-shell/internal/shell/rpc"
	"github.com/prism-io/prism-shell/internal/shell/supervisor"
)

var coreCmd = &cobra.Command{
	Use:   "core",
	Short: "Start, stop, and check the core service",
}

var coreStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the core service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withShell(func(ctx context.Context, c *rpc.Client) error {
			st, err := c.StartCore(ctx)
			if err != nil {
				return fmt.Errorf("failed to start core: %w", err)
			}
			printCoreStatus(st)
			return nil
		})
	},
}

var coreStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the core service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withShell(func(ctx context.Context, c *rpc.Client) error {
			st, err := c.StopCore(ctx)
			if err != nil {
				return fmt.Errorf("failed to stop core: %w", err)
			}
			printCoreStatus(st)
			return nil
		})
	},
}

var coreHealthCmd = &cobra.Command{
	Use:     "health",
	Aliases: []string{"status"},
	Short:   "Run a health check against the core now",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withShell(func(ctx context.Context, c *rpc.Client) error {
			r, err := c.CoreHealth(ctx)
			if err != nil {
				return fmt.Errorf("failed to check core health: %w", err)
			}
			printHealthReport(r)
			return nil
		})
	},
}

func init() {
	coreCmd.AddCommand(coreHealthCmd)
	coreCmd.AddCommand(coreStartCmd)
	coreCmd.AddCommand(coreStopCmd)
}

func printCoreStatus(st supervisor.Status) {
	msg := st.Message
	if st.Changed {
		msg = styleSuccess.Render(msg)
	} else {
		msg = styleHint.Render(msg)
	}
	fmt.Println(msg)
	if st.Running && st.PID > 0 {
		field("PID", st.PID)
	}
}

func printHealthReport(r supervisor.Report) {
	fmt.Printf("  %s\n", healthBadge(r.Health))
	mode := "external"
	if r.Managed {
		mode = "managed"
	}
	field("Mode", mode)
	if r.Managed {
		field("Running", r.Running)
		if r.PID > 0 {
			field("PID", r.PID)
		}
	}
	if r.Probe != nil {
		field("URL", r.Probe.URL)
		if r.Probe.StatusCode > 0 {
			field("HTTP", r.Probe.StatusCode)
		}
		field("Latency", r.Probe.Latency)
		if r.Probe.Version != "" {
			field("Version", r.Probe.Version)
		}
	}
	if r.Detail != "" {
		field("Detail", r.Detail)
	}
}
