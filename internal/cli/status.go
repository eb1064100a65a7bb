package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prism-io/prism-shell/internal/shell/rpc"
	"github.com/prism-io/prism-shell/internal/shell/surface"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show core, health, and window state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withShell(func(ctx context.Context, c *rpc.Client) error {
			st, err := c.GetStatus(ctx)
			if err != nil {
				return err
			}
			printShellStatus(st)
			return nil
		})
	},
}

func printShellStatus(st surface.Status) {
	fmt.Printf("%s %s\n", styleBrand.Render("prism-shell"), styleVersion.Render(st.Version))
	field("Uptime", st.Uptime)
	field("Mode", st.Mode)
	field("Endpoint", st.Endpoint)
	if st.Mode == "managed" {
		if st.Core.Running {
			field("Core", fmt.Sprintf("running (PID %d)", st.Core.PID))
		} else {
			field("Core", "stopped")
		}
	}
	if st.Health != nil {
		field("Health", healthBadge(st.Health.Health))
		if st.Health.Detail != "" {
			field("Detail", st.Health.Detail)
		}
	} else {
		field("Health", styleHint.Render("not checked yet"))
	}
	window := visibilityBadge(st.Visibility)
	if st.Focused {
		window += styleHint.Render(" (focused)")
	}
	field("Window", window)
}
