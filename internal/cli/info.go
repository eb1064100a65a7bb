package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/prism-io/prism-shell/internal/shell/rpc"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show host and shell build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withShell(func(ctx context.Context, c *rpc.Client) error {
			info, err := c.GetSystemInfo(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("%s %s\n", styleBrand.Render("prism-shell"), styleVersion.Render(info.Version))
			field("Host", info.Hostname)
			field("OS/Arch", info.OS+"/"+info.Arch)
			field("Go", info.GoVersion)
			field("Commit", info.Commit)
			field("Uptime", info.Uptime)
			return nil
		})
	},
}

var notifyCmd = &cobra.Command{
	Use:   "notify <title> [body...]",
	Short: "Show a desktop notification through the shell",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := args[0]
		body := strings.Join(args[1:], " ")
		return withShell(func(ctx context.Context, c *rpc.Client) error {
			if err := c.ShowNotification(ctx, title, body); err != nil {
				return fmt.Errorf("failed to show notification: %w", err)
			}
			fmt.Println(styleSuccess.Render("Notification sent."))
			return nil
		})
	},
}
