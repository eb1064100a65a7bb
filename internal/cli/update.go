package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prism-io/prism-shell/internal/shell/rpc"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Check whether a newer shell release exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Checking for updates...")
		return withShell(func(ctx context.Context, c *rpc.Client) error {
			result, err := c.CheckForUpdates(ctx)
			if err != nil {
				return err
			}
			if !result.HasUpdate {
				fmt.Printf("Already up to date (%s).\n", result.CurrentVersion)
				return nil
			}
			fmt.Println(styleUpdate.Render(fmt.Sprintf("Update available: %s → %s", result.CurrentVersion, result.LatestVersion)))
			if result.ReleaseURL != "" {
				fmt.Printf("Release: %s\n", result.ReleaseURL)
			}
			return nil
		})
	},
}
