package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prism-io/prism-shell/internal/shell/rpc"
	"github.com/prism-io/prism-shell/internal/shell/visibility"
)

var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Show or hide the main window",
}

var windowShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show and focus the main window",
	RunE:  windowAction((*rpc.Client).ShowFromTray),
}

var windowHideCmd = &cobra.Command{
	Use:   "hide",
	Short: "Hide the main window to the tray",
	RunE:  windowAction((*rpc.Client).MinimizeToTray),
}

var windowCloseCmd = &cobra.Command{
	Use:   "close",
	Short: "Send a close request (hides the window, the shell keeps running)",
	RunE:  windowAction((*rpc.Client).CloseRequested),
}

func init() {
	windowCmd.AddCommand(windowCloseCmd)
	windowCmd.AddCommand(windowHideCmd)
	windowCmd.AddCommand(windowShowCmd)
}

func windowAction(call func(*rpc.Client, context.Context) (visibility.State, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return withShell(func(ctx context.Context, c *rpc.Client) error {
			state, err := call(c, ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Window is %s.\n", visibilityBadge(state))
			return nil
		})
	}
}
