package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/prism-io/prism-shell/internal/tui"
)

var watchPlain bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the shell live",
	Long: `Watch opens an interactive dashboard when attached to a terminal.
With --plain, or when output is not a terminal, window changes are printed
one per line until interrupted.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchPlain, "plain", false, "Print window changes instead of opening the dashboard")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if !watchPlain && isTerminal() {
		return tui.Run()
	}

	client, err := connectShell()
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	updates, err := client.WatchVisibility(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch window: %w", err)
	}
	for u := range updates {
		line := fmt.Sprintf("%s  window %s", styleLabel.Render(time.Now().Format("15:04:05")), visibilityBadge(u.State))
		if u.Focus {
			line += styleHint.Render(" (focus)")
		}
		fmt.Println(line)
	}
	if ctx.Err() == nil {
		return fmt.Errorf("shell closed the stream")
	}
	return nil
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))
}
