package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prism-io/prism-shell/internal/shell/probe"
	"github.com/prism-io/prism-shell/internal/shell/rpc"
)

var probeDirect bool

var probeCmd = &cobra.Command{
	Use:   "probe [url]",
	Short: "Check whether a core is reachable",
	Long: `Probe asks the shell whether the core at url answers its health endpoint.
Without a url the shell's configured endpoint is used. With --direct the
probe runs from this process and prints the full result.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProbe,
}

func init() {
	probeCmd.Flags().BoolVar(&probeDirect, "direct", false, "Probe from this process instead of the shell")
}

func runProbe(cmd *cobra.Command, args []string) error {
	url := ""
	if len(args) == 1 {
		url = args[0]
	}

	if probeDirect {
		if url == "" {
			return fmt.Errorf("--direct requires a url")
		}
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		res := probe.New().Probe(ctx, url)
		fmt.Printf("  %s\n", healthBadge(res.Health))
		field("URL", res.URL)
		if res.StatusCode > 0 {
			field("HTTP", res.StatusCode)
		}
		field("Latency", res.Latency)
		if res.Reported != "" {
			field("Reported", res.Reported)
		}
		if res.Err != nil {
			field("Error", res.Err)
		}
		return nil
	}

	return withShell(func(ctx context.Context, c *rpc.Client) error {
		ok, err := c.CheckCoreConnection(ctx, url)
		if err != nil {
			return err
		}
		if ok {
			fmt.Println(styleSuccess.Render("Core is reachable."))
		} else {
			fmt.Println(styleError.Render("Core is not reachable."))
		}
		return nil
	})
}
