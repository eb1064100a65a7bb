package cli

import (
	"context"
	"fmt"

	"github.com/prism-io/prism-shell/internal/config"
	"github.com/prism-io/prism-shell/internal/shell/rpc"
)

// connectShell establishes a gRPC connection to the running shell.
func connectShell() (*rpc.Client, error) {
	info, err := config.LoadShellInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to load shell info: %w", err)
	}
	if info == nil {
		return nil, fmt.Errorf("shell not running. Start it with 'prismctl shell start'")
	}

	return rpc.Dial(fmt.Sprintf("%s:%d", info.Host, info.Port))
}

// withShell connects, runs fn under the call timeout, and closes the connection.
func withShell(fn func(ctx context.Context, c *rpc.Client) error) error {
	client, err := connectShell()
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	return fn(ctx, client)
}
