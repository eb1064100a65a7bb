package rpc

import (
	"context"
	"fmt"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/prism-io/prism-shell/internal/shell/supervisor"
	"github.com/prism-io/prism-shell/internal/shell/surface"
	"github.com/prism-io/prism-shell/internal/shell/visibility"
	"github.com/prism-io/prism-shell/internal/updater"
)

var watchVisibilityDesc = &grpc.StreamDesc{
	StreamName:    MethodWatchVisibility,
	ServerStreams: true,
}

// Client calls a running shell.
type Client struct {
	conn *grpc.ClientConn
}

// Dial creates a client for the shell at addr (host:port).
func Dial(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to shell: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) call(ctx context.Context, method string, req proto.Message) (*structpb.Struct, error) {
	if req == nil {
		req = &emptypb.Empty{}
	}
	out := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, FullMethod(method), req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// StartCore asks the shell to start the core.
func (c *Client) StartCore(ctx context.Context) (supervisor.Status, error) {
	out, err := c.call(ctx, MethodStartCore, nil)
	if err != nil {
		return supervisor.Status{}, err
	}
	return ParseCoreStatus(out), nil
}

// StopCore asks the shell to stop the core.
func (c *Client) StopCore(ctx context.Context) (supervisor.Status, error) {
	out, err := c.call(ctx, MethodStopCore, nil)
	if err != nil {
		return supervisor.Status{}, err
	}
	return ParseCoreStatus(out), nil
}

// CoreHealth runs a health check on the shell.
func (c *Client) CoreHealth(ctx context.Context) (supervisor.Report, error) {
	out, err := c.call(ctx, MethodCoreHealth, nil)
	if err != nil {
		return supervisor.Report{}, err
	}
	return ParseHealthReport(out), nil
}

// GetStatus returns the shell's combined status.
func (c *Client) GetStatus(ctx context.Context) (surface.Status, error) {
	out, err := c.call(ctx, MethodGetStatus, nil)
	if err != nil {
		return surface.Status{}, err
	}
	return ParseShellStatus(out), nil
}

// GetSystemInfo returns host and build information.
func (c *Client) GetSystemInfo(ctx context.Context) (surface.SystemInfo, error) {
	out, err := c.call(ctx, MethodGetSystemInfo, nil)
	if err != nil {
		return surface.SystemInfo{}, err
	}
	return ParseSystemInfo(out), nil
}

// ShowNotification raises a desktop notification through the shell.
func (c *Client) ShowNotification(ctx context.Context, title, body string) error {
	_, err := c.call(ctx, MethodShowNotification, NewStruct(map[string]any{"title": title, "body": body}))
	return err
}

// CheckForUpdates asks the shell for the latest version.
func (c *Client) CheckForUpdates(ctx context.Context) (updater.Result, error) {
	out, err := c.call(ctx, MethodCheckForUpdates, nil)
	if err != nil {
		return updater.Result{}, err
	}
	return ParseUpdateResult(out), nil
}

// CheckCoreConnection probes url from the shell. Empty url probes the
// configured endpoint.
func (c *Client) CheckCoreConnection(ctx context.Context, url string) (bool, error) {
	out, err := c.call(ctx, MethodCheckCoreConnection, NewStruct(map[string]any{"url": url}))
	if err != nil {
		return false, err
	}
	return GetBool(out, "connected"), nil
}

// MinimizeToTray hides the main window.
func (c *Client) MinimizeToTray(ctx context.Context) (visibility.State, error) {
	return c.windowCall(ctx, MethodMinimizeToTray)
}

// ShowFromTray shows the main window.
func (c *Client) ShowFromTray(ctx context.Context) (visibility.State, error) {
	return c.windowCall(ctx, MethodShowFromTray)
}

// CloseRequested reports a window close button press.
func (c *Client) CloseRequested(ctx context.Context) (visibility.State, error) {
	return c.windowCall(ctx, MethodCloseRequested)
}

func (c *Client) windowCall(ctx context.Context, method string) (visibility.State, error) {
	out, err := c.call(ctx, method, nil)
	if err != nil {
		return visibility.Visible, err
	}
	return ParseState(GetString(out, "visibility")), nil
}

// WatchVisibility streams window updates until ctx is cancelled or the
// shell goes away. The first update is the current state.
func (c *Client) WatchVisibility(ctx context.Context) (<-chan visibility.Update, error) {
	stream, err := c.conn.NewStream(ctx, watchVisibilityDesc, FullMethod(MethodWatchVisibility))
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(&emptypb.Empty{}); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}

	ch := make(chan visibility.Update)
	go func() {
		defer close(ch)
		for {
			msg := &structpb.Struct{}
			if err := stream.RecvMsg(msg); err != nil {
				if err != io.EOF && ctx.Err() == nil {
					logf("Visibility stream ended: %v", err)
				}
				return
			}
			select {
			case ch <- ParseVisibilityUpdate(msg):
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}
