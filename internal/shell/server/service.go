package server

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/prism-io/prism-shell/internal/shell/notify"
	"github.com/prism-io/prism-shell/internal/shell/rpc"
	"github.com/prism-io/prism-shell/internal/shell/supervisor"
	"github.com/prism-io/prism-shell/internal/shell/surface"
	"github.com/prism-io/prism-shell/internal/shell/visibility"
)

// ============================================================================
// Service definition (hand-registered, messages are structpb.Struct)
// ============================================================================

// ShellServer is the server API for prism.shell.v1.ShellService.
type ShellServer interface {
	StartCore(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	StopCore(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	CoreHealth(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetSystemInfo(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ShowNotification(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CheckForUpdates(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	CheckCoreConnection(context.Context, *structpb.Struct) (*structpb.Struct, error)
	MinimizeToTray(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ShowFromTray(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	CloseRequested(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	WatchVisibility(*emptypb.Empty, grpc.ServerStream) error
}

func newEmpty() *emptypb.Empty { return &emptypb.Empty{} }
func newStruct() *structpb.Struct { return &structpb.Struct{} }

// unary builds a MethodDesc the way generated code does.
func unary[Req proto.Message](method string, newReq func() Req, call func(ShellServer, context.Context, Req) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ShellServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: rpc.FullMethod(method)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(ShellServer), ctx, req.(Req))
			})
		},
	}
}

func watchVisibilityHandler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(ShellServer).WatchVisibility(in, stream)
}

// ShellServiceDesc describes prism.shell.v1.ShellService.
var ShellServiceDesc = grpc.ServiceDesc{
	ServiceName: rpc.ServiceName,
	HandlerType: (*ShellServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(rpc.MethodStartCore, newEmpty, ShellServer.StartCore),
		unary(rpc.MethodStopCore, newEmpty, ShellServer.StopCore),
		unary(rpc.MethodCoreHealth, newEmpty, ShellServer.CoreHealth),
		unary(rpc.MethodGetStatus, newEmpty, ShellServer.GetStatus),
		unary(rpc.MethodGetSystemInfo, newEmpty, ShellServer.GetSystemInfo),
		unary(rpc.MethodShowNotification, newStruct, ShellServer.ShowNotification),
		unary(rpc.MethodCheckForUpdates, newEmpty, ShellServer.CheckForUpdates),
		unary(rpc.MethodCheckCoreConnection, newStruct, ShellServer.CheckCoreConnection),
		unary(rpc.MethodMinimizeToTray, newEmpty, ShellServer.MinimizeToTray),
		unary(rpc.MethodShowFromTray, newEmpty, ShellServer.ShowFromTray),
		unary(rpc.MethodCloseRequested, newEmpty, ShellServer.CloseRequested),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    rpc.MethodWatchVisibility,
			Handler:       watchVisibilityHandler,
			ServerStreams: true,
		},
	},
	Metadata: "prism/shell/v1/shell.proto",
}

// RegisterShellServer registers srv on s.
func RegisterShellServer(s grpc.ServiceRegistrar, srv ShellServer) {
	s.RegisterService(&ShellServiceDesc, srv)
}

// ============================================================================
// Implementation
// ============================================================================

type shellService struct {
	surface *surface.Surface
	windows *visibility.Broadcaster
	quit    <-chan struct{}
}

func (s *shellService) StartCore(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	st, err := s.surface.StartCore(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return rpc.CoreStatus(st), nil
}

func (s *shellService) StopCore(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	st, err := s.surface.StopCore(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return rpc.CoreStatus(st), nil
}

func (s *shellService) CoreHealth(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return rpc.HealthReport(s.surface.CoreHealth(ctx)), nil
}

func (s *shellService) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	st, err := s.surface.Status(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return rpc.ShellStatus(st), nil
}

func (s *shellService) GetSystemInfo(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return rpc.SystemInfo(s.surface.GetSystemInfo()), nil
}

func (s *shellService) ShowNotification(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.surface.ShowNotification(rpc.GetString(req, "title"), rpc.GetString(req, "body")); err != nil {
		return nil, toStatus(err)
	}
	return rpc.NewStruct(map[string]any{"ok": true}), nil
}

func (s *shellService) CheckForUpdates(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	res, err := s.surface.CheckForUpdates(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return rpc.UpdateResult(res), nil
}

func (s *shellService) CheckCoreConnection(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ok := s.surface.CheckCoreConnection(ctx, rpc.GetString(req, "url"))
	return rpc.NewStruct(map[string]any{"connected": ok}), nil
}

func (s *shellService) MinimizeToTray(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if err := s.surface.MinimizeToTray(); err != nil {
		return nil, toStatus(err)
	}
	return s.windowState(), nil
}

func (s *shellService) ShowFromTray(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if err := s.surface.ShowFromTray(); err != nil {
		return nil, toStatus(err)
	}
	return s.windowState(), nil
}

func (s *shellService) CloseRequested(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	change, err := s.surface.CloseRequested()
	if err != nil {
		return nil, toStatus(err)
	}
	return rpc.WindowChange(change), nil
}

func (s *shellService) windowState() *structpb.Struct {
	return rpc.VisibilityUpdate(s.windows.Current())
}

func (s *shellService) WatchVisibility(_ *emptypb.Empty, stream grpc.ServerStream) error {
	id := uuid.NewString()
	updates := s.windows.Subscribe(id)
	defer s.windows.Unsubscribe(id)

	for {
		select {
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			if err := stream.SendMsg(rpc.VisibilityUpdate(u)); err != nil {
				return err
			}
		case <-stream.Context().Done():
			return nil
		case <-s.quit:
			return nil
		}
	}
}

// toStatus maps command errors to gRPC status codes. The message stays the
// descriptive error string.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	var (
		spawnErr  *supervisor.SpawnError
		termErr   *supervisor.TerminationError
		notifyErr *notify.NotificationError
	)
	switch {
	case errors.As(err, &spawnErr):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.As(err, &termErr):
		return status.Error(codes.Aborted, err.Error())
	case errors.As(err, &notifyErr):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
