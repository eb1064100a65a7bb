// Package server exposes the command surface over gRPC, gRPC-Web, and
// plain HTTP on a single local port.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/improbable-eng/grpc-web/go/grpcweb"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/prism-io/prism-shell/internal/shell/metrics"
	"github.com/prism-io/prism-shell/internal/shell/surface"
	"github.com/prism-io/prism-shell/internal/shell/visibility"
)

// DefaultHost is the interface the server binds to.
const DefaultHost = "127.0.0.1"

const shutdownTimeout = 5 * time.Second

// Server is the shell's command surface endpoint.
type Server struct {
	grpcServer *grpc.Server
	web        *grpcweb.WrappedGrpcServer
	health     *health.Server
	httpServer *http.Server
	metrics    http.Handler
	listener   net.Listener
	port       int
	quit       chan struct{}
	stopOnce   sync.Once
}

// Option configures a Server.
type Option func(*Server)

// WithGatherer serves /metrics from g instead of the default registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.metrics = metrics.HandlerFor(g) }
}

// New creates a server listening on the loopback interface.
// Pass port 0 for dynamic allocation.
func New(port int, svc *surface.Surface, windows *visibility.Broadcaster, opts ...Option) (*Server, error) {
	listener, err := (&net.ListenConfig{}).Listen(context.TODO(), "tcp", net.JoinHostPort(DefaultHost, fmt.Sprint(port)))
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}

	// Get actual port if dynamically allocated
	actualPort := listener.Addr().(*net.TCPAddr).Port

	s := &Server{
		listener: listener,
		port:     actualPort,
		metrics:  metrics.Handler(),
		quit:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.grpcServer = grpc.NewServer(
		grpc.ChainUnaryInterceptor(unaryLogger),
		grpc.ChainStreamInterceptor(streamLogger),
	)
	RegisterShellServer(s.grpcServer, &shellService{surface: svc, windows: windows, quit: s.quit})

	s.health = health.NewServer()
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	s.health.SetServingStatus(ShellServiceDesc.ServiceName, healthpb.HealthCheckResponse_SERVING)

	s.web = grpcweb.WrapServer(s.grpcServer, grpcweb.WithOriginFunc(allowOrigin))

	s.httpServer = &http.Server{
		Handler:           h2c.NewHandler(http.HandlerFunc(s.route), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Port returns the port the server is listening on.
func (s *Server) Port() int {
	return s.port
}

// Serve starts serving requests. This blocks until Stop is called.
func (s *Server) Serve() error {
	err := s.httpServer.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop ends open streams, marks the service not serving, and closes the
// listener.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.quit)
		s.health.Shutdown()

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.grpcServer.Stop()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Printf("[server] Shutdown: %v", err)
			_ = s.httpServer.Close()
		}
	})
}

func (s *Server) route(w http.ResponseWriter, r *http.Request) {
	switch {
	case s.web.IsGrpcWebRequest(r) || s.web.IsAcceptableGrpcCorsRequest(r):
		s.web.ServeHTTP(w, r)
	case r.ProtoMajor == 2 && strings.HasPrefix(r.Header.Get("Content-Type"), "application/grpc"):
		s.grpcServer.ServeHTTP(w, r)
	case r.URL.Path == "/metrics":
		s.metrics.ServeHTTP(w, r)
	case r.URL.Path == "/healthz":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	default:
		http.NotFound(w, r)
	}
}

// allowOrigin accepts the desktop webview and loopback dev servers.
func allowOrigin(origin string) bool {
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "tauri", "app", "file":
		return true
	case "http", "https":
		switch u.Hostname() {
		case "localhost", "127.0.0.1", "::1", "tauri.localhost":
			return true
		}
	}
	return false
}

func unaryLogger(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	id := uuid.NewString()[:8]
	start := time.Now()
	resp, err := handler(ctx, req)
	code := status.Code(err)
	metrics.IncCall(methodName(info.FullMethod), code.String())
	if err != nil {
		log.Printf("[server] %s %s %s (%s): %v", id, info.FullMethod, code, time.Since(start).Round(time.Millisecond), err)
	} else {
		log.Printf("[server] %s %s OK (%s)", id, info.FullMethod, time.Since(start).Round(time.Millisecond))
	}
	return resp, err
}

func streamLogger(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	id := uuid.NewString()[:8]
	log.Printf("[server] %s %s opened", id, info.FullMethod)
	err := handler(srv, ss)
	metrics.IncCall(methodName(info.FullMethod), status.Code(err).String())
	log.Printf("[server] %s %s closed: %v", id, info.FullMethod, err)
	return err
}

func methodName(full string) string {
	if i := strings.LastIndexByte(full, '/'); i >= 0 {
		return full[i+1:]
	}
	return full
}
