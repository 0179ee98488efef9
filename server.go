package gorawrsheets

import (
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"

	"github.com/Keksclan/goRawrSheets/diagnostics"
	"github.com/Keksclan/goRawrSheets/interceptors"
	"github.com/Keksclan/goRawrSheets/internal/core"
)

// PingMethod is the full method name of the diagnostics health check.
const PingMethod = "/" + diagnostics.ServiceName + "/Ping"

// Server is a gRPC server exposing the diagnostics service of one client
// session, with middleware (recovery, request IDs, tracing, authentication,
// rate limiting) layered via functional [ServerOption] values.
//
// The underlying gRPC server is available through [Server.GRPC] so further
// services can be registered:
//
//	srv := gs.NewServer(client, gs.DefaultServerOptions(logger)...)
//	pb.RegisterMyServiceServer(srv.GRPC(), &myImpl{})
type Server struct {
	grpcServer *grpc.Server
}

// NewServer creates a [Server] serving diagnostics for src. Middleware
// execution order is determined by fixed priority levels, not by the order
// options are passed.
//
// Example:
//
//	srv := gs.NewServer(client,
//		gs.WithRecovery(logger),
//		gs.WithRateLimitGlobal(50, 100),
//		gs.WithAuth(auth.BearerToken(token, admin), gs.PingMethod),
//	)
func NewServer(src diagnostics.Source, opts ...ServerOption) *Server {
	var cfg serverConfig
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.globalLimit != nil || len(cfg.methodLimit) > 0 {
		cfg.middlewares.Add(orderRateLimit, interceptors.RateLimitUnary(cfg.globalLimit, cfg.methodLimit))
	}

	s := &Server{
		grpcServer: grpc.NewServer(core.BuildServerOptions(cfg.middlewares.Build(), cfg.serverOpts...)...),
	}
	diagnostics.Register(s.grpcServer, diagnostics.NewHandler(src))
	return s
}

// GRPC returns the underlying *grpc.Server so callers can register services.
func (s *Server) GRPC() *grpc.Server {
	return s.grpcServer
}

// Serve accepts connections on lis until Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	return s.grpcServer.Serve(lis)
}

// Stop waits for pending calls to finish and stops the server.
func (s *Server) Stop() {
	s.grpcServer.GracefulStop()
}

// MetricsHandler returns an http.Handler that serves the metrics gathered
// by g. A nil g serves the default registry.
func MetricsHandler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
