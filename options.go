package gorawrsheets

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/Keksclan/goRawrSheets/auth"
	"github.com/Keksclan/goRawrSheets/interceptors"
	"github.com/Keksclan/goRawrSheets/internal/core"
	"github.com/Keksclan/goRawrSheets/ratelimit"
	"github.com/Keksclan/goRawrSheets/tracing"
)

// Fixed priority levels for the diagnostics server's interceptors. Lower
// values run first (outermost), regardless of the order options are passed.
const (
	orderRecovery  = 100
	orderRequestID = 200
	orderTracing   = 250
	orderAuth      = 300
	orderRateLimit = 400
	orderUser      = 500
)

// serverConfig holds the configuration assembled via functional options.
type serverConfig struct {
	middlewares core.MiddlewareBuilder
	serverOpts  []grpc.ServerOption

	globalLimit *ratelimit.Limiter
	methodLimit map[string]*ratelimit.Limiter
}

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

// WithUnaryInterceptor appends a unary server interceptor. User
// interceptors run after the built-in ones, in the order given.
func WithUnaryInterceptor(i grpc.UnaryServerInterceptor) ServerOption {
	return func(c *serverConfig) {
		c.middlewares.Add(orderUser, i)
	}
}

// WithGRPCOptions passes raw options to grpc.NewServer.
func WithGRPCOptions(opts ...grpc.ServerOption) ServerOption {
	return func(c *serverConfig) {
		c.serverOpts = append(c.serverOpts, opts...)
	}
}

// WithRecovery turns handler panics into codes.Internal instead of
// crashing the process. Panics are logged to logger.
func WithRecovery(logger *zap.Logger) ServerOption {
	return func(c *serverConfig) {
		c.middlewares.Add(orderRecovery, interceptors.RecoveryUnary(logger))
	}
}

// WithRequestID propagates the caller's x-request-id or assigns one.
func WithRequestID() ServerOption {
	return func(c *serverConfig) {
		c.middlewares.Add(orderRequestID, interceptors.RequestIDUnary())
	}
}

// WithTracing starts a server span for every call.
func WithTracing(cfg *tracing.TracingConfig) ServerOption {
	return func(c *serverConfig) {
		c.middlewares.Add(orderTracing, tracing.UnaryServerInterceptor(cfg))
	}
}

// WithAuth authenticates every call except the listed public methods.
func WithAuth(fn auth.AuthFunc, public ...string) ServerOption {
	return func(c *serverConfig) {
		c.middlewares.Add(orderAuth, interceptors.AuthUnary(fn, public...))
	}
}

// WithRateLimitGlobal limits all calls to rps requests per second with the
// given burst.
func WithRateLimitGlobal(rps float64, burst int) ServerOption {
	return func(c *serverConfig) {
		c.globalLimit = ratelimit.NewLimiter(rps, burst)
	}
}

// WithMethodRateLimit gives fullMethod its own limiter instead of the
// global one.
func WithMethodRateLimit(fullMethod string, rps float64, burst int) ServerOption {
	return func(c *serverConfig) {
		if c.methodLimit == nil {
			c.methodLimit = make(map[string]*ratelimit.Limiter)
		}
		c.methodLimit[fullMethod] = ratelimit.NewLimiter(rps, burst)
	}
}
