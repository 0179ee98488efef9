// Package diagnostics exposes a client session's cache, deduplication and
// performance figures over gRPC. The service is registered through a
// hand-written grpc.ServiceDesc and its plain Go messages travel as JSON,
// so no protobuf code generation is required.
package diagnostics

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Keksclan/goRawrSheets/contextx"
	"github.com/Keksclan/goRawrSheets/orchestrator"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "rawrsheets.Diagnostics"

// Source supplies the figures. *orchestrator.Orchestrator satisfies it.
type Source interface {
	CacheStats(ctx context.Context) orchestrator.CacheStats
	DedupStats() orchestrator.DedupStats
	PerformanceStats() orchestrator.PerformanceStats
	ClearCache(ctx context.Context)
}

// Handler is the server side of the service.
type Handler interface {
	Ping(ctx context.Context, req *PingRequest) (*PingResponse, error)
	CacheStats(ctx context.Context, req *StatsRequest) (*CacheStatsResponse, error)
	DedupStats(ctx context.Context, req *StatsRequest) (*DedupStatsResponse, error)
	PerformanceStats(ctx context.Context, req *StatsRequest) (*PerformanceStatsResponse, error)
	ClearCache(ctx context.Context, req *StatsRequest) (*ClearCacheResponse, error)
}

// NewHandler returns a Handler reading from src. ClearCache is restricted
// to admin actors.
func NewHandler(src Source) Handler {
	return handler{src: src, now: time.Now}
}

type handler struct {
	src Source
	now func() time.Time
}

func (h handler) Ping(ctx context.Context, req *PingRequest) (*PingResponse, error) {
	return &PingResponse{
		Message:        req.Message,
		ServerTimeUnix: h.now().Unix(),
		RequestID:      contextx.RequestIDFromContext(ctx),
	}, nil
}

func (h handler) CacheStats(ctx context.Context, _ *StatsRequest) (*CacheStatsResponse, error) {
	s := h.src.CacheStats(ctx)
	return &CacheStatsResponse{Size: s.Size, Enabled: s.Enabled}, nil
}

func (h handler) DedupStats(_ context.Context, _ *StatsRequest) (*DedupStatsResponse, error) {
	s := h.src.DedupStats()
	return &DedupStatsResponse{PendingCount: s.PendingCount, Enabled: s.Enabled}, nil
}

func (h handler) PerformanceStats(_ context.Context, _ *StatsRequest) (*PerformanceStatsResponse, error) {
	s := h.src.PerformanceStats()
	return &PerformanceStatsResponse{
		TotalRequests: s.TotalRequests,
		CacheHitRate:  s.CacheHitRate,
		AvgLatencyMs:  s.AvgLatencyMs,
	}, nil
}

func (h handler) ClearCache(ctx context.Context, _ *StatsRequest) (*ClearCacheResponse, error) {
	if a, ok := contextx.ActorFromContext(ctx); !ok || a.Role != contextx.RoleAdmin {
		return nil, status.Error(codes.PermissionDenied, "clearing the cache requires the admin role")
	}
	n := h.src.CacheStats(ctx).Size
	h.src.ClearCache(ctx)
	return &ClearCacheResponse{Cleared: n}, nil
}

// ServiceDesc is the grpc.ServiceDesc for rawrsheets.Diagnostics.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Handler)(nil),
	Methods: []grpc.MethodDesc{
		method("Ping", Handler.Ping),
		method("CacheStats", Handler.CacheStats),
		method("DedupStats", Handler.DedupStats),
		method("PerformanceStats", Handler.PerformanceStats),
		method("ClearCache", Handler.ClearCache),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rawrsheets/diagnostics.proto",
}

// method builds the descriptor for one unary method. call is a method
// expression on Handler.
func method[Req, Resp any](name string, call func(Handler, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			req := new(Req)
			if err := dec(req); err != nil {
				return nil, err
			}
			h := srv.(Handler)
			if interceptor == nil {
				return call(h, ctx, req)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, req, info, func(ctx context.Context, r any) (any, error) {
				return call(h, ctx, r.(*Req))
			})
		},
	}
}

// Register registers h on s.
func Register(s *grpc.Server, h Handler) {
	s.RegisterService(&ServiceDesc, h)
}

// Client calls the service over conn.
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient returns a Client using conn.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func invoke[Resp any](ctx context.Context, c *Client, name string, req any, opts ...grpc.CallOption) (*Resp, error) {
	resp := new(Resp)
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/"+name, req, resp, opts...); err != nil {
		return nil, err
	}
	return resp, nil
}

// Ping echoes msg.
func (c *Client) Ping(ctx context.Context, msg string, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c, "Ping", &PingRequest{Message: msg}, opts...)
}

// CacheStats fetches the cache figures.
func (c *Client) CacheStats(ctx context.Context, opts ...grpc.CallOption) (*CacheStatsResponse, error) {
	return invoke[CacheStatsResponse](ctx, c, "CacheStats", &StatsRequest{}, opts...)
}

// DedupStats fetches the deduplication figures.
func (c *Client) DedupStats(ctx context.Context, opts ...grpc.CallOption) (*DedupStatsResponse, error) {
	return invoke[DedupStatsResponse](ctx, c, "DedupStats", &StatsRequest{}, opts...)
}

// PerformanceStats fetches the latency and hit-rate figures.
func (c *Client) PerformanceStats(ctx context.Context, opts ...grpc.CallOption) (*PerformanceStatsResponse, error) {
	return invoke[PerformanceStatsResponse](ctx, c, "PerformanceStats", &StatsRequest{}, opts...)
}

// ClearCache drops the session cache.
func (c *Client) ClearCache(ctx context.Context, opts ...grpc.CallOption) (*ClearCacheResponse, error) {
	return invoke[ClearCacheResponse](ctx, c, "ClearCache", &StatsRequest{}, opts...)
}
