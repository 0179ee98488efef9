// Package gateway is the only component that talks to the remote record
// store. It turns an operation and its parameters into one HTTP POST and
// normalizes whatever the store answers into an ops.Response. It never
// caches, deduplicates or retries.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/Keksclan/goRawrSheets/contextx"
	"github.com/Keksclan/goRawrSheets/ops"
	"github.com/Keksclan/goRawrSheets/tracing"
)

// DefaultTimeout bounds a single remote call.
const DefaultTimeout = 30 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 16 << 20

// Request body fields added next to the operation parameters. They take
// precedence over parameters of the same name.
const (
	FieldAction     = "action"
	FieldRequestID  = "requestId"
	FieldActorEmail = "actorEmail"
	FieldActorRole  = "actorRole"
)

// Gateway posts operations to the remote store endpoint.
type Gateway struct {
	endpoint   string
	client     *http.Client
	timeout    time.Duration
	logger     *zap.Logger
	tracing    *tracing.TracingConfig
	middleware []Middleware

	invoke Invoker
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithHTTPClient sets the base HTTP client. Its transport is wrapped with
// OpenTelemetry instrumentation.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.client = c }
}

// WithTimeout bounds each call. Non-positive values fall back to
// DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithLogger sets the logger used by the gateway.
func WithLogger(l *zap.Logger) Option {
	return func(g *Gateway) { g.logger = l }
}

// WithTracing sets the tracer provider and propagator for outbound
// requests.
func WithTracing(cfg *tracing.TracingConfig) Option {
	return func(g *Gateway) { g.tracing = cfg }
}

// WithMiddleware appends middlewares around the remote call. The first
// middleware is the outermost.
func WithMiddleware(mw ...Middleware) Option {
	return func(g *Gateway) { g.middleware = append(g.middleware, mw...) }
}

// New creates a Gateway posting to endpoint, which must be an absolute
// http or https URL.
func New(endpoint string, opts ...Option) (*Gateway, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("gateway: invalid endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("gateway: endpoint %q must be an absolute http(s) URL", endpoint)
	}

	g := &Gateway{
		endpoint: endpoint,
		timeout:  DefaultTimeout,
		logger:   zap.NewNop(),
	}
	for _, o := range opts {
		o(g)
	}

	base := http.DefaultClient
	if g.client != nil {
		base = g.client
	}
	transport := base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	instrumented := *base
	instrumented.Transport = otelhttp.NewTransport(transport,
		otelhttp.WithTracerProvider(g.tracing.Provider()),
		otelhttp.WithPropagators(g.tracing.Propagator()),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "POST " + r.URL.Host
		}),
	)
	g.client = &instrumented

	g.invoke = Wrap(g.do, g.middleware...)
	return g, nil
}

// Call performs op against the remote store. It always returns a
// normalized response; failures carry Success=false and an ErrorKind.
func (g *Gateway) Call(ctx context.Context, op ops.Operation, params ops.Params) ops.Response {
	if !op.Valid() {
		return ops.Fail(&ops.Error{Kind: ops.KindUsage, Op: op.String(), Msg: "unknown operation"})
	}
	return g.invoke(ctx, op, params)
}

// Endpoint returns the configured endpoint URL.
func (g *Gateway) Endpoint() string { return g.endpoint }

func (g *Gateway) do(ctx context.Context, op ops.Operation, params ops.Params) ops.Response {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	ctx, reqID := contextx.EnsureRequestID(ctx)
	body, err := json.Marshal(requestBody(ctx, op, params, reqID))
	if err != nil {
		return ops.Fail(&ops.Error{Kind: ops.KindUsage, Op: op.String(), Msg: "encode request", Err: err})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return ops.Fail(&ops.Error{Kind: ops.KindTransport, Op: op.String(), Msg: "create request", Err: err})
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", reqID)

	resp, err := g.client.Do(req)
	if err != nil {
		return ops.Fail(g.transportError(ctx, op, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return ops.Fail(g.transportError(ctx, op, err))
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return ops.Fail(&ops.Error{Kind: ops.KindTransport, Op: op.String(), Msg: fmt.Sprintf("remote store returned HTTP %d", resp.StatusCode)})
	}

	data, err := Normalize(raw)
	if err != nil {
		var oe *ops.Error
		if errors.As(err, &oe) {
			oe.Op = op.String()
		}
		if resp.StatusCode >= http.StatusBadRequest && ops.KindOf(err) == ops.KindNormalization {
			return ops.Fail(&ops.Error{Kind: ops.KindRemote, Op: op.String(), Msg: fmt.Sprintf("remote store returned HTTP %d", resp.StatusCode)})
		}
		g.logger.Debug("gateway: response rejected",
			zap.Stringer("op", op),
			zap.String("request_id", reqID),
			zap.Int("status", resp.StatusCode),
			zap.Error(err),
		)
		return ops.Fail(err)
	}
	return ops.OK(data)
}

func (g *Gateway) transportError(ctx context.Context, op ops.Operation, err error) *ops.Error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &ops.Error{Kind: ops.KindTransport, Op: op.String(), Msg: fmt.Sprintf("request timed out after %s", g.timeout), Err: err}
	}
	return &ops.Error{Kind: ops.KindTransport, Op: op.String(), Msg: "request failed", Err: err}
}

func requestBody(ctx context.Context, op ops.Operation, params ops.Params, reqID string) map[string]string {
	body := make(map[string]string, len(params)+4)
	for k, v := range params {
		body[k] = v
	}
	body[FieldAction] = op.String()
	body[FieldRequestID] = reqID
	if a, ok := contextx.ActorFromContext(ctx); ok {
		if a.Email != "" {
			body[FieldActorEmail] = a.Email
		}
		if a.Role != "" {
			body[FieldActorRole] = string(a.Role)
		}
	}
	return body
}
