package gateway

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Keksclan/goRawrSheets/breaker"
	"github.com/Keksclan/goRawrSheets/ops"
	"github.com/Keksclan/goRawrSheets/ratelimit"
)

// Invoker performs one remote call and returns its normalized response.
type Invoker func(ctx context.Context, op ops.Operation, params ops.Params) ops.Response

// Middleware transforms an Invoker, allowing pre/post behaviour around the
// remote call.
type Middleware func(Invoker) Invoker

// Chain composes middlewares from left to right, i.e., Chain(A, B)(h) => A(B(h)).
func Chain(mw ...Middleware) Middleware {
	return func(next Invoker) Invoker {
		for i := len(mw) - 1; i >= 0; i-- {
			next = mw[i](next)
		}
		return next
	}
}

// Wrap applies the middleware chain to inv.
func Wrap(inv Invoker, mw ...Middleware) Invoker {
	if len(mw) == 0 {
		return inv
	}
	return Chain(mw...)(inv)
}

// RateLimit makes every call wait for a token from l. A wait that cannot
// complete before ctx is done fails the call as a transport error without
// contacting the store.
func RateLimit(l *ratelimit.Limiter) Middleware {
	return func(next Invoker) Invoker {
		return func(ctx context.Context, op ops.Operation, params ops.Params) ops.Response {
			if err := l.Wait(ctx); err != nil {
				return ops.Fail(&ops.Error{Kind: ops.KindTransport, Op: op.String(), Msg: "rate limit wait aborted", Err: err})
			}
			return next(ctx, op, params)
		}
	}
}

// CircuitBreaker fails calls fast while b is open. Only transport failures
// count against the breaker; a remote logical failure proves the store is
// reachable.
func CircuitBreaker(b *breaker.Breaker) Middleware {
	return func(next Invoker) Invoker {
		return func(ctx context.Context, op ops.Operation, params ops.Params) ops.Response {
			var resp ops.Response
			err := b.Do(func() bool {
				resp = next(ctx, op, params)
				return !resp.Success && resp.Kind == ops.KindTransport
			})
			if err != nil {
				return ops.Fail(&ops.Error{Kind: ops.KindTransport, Op: op.String(), Msg: "remote store unavailable (circuit open)", Err: err})
			}
			return resp
		}
	}
}

// Logging logs every failed call at warn level and successful calls at
// debug level.
func Logging(logger *zap.Logger) Middleware {
	return func(next Invoker) Invoker {
		return func(ctx context.Context, op ops.Operation, params ops.Params) ops.Response {
			start := time.Now()
			resp := next(ctx, op, params)
			fields := []zap.Field{
				zap.Stringer("op", op),
				zap.Duration("duration", time.Since(start)),
			}
			if resp.Success {
				logger.Debug("gateway: call succeeded", fields...)
			} else {
				logger.Warn("gateway: call failed", append(fields,
					zap.Stringer("kind", resp.Kind),
					zap.String("error", resp.Error),
				)...)
			}
			return resp
		}
	}
}
