// Package core holds the server wiring shared by the public API.
package core

import (
	"cmp"
	"slices"

	"google.golang.org/grpc"
)

// middleware is one interceptor with a deterministic execution order.
// Lower Order values run first.
type middleware struct {
	Unary grpc.UnaryServerInterceptor
	Order int
}

// MiddlewareBuilder collects interceptors and produces them sorted.
type MiddlewareBuilder struct {
	entries []middleware
}

// Add registers an interceptor with the given order. A nil interceptor is
// ignored.
func (b *MiddlewareBuilder) Add(order int, unary grpc.UnaryServerInterceptor) {
	if unary == nil {
		return
	}
	b.entries = append(b.entries, middleware{Unary: unary, Order: order})
}

// Len returns the number of registered interceptors.
func (b *MiddlewareBuilder) Len() int { return len(b.entries) }

// Build sorts the collected interceptors by Order (stable) and returns them.
func (b *MiddlewareBuilder) Build() []grpc.UnaryServerInterceptor {
	slices.SortStableFunc(b.entries, func(a, c middleware) int {
		return cmp.Compare(a.Order, c.Order)
	})
	out := make([]grpc.UnaryServerInterceptor, len(b.entries))
	for i, m := range b.entries {
		out[i] = m.Unary
	}
	return out
}
