// Package auth provides the authentication callback used by the
// diagnostics server and a bearer-token implementation of it.
package auth

import (
	"context"
	"crypto/subtle"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/Keksclan/goRawrSheets/contextx"
)

// AuthFunc authenticates a gRPC request. It receives the request context,
// the full method name and the incoming metadata. On success it returns a
// (possibly enriched) context; on failure it returns an error.
type AuthFunc func(ctx context.Context, fullMethod string, md metadata.MD) (context.Context, error)

// MetadataKey is the metadata key carrying the bearer token.
const MetadataKey = "authorization"

// BearerToken returns an AuthFunc accepting requests whose authorization
// metadata is "Bearer <token>". Accepted requests run as actor.
func BearerToken(token string, actor contextx.Actor) AuthFunc {
	want := []byte(token)
	return func(ctx context.Context, _ string, md metadata.MD) (context.Context, error) {
		vals := md.Get(MetadataKey)
		if len(vals) == 0 {
			return ctx, status.Error(codes.Unauthenticated, "missing bearer token")
		}
		got, ok := strings.CutPrefix(vals[0], "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			return ctx, status.Error(codes.Unauthenticated, "invalid bearer token")
		}
		return contextx.WithActor(ctx, actor), nil
	}
}

// Credentials attaches token as outgoing bearer metadata.
func Credentials(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, MetadataKey, "Bearer "+token)
}
