package contextx

import (
	"context"
	"slices"
)

// Role is the client role a session acts under. It decides which screens
// and operations the presentation layer offers; the coordination layer only
// forwards it to the remote store.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleAnalyst     Role = "analyst"
	RoleInterviewer Role = "interviewer"
)

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAnalyst, RoleInterviewer:
		return true
	}
	return false
}

// Actor is the identity behind a session. The Client attaches it to every
// call and the gateway forwards Email and Role to the remote store; the
// diagnostics auth interceptor populates it from request metadata.
//
// Example:
//
//	actor := contextx.Actor{Subject: "u-42", Email: "ana@example.org", Role: contextx.RoleAnalyst}
//	ctx = contextx.WithActor(ctx, actor)
type Actor struct {
	Subject string
	Email   string
	Role    Role
	Scopes  []string
}

// HasScope reports whether the actor was granted scope.
func (a Actor) HasScope(scope string) bool {
	return slices.Contains(a.Scopes, scope)
}

// WithActor returns a derived context that carries the given Actor.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// ActorFromContext extracts the Actor stored in ctx.
// The boolean return value indicates whether an Actor was present.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey).(Actor)
	return a, ok
}
