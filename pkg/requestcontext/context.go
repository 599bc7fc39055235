// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Values are set by middleware and consumed by services. Keeping this package
// free of net/http lets services import only what they need. The identity
// provider is external: the actor ID and role arrive already authenticated
// and the core trusts them as given.
//
// Usage in services (read values):
//
//	actorID := requestcontext.ActorID(ctx)
//	role := requestcontext.ActorRole(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithActor(ctx, "actor-id", requestcontext.RoleAdmin)
package requestcontext

import (
	"context"
	"time"
)

// Role is the authenticated actor's role as asserted by the identity provider.
type Role string

const (
	RoleCandidate   Role = "candidate"
	RoleInterviewer Role = "interviewer"
	RoleAdmin       Role = "admin"
)

// IsValid checks if the role is one of the supported enum values.
func (r Role) IsValid() bool {
	switch r {
	case RoleCandidate, RoleInterviewer, RoleAdmin:
		return true
	}
	return false
}

// IsEvaluator reports whether the role may submit assignment feedback.
func (r Role) IsEvaluator() bool {
	return r == RoleInterviewer || r == RoleAdmin
}

// Context key types (unexported for encapsulation).
type (
	actorIDKey     struct{}
	actorRoleKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// ActorID retrieves the authenticated actor's ID from the context.
// Returns the empty string if not set.
func ActorID(ctx context.Context) string {
	if actorID, ok := ctx.Value(actorIDKey{}).(string); ok {
		return actorID
	}
	return ""
}

// ActorRole retrieves the authenticated actor's role from the context.
// Returns the empty Role if not set.
func ActorRole(ctx context.Context) Role {
	if role, ok := ctx.Value(actorRoleKey{}).(Role); ok {
		return role
	}
	return ""
}

// WithActor injects the authenticated actor into the context.
func WithActor(ctx context.Context, actorID string, role Role) context.Context {
	ctx = context.WithValue(ctx, actorIDKey{}, actorID)
	return context.WithValue(ctx, actorRoleKey{}, role)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() for non-HTTP contexts (workers, CLI, tests).
//
// The retry gate depends on this: injecting a fixed time makes
// freezing-period arithmetic deterministic in tests.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
