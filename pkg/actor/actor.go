// Package actor identifies the user performing an action. The gateway
// authenticates requests and forwards identity headers; every core operation
// reads the current user from the context instead of ambient state.
package actor

import (
	"context"
	"fmt"
)

// Well-known role names forwarded by the gateway.
const (
	RoleSupervisor       = "supervisor"
	RoleWarehouseManager = "warehouse_manager"
	RoleWarehouseStaff   = "warehouse_staff"
	RoleRepresentative   = "representative"
)

// Actor represents the entity performing an action in the system.
type Actor struct {
	// ID is the unique identifier of the actor (user ID)
	ID string `json:"id"`

	// Name is the actor's display name
	Name string `json:"name"`

	// Email is the actor's email address
	Email string `json:"email"`

	// Role is the actor's role name
	Role string `json:"role,omitempty"`
}

// String returns a string representation of the actor for logging
func (a *Actor) String() string {
	if a == nil {
		return "system"
	}
	return fmt.Sprintf("%s (%s)", a.Name, a.ID)
}

// IsWarehouseManager reports whether the actor may schedule and transition
// check orders.
func (a *Actor) IsWarehouseManager() bool {
	if a == nil {
		return false
	}
	return a.Role == RoleWarehouseManager || a.Role == RoleSupervisor
}

// contextKey is the type for context keys to avoid collisions
type contextKey string

const actorContextKey contextKey = "actor"

// FromContext retrieves the Actor from the context.
// Returns nil if no actor is present (e.g., system operations).
func FromContext(ctx context.Context) *Actor {
	if ctx == nil {
		return nil
	}
	a, ok := ctx.Value(actorContextKey).(*Actor)
	if !ok {
		return nil
	}
	return a
}

// WithActor returns a new context with the Actor attached.
func WithActor(ctx context.Context, a *Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorContextKey, a)
}

// MustFromContext retrieves the Actor from the context.
// Panics if no actor is present. Use only when actor is guaranteed to exist.
func MustFromContext(ctx context.Context) *Actor {
	a := FromContext(ctx)
	if a == nil {
		panic("actor not found in context")
	}
	return a
}

// SystemActor returns an Actor representing the system itself.
// Use this for background jobs and system-initiated operations.
func SystemActor() *Actor {
	return &Actor{
		ID:    "00000000-0000-0000-0000-000000000000",
		Name:  "System",
		Email: "system@pharmadist.local",
	}
}

// IsSystem returns true if the actor represents the system.
func (a *Actor) IsSystem() bool {
	if a == nil {
		return true
	}
	return a.ID == "00000000-0000-0000-0000-000000000000"
}
