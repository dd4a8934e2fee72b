// Package identity carries the acting caller through the request context.
// The HTTP layer verifies credentials and installs an Identity; the domain
// packages only ever consume the resulting (user id, roles) pair.
package identity

import (
	"context"
	"slices"
)

// SystemUserID is the sentinel identity used for background writes where no
// caller context exists (expiry worker, seeding). It must never be used for
// a caller-initiated request.
const SystemUserID = "system"

type Identity struct {
	UserID string
	Roles  []string
}

func System() Identity {
	return Identity{UserID: SystemUserID}
}

func (i Identity) IsSystem() bool { return i.UserID == SystemUserID }

func (i Identity) HasRole(role string) bool {
	return slices.Contains(i.Roles, role)
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity installed by the auth middleware.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, false
	}
	return id, true
}

// FromContextOrSystem is used by audit stamping: background writes fall back
// to the system sentinel, caller-initiated requests always carry an identity
// by the time they reach a service method.
func FromContextOrSystem(ctx context.Context) Identity {
	if id, ok := FromContext(ctx); ok {
		return id
	}
	return System()
}
