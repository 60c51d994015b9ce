package ports

import (
	"context"

	"github.com/stewardhq/steward/pkg/domain"
)

// CapabilityModule is a registered unit of device functionality. Any concrete
// module (calendar, clock, notes, contacts, messaging) conforms to this
// contract to be registrable.
//
// Modules are registered once at startup and treated as read-only afterwards.
// Execute must tolerate being abandoned: the router stops waiting after its
// timeout but cannot stop the underlying work.
type CapabilityModule interface {
	// ID is the unique module identifier, e.g. "clock".
	ID() string

	// Description is a human-readable summary used in the generated schema.
	Description() string

	// Operations lists the callable units this module exposes.
	Operations() []domain.Operation

	// RequiredPermissions lists platform permission identifiers that must all
	// be granted before any operation may run.
	RequiredPermissions() []string

	// IsAvailable reports whether the module can currently serve calls
	// (device state, hardware presence, signed-in account, ...).
	IsAvailable(ctx context.Context) bool

	// Execute runs one operation. It returns a fresh Response per call and
	// never panics across the boundary.
	Execute(ctx context.Context, operationID string, params map[string]any) domain.Response
}

// PermissionSource answers whether a platform permission is currently granted.
type PermissionSource interface {
	Granted(ctx context.Context, permission string) bool
}

// GrantAll is a PermissionSource that grants everything. Useful for tests and
// environments without a permission model.
type GrantAll struct{}

func (GrantAll) Granted(context.Context, string) bool { return true }
