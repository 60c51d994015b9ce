package ports

import (
	"context"

	"github.com/stewardhq/steward/pkg/domain"
)

// StateStore persists the last TurnState per session. It is what makes the
// out-of-band confirmation flow work: a withheld action survives between the
// turn that parked it and the approval that releases it.
type StateStore interface {
	// Save persists the state for a given session ID.
	Save(ctx context.Context, sessionID string, state *domain.TurnState) error

	// Load retrieves the state for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.TurnState, error)

	// Delete removes the state for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of sessions present in the store.
	List(ctx context.Context) ([]string, error)
}
