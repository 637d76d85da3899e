package colony

import (
	"context"

	"github.com/andrescamacho/xnova-go/internal/domain/shared"
)

// PersistenceGateway loads and stores player state and provides the
// per-player exclusive section
type PersistenceGateway interface {
	// Load returns the stored state, *shared.NotFoundError when the player is
	// unknown, or *shared.IOError on storage failure
	Load(ctx context.Context, playerID shared.PlayerID) (*PlayerState, error)
	// Save persists state atomically; *shared.IOError on failure
	Save(ctx context.Context, state *PlayerState) error
	// Create stores a new player
	Create(ctx context.Context, state *PlayerState) error
	// Delete destroys a player's state; *shared.NotFoundError when unknown
	Delete(ctx context.Context, playerID shared.PlayerID) error
	// ListPlayerIDs returns every stored player id in order
	ListPlayerIDs(ctx context.Context) ([]string, error)
	// WithExclusive runs fn while holding the player's exclusive section.
	// The section is released on every exit path.
	WithExclusive(ctx context.Context, playerID shared.PlayerID, fn func(ctx context.Context) error) error
}
