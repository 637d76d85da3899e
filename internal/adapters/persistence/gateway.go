package persistence

import (
	"context"
	"fmt"

	"github.com/andrescamacho/xnova-go/internal/domain/colony"
	"github.com/andrescamacho/xnova-go/internal/domain/shared"
)

// PlayerStateStore is the storage half of the gateway
type PlayerStateStore interface {
	Load(ctx context.Context, playerID shared.PlayerID) (*colony.PlayerState, error)
	Save(ctx context.Context, state *colony.PlayerState) error
	Create(ctx context.Context, state *colony.PlayerState) error
	Delete(ctx context.Context, playerID shared.PlayerID) error
	ListPlayerIDs(ctx context.Context) ([]string, error)
}

// Gateway implements colony.PersistenceGateway on top of a store and a
// process-local lock table. One daemon owns a database at a time.
type Gateway struct {
	store PlayerStateStore
	locks *PlayerLocks
}

// NewGateway creates a gateway
func NewGateway(store PlayerStateStore, locks *PlayerLocks) *Gateway {
	if locks == nil {
		locks = NewPlayerLocks()
	}
	return &Gateway{store: store, locks: locks}
}

// Load delegates to the store
func (g *Gateway) Load(ctx context.Context, playerID shared.PlayerID) (*colony.PlayerState, error) {
	return g.store.Load(ctx, playerID)
}

// Save delegates to the store
func (g *Gateway) Save(ctx context.Context, state *colony.PlayerState) error {
	return g.store.Save(ctx, state)
}

// Create delegates to the store
func (g *Gateway) Create(ctx context.Context, state *colony.PlayerState) error {
	return g.store.Create(ctx, state)
}

// Delete delegates to the store
func (g *Gateway) Delete(ctx context.Context, playerID shared.PlayerID) error {
	return g.store.Delete(ctx, playerID)
}

// ListPlayerIDs delegates to the store
func (g *Gateway) ListPlayerIDs(ctx context.Context) ([]string, error) {
	return g.store.ListPlayerIDs(ctx)
}

// WithExclusive runs fn inside the player's exclusive section. A panic in fn
// releases the section and is returned as an error.
func (g *Gateway) WithExclusive(ctx context.Context, playerID shared.PlayerID, fn func(ctx context.Context) error) error {
	return g.locks.WithLock(ctx, playerID.Value(), func(ctx context.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic in exclusive section for player %s: %v", playerID, r)
			}
		}()
		return fn(ctx)
	})
}
