package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/xnova-go/internal/domain/colony"
	"github.com/andrescamacho/xnova-go/internal/domain/shared"
)

// ErrVersionConflict is returned when a row changed since it was loaded
var ErrVersionConflict = errors.New("player state was modified concurrently")

// GormPlayerStateRepository stores player states as checksummed documents
type GormPlayerStateRepository struct {
	db *gorm.DB
}

// NewGormPlayerStateRepository creates a new GORM player state repository
func NewGormPlayerStateRepository(db *gorm.DB) *GormPlayerStateRepository {
	return &GormPlayerStateRepository{db: db}
}

// Load retrieves a player's state
func (r *GormPlayerStateRepository) Load(ctx context.Context, playerID shared.PlayerID) (*colony.PlayerState, error) {
	var model PlayerStateModel
	result := r.db.WithContext(ctx).Where("player_id = ?", playerID.Value()).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("player", playerID.String())
		}
		return nil, shared.NewIOError("load", result.Error)
	}

	doc, err := DecodeDocument(model.Document, model.Checksum)
	if err != nil {
		return nil, shared.NewIOError("load", err)
	}
	state, err := FromDocument(doc)
	if err != nil {
		return nil, shared.NewIOError("load", fmt.Errorf("corrupt player document: %w", err))
	}
	state.Version = model.Version
	return state, nil
}

// Create inserts a new player state with version 1
func (r *GormPlayerStateRepository) Create(ctx context.Context, state *colony.PlayerState) error {
	document, checksum, err := EncodeDocument(ToDocument(state))
	if err != nil {
		return shared.NewIOError("create", err)
	}

	now := time.Now().UTC()
	model := &PlayerStateModel{
		PlayerID:  state.PlayerID.Value(),
		Document:  document,
		Checksum:  checksum,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if result := r.db.WithContext(ctx).Create(model); result.Error != nil {
		return shared.NewIOError("create", result.Error)
	}
	state.Version = 1
	return nil
}

// Save writes the state if the stored version still matches the loaded one
func (r *GormPlayerStateRepository) Save(ctx context.Context, state *colony.PlayerState) error {
	document, checksum, err := EncodeDocument(ToDocument(state))
	if err != nil {
		return shared.NewIOError("save", err)
	}

	result := r.db.WithContext(ctx).
		Model(&PlayerStateModel{}).
		Where("player_id = ? AND version = ?", state.PlayerID.Value(), state.Version).
		Updates(map[string]interface{}{
			"document":   document,
			"checksum":   checksum,
			"version":    state.Version + 1,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return shared.NewIOError("save", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewIOError("save", ErrVersionConflict)
	}
	state.Version++
	return nil
}

// Delete removes a player's state
func (r *GormPlayerStateRepository) Delete(ctx context.Context, playerID shared.PlayerID) error {
	result := r.db.WithContext(ctx).Where("player_id = ?", playerID.Value()).Delete(&PlayerStateModel{})
	if result.Error != nil {
		return shared.NewIOError("delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("player", playerID.String())
	}
	return nil
}

// ListPlayerIDs returns every stored player id in order
func (r *GormPlayerStateRepository) ListPlayerIDs(ctx context.Context) ([]string, error) {
	var ids []string
	result := r.db.WithContext(ctx).Model(&PlayerStateModel{}).Order("player_id").Pluck("player_id", &ids)
	if result.Error != nil {
		return nil, shared.NewIOError("list", result.Error)
	}
	return ids, nil
}
