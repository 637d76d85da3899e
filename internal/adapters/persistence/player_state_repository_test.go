package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/xnova-go/internal/adapters/persistence"
	"github.com/andrescamacho/xnova-go/internal/domain/colony"
	"github.com/andrescamacho/xnova-go/internal/domain/shared"
	"github.com/andrescamacho/xnova-go/test/helpers"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newPlayerWithJobs(t *testing.T) *colony.PlayerState {
	t.Helper()
	catalog := helpers.SmallCatalog(t)
	state, err := colony.NewPlayerState(shared.MustNewPlayerID("tg:42"), catalog, colony.Cost{colony.Metal: 200}, t0)
	require.NoError(t, err)
	_, err = colony.StartJob(state, catalog, colony.DefaultSettings(), colony.CategoryBuilding, "mine", 1, t0)
	require.NoError(t, err)
	_, err = colony.StartJob(state, catalog, colony.DefaultSettings(), colony.CategoryDefense, "turret", 3, t0.Add(5*time.Second))
	require.NoError(t, err)
	return state
}

func TestPlayerStateRepository_DocumentIsStoredVerbatim(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormPlayerStateRepository(db)
	state := newPlayerWithJobs(t)
	wantDocument, wantChecksum, err := persistence.EncodeDocument(persistence.ToDocument(state))
	require.NoError(t, err)

	require.NoError(t, repo.Create(context.Background(), state))

	var model persistence.PlayerStateModel
	require.NoError(t, db.Where("player_id = ?", "tg:42").First(&model).Error)
	assert.Equal(t, wantDocument, model.Document)
	assert.Equal(t, wantChecksum, model.Checksum)
	assert.Equal(t, persistence.Checksum([]byte(model.Document)), model.Checksum)
}

func TestPlayerStateRepository_CreateAndLoad(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormPlayerStateRepository(db)
	state := newPlayerWithJobs(t)

	// Act
	err := repo.Create(context.Background(), state)
	require.NoError(t, err)
	loaded, err := repo.Load(context.Background(), state.PlayerID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(1), loaded.Version)
	assert.Equal(t, state.Ledger.Snapshot(), loaded.Ledger.Snapshot())
	assert.True(t, state.Ledger.LastSyncedAt().Equal(loaded.Ledger.LastSyncedAt()))
	assert.Equal(t, state.NextJobID, loaded.NextJobID)
	for _, cat := range colony.AllCategories() {
		want := state.Queue(cat).Jobs()
		got := loaded.Queue(cat).Jobs()
		require.Len(t, got, len(want), cat)
		for i := range want {
			assert.Equal(t, want[i].ID, got[i].ID)
			assert.Equal(t, want[i].Target, got[i].Target)
			assert.Equal(t, want[i].Quantity, got[i].Quantity)
			assert.Equal(t, want[i].Cost, got[i].Cost)
			assert.True(t, want[i].CompletesAt.Equal(got[i].CompletesAt))
		}
	}
}

func TestPlayerStateRepository_LoadUnknownPlayer(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormPlayerStateRepository(db)

	_, err := repo.Load(context.Background(), shared.MustNewPlayerID("nobody"))

	var notFound *shared.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestPlayerStateRepository_SaveBumpsVersion(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormPlayerStateRepository(db)
	state := newPlayerWithJobs(t)
	require.NoError(t, repo.Create(context.Background(), state))

	// Act
	loaded, err := repo.Load(context.Background(), state.PlayerID)
	require.NoError(t, err)
	loaded.Buildings["silo"] = 2
	err = repo.Save(context.Background(), loaded)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(2), loaded.Version)
	reloaded, err := repo.Load(context.Background(), state.PlayerID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Buildings["silo"])
	assert.Equal(t, int64(2), reloaded.Version)
}

func TestPlayerStateRepository_StaleSaveIsRejected(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormPlayerStateRepository(db)
	state := newPlayerWithJobs(t)
	require.NoError(t, repo.Create(context.Background(), state))
	first, err := repo.Load(context.Background(), state.PlayerID)
	require.NoError(t, err)
	second, err := repo.Load(context.Background(), state.PlayerID)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), first))

	// Act
	err = repo.Save(context.Background(), second)

	// Assert
	var ioErr *shared.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.ErrorIs(t, err, persistence.ErrVersionConflict)
	assert.Equal(t, int64(1), second.Version)
}

func TestPlayerStateRepository_TamperedDocumentIsIOError(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormPlayerStateRepository(db)
	state := newPlayerWithJobs(t)
	require.NoError(t, repo.Create(context.Background(), state))
	result := db.Model(&persistence.PlayerStateModel{}).
		Where("player_id = ?", state.PlayerID.Value()).
		Update("checksum", "0000")
	require.NoError(t, result.Error)

	// Act
	_, err := repo.Load(context.Background(), state.PlayerID)

	// Assert
	assert.Equal(t, shared.CodeIOError, shared.CodeOf(err))
	assert.Contains(t, err.Error(), "checksum mismatch")
}

func TestPlayerStateRepository_DeleteAndList(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormPlayerStateRepository(db)
	ctx := context.Background()
	for _, id := range []string{"b", "a", "c"} {
		state, err := colony.NewPlayerState(shared.MustNewPlayerID(id), helpers.SmallCatalog(t), nil, t0)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, state))
	}

	require.NoError(t, repo.Delete(ctx, shared.MustNewPlayerID("b")))
	ids, err := repo.ListPlayerIDs(ctx)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids)
	var notFound *shared.NotFoundError
	assert.ErrorAs(t, repo.Delete(ctx, shared.MustNewPlayerID("b")), &notFound)
}
