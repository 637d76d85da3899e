package engine_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/xnova-go/internal/application/engine"
	"github.com/andrescamacho/xnova-go/internal/domain/colony"
	"github.com/andrescamacho/xnova-go/internal/domain/shared"
	"github.com/andrescamacho/xnova-go/test/helpers"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	coordinator *engine.Coordinator
	store       *helpers.MemoryStore
	clock       *shared.MockClock
	player      shared.PlayerID
}

func newFixture(t *testing.T, metal float64) *fixture {
	t.Helper()
	gateway, store := helpers.NewMemoryGateway()
	clock := shared.NewMockClock(t0)
	opts := engine.DefaultOptions()
	opts.StartingResources = colony.Cost{colony.Metal: metal}
	f := &fixture{
		coordinator: engine.NewCoordinator(gateway, helpers.SmallCatalog(t), clock, opts),
		store:       store,
		clock:       clock,
		player:      shared.MustNewPlayerID("player-1"),
	}
	result, err := f.coordinator.RegisterPlayer(context.Background(), f.player)
	require.NoError(t, err)
	require.True(t, result.Created)
	return f
}

func metalOf(view engine.ResourcesView) int64 {
	for _, line := range view.Resources {
		if line.Kind == colony.Metal {
			return line.Amount
		}
	}
	return -1
}

func TestCoordinator_RegisterPlayerIsIdempotent(t *testing.T) {
	f := newFixture(t, 100)

	result, err := f.coordinator.RegisterPlayer(context.Background(), f.player)

	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.Equal(t, int64(100), metalOf(result.Status.Resources))
}

func TestCoordinator_BuildingScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100)

	started, err := f.coordinator.StartJob(ctx, f.player, colony.CategoryBuilding, "mine", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(50), metalOf(started.Resources))
	assert.Equal(t, int64(30), started.Job.RemainingSeconds)

	f.clock.Advance(10 * time.Second)
	resources, err := f.coordinator.GetResources(ctx, f.player)
	require.NoError(t, err)
	assert.Equal(t, int64(150), metalOf(resources.Resources))

	status, err := f.coordinator.GetStatus(ctx, f.player, colony.CategoryBuilding)
	require.NoError(t, err)
	require.Len(t, status.Status.Queues, 1)
	require.Len(t, status.Status.Queues[0].Jobs, 1)
	assert.Equal(t, int64(20), status.Status.Queues[0].Jobs[0].RemainingSeconds)
	assert.Equal(t, "20s", status.Status.Queues[0].Jobs[0].Countdown)

	f.clock.Advance(30 * time.Second)
	status, err = f.coordinator.GetStatus(ctx, f.player, colony.CategoryBuilding)
	require.NoError(t, err)
	assert.Empty(t, status.Status.Queues[0].Jobs)
	assert.Equal(t, 1, status.Status.Buildings["mine"])
	require.Len(t, status.Completed, 1)
	assert.Equal(t, "mine", status.Completed[0].Target)
}

func TestCoordinator_CompletionIsAppliedExactlyOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100)
	_, err := f.coordinator.StartJob(ctx, f.player, colony.CategoryBuilding, "mine", 1)
	require.NoError(t, err)
	f.clock.Advance(time.Minute)

	first, err := f.coordinator.GetStatus(ctx, f.player, "")
	require.NoError(t, err)
	second, err := f.coordinator.GetStatus(ctx, f.player, "")
	require.NoError(t, err)

	assert.Len(t, first.Completed, 1)
	assert.Empty(t, second.Completed)
	assert.Equal(t, 1, second.Status.Buildings["mine"])
	stored := f.store.Get(f.player)
	require.NotNil(t, stored)
	assert.Equal(t, 1, stored.Buildings["mine"])
	assert.Equal(t, 0, stored.Queue(colony.CategoryBuilding).Len())
}

func TestCoordinator_ReadWithoutCompletionsDoesNotSave(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100)
	before := f.store.Stats()

	f.clock.Advance(time.Minute)
	_, err := f.coordinator.GetResources(ctx, f.player)

	require.NoError(t, err)
	assert.Equal(t, before.SaveCalls, f.store.Stats().SaveCalls)
}

func TestCoordinator_BusinessErrorNeitherSavesNorRetries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	before := f.store.Stats()

	_, err := f.coordinator.StartJob(ctx, f.player, colony.CategoryBuilding, "mine", 1)

	assert.Equal(t, shared.CodeInsufficientResources, shared.CodeOf(err))
	after := f.store.Stats()
	assert.Equal(t, before.SaveCalls, after.SaveCalls)
	assert.Equal(t, before.Loads+1, after.Loads)
	assert.Equal(t, 10.0, f.store.Get(f.player).Ledger.Amount(colony.Metal))
}

func TestCoordinator_RetriesOnceAfterLoadFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100)
	before := f.store.Stats()
	f.store.FailNextLoads(1)

	result, err := f.coordinator.StartJob(ctx, f.player, colony.CategoryBuilding, "mine", 1)

	require.NoError(t, err)
	assert.Equal(t, int64(50), metalOf(result.Resources))
	assert.Equal(t, before.Loads+2, f.store.Stats().Loads)
	assert.Equal(t, 1, f.store.Get(f.player).Queue(colony.CategoryBuilding).Len())
}

func TestCoordinator_SecondSaveFailureSurfacesIOError(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100)
	f.store.FailNextSaves(2)

	_, err := f.coordinator.StartJob(ctx, f.player, colony.CategoryBuilding, "mine", 1)

	assert.Equal(t, shared.CodeIOError, shared.CodeOf(err))
	stored := f.store.Get(f.player)
	assert.Equal(t, 0, stored.Queue(colony.CategoryBuilding).Len())
	assert.Equal(t, 100.0, stored.Ledger.Amount(colony.Metal))
}

func TestCoordinator_ConcurrentStartsWithFundsForOne(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 50)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.coordinator.StartJob(ctx, f.player, colony.CategoryDefense, "turret", 1)
		}(i)
	}
	wg.Wait()

	codes := []shared.ErrorCode{shared.CodeOf(errs[0]), shared.CodeOf(errs[1])}
	assert.ElementsMatch(t, []shared.ErrorCode{"", shared.CodeInsufficientResources}, codes)
	stored := f.store.Get(f.player)
	assert.Equal(t, 1, stored.Queue(colony.CategoryDefense).Len())
	assert.Equal(t, 20.0, stored.Ledger.Amount(colony.Metal))
}

func TestCoordinator_CancelRefundsWithConfiguredFraction(t *testing.T) {
	ctx := context.Background()
	gateway, _ := helpers.NewMemoryGateway()
	opts := engine.DefaultOptions()
	opts.StartingResources = colony.Cost{colony.Metal: 100}
	opts.Settings.RefundFraction = 0.5
	coordinator := engine.NewCoordinator(gateway, helpers.SmallCatalog(t), shared.NewMockClock(t0), opts)
	player := shared.MustNewPlayerID("player-2")
	_, err := coordinator.RegisterPlayer(ctx, player)
	require.NoError(t, err)
	started, err := coordinator.StartJob(ctx, player, colony.CategoryResearch, "armour", 1)
	require.NoError(t, err)

	result, err := coordinator.CancelJob(ctx, player, colony.CategoryResearch, colony.JobID(started.Job.ID))

	require.NoError(t, err)
	assert.Equal(t, 15.0, result.Refund["metal"])
	assert.Equal(t, int64(85), metalOf(result.Resources))
}

func TestCoordinator_FractionalRefundIsNotRounded(t *testing.T) {
	ctx := context.Background()
	gateway, store := helpers.NewMemoryGateway()
	opts := engine.DefaultOptions()
	opts.StartingResources = colony.Cost{colony.Metal: 100}
	opts.Settings.RefundFraction = 0.25
	coordinator := engine.NewCoordinator(gateway, helpers.SmallCatalog(t), shared.NewMockClock(t0), opts)
	player := shared.MustNewPlayerID("player-3")
	_, err := coordinator.RegisterPlayer(ctx, player)
	require.NoError(t, err)
	started, err := coordinator.StartJob(ctx, player, colony.CategoryDefense, "turret", 1)
	require.NoError(t, err)

	result, err := coordinator.CancelJob(ctx, player, colony.CategoryDefense, colony.JobID(started.Job.ID))

	require.NoError(t, err)
	assert.Equal(t, 7.5, result.Refund["metal"])
	assert.Equal(t, 77.5, store.Get(player).Ledger.Amount(colony.Metal))
}

func TestCoordinator_UnknownPlayer(t *testing.T) {
	gateway, _ := helpers.NewMemoryGateway()
	coordinator := engine.NewCoordinator(gateway, helpers.SmallCatalog(t), shared.NewMockClock(t0), engine.DefaultOptions())

	_, err := coordinator.GetResources(context.Background(), shared.MustNewPlayerID("ghost"))

	assert.Equal(t, shared.CodeNotFound, shared.CodeOf(err))
}

func TestCoordinator_DeletePlayer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100)
	other := shared.MustNewPlayerID("player-0")
	_, err := f.coordinator.RegisterPlayer(ctx, other)
	require.NoError(t, err)
	_, err = f.coordinator.StartJob(ctx, f.player, colony.CategoryBuilding, "mine", 1)
	require.NoError(t, err)

	listed, err := f.coordinator.ListPlayers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"player-0", "player-1"}, listed.PlayerIDs)

	deleted, err := f.coordinator.DeletePlayer(ctx, f.player)
	require.NoError(t, err)
	assert.Equal(t, "player-1", deleted.PlayerID)
	assert.Nil(t, f.store.Get(f.player))

	_, err = f.coordinator.GetStatus(ctx, f.player, "")
	assert.Equal(t, shared.CodeNotFound, shared.CodeOf(err))
	_, err = f.coordinator.DeletePlayer(ctx, f.player)
	assert.Equal(t, shared.CodeNotFound, shared.CodeOf(err))

	listed, err = f.coordinator.ListPlayers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"player-0"}, listed.PlayerIDs)
}

func TestCoordinator_DeletedPlayerStartsOver(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100)
	_, err := f.coordinator.StartJob(ctx, f.player, colony.CategoryBuilding, "mine", 1)
	require.NoError(t, err)
	_, err = f.coordinator.DeletePlayer(ctx, f.player)
	require.NoError(t, err)

	result, err := f.coordinator.RegisterPlayer(ctx, f.player)

	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.Equal(t, int64(100), metalOf(result.Status.Resources))
}

func TestCountdown(t *testing.T) {
	assert.Equal(t, "1h 02m 05s", engine.Countdown(time.Hour+2*time.Minute+5*time.Second))
	assert.Equal(t, "2m 05s", engine.Countdown(2*time.Minute+5*time.Second))
	assert.Equal(t, "5s", engine.Countdown(5*time.Second))
	assert.Equal(t, "1d 00h 00m 01s", engine.Countdown(24*time.Hour+time.Second))
	assert.Equal(t, "done", engine.Countdown(0))
}
