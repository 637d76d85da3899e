package colony_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/xnova-go/internal/domain/colony"
	"github.com/andrescamacho/xnova-go/internal/domain/shared"
)

func newLedger(amount, rate, capacity float64) *colony.Ledger {
	return colony.ReconstructLedger(map[colony.ResourceKind]colony.ResourceAccount{
		colony.Metal: {Amount: amount, RatePerSecond: rate, Capacity: capacity},
	}, t0)
}

func TestLedger_SyncAccruesLinearly(t *testing.T) {
	ledger := newLedger(100, 10, 500)

	ledger.Sync(at(10))

	assert.InDelta(t, 200, ledger.Amount(colony.Metal), 1e-9)
	assert.Equal(t, at(10), ledger.LastSyncedAt())
}

func TestLedger_SyncClampsToCapacity(t *testing.T) {
	ledger := newLedger(100, 10, 500)

	ledger.Sync(at(3600))

	assert.Equal(t, 500.0, ledger.Amount(colony.Metal))
}

func TestLedger_SyncIsIdempotent(t *testing.T) {
	ledger := newLedger(100, 10, 500)

	ledger.Sync(at(7))
	first := ledger.Amount(colony.Metal)
	ledger.Sync(at(7))

	assert.Equal(t, first, ledger.Amount(colony.Metal))
}

func TestLedger_SplitSyncEqualsSingleSync(t *testing.T) {
	split := newLedger(0, 3.3, 0)
	single := newLedger(0, 3.3, 0)

	split.Sync(at(4))
	split.Sync(at(11))
	single.Sync(at(11))

	assert.InDelta(t, single.Amount(colony.Metal), split.Amount(colony.Metal), 1e-9)
}

func TestLedger_SyncBackwardsIsNoOp(t *testing.T) {
	ledger := newLedger(100, 10, 500)
	ledger.Sync(at(10))

	ledger.Sync(at(5))

	assert.InDelta(t, 200, ledger.Amount(colony.Metal), 1e-9)
	assert.Equal(t, at(10), ledger.LastSyncedAt())
}

func TestLedger_AmountAboveCapacityIsFrozen(t *testing.T) {
	ledger := newLedger(800, 10, 500)

	ledger.Sync(at(100))

	assert.Equal(t, 800.0, ledger.Amount(colony.Metal))
}

func TestLedger_CreditIsNotClamped(t *testing.T) {
	ledger := newLedger(450, 10, 500)

	require.NoError(t, ledger.Credit(colony.Metal, 200))

	assert.Equal(t, 650.0, ledger.Amount(colony.Metal))
}

func TestLedger_CreditRejectsNegative(t *testing.T) {
	ledger := newLedger(450, 10, 500)

	err := ledger.Credit(colony.Metal, -1)

	assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
	assert.Equal(t, 450.0, ledger.Amount(colony.Metal))
}

func TestLedger_DebitIsAllOrNothing(t *testing.T) {
	ledger := colony.ReconstructLedger(map[colony.ResourceKind]colony.ResourceAccount{
		colony.Metal:   {Amount: 100},
		colony.Crystal: {Amount: 10},
	}, t0)

	err := ledger.Debit(colony.Cost{colony.Metal: 50, colony.Crystal: 30})

	var insufficient *colony.InsufficientResourcesError
	require.ErrorAs(t, err, &insufficient)
	assert.InDelta(t, 20, insufficient.Shortfall[colony.Crystal], 1e-9)
	assert.NotContains(t, insufficient.Shortfall, colony.Metal)
	assert.Equal(t, 100.0, ledger.Amount(colony.Metal))
	assert.Equal(t, 10.0, ledger.Amount(colony.Crystal))
	assert.Equal(t, shared.CodeInsufficientResources, shared.CodeOf(err))
}

func TestLedger_DebitSucceeds(t *testing.T) {
	ledger := newLedger(100, 0, 0)

	require.NoError(t, ledger.Debit(colony.Cost{colony.Metal: 100}))

	assert.Equal(t, 0.0, ledger.Amount(colony.Metal))
}

func TestLedger_SetRateSyncsWithOldRateFirst(t *testing.T) {
	ledger := newLedger(0, 1, 0)

	ledger.SetRate(colony.Metal, 5, at(10))
	ledger.Sync(at(20))

	assert.InDelta(t, 10+50, ledger.Amount(colony.Metal), 1e-9)
}

func TestLedger_CloneIsIndependent(t *testing.T) {
	ledger := newLedger(100, 10, 500)
	clone := ledger.Clone()

	clone.Sync(at(10))
	require.NoError(t, clone.Debit(colony.Cost{colony.Metal: 150}))

	assert.Equal(t, 100.0, ledger.Amount(colony.Metal))
	assert.Equal(t, t0, ledger.LastSyncedAt())
}
