package colony

import (
	"math"
	"time"

	"github.com/andrescamacho/xnova-go/internal/domain/shared"
)

// affordEpsilon absorbs float drift from fractional accrual when comparing
// stockpiles against whole-unit costs
const affordEpsilon = 1e-9

// ResourceAccount is the stockpile of a single resource kind
type ResourceAccount struct {
	Amount        float64
	RatePerSecond float64
	// Capacity <= 0 means unbounded
	Capacity float64
}

func (a *ResourceAccount) accrue(elapsedSeconds float64) {
	if elapsedSeconds <= 0 || a.RatePerSecond == 0 {
		return
	}
	next := a.Amount + a.RatePerSecond*elapsedSeconds
	if a.Capacity > 0 && next > a.Capacity {
		// production beyond capacity is lost; a stockpile already above
		// capacity (refunds) is frozen rather than cut back
		next = math.Max(a.Capacity, a.Amount)
	}
	if next < 0 {
		next = 0
	}
	a.Amount = next
}

// Ledger is the per-player stockpile of every resource kind. Amounts are
// derived lazily: they are only correct as of lastSyncedAt, and Sync brings
// them forward to a given instant.
//
// Invariants:
// - amount after Sync(t) == clamp(amount_prev + rate*(t-lastSyncedAt), 0, capacity)
// - Debit is all-or-nothing across the full cost mapping
// - rate/capacity changes are applied only after syncing at the old values
type Ledger struct {
	accounts     map[ResourceKind]*ResourceAccount
	lastSyncedAt time.Time
}

// NewLedger creates a ledger with an empty account for every resource kind
func NewLedger(at time.Time) *Ledger {
	l := &Ledger{
		accounts:     make(map[ResourceKind]*ResourceAccount),
		lastSyncedAt: at,
	}
	for _, kind := range AllResourceKinds() {
		l.accounts[kind] = &ResourceAccount{}
	}
	return l
}

// ReconstructLedger rebuilds a ledger from persistence
func ReconstructLedger(accounts map[ResourceKind]ResourceAccount, lastSyncedAt time.Time) *Ledger {
	l := NewLedger(lastSyncedAt)
	for kind, acc := range accounts {
		a := acc
		l.accounts[kind] = &a
	}
	return l
}

// LastSyncedAt returns the instant the amounts are valid for
func (l *Ledger) LastSyncedAt() time.Time {
	return l.lastSyncedAt
}

func (l *Ledger) account(kind ResourceKind) *ResourceAccount {
	acc, ok := l.accounts[kind]
	if !ok {
		acc = &ResourceAccount{}
		l.accounts[kind] = acc
	}
	return acc
}

// Sync recomputes every account up to now. Calling it twice with the same
// instant changes nothing; an instant before lastSyncedAt is ignored.
func (l *Ledger) Sync(now time.Time) {
	if l.lastSyncedAt.IsZero() {
		l.lastSyncedAt = now
		return
	}
	if !now.After(l.lastSyncedAt) {
		return
	}
	elapsed := now.Sub(l.lastSyncedAt).Seconds()
	for _, acc := range l.accounts {
		acc.accrue(elapsed)
	}
	l.lastSyncedAt = now
}

// Amount returns the stockpile as of LastSyncedAt
func (l *Ledger) Amount(kind ResourceKind) float64 {
	if acc, ok := l.accounts[kind]; ok {
		return acc.Amount
	}
	return 0
}

// Account returns a copy of the account for kind
func (l *Ledger) Account(kind ResourceKind) ResourceAccount {
	if acc, ok := l.accounts[kind]; ok {
		return *acc
	}
	return ResourceAccount{}
}

// Snapshot returns a copy of every account
func (l *Ledger) Snapshot() map[ResourceKind]ResourceAccount {
	out := make(map[ResourceKind]ResourceAccount, len(l.accounts))
	for kind, acc := range l.accounts {
		out[kind] = *acc
	}
	return out
}

// Credit adds amount to the stockpile of kind. Credits are not clamped to
// capacity.
func (l *Ledger) Credit(kind ResourceKind, amount float64) error {
	if amount < 0 {
		return shared.NewValidationError("amount", "credit must not be negative")
	}
	l.account(kind).Amount += amount
	return nil
}

// CreditAll credits every component of cost
func (l *Ledger) CreditAll(cost Cost) error {
	for _, kind := range cost.Kinds() {
		if cost[kind] < 0 {
			return shared.NewValidationError("cost", "credit must not be negative")
		}
	}
	for _, kind := range cost.Kinds() {
		l.account(kind).Amount += cost[kind]
	}
	return nil
}

// Shortfall returns, per kind, how much is missing to cover cost.
// An empty result means the cost is affordable.
func (l *Ledger) Shortfall(cost Cost) Cost {
	missing := Cost{}
	for kind, need := range cost {
		have := l.Amount(kind)
		if need-have > affordEpsilon {
			missing[kind] = need - have
		}
	}
	return missing
}

// CanAfford reports whether every component of cost is covered
func (l *Ledger) CanAfford(cost Cost) bool {
	return len(l.Shortfall(cost)) == 0
}

// Debit removes cost from the stockpiles. If any kind is insufficient no
// kind is debited.
func (l *Ledger) Debit(cost Cost) error {
	for kind, v := range cost {
		if v < 0 {
			return shared.NewValidationError("cost", "debit of "+string(kind)+" must not be negative")
		}
	}
	if missing := l.Shortfall(cost); len(missing) > 0 {
		return NewInsufficientResourcesError(missing)
	}
	for kind, v := range cost {
		acc := l.account(kind)
		acc.Amount = math.Max(0, acc.Amount-v)
	}
	return nil
}

// SetRate changes the production rate of kind after syncing up to at with
// the old rate
func (l *Ledger) SetRate(kind ResourceKind, ratePerSecond float64, at time.Time) {
	l.Sync(at)
	l.account(kind).RatePerSecond = ratePerSecond
}

// SetCapacity changes the storage capacity of kind after syncing up to at
func (l *Ledger) SetCapacity(kind ResourceKind, capacity float64, at time.Time) {
	l.Sync(at)
	l.account(kind).Capacity = capacity
}

// Clone returns a deep copy of the ledger
func (l *Ledger) Clone() *Ledger {
	return ReconstructLedger(l.Snapshot(), l.lastSyncedAt)
}
