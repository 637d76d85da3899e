package colony

import (
	"time"

	"github.com/andrescamacho/xnova-go/internal/domain/shared"
)

// Settings are the universe-wide knobs that are not part of the catalog
type Settings struct {
	UniverseSpeed  float64
	RefundFraction float64
}

// DefaultSettings returns speed 1 and a full refund on cancel
func DefaultSettings() Settings {
	return Settings{UniverseSpeed: 1, RefundFraction: 1}
}

// Reconcile brings a loaded state forward to now and applies every job due
// by then, across all categories, in completion order. Ties are broken by
// category order, then queue order. The ledger is synced to each job's
// completion instant before its effect is applied, so production changes
// take effect exactly when the building finishes.
//
// The input is not modified.
func Reconcile(state *PlayerState, catalog *Catalog, now time.Time) (*PlayerState, []CompletionEvent) {
	now = shared.EngineTime(now)
	next := state.Clone()
	var events []CompletionEvent

	for {
		queue := nextDue(next, now)
		if queue == nil {
			break
		}
		job := queue.PopFront()
		next.Ledger.Sync(job.CompletesAt)
		value := applyCompletion(next, catalog, job)
		events = append(events, newCompletionEvent(next.PlayerID, job, value))
	}
	next.Ledger.Sync(now)
	return next, events
}

func nextDue(state *PlayerState, now time.Time) *JobQueue {
	var best *JobQueue
	for _, cat := range AllCategories() {
		q, ok := state.Queues[cat]
		if !ok {
			continue
		}
		front := q.Front()
		if front == nil || !front.IsDue(now) {
			continue
		}
		if best == nil || front.CompletesAt.Before(best.Front().CompletesAt) {
			best = q
		}
	}
	return best
}

func applyCompletion(state *PlayerState, catalog *Catalog, job *Job) int {
	inventory := state.Inventory(job.Category)
	if job.Category.IsLevelled() {
		inventory[job.Target]++
	} else {
		inventory[job.Target] += job.Quantity
	}
	if job.Category == CategoryBuilding {
		state.refreshEconomy(catalog, job.CompletesAt)
	}
	return inventory[job.Target]
}

// StartJob validates and enqueues a job on a reconciled state. Every check
// runs before anything is debited, so a returned error means state is
// unchanged.
func StartJob(
	state *PlayerState,
	catalog *Catalog,
	settings Settings,
	category Category,
	target string,
	quantity int,
	now time.Time,
) (*Job, error) {
	now = shared.EngineTime(now)
	if !category.IsValid() {
		return nil, shared.NewValidationError("category", "unknown category: "+string(category))
	}
	def, err := catalog.Entity(category, target)
	if err != nil {
		return nil, err
	}
	rules := catalog.Rules(category)
	if err := CheckQuantity(def, rules, quantity); err != nil {
		return nil, err
	}
	if err := CheckPrerequisites(def, state); err != nil {
		return nil, err
	}
	if err := CheckNotUpgrading(state, category, rules); err != nil {
		return nil, err
	}
	if err := CheckSlots(def, state, quantity); err != nil {
		return nil, err
	}
	if err := CheckQueueCapacity(catalog, state, category); err != nil {
		return nil, err
	}

	queue := state.Queue(category)
	level := 0
	if category.IsLevelled() {
		level = state.LevelOf(category, target) + queue.CountTarget(target) + 1
	}
	cost := catalog.CostFor(def, level, quantity)
	duration := catalog.DurationFor(def, level, quantity, state.Buildings, settings.UniverseSpeed)

	start := SequenceStart(now, queue.Last())
	job := &Job{
		ID:          state.NextJobID,
		Category:    category,
		Target:      target,
		Quantity:    quantity,
		Cost:        cost,
		EnqueuedAt:  now,
		StartsAt:    start,
		CompletesAt: CompletionTime(start, duration),
	}
	if job.ID < 1 {
		job.ID = 1
	}
	if last := queue.Last(); last != nil && job.ID <= last.ID {
		job.ID = last.ID + 1
	}

	state.Ledger.Sync(now)
	if err := state.Ledger.Debit(cost); err != nil {
		return nil, err
	}
	if err := queue.Enqueue(job); err != nil {
		// unreachable for a consistent state; give the resources back
		_ = state.Ledger.CreditAll(cost)
		return nil, err
	}
	state.NextJobID = job.ID + 1
	return job.Clone(), nil
}

// CancelJob removes the last job of a category and credits back
// exactly cost * refundFraction. Refunds may exceed storage capacity.
func CancelJob(state *PlayerState, category Category, jobID JobID, refundFraction float64) (*Job, Cost, error) {
	if !category.IsValid() {
		return nil, nil, shared.NewValidationError("category", "unknown category: "+string(category))
	}
	if refundFraction < 0 || refundFraction > 1 {
		return nil, nil, shared.NewValidationError("refund_fraction", "must be within [0, 1]")
	}
	job, err := state.Queue(category).Cancel(jobID)
	if err != nil {
		return nil, nil, err
	}
	refund := job.Cost.Scale(refundFraction)
	if err := state.Ledger.CreditAll(refund); err != nil {
		return nil, nil, err
	}
	return job, refund, nil
}
