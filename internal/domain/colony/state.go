package colony

import (
	"time"

	"github.com/andrescamacho/xnova-go/internal/domain/shared"
)

// PlayerState is the aggregate the engine loads, reconciles, mutates and
// saves as one unit
type PlayerState struct {
	PlayerID  shared.PlayerID
	Ledger    *Ledger
	Queues    map[Category]*JobQueue
	Buildings map[string]int
	Research  map[string]int
	Fleet     map[string]int
	Defense   map[string]int
	// NextJobID is the id the next enqueued job receives
	NextJobID JobID
	CreatedAt time.Time
	// Version is the persistence version used for optimistic updates
	Version int64
}

// NewPlayerState creates a fresh colony with the starting resources and the
// production rates implied by having no buildings
func NewPlayerState(playerID shared.PlayerID, catalog *Catalog, starting Cost, now time.Time) (*PlayerState, error) {
	now = shared.EngineTime(now)
	state := &PlayerState{
		PlayerID:  playerID,
		Ledger:    NewLedger(now),
		Queues:    make(map[Category]*JobQueue, len(AllCategories())),
		Buildings: make(map[string]int),
		Research:  make(map[string]int),
		Fleet:     make(map[string]int),
		Defense:   make(map[string]int),
		NextJobID: 1,
		CreatedAt: now,
	}
	for _, cat := range AllCategories() {
		state.Queues[cat] = NewJobQueue(cat)
	}
	state.refreshEconomy(catalog, now)
	if err := state.Ledger.CreditAll(starting); err != nil {
		return nil, err
	}
	return state, nil
}

// Queue returns the queue of category, creating it when missing
func (s *PlayerState) Queue(category Category) *JobQueue {
	q, ok := s.Queues[category]
	if !ok {
		if s.Queues == nil {
			s.Queues = make(map[Category]*JobQueue)
		}
		q = NewJobQueue(category)
		s.Queues[category] = q
	}
	return q
}

// Inventory returns the level / count map a category's completions add to
func (s *PlayerState) Inventory(category Category) map[string]int {
	switch category {
	case CategoryBuilding:
		return s.Buildings
	case CategoryResearch:
		return s.Research
	case CategoryFleet:
		return s.Fleet
	default:
		return s.Defense
	}
}

// LevelOf returns the completed level or count of target
func (s *PlayerState) LevelOf(category Category, target string) int {
	return s.Inventory(category)[target]
}

// PendingJobs returns the total number of pending jobs over all queues
func (s *PlayerState) PendingJobs() int {
	n := 0
	for _, q := range s.Queues {
		n += q.Len()
	}
	return n
}

// refreshEconomy recomputes rates and capacities from building levels,
// syncing the ledger to at first
func (s *PlayerState) refreshEconomy(catalog *Catalog, at time.Time) {
	rates := catalog.ProductionRates(s.Buildings)
	caps := catalog.Capacities(s.Buildings)
	for _, kind := range AllResourceKinds() {
		s.Ledger.SetRate(kind, rates[kind], at)
		s.Ledger.SetCapacity(kind, caps[kind], at)
	}
}

// Clone returns a deep copy so that failed operations leave the original
// untouched
func (s *PlayerState) Clone() *PlayerState {
	c := &PlayerState{
		PlayerID:  s.PlayerID,
		Ledger:    s.Ledger.Clone(),
		Queues:    make(map[Category]*JobQueue, len(s.Queues)),
		Buildings: cloneCounts(s.Buildings),
		Research:  cloneCounts(s.Research),
		Fleet:     cloneCounts(s.Fleet),
		Defense:   cloneCounts(s.Defense),
		NextJobID: s.NextJobID,
		CreatedAt: s.CreatedAt,
		Version:   s.Version,
	}
	for cat, q := range s.Queues {
		c.Queues[cat] = q.Clone()
	}
	return c
}

func cloneCounts(m map[string]int) map[string]int {
	c := make(map[string]int, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
