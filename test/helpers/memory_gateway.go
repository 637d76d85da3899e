package helpers

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/andrescamacho/xnova-go/internal/adapters/persistence"
	"github.com/andrescamacho/xnova-go/internal/domain/colony"
	"github.com/andrescamacho/xnova-go/internal/domain/shared"
)

// ErrInjected is the cause of every injected persistence failure
var ErrInjected = errors.New("injected storage failure")

// MemoryStore is an in-memory PlayerStateStore with failure injection.
// States are cloned on the way in and out, like a real database.
type MemoryStore struct {
	mu        sync.Mutex
	states    map[string]*colony.PlayerState
	loadFails int
	saveFails int
	stats     StoreStats
}

// StoreStats counts store calls
type StoreStats struct {
	Loads     int
	SaveCalls int
	// Saves counts successful saves
	Saves int
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]*colony.PlayerState)}
}

// FailNextLoads makes the next n loads return an IOError
func (s *MemoryStore) FailNextLoads(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadFails = n
}

// FailNextSaves makes the next n saves return an IOError
func (s *MemoryStore) FailNextSaves(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveFails = n
}

// Stats returns the call counters
func (s *MemoryStore) Stats() StoreStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Load returns a copy of the stored state
func (s *MemoryStore) Load(_ context.Context, playerID shared.PlayerID) (*colony.PlayerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Loads++
	if s.loadFails > 0 {
		s.loadFails--
		return nil, shared.NewIOError("load", ErrInjected)
	}
	state, ok := s.states[playerID.Value()]
	if !ok {
		return nil, shared.NewNotFoundError("player", playerID.String())
	}
	return state.Clone(), nil
}

// Save stores a copy of state, enforcing the version like the gorm store
func (s *MemoryStore) Save(_ context.Context, state *colony.PlayerState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.SaveCalls++
	if s.saveFails > 0 {
		s.saveFails--
		return shared.NewIOError("save", ErrInjected)
	}
	stored, ok := s.states[state.PlayerID.Value()]
	if !ok || stored.Version != state.Version {
		return shared.NewIOError("save", persistence.ErrVersionConflict)
	}
	state.Version++
	s.states[state.PlayerID.Value()] = state.Clone()
	s.stats.Saves++
	return nil
}

// Create stores a new player
func (s *MemoryStore) Create(_ context.Context, state *colony.PlayerState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.states[state.PlayerID.Value()]; exists {
		return shared.NewIOError("create", errors.New("player already exists"))
	}
	state.Version = 1
	s.states[state.PlayerID.Value()] = state.Clone()
	return nil
}

// Delete removes a stored player
func (s *MemoryStore) Delete(_ context.Context, playerID shared.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.states[playerID.Value()]; !ok {
		return shared.NewNotFoundError("player", playerID.String())
	}
	delete(s.states, playerID.Value())
	return nil
}

// ListPlayerIDs returns the stored player ids in order
func (s *MemoryStore) ListPlayerIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.states))
	for id := range s.states {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Put replaces a stored state directly, bypassing versioning
func (s *MemoryStore) Put(state *colony.PlayerState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state.Version == 0 {
		state.Version = 1
	}
	s.states[state.PlayerID.Value()] = state.Clone()
}

// Get returns a copy of the stored state, or nil
func (s *MemoryStore) Get(playerID shared.PlayerID) *colony.PlayerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[playerID.Value()]
	if !ok {
		return nil
	}
	return state.Clone()
}

// NewMemoryGateway returns a gateway over a fresh MemoryStore using the real
// per-player lock table
func NewMemoryGateway() (*persistence.Gateway, *MemoryStore) {
	store := NewMemoryStore()
	return persistence.NewGateway(store, persistence.NewPlayerLocks()), store
}
