package persistence

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

type playerLock struct {
	sem  *semaphore.Weighted
	refs int
}

// PlayerLocks provides one exclusive section per player. Entries are
// reference counted and dropped once nobody holds or waits for them.
type PlayerLocks struct {
	mu    sync.Mutex
	locks map[string]*playerLock
}

// NewPlayerLocks creates an empty lock table
func NewPlayerLocks() *PlayerLocks {
	return &PlayerLocks{locks: make(map[string]*playerLock)}
}

func (l *PlayerLocks) ref(key string) *playerLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &playerLock{sem: semaphore.NewWeighted(1)}
		l.locks[key] = lock
	}
	lock.refs++
	return lock
}

func (l *PlayerLocks) unref(key string, lock *playerLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, key)
	}
}

// WithLock runs fn while holding the lock for key. Acquisition honours ctx;
// the lock is released when fn returns or panics.
func (l *PlayerLocks) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	lock := l.ref(key)
	defer l.unref(key, lock)

	if err := lock.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("failed to acquire lock for player %s: %w", key, err)
	}
	defer lock.sem.Release(1)

	return fn(ctx)
}

// Len returns the number of live entries
func (l *PlayerLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
