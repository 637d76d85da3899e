package persistence_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/xnova-go/internal/adapters/persistence"
	"github.com/andrescamacho/xnova-go/internal/domain/shared"
	"github.com/andrescamacho/xnova-go/test/helpers"
)

func TestPlayerLocks_SerializesSamePlayer(t *testing.T) {
	locks := persistence.NewPlayerLocks()
	var inside, maxInside int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locks.WithLock(context.Background(), "p1", func(ctx context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, 0, locks.Len())
}

func TestPlayerLocks_DifferentPlayersDoNotBlock(t *testing.T) {
	locks := persistence.NewPlayerLocks()
	entered := make(chan struct{})

	err := locks.WithLock(context.Background(), "p1", func(ctx context.Context) error {
		return locks.WithLock(ctx, "p2", func(context.Context) error {
			close(entered)
			return nil
		})
	})

	require.NoError(t, err)
	_, open := <-entered
	assert.False(t, open)
}

func TestPlayerLocks_AcquireHonoursContext(t *testing.T) {
	locks := persistence.NewPlayerLocks()
	release := make(chan struct{})
	held := make(chan struct{})
	go func() {
		_ = locks.WithLock(context.Background(), "p1", func(context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	called := false
	err := locks.WithLock(ctx, "p1", func(context.Context) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, called)
	close(release)
}

func TestGateway_PanicReleasesSection(t *testing.T) {
	gateway, _ := helpers.NewMemoryGateway()
	player := shared.MustNewPlayerID("p1")

	err := gateway.WithExclusive(context.Background(), player, func(context.Context) error {
		panic("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	err = gateway.WithExclusive(context.Background(), player, func(context.Context) error {
		return errors.New("second")
	})
	assert.EqualError(t, err, "second")
}
