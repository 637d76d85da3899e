package colony_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/xnova-go/internal/domain/colony"
)

func TestUnitDuration(t *testing.T) {
	tests := []struct {
		name string
		cost colony.Cost
		mods colony.DurationModifiers
		want time.Duration
	}{
		{
			name: "one hour at divisor 2500",
			cost: colony.Cost{colony.Metal: 2000, colony.Crystal: 500},
			mods: colony.DurationModifiers{Divisor: 2500},
			want: time.Hour,
		},
		{
			name: "speed-up building halves at level 1",
			cost: colony.Cost{colony.Metal: 2000, colony.Crystal: 500},
			mods: colony.DurationModifiers{Divisor: 2500, SpeedupLevel: 1},
			want: 30 * time.Minute,
		},
		{
			name: "universe speed divides",
			cost: colony.Cost{colony.Metal: 2000, colony.Crystal: 500},
			mods: colony.DurationModifiers{Divisor: 2500, UniverseSpeed: 4},
			want: 15 * time.Minute,
		},
		{
			name: "deuterium does not count",
			cost: colony.Cost{colony.Deuterium: 100000},
			mods: colony.DurationModifiers{Divisor: 2500},
			want: time.Second,
		},
		{
			name: "never below one second",
			cost: colony.Cost{colony.Metal: 1},
			mods: colony.DurationModifiers{Divisor: 2500},
			want: time.Second,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, colony.UnitDuration(tt.cost, tt.mods))
		})
	}
}

func TestBatchDurationIsLinear(t *testing.T) {
	assert.Equal(t, 50*time.Second, colony.BatchDuration(10*time.Second, 5))
}

func TestSequenceStart(t *testing.T) {
	previous := &colony.Job{StartsAt: at(0), CompletesAt: at(100)}

	assert.Equal(t, at(100), colony.SequenceStart(at(10), previous))
	assert.Equal(t, at(150), colony.SequenceStart(at(150), previous))
	assert.Equal(t, at(10), colony.SequenceStart(at(10), nil))
}

func TestRemainingAndProgress(t *testing.T) {
	job := &colony.Job{StartsAt: at(10), CompletesAt: at(30)}

	assert.Equal(t, 30*time.Second, colony.Remaining(job, at(0)))
	assert.Equal(t, 0.0, colony.Progress(job, at(0)))
	assert.InDelta(t, 0.25, colony.Progress(job, at(15)), 1e-9)
	assert.Equal(t, time.Duration(0), colony.Remaining(job, at(45)))
	assert.Equal(t, 1.0, colony.Progress(job, at(45)))
}
