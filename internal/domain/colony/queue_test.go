package colony_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/xnova-go/internal/domain/colony"
	"github.com/andrescamacho/xnova-go/internal/domain/shared"
)

func buildingJob(id colony.JobID, start, end int) *colony.Job {
	return &colony.Job{
		ID:          id,
		Category:    colony.CategoryBuilding,
		Target:      "mine",
		Quantity:    1,
		Cost:        colony.Cost{colony.Metal: 50},
		EnqueuedAt:  at(0),
		StartsAt:    at(start),
		CompletesAt: at(end),
	}
}

func filledQueue(t *testing.T) *colony.JobQueue {
	t.Helper()
	q := colony.NewJobQueue(colony.CategoryBuilding)
	require.NoError(t, q.Enqueue(buildingJob(1, 0, 10)))
	require.NoError(t, q.Enqueue(buildingJob(2, 10, 25)))
	require.NoError(t, q.Enqueue(buildingJob(3, 25, 40)))
	return q
}

func TestJobQueue_EnqueueRejectsOverlap(t *testing.T) {
	q := colony.NewJobQueue(colony.CategoryBuilding)
	require.NoError(t, q.Enqueue(buildingJob(1, 0, 10)))

	err := q.Enqueue(buildingJob(2, 5, 20))

	assert.Error(t, err)
	assert.Equal(t, 1, q.Len())
}

func TestJobQueue_EnqueueRejectsWrongCategory(t *testing.T) {
	q := colony.NewJobQueue(colony.CategoryFleet)

	err := q.Enqueue(buildingJob(1, 0, 10))

	assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
}

func TestJobQueue_DrainIsFIFOAndStopsAtFirstPending(t *testing.T) {
	q := filledQueue(t)

	done := q.Drain(at(30))

	require.Len(t, done, 2)
	assert.Equal(t, colony.JobID(1), done[0].ID)
	assert.Equal(t, colony.JobID(2), done[1].ID)
	assert.Equal(t, colony.JobStateCompleted, done[0].State)
	assert.Equal(t, 1, q.Len())
	assert.Equal(t, colony.JobID(3), q.Front().ID)
}

func TestJobQueue_DrainIncludesExactCompletionInstant(t *testing.T) {
	q := filledQueue(t)

	done := q.Drain(at(10))

	require.Len(t, done, 1)
	assert.Empty(t, q.Drain(at(10)))
}

func TestJobQueue_CancelLastJob(t *testing.T) {
	q := filledQueue(t)

	job, err := q.Cancel(3)

	require.NoError(t, err)
	assert.Equal(t, colony.JobStateCancelled, job.State)
	assert.Equal(t, 2, q.Len())
	assert.Equal(t, at(25), q.Last().CompletesAt)
}

func TestJobQueue_CancelMiddleJobIsNotCancellable(t *testing.T) {
	q := filledQueue(t)

	_, err := q.Cancel(2)

	var notCancellable *colony.NotCancellableError
	require.ErrorAs(t, err, &notCancellable)
	assert.Equal(t, colony.JobID(3), notCancellable.LastJobID)
	assert.Equal(t, 3, q.Len())
}

func TestJobQueue_CancelUnknownJob(t *testing.T) {
	q := filledQueue(t)

	_, err := q.Cancel(99)

	assert.Equal(t, shared.CodeNotFound, shared.CodeOf(err))
	assert.Equal(t, 3, q.Len())
}

func TestJobQueue_PeekStatusDoesNotMutate(t *testing.T) {
	q := filledQueue(t)

	status := q.PeekStatus(at(5))

	require.Len(t, status, 3)
	assert.True(t, status[0].Active)
	assert.Equal(t, 5*time.Second, status[0].Remaining)
	assert.InDelta(t, 0.5, status[0].Progress, 1e-9)
	assert.False(t, status[1].Active)
	assert.Equal(t, 0.0, status[1].Progress)
	assert.Equal(t, 35*time.Second, status[2].Remaining)
	assert.Equal(t, 3, q.Len())
}

func TestReconstructJobQueue_RejectsUnorderedRecords(t *testing.T) {
	_, err := colony.ReconstructJobQueue(colony.CategoryBuilding, []*colony.Job{
		buildingJob(2, 10, 20),
		buildingJob(1, 0, 10),
	})

	assert.Error(t, err)
}
