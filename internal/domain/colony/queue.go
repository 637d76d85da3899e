package colony

import (
	"fmt"
	"strconv"
	"time"

	"github.com/andrescamacho/xnova-go/internal/domain/shared"
)

// JobStatus is a read-only view of a pending job at a given instant
type JobStatus struct {
	Job       Job
	Remaining time.Duration
	Progress  float64
	// Active is true for the job currently being worked on (the queue head
	// once its start time has passed)
	Active bool
}

// JobQueue is the ordered sequence of pending jobs of one category.
// Insertion order is execution order and CompletesAt is strictly increasing.
type JobQueue struct {
	category Category
	jobs     []*Job
}

// NewJobQueue creates an empty queue for category
func NewJobQueue(category Category) *JobQueue {
	return &JobQueue{category: category}
}

// ReconstructJobQueue rebuilds a queue from persistence, rejecting records
// that break the ordering invariant
func ReconstructJobQueue(category Category, jobs []*Job) (*JobQueue, error) {
	q := NewJobQueue(category)
	for _, job := range jobs {
		if err := q.Enqueue(job); err != nil {
			return nil, fmt.Errorf("invalid persisted %s queue: %w", category, err)
		}
	}
	return q, nil
}

// Category returns the queue's category
func (q *JobQueue) Category() Category {
	return q.category
}

// Len returns the number of pending jobs
func (q *JobQueue) Len() int {
	return len(q.jobs)
}

// Last returns the most recently enqueued job, or nil
func (q *JobQueue) Last() *Job {
	if len(q.jobs) == 0 {
		return nil
	}
	return q.jobs[len(q.jobs)-1]
}

// Front returns the job that completes first, or nil
func (q *JobQueue) Front() *Job {
	if len(q.jobs) == 0 {
		return nil
	}
	return q.jobs[0]
}

// Jobs returns copies of the pending jobs in execution order
func (q *JobQueue) Jobs() []*Job {
	out := make([]*Job, 0, len(q.jobs))
	for _, job := range q.jobs {
		out = append(out, job.Clone())
	}
	return out
}

// CountTarget returns how many pending jobs produce target
func (q *JobQueue) CountTarget(target string) int {
	n := 0
	for _, job := range q.jobs {
		if job.Target == target {
			n++
		}
	}
	return n
}

// QueuedQuantity returns the total quantity of target still pending
func (q *JobQueue) QueuedQuantity(target string) int {
	n := 0
	for _, job := range q.jobs {
		if job.Target == target {
			n += job.Quantity
		}
	}
	return n
}

// Enqueue appends an already charged job. The job's StartsAt must not be
// before the previous job's CompletesAt and its CompletesAt must be strictly
// later.
func (q *JobQueue) Enqueue(job *Job) error {
	if job == nil {
		return shared.NewValidationError("job", "must not be nil")
	}
	if job.Category != q.category {
		return shared.NewValidationError("category", fmt.Sprintf("job of category %s cannot join the %s queue", job.Category, q.category))
	}
	if job.Quantity < 1 {
		return shared.NewValidationError("quantity", "must be positive")
	}
	if !job.CompletesAt.After(job.StartsAt) {
		return shared.NewValidationError("completes_at", "must be after starts_at")
	}
	if last := q.Last(); last != nil {
		if job.ID <= last.ID {
			return shared.NewValidationError("id", fmt.Sprintf("job id %d is not after %d", job.ID, last.ID))
		}
		if job.StartsAt.Before(last.CompletesAt) {
			return shared.NewValidationError("starts_at", "job would overlap the previous job")
		}
	}
	job.State = JobStatePending
	q.jobs = append(q.jobs, job)
	return nil
}

// PopFront removes and returns the first job, marking it completed
func (q *JobQueue) PopFront() *Job {
	if len(q.jobs) == 0 {
		return nil
	}
	job := q.jobs[0]
	q.jobs[0] = nil
	q.jobs = q.jobs[1:]
	job.State = JobStateCompleted
	return job
}

// Drain pops every leading job with CompletesAt <= now, in FIFO order. It
// stops at the first job still pending.
func (q *JobQueue) Drain(now time.Time) []*Job {
	var done []*Job
	for {
		front := q.Front()
		if front == nil || !front.IsDue(now) {
			return done
		}
		done = append(done, q.PopFront())
	}
}

// Cancel removes the job with id. Only the last job may be cancelled, since
// removing a middle job would shift every later completion time.
func (q *JobQueue) Cancel(id JobID) (*Job, error) {
	last := q.Last()
	if last == nil {
		return nil, shared.NewNotFoundError("job", strconv.FormatInt(int64(id), 10))
	}
	if last.ID != id {
		for _, job := range q.jobs {
			if job.ID == id {
				return nil, NewNotCancellableError(id, last.ID)
			}
		}
		return nil, shared.NewNotFoundError("job", strconv.FormatInt(int64(id), 10))
	}
	q.jobs[len(q.jobs)-1] = nil
	q.jobs = q.jobs[:len(q.jobs)-1]
	last.State = JobStateCancelled
	return last, nil
}

// PeekStatus returns the pending jobs with their remaining time as of now
// without mutating the queue
func (q *JobQueue) PeekStatus(now time.Time) []JobStatus {
	out := make([]JobStatus, 0, len(q.jobs))
	for i, job := range q.jobs {
		out = append(out, JobStatus{
			Job:       *job.Clone(),
			Remaining: Remaining(job, now),
			Progress:  Progress(job, now),
			Active:    i == 0 && !now.Before(job.StartsAt),
		})
	}
	return out
}

// Clone returns a deep copy of the queue
func (q *JobQueue) Clone() *JobQueue {
	c := NewJobQueue(q.category)
	c.jobs = q.Jobs()
	return c
}
