package colony

import (
	"fmt"
	"time"

	"github.com/andrescamacho/xnova-go/internal/domain/shared"
)

// Category is an independent timed-job queue
type Category string

const (
	CategoryBuilding Category = "building"
	CategoryFleet    Category = "fleet"
	CategoryDefense  Category = "defense"
	CategoryResearch Category = "research"
)

// AllCategories returns every category in drain order
func AllCategories() []Category {
	return []Category{CategoryBuilding, CategoryFleet, CategoryDefense, CategoryResearch}
}

// String returns the string representation of the Category
func (c Category) String() string {
	return string(c)
}

// IsValid checks if the category is valid
func (c Category) IsValid() bool {
	switch c {
	case CategoryBuilding, CategoryFleet, CategoryDefense, CategoryResearch:
		return true
	default:
		return false
	}
}

// IsLevelled reports whether completing a job raises a level (building,
// research) rather than adding units (fleet, defense)
func (c Category) IsLevelled() bool {
	return c == CategoryBuilding || c == CategoryResearch
}

// order is the tie-break position when jobs of different categories
// complete at the same instant
func (c Category) order() int {
	for i, cat := range AllCategories() {
		if cat == c {
			return i
		}
	}
	return len(AllCategories())
}

// ParseCategory parses a string into a Category
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", shared.NewValidationError("category", fmt.Sprintf("unknown category: %s", s))
	}
	return c, nil
}

// JobState is the lifecycle state of a job. Only pending jobs are persisted;
// completed and cancelled jobs are removed from their queue.
type JobState string

const (
	JobStatePending   JobState = "pending"
	JobStateCompleted JobState = "completed"
	JobStateCancelled JobState = "cancelled"
)

// JobID is unique per player and monotonically assigned
type JobID int64

// Job is a timed production order
type Job struct {
	ID       JobID
	Category Category
	Target   string
	Quantity int
	Cost     Cost
	// EnqueuedAt is when the player submitted the job
	EnqueuedAt time.Time
	// StartsAt is max(EnqueuedAt, previous job's CompletesAt)
	StartsAt    time.Time
	CompletesAt time.Time
	State       JobState
}

// Duration returns the job's own run time
func (j *Job) Duration() time.Duration {
	return j.CompletesAt.Sub(j.StartsAt)
}

// IsDue reports whether the job has completed as of now
func (j *Job) IsDue(now time.Time) bool {
	return !j.CompletesAt.After(now)
}

// Clone returns a deep copy of the job
func (j *Job) Clone() *Job {
	c := *j
	c.Cost = j.Cost.Clone()
	return &c
}
