package colony

import (
	"fmt"
	"math"
	"strings"

	"github.com/andrescamacho/xnova-go/internal/domain/shared"
)

// PrerequisiteNotMetError is surfaced verbatim to the player
type PrerequisiteNotMetError struct {
	*shared.DomainError
	Requirement string
	Required    int
	Current     int
}

func NewPrerequisiteNotMetError(requirement string, required, current int) *PrerequisiteNotMetError {
	return &PrerequisiteNotMetError{
		DomainError: shared.NewDomainError(shared.CodePrerequisiteNotMet,
			fmt.Sprintf("requires %s level %d (current %d)", requirement, required, current)),
		Requirement: requirement,
		Required:    required,
		Current:     current,
	}
}

// NewCapacitySlotError reports that an entity limited in count has no free slot
func NewCapacitySlotError(target string, max, current int) *PrerequisiteNotMetError {
	return &PrerequisiteNotMetError{
		DomainError: shared.NewDomainError(shared.CodePrerequisiteNotMet,
			fmt.Sprintf("no free slot for %s: %d of %d already built or queued", target, current, max)),
		Requirement: target,
		Required:    max,
		Current:     current,
	}
}

// InsufficientResourcesError carries the per-kind shortfall
type InsufficientResourcesError struct {
	*shared.DomainError
	Shortfall Cost
}

func NewInsufficientResourcesError(shortfall Cost) *InsufficientResourcesError {
	parts := make([]string, 0, len(shortfall))
	for _, kind := range shortfall.Kinds() {
		parts = append(parts, fmt.Sprintf("%s %.0f", kind, math.Ceil(shortfall[kind])))
	}
	return &InsufficientResourcesError{
		DomainError: shared.NewDomainError(shared.CodeInsufficientResources,
			"insufficient resources: missing "+strings.Join(parts, ", ")),
		Shortfall: shortfall,
	}
}

// QueueFullError carries the current and maximum pending job counts
type QueueFullError struct {
	*shared.DomainError
	Category Category
	Current  int
	Max      int
}

func NewQueueFullError(category Category, current, max int) *QueueFullError {
	return &QueueFullError{
		DomainError: shared.NewDomainError(shared.CodeQueueFull,
			fmt.Sprintf("%s queue is full (%d/%d)", category, current, max)),
		Category: category,
		Current:  current,
		Max:      max,
	}
}

// NotCancellableError is returned when cancelling anything but the last job
type NotCancellableError struct {
	*shared.DomainError
	JobID     JobID
	LastJobID JobID
}

func NewNotCancellableError(jobID, lastJobID JobID) *NotCancellableError {
	return &NotCancellableError{
		DomainError: shared.NewDomainError(shared.CodeNotCancellable,
			fmt.Sprintf("job %d is not the last job in its queue (last is %d)", jobID, lastJobID)),
		JobID:     jobID,
		LastJobID: lastJobID,
	}
}

// NewUnknownTargetError reports a target that is not in the catalog for the category
func NewUnknownTargetError(category Category, target string) *shared.ValidationError {
	return shared.NewValidationError("target", fmt.Sprintf("unknown %s target: %s", category, target))
}

// NewUpgradeInProgressError reports that a category is blocked while its
// speed-up building is being upgraded
func NewUpgradeInProgressError(category Category, building string) *shared.DomainError {
	return shared.NewDomainError(shared.CodePrerequisiteNotMet,
		fmt.Sprintf("cannot queue %s while %s is being upgraded", category, building))
}
