package colony

import (
	"time"

	"github.com/google/uuid"

	"github.com/andrescamacho/xnova-go/internal/domain/shared"
)

// CompletionEvent records a job whose effect was applied during a reconcile
type CompletionEvent struct {
	ID          string
	PlayerID    shared.PlayerID
	JobID       JobID
	Category    Category
	Target      string
	Quantity    int
	CompletedAt time.Time
	// NewValue is the level (building, research) or unit count (fleet,
	// defense) after the completion
	NewValue int
}

func newCompletionEvent(playerID shared.PlayerID, job *Job, newValue int) CompletionEvent {
	return CompletionEvent{
		ID:          uuid.NewString(),
		PlayerID:    playerID,
		JobID:       job.ID,
		Category:    job.Category,
		Target:      job.Target,
		Quantity:    job.Quantity,
		CompletedAt: job.CompletesAt,
		NewValue:    newValue,
	}
}
