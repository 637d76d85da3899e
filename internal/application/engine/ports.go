package engine

import (
	"time"

	"github.com/andrescamacho/xnova-go/internal/domain/colony"
	"github.com/andrescamacho/xnova-go/internal/domain/shared"
)

// EngineMetrics records engine events. Implemented by the prometheus adapter;
// the coordinator falls back to a no-op recorder.
type EngineMetrics interface {
	RecordJobStarted(category colony.Category)
	RecordJobCancelled(category colony.Category)
	RecordCompletions(events []colony.CompletionEvent, observedAt time.Time)
	RecordRejection(operation string, code shared.ErrorCode)
	RecordPersistenceRetry(operation string)
}

type noopMetrics struct{}

func (noopMetrics) RecordJobStarted(colony.Category) {}
func (noopMetrics) RecordJobCancelled(colony.Category) {}
func (noopMetrics) RecordCompletions([]colony.CompletionEvent, time.Time) {}
func (noopMetrics) RecordRejection(string, shared.ErrorCode) {}
func (noopMetrics) RecordPersistenceRetry(string) {}
