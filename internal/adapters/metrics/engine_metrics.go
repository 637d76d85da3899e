package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/xnova-go/internal/application/engine"
	"github.com/andrescamacho/xnova-go/internal/domain/colony"
	"github.com/andrescamacho/xnova-go/internal/domain/shared"
)

// EngineMetricsCollector records queue activity. It implements
// engine.EngineMetrics.
type EngineMetricsCollector struct {
	jobsStarted        *prometheus.CounterVec
	jobsCancelled      *prometheus.CounterVec
	jobsCompleted      *prometheus.CounterVec
	unitsCompleted     *prometheus.CounterVec
	rejections         *prometheus.CounterVec
	persistenceRetries *prometheus.CounterVec
	completionLag      *prometheus.HistogramVec
}

var _ engine.EngineMetrics = (*EngineMetricsCollector)(nil)

// NewEngineMetricsCollector creates a new engine metrics collector
func NewEngineMetricsCollector() *EngineMetricsCollector {
	return &EngineMetricsCollector{
		jobsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "jobs_started_total",
				Help:      "Jobs accepted into a queue",
			},
			[]string{"category"},
		),
		jobsCancelled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "jobs_cancelled_total",
				Help:      "Jobs cancelled by players",
			},
			[]string{"category"},
		),
		jobsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "jobs_completed_total",
				Help:      "Jobs drained from a queue",
			},
			[]string{"category"},
		),
		unitsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "units_completed_total",
				Help:      "Ships and defenses delivered",
			},
			[]string{"category"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "rejections_total",
				Help:      "Operations refused by a business rule",
			},
			[]string{"operation", "code"},
		),
		persistenceRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "persistence_retries_total",
				Help:      "Operations retried with a fresh load after a storage failure",
			},
			[]string{"operation"},
		),
		// Completions are only observed when a player interacts, so the lag
		// between CompletesAt and the draining read can be large
		completionLag: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "completion_lag_seconds",
				Help:      "Time between a job's completion instant and the read that applied it",
				Buckets:   []float64{1, 10, 60, 300, 1800, 3600, 6 * 3600, 24 * 3600, 7 * 24 * 3600},
			},
			[]string{"category"},
		),
	}
}

// Register registers all engine metrics
func (c *EngineMetricsCollector) Register(registerer prometheus.Registerer) error {
	return register(registerer,
		c.jobsStarted,
		c.jobsCancelled,
		c.jobsCompleted,
		c.unitsCompleted,
		c.rejections,
		c.persistenceRetries,
		c.completionLag,
	)
}

// RecordJobStarted counts an accepted job
func (c *EngineMetricsCollector) RecordJobStarted(category colony.Category) {
	c.jobsStarted.WithLabelValues(category.String()).Inc()
}

// RecordJobCancelled counts a cancelled job
func (c *EngineMetricsCollector) RecordJobCancelled(category colony.Category) {
	c.jobsCancelled.WithLabelValues(category.String()).Inc()
}

// RecordCompletions counts drained jobs and observes how late each was applied
func (c *EngineMetricsCollector) RecordCompletions(events []colony.CompletionEvent, observedAt time.Time) {
	for _, e := range events {
		label := e.Category.String()
		c.jobsCompleted.WithLabelValues(label).Inc()
		if !e.Category.IsLevelled() {
			c.unitsCompleted.WithLabelValues(label).Add(float64(e.Quantity))
		}
		c.completionLag.WithLabelValues(label).Observe(observedAt.Sub(e.CompletedAt).Seconds())
	}
}

// RecordRejection counts a business rule violation
func (c *EngineMetricsCollector) RecordRejection(operation string, code shared.ErrorCode) {
	c.rejections.WithLabelValues(operation, string(code)).Inc()
}

// RecordPersistenceRetry counts a retry after a storage failure
func (c *EngineMetricsCollector) RecordPersistenceRetry(operation string) {
	c.persistenceRetries.WithLabelValues(operation).Inc()
}
