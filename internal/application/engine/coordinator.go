package engine

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/andrescamacho/xnova-go/internal/application/common"
	"github.com/andrescamacho/xnova-go/internal/domain/colony"
	"github.com/andrescamacho/xnova-go/internal/domain/shared"
)

// Options configure the coordinator
type Options struct {
	Settings          colony.Settings
	StartingResources colony.Cost
	// IORetries is how many times an operation is retried with a fresh load
	// after a persistence failure
	IORetries int
	Metrics   EngineMetrics
}

// DefaultOptions returns speed 1, full refunds, one retry and the classic
// starting stockpile
func DefaultOptions() Options {
	return Options{
		Settings:          colony.DefaultSettings(),
		StartingResources: colony.Cost{colony.Metal: 500, colony.Crystal: 500},
		IORetries:         1,
	}
}

// Coordinator is the single entry point that mutates queues and ledger
// together. Every operation runs inside the player's exclusive section as
// load, reconcile, mutate, save.
type Coordinator struct {
	gateway colony.PersistenceGateway
	catalog *colony.Catalog
	clock   shared.Clock
	opts    Options
	metrics EngineMetrics
}

// NewCoordinator creates a coordinator
func NewCoordinator(gateway colony.PersistenceGateway, catalog *colony.Catalog, clock shared.Clock, opts Options) *Coordinator {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if catalog == nil {
		catalog = colony.DefaultCatalog()
	}
	if opts.IORetries < 0 {
		opts.IORetries = 0
	}
	if opts.Settings.UniverseSpeed <= 0 {
		opts.Settings.UniverseSpeed = 1
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Coordinator{
		gateway: gateway,
		catalog: catalog,
		clock:   clock,
		opts:    opts,
		metrics: metrics,
	}
}

// Catalog returns the catalog in use
func (c *Coordinator) Catalog() *colony.Catalog {
	return c.catalog
}

// mutation runs on a reconciled state. It reports whether it changed the
// state; a returned error discards every change.
type mutation func(state *colony.PlayerState, now time.Time) (changed bool, err error)

type outcome struct {
	state  *colony.PlayerState
	events []colony.CompletionEvent
	now    time.Time
}

// execute runs op under the exclusive section, retrying once with a fresh
// load when persistence fails
func (c *Coordinator) execute(ctx context.Context, operation string, playerID shared.PlayerID, mutate mutation) (*outcome, error) {
	logger := common.LoggerFromContext(ctx).With(
		zap.String("operation", operation),
		zap.String("player_id", playerID.String()),
	)

	var lastErr error
	for attempt := 0; attempt <= c.opts.IORetries; attempt++ {
		if attempt > 0 {
			c.metrics.RecordPersistenceRetry(operation)
			logger.Warn("retrying after persistence failure", zap.Int("attempt", attempt), zap.Error(lastErr))
		}

		result, err := c.attempt(ctx, playerID, mutate)
		if err == nil {
			if len(result.events) > 0 {
				c.metrics.RecordCompletions(result.events, result.now)
				for _, e := range result.events {
					logger.Info("job completed",
						zap.Int64("job_id", int64(e.JobID)),
						zap.String("category", e.Category.String()),
						zap.String("target", e.Target),
						zap.Int("quantity", e.Quantity),
						zap.Time("completed_at", e.CompletedAt),
						zap.Int("new_value", e.NewValue),
					)
				}
			}
			return result, nil
		}

		var ioErr *shared.IOError
		if !errors.As(err, &ioErr) || ctx.Err() != nil {
			if code := shared.CodeOf(err); code.IsBusinessRule() {
				c.metrics.RecordRejection(operation, code)
			}
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Coordinator) attempt(ctx context.Context, playerID shared.PlayerID, mutate mutation) (*outcome, error) {
	var result *outcome
	err := c.gateway.WithExclusive(ctx, playerID, func(ctx context.Context) error {
		loaded, err := c.gateway.Load(ctx, playerID)
		if err != nil {
			return err
		}
		now := shared.EngineTime(c.clock.Now())
		state, events := colony.Reconcile(loaded, c.catalog, now)

		changed, err := mutate(state, now)
		if err != nil {
			return err
		}
		if changed || len(events) > 0 {
			if err := c.gateway.Save(ctx, state); err != nil {
				return err
			}
		}
		result = &outcome{state: state, events: events, now: now}
		return nil
	})
	return result, err
}

// retryIO runs fn, repeating it up to IORetries more times while it fails
// with an IOError
func (c *Coordinator) retryIO(ctx context.Context, operation string, fn func() error) error {
	var err error
	for attempt := 0; attempt <= c.opts.IORetries; attempt++ {
		if attempt > 0 {
			c.metrics.RecordPersistenceRetry(operation)
		}
		err = fn()
		var ioErr *shared.IOError
		if err == nil || !errors.As(err, &ioErr) || ctx.Err() != nil {
			return err
		}
	}
	return err
}

// RegisterResult is returned by RegisterPlayer
type RegisterResult struct {
	Created   bool             `json:"created"`
	Status    StatusView       `json:"status"`
	Completed []CompletionView `json:"completed"`
}

// RegisterPlayer creates the player on first contact. Registering an
// existing player returns its reconciled state.
func (c *Coordinator) RegisterPlayer(ctx context.Context, playerID shared.PlayerID) (*RegisterResult, error) {
	created := false
	err := c.retryIO(ctx, "register_player", func() error {
		return c.gateway.WithExclusive(ctx, playerID, func(ctx context.Context) error {
			_, err := c.gateway.Load(ctx, playerID)
			var notFound *shared.NotFoundError
			if !errors.As(err, &notFound) {
				return err
			}
			state, err := colony.NewPlayerState(playerID, c.catalog, c.opts.StartingResources, c.clock.Now())
			if err != nil {
				return err
			}
			if err := c.gateway.Create(ctx, state); err != nil {
				return err
			}
			created = true
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if created {
		common.LoggerFromContext(ctx).Info("player registered", zap.String("player_id", playerID.String()))
	}

	status, err := c.GetStatus(ctx, playerID, "")
	if err != nil {
		return nil, err
	}
	return &RegisterResult{Created: created, Status: status.Status, Completed: status.Completed}, nil
}

// StartJobResult is returned by StartJob
type StartJobResult struct {
	Job       JobView          `json:"job"`
	Resources ResourcesView    `json:"resources"`
	Completed []CompletionView `json:"completed"`
}

// StartJob charges and enqueues a job. On any business error nothing is
// charged or enqueued.
func (c *Coordinator) StartJob(ctx context.Context, playerID shared.PlayerID, category colony.Category, target string, quantity int) (*StartJobResult, error) {
	var job *colony.Job
	result, err := c.execute(ctx, "start_job", playerID, func(state *colony.PlayerState, now time.Time) (bool, error) {
		started, err := colony.StartJob(state, c.catalog, c.opts.Settings, category, target, quantity, now)
		if err != nil {
			return false, err
		}
		job = started
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	c.metrics.RecordJobStarted(category)
	common.LoggerFromContext(ctx).Info("job started",
		zap.String("player_id", playerID.String()),
		zap.Int64("job_id", int64(job.ID)),
		zap.String("category", category.String()),
		zap.String("target", target),
		zap.Int("quantity", quantity),
		zap.Time("completes_at", job.CompletesAt),
	)

	return &StartJobResult{
		Job: jobView(colony.JobStatus{
			Job:       *job,
			Remaining: colony.Remaining(job, result.now),
			Progress:  colony.Progress(job, result.now),
			Active:    result.state.Queue(category).Front().ID == job.ID && !result.now.Before(job.StartsAt),
		}),
		Resources: resourcesView(result.state),
		Completed: completionViews(result.events),
	}, nil
}

// CancelJobResult is returned by CancelJob
type CancelJobResult struct {
	JobID     int64              `json:"job_id"`
	Target    string             `json:"target"`
	Refund    map[string]float64 `json:"refund"`
	Resources ResourcesView      `json:"resources"`
	Completed []CompletionView   `json:"completed"`
}

// CancelJob removes the last job of a category and refunds its cost
func (c *Coordinator) CancelJob(ctx context.Context, playerID shared.PlayerID, category colony.Category, jobID colony.JobID) (*CancelJobResult, error) {
	var (
		job    *colony.Job
		refund colony.Cost
	)
	result, err := c.execute(ctx, "cancel_job", playerID, func(state *colony.PlayerState, now time.Time) (bool, error) {
		cancelled, credited, err := colony.CancelJob(state, category, jobID, c.opts.Settings.RefundFraction)
		if err != nil {
			return false, err
		}
		job, refund = cancelled, credited
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	c.metrics.RecordJobCancelled(category)
	common.LoggerFromContext(ctx).Info("job cancelled",
		zap.String("player_id", playerID.String()),
		zap.Int64("job_id", int64(job.ID)),
		zap.String("category", category.String()),
		zap.String("target", job.Target),
	)

	refundView := make(map[string]float64, len(refund))
	for kind, v := range refund {
		refundView[string(kind)] = v
	}
	return &CancelJobResult{
		JobID:     int64(job.ID),
		Target:    job.Target,
		Refund:    refundView,
		Resources: resourcesView(result.state),
		Completed: completionViews(result.events),
	}, nil
}

// StatusResult is returned by GetStatus
type StatusResult struct {
	Status    StatusView       `json:"status"`
	Completed []CompletionView `json:"completed"`
}

// GetStatus reconciles and returns the player's queues. An empty category
// means every category.
func (c *Coordinator) GetStatus(ctx context.Context, playerID shared.PlayerID, category colony.Category) (*StatusResult, error) {
	categories := colony.AllCategories()
	if category != "" {
		if !category.IsValid() {
			return nil, shared.NewValidationError("category", "unknown category: "+string(category))
		}
		categories = []colony.Category{category}
	}
	result, err := c.execute(ctx, "get_status", playerID, readOnly)
	if err != nil {
		return nil, err
	}
	return &StatusResult{
		Status:    statusView(result.state, c.catalog, categories, result.now),
		Completed: completionViews(result.events),
	}, nil
}

// ResourcesResult is returned by GetResources
type ResourcesResult struct {
	Resources ResourcesView    `json:"resources"`
	Completed []CompletionView `json:"completed"`
}

// GetResources reconciles and returns the player's ledger
func (c *Coordinator) GetResources(ctx context.Context, playerID shared.PlayerID) (*ResourcesResult, error) {
	result, err := c.execute(ctx, "get_resources", playerID, readOnly)
	if err != nil {
		return nil, err
	}
	return &ResourcesResult{
		Resources: resourcesView(result.state),
		Completed: completionViews(result.events),
	}, nil
}

func readOnly(*colony.PlayerState, time.Time) (bool, error) {
	return false, nil
}

// DeleteResult is returned by DeletePlayer
type DeleteResult struct {
	PlayerID string `json:"player_id"`
}

// DeletePlayer destroys a player's colony. It waits for the player's
// exclusive section so no in-flight operation saves the state back.
func (c *Coordinator) DeletePlayer(ctx context.Context, playerID shared.PlayerID) (*DeleteResult, error) {
	err := c.retryIO(ctx, "delete_player", func() error {
		return c.gateway.WithExclusive(ctx, playerID, func(ctx context.Context) error {
			return c.gateway.Delete(ctx, playerID)
		})
	})
	if err != nil {
		return nil, err
	}
	common.LoggerFromContext(ctx).Info("player deleted", zap.String("player_id", playerID.String()))
	return &DeleteResult{PlayerID: playerID.Value()}, nil
}

// PlayerListResult is returned by ListPlayers
type PlayerListResult struct {
	PlayerIDs []string `json:"player_ids"`
}

// ListPlayers returns every registered player id in order
func (c *Coordinator) ListPlayers(ctx context.Context) (*PlayerListResult, error) {
	var ids []string
	err := c.retryIO(ctx, "list_players", func() error {
		var err error
		ids, err = c.gateway.ListPlayerIDs(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return &PlayerListResult{PlayerIDs: ids}, nil
}
