package setup

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/andrescamacho/xnova-go/internal/application/common"
	"github.com/andrescamacho/xnova-go/internal/application/engine"
	engineCommands "github.com/andrescamacho/xnova-go/internal/application/engine/commands"
	engineQueries "github.com/andrescamacho/xnova-go/internal/application/engine/queries"
	"github.com/andrescamacho/xnova-go/internal/application/mediator"
	"github.com/andrescamacho/xnova-go/internal/domain/colony"
	"github.com/andrescamacho/xnova-go/internal/domain/shared"
)

// HandlerRegistry holds all application dependencies for handler creation
type HandlerRegistry struct {
	gateway     colony.PersistenceGateway
	catalog     *colony.Catalog
	clock       shared.Clock
	options     engine.Options
	logger      *zap.Logger
	middlewares []mediator.Middleware
	coordinator *engine.Coordinator
}

// NewHandlerRegistry creates a new handler registry with required dependencies.
// Extra middlewares (metrics) run inside logging and validation.
func NewHandlerRegistry(
	gateway colony.PersistenceGateway,
	catalog *colony.Catalog,
	clock shared.Clock,
	options engine.Options,
	logger *zap.Logger,
	middlewares ...mediator.Middleware,
) *HandlerRegistry {
	// Default to real clock if not provided
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &HandlerRegistry{
		gateway:     gateway,
		catalog:     catalog,
		clock:       clock,
		options:     options,
		logger:      logger,
		middlewares: middlewares,
		coordinator: engine.NewCoordinator(gateway, catalog, clock, options),
	}
}

// Coordinator returns the coordinator shared by every handler
func (r *HandlerRegistry) Coordinator() *engine.Coordinator {
	return r.coordinator
}

// RegisterEngineHandlers registers all engine command and query handlers with the mediator
//
// This method registers:
//   - RegisterPlayerCommand → RegisterPlayerHandler
//   - StartJobCommand → StartJobHandler
//   - CancelJobCommand → CancelJobHandler
//   - GetStatusQuery → GetStatusHandler
//   - GetResourcesQuery → GetResourcesHandler
//   - DeletePlayerCommand → DeletePlayerHandler
//   - ListPlayersQuery → ListPlayersHandler
func (r *HandlerRegistry) RegisterEngineHandlers(m mediator.Mediator) error {
	handlers := []struct {
		request reflect.Type
		handler mediator.RequestHandler
	}{
		{reflect.TypeOf(&engineCommands.RegisterPlayerCommand{}), engineCommands.NewRegisterPlayerHandler(r.coordinator)},
		{reflect.TypeOf(&engineCommands.StartJobCommand{}), engineCommands.NewStartJobHandler(r.coordinator)},
		{reflect.TypeOf(&engineCommands.CancelJobCommand{}), engineCommands.NewCancelJobHandler(r.coordinator)},
		{reflect.TypeOf(&engineQueries.GetStatusQuery{}), engineQueries.NewGetStatusHandler(r.coordinator)},
		{reflect.TypeOf(&engineQueries.GetResourcesQuery{}), engineQueries.NewGetResourcesHandler(r.coordinator)},
		{reflect.TypeOf(&engineCommands.DeletePlayerCommand{}), engineCommands.NewDeletePlayerHandler(r.coordinator)},
		{reflect.TypeOf(&engineQueries.ListPlayersQuery{}), engineQueries.NewListPlayersHandler(r.coordinator)},
	}
	for _, h := range handlers {
		if err := m.Register(h.request, h.handler); err != nil {
			return err
		}
	}
	return nil
}

// CreateConfiguredMediator creates a new mediator with all engine handlers
// registered behind the logging and validation middlewares
func (r *HandlerRegistry) CreateConfiguredMediator() (mediator.Mediator, error) {
	m := mediator.NewMediator()
	m.RegisterMiddleware(common.LoggingMiddleware(r.logger))
	m.RegisterMiddleware(common.ValidationMiddleware(common.NewValidator()))
	for _, mw := range r.middlewares {
		m.RegisterMiddleware(mw)
	}

	if err := r.RegisterEngineHandlers(m); err != nil {
		return nil, err
	}
	return m, nil
}
