package setup_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/andrescamacho/xnova-go/internal/application/engine"
	"github.com/andrescamacho/xnova-go/internal/application/engine/commands"
	"github.com/andrescamacho/xnova-go/internal/application/engine/queries"
	"github.com/andrescamacho/xnova-go/internal/application/mediator"
	"github.com/andrescamacho/xnova-go/internal/application/setup"
	"github.com/andrescamacho/xnova-go/internal/domain/colony"
	"github.com/andrescamacho/xnova-go/internal/domain/shared"
	"github.com/andrescamacho/xnova-go/test/helpers"
)

func newMediator(t *testing.T, extra ...mediator.Middleware) (mediator.Mediator, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	gateway, _ := helpers.NewMemoryGateway()
	opts := engine.DefaultOptions()
	opts.StartingResources = colony.Cost{colony.Metal: 100}
	registry := setup.NewHandlerRegistry(
		gateway,
		helpers.SmallCatalog(t),
		shared.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)),
		opts,
		zap.New(core),
		extra...,
	)
	m, err := registry.CreateConfiguredMediator()
	require.NoError(t, err)
	return m, logs
}

func TestMediator_StartJobThroughHandlers(t *testing.T) {
	ctx := context.Background()
	m, logs := newMediator(t)

	_, err := m.Send(ctx, &commands.RegisterPlayerCommand{PlayerID: "Player:alice"})
	require.NoError(t, err)
	resp, err := m.Send(ctx, &commands.StartJobCommand{PlayerID: "player:alice", Category: "building", Target: "mine", Quantity: 1})
	require.NoError(t, err)

	result, ok := resp.(*engine.StartJobResult)
	require.True(t, ok)
	assert.Equal(t, "mine", result.Job.Target)
	assert.NotZero(t, logs.FilterMessage("job started").Len())
}

func TestMediator_ValidationRejectsBeforeHandler(t *testing.T) {
	m, _ := newMediator(t)

	tests := []struct {
		name    string
		request mediator.Request
		field   string
	}{
		{"unknown category", &commands.StartJobCommand{PlayerID: "p", Category: "moon", Target: "mine", Quantity: 1}, "category"},
		{"zero quantity", &commands.StartJobCommand{PlayerID: "p", Category: "fleet", Target: "fighter"}, "quantity"},
		{"missing player", &queries.GetResourcesQuery{}, "player_id"},
		{"bad status category", &queries.GetStatusQuery{PlayerID: "p", Category: "moon"}, "category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Send(context.Background(), tt.request)

			var validation *shared.ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.field, validation.Field)
		})
	}
}

func TestMediator_BusinessErrorsAreLoggedAsRejections(t *testing.T) {
	ctx := context.Background()
	m, logs := newMediator(t)
	_, err := m.Send(ctx, &commands.RegisterPlayerCommand{PlayerID: "bob"})
	require.NoError(t, err)

	_, err = m.Send(ctx, &commands.StartJobCommand{PlayerID: "bob", Category: "fleet", Target: "fighter", Quantity: 1})

	assert.Equal(t, shared.CodePrerequisiteNotMet, shared.CodeOf(err))
	rejected := logs.FilterMessage("request rejected").All()
	require.Len(t, rejected, 1)
	assert.Equal(t, "StartJobCommand", rejected[0].ContextMap()["request"])
}

func TestMediator_ExtraMiddlewareRunsInsideValidation(t *testing.T) {
	var seen []string
	record := func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		seen = append(seen, "metrics")
		return next(ctx, request)
	}
	m, _ := newMediator(t, record)

	_, err := m.Send(context.Background(), &queries.GetResourcesQuery{})
	require.Error(t, err)
	assert.Empty(t, seen)

	_, err = m.Send(context.Background(), &commands.RegisterPlayerCommand{PlayerID: "carol"})
	require.NoError(t, err)
	assert.Equal(t, []string{"metrics"}, seen)
}
