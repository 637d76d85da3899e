package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/xnova-go/internal/application/common"
	"github.com/andrescamacho/xnova-go/internal/application/engine"
	"github.com/andrescamacho/xnova-go/internal/application/mediator"
	"github.com/andrescamacho/xnova-go/internal/domain/colony"
)

// GetStatusQuery returns the player's queues, optionally for one category
type GetStatusQuery struct {
	PlayerID string `json:"player_id" validate:"required,max=64"`
	Category string `json:"category" validate:"omitempty,oneof=building fleet defense research"`
}

// GetStatusHandler handles the GetStatus query
type GetStatusHandler struct {
	coordinator *engine.Coordinator
}

// NewGetStatusHandler creates a new GetStatusHandler
func NewGetStatusHandler(coordinator *engine.Coordinator) *GetStatusHandler {
	return &GetStatusHandler{coordinator: coordinator}
}

// Handle executes the GetStatus query
func (h *GetStatusHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetStatusQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetStatusQuery")
	}

	playerID, err := common.ResolvePlayerID(query.PlayerID)
	if err != nil {
		return nil, err
	}
	return h.coordinator.GetStatus(ctx, playerID, colony.Category(query.Category))
}
