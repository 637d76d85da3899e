package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/xnova-go/internal/application/common"
	"github.com/andrescamacho/xnova-go/internal/application/engine"
	"github.com/andrescamacho/xnova-go/internal/application/mediator"
)

// GetResourcesQuery returns the player's stockpiles brought up to date
type GetResourcesQuery struct {
	PlayerID string `json:"player_id" validate:"required,max=64"`
}

// GetResourcesHandler handles the GetResources query
type GetResourcesHandler struct {
	coordinator *engine.Coordinator
}

// NewGetResourcesHandler creates a new GetResourcesHandler
func NewGetResourcesHandler(coordinator *engine.Coordinator) *GetResourcesHandler {
	return &GetResourcesHandler{coordinator: coordinator}
}

// Handle executes the GetResources query
func (h *GetResourcesHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetResourcesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetResourcesQuery")
	}

	playerID, err := common.ResolvePlayerID(query.PlayerID)
	if err != nil {
		return nil, err
	}
	return h.coordinator.GetResources(ctx, playerID)
}
