package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/xnova-go/internal/application/common"
	"github.com/andrescamacho/xnova-go/internal/application/engine"
	"github.com/andrescamacho/xnova-go/internal/application/mediator"
)

// DeletePlayerCommand destroys a player's colony on account deletion
type DeletePlayerCommand struct {
	PlayerID string `json:"player_id" validate:"required,max=64"`
}

// DeletePlayerHandler handles the DeletePlayer command
type DeletePlayerHandler struct {
	coordinator *engine.Coordinator
}

// NewDeletePlayerHandler creates a new DeletePlayerHandler
func NewDeletePlayerHandler(coordinator *engine.Coordinator) *DeletePlayerHandler {
	return &DeletePlayerHandler{coordinator: coordinator}
}

// Handle executes the DeletePlayer command
func (h *DeletePlayerHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*DeletePlayerCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *DeletePlayerCommand")
	}

	playerID, err := common.ResolvePlayerID(cmd.PlayerID)
	if err != nil {
		return nil, err
	}
	return h.coordinator.DeletePlayer(ctx, playerID)
}
