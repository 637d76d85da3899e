package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/xnova-go/internal/application/common"
	"github.com/andrescamacho/xnova-go/internal/application/engine"
	"github.com/andrescamacho/xnova-go/internal/application/mediator"
)

// RegisterPlayerCommand creates a colony for a player seen for the first time
type RegisterPlayerCommand struct {
	PlayerID string `json:"player_id" validate:"required,max=64"`
}

// RegisterPlayerHandler handles the RegisterPlayer command
type RegisterPlayerHandler struct {
	coordinator *engine.Coordinator
}

// NewRegisterPlayerHandler creates a new RegisterPlayerHandler
func NewRegisterPlayerHandler(coordinator *engine.Coordinator) *RegisterPlayerHandler {
	return &RegisterPlayerHandler{coordinator: coordinator}
}

// Handle executes the RegisterPlayer command
func (h *RegisterPlayerHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*RegisterPlayerCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RegisterPlayerCommand")
	}

	playerID, err := common.ResolvePlayerID(cmd.PlayerID)
	if err != nil {
		return nil, err
	}
	return h.coordinator.RegisterPlayer(ctx, playerID)
}
