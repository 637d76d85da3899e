package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/xnova-go/internal/application/common"
	"github.com/andrescamacho/xnova-go/internal/application/engine"
	"github.com/andrescamacho/xnova-go/internal/application/mediator"
	"github.com/andrescamacho/xnova-go/internal/domain/colony"
)

// StartJobCommand queues a building level, research level or a batch of
// ships or defenses
type StartJobCommand struct {
	PlayerID string `json:"player_id" validate:"required,max=64"`
	Category string `json:"category" validate:"required,oneof=building fleet defense research"`
	Target   string `json:"target" validate:"required,max=64"`
	Quantity int    `json:"quantity" validate:"min=1"`
}

// StartJobHandler handles the StartJob command
type StartJobHandler struct {
	coordinator *engine.Coordinator
}

// NewStartJobHandler creates a new StartJobHandler
func NewStartJobHandler(coordinator *engine.Coordinator) *StartJobHandler {
	return &StartJobHandler{coordinator: coordinator}
}

// Handle executes the StartJob command
func (h *StartJobHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*StartJobCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *StartJobCommand")
	}

	playerID, err := common.ResolvePlayerID(cmd.PlayerID)
	if err != nil {
		return nil, err
	}
	category, err := colony.ParseCategory(cmd.Category)
	if err != nil {
		return nil, err
	}
	return h.coordinator.StartJob(ctx, playerID, category, cmd.Target, cmd.Quantity)
}
