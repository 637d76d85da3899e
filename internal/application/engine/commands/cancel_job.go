package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/xnova-go/internal/application/common"
	"github.com/andrescamacho/xnova-go/internal/application/engine"
	"github.com/andrescamacho/xnova-go/internal/application/mediator"
	"github.com/andrescamacho/xnova-go/internal/domain/colony"
)

// CancelJobCommand cancels the last job of a category
type CancelJobCommand struct {
	PlayerID string `json:"player_id" validate:"required,max=64"`
	Category string `json:"category" validate:"required,oneof=building fleet defense research"`
	JobID    int64  `json:"job_id" validate:"min=1"`
}

// CancelJobHandler handles the CancelJob command
type CancelJobHandler struct {
	coordinator *engine.Coordinator
}

// NewCancelJobHandler creates a new CancelJobHandler
func NewCancelJobHandler(coordinator *engine.Coordinator) *CancelJobHandler {
	return &CancelJobHandler{coordinator: coordinator}
}

// Handle executes the CancelJob command
func (h *CancelJobHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*CancelJobCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *CancelJobCommand")
	}

	playerID, err := common.ResolvePlayerID(cmd.PlayerID)
	if err != nil {
		return nil, err
	}
	category, err := colony.ParseCategory(cmd.Category)
	if err != nil {
		return nil, err
	}
	return h.coordinator.CancelJob(ctx, playerID, category, colony.JobID(cmd.JobID))
}
