package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/xnova-go/internal/application/engine"
	"github.com/andrescamacho/xnova-go/internal/application/mediator"
)

// ListPlayersQuery returns every registered player id
type ListPlayersQuery struct{}

// ListPlayersHandler handles the ListPlayers query
type ListPlayersHandler struct {
	coordinator *engine.Coordinator
}

// NewListPlayersHandler creates a new ListPlayersHandler
func NewListPlayersHandler(coordinator *engine.Coordinator) *ListPlayersHandler {
	return &ListPlayersHandler{coordinator: coordinator}
}

// Handle executes the ListPlayers query
func (h *ListPlayersHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*ListPlayersQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListPlayersQuery")
	}
	return h.coordinator.ListPlayers(ctx)
}
