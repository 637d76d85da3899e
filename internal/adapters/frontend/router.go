package frontend

import (
	"context"

	"github.com/andrescamacho/xnova-go/internal/application/mediator"
)

// Reply is what a front-end shows after a callback
type Reply struct {
	Operation Operation
	Response  mediator.Response
	Text      string
	Err       error
}

// Router dispatches callbacks through the mediator
type Router struct {
	mediator mediator.Mediator
}

// NewRouter creates a router
func NewRouter(m mediator.Mediator) *Router {
	return &Router{mediator: m}
}

// Handle parses data and runs the resulting operation for playerID. The
// returned error is only set for failures the front-end cannot show as text;
// business and validation errors are carried in Reply.Err.
func (r *Router) Handle(ctx context.Context, playerID, data string) (*Reply, error) {
	op, err := ParseCallback(data)
	if err != nil {
		return &Reply{Text: RenderError(err), Err: err}, nil
	}

	response, err := r.mediator.Send(ctx, op.Request(playerID))
	if err != nil {
		if !IsUserFacing(err) {
			return nil, err
		}
		return &Reply{Operation: op, Text: RenderError(err), Err: err}, nil
	}
	return &Reply{Operation: op, Response: response, Text: RenderResponse(response)}, nil
}
