package grpc

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/xnova-go/internal/adapters/frontend"
	"github.com/andrescamacho/xnova-go/internal/application/common"
	"github.com/andrescamacho/xnova-go/internal/application/engine/commands"
	"github.com/andrescamacho/xnova-go/internal/application/engine/queries"
	"github.com/andrescamacho/xnova-go/internal/application/mediator"
	"github.com/andrescamacho/xnova-go/internal/domain/shared"
)

// Reply is the envelope of every EngineService response
type Reply struct {
	OK        bool          `json:"ok"`
	Operation string        `json:"operation,omitempty"`
	Result    interface{}   `json:"result,omitempty"`
	Error     *ErrorPayload `json:"error,omitempty"`
	Text      string        `json:"text,omitempty"`
}

// CallbackRequest is the payload of the Callback method
type CallbackRequest struct {
	PlayerID string `json:"player_id"`
	Data     string `json:"data"`
}

// engineService bridges gRPC requests to the mediator
type engineService struct {
	mediator mediator.Mediator
	router   *frontend.Router
	logger   *zap.Logger
}

// NewEngineService creates the EngineService implementation
func NewEngineService(m mediator.Mediator, logger *zap.Logger) EngineServiceServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &engineService{
		mediator: m,
		router:   frontend.NewRouter(m),
		logger:   logger,
	}
}

func (s *engineService) RegisterPlayer(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return dispatch(s, ctx, in, &commands.RegisterPlayerCommand{})
}

func (s *engineService) StartJob(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return dispatch(s, ctx, in, &commands.StartJobCommand{Quantity: 1})
}

func (s *engineService) CancelJob(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return dispatch(s, ctx, in, &commands.CancelJobCommand{})
}

func (s *engineService) GetStatus(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return dispatch(s, ctx, in, &queries.GetStatusQuery{})
}

func (s *engineService) GetResources(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return dispatch(s, ctx, in, &queries.GetResourcesQuery{})
}

func (s *engineService) DeletePlayer(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return dispatch(s, ctx, in, &commands.DeletePlayerCommand{})
}

func (s *engineService) ListPlayers(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return dispatch(s, ctx, in, &queries.ListPlayersQuery{})
}

// Callback parses free-form callback data and runs it
func (s *engineService) Callback(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	ctx = common.WithLogger(ctx, s.logger)

	var req CallbackRequest
	if err := FromStruct(in, &req); err != nil {
		return s.reply(&Reply{Error: &ErrorPayload{Code: shared.CodeValidation, Message: err.Error()}})
	}

	result, err := s.router.Handle(ctx, req.PlayerID, req.Data)
	if err != nil {
		return nil, toStatus(err)
	}
	reply := &Reply{Text: result.Text}
	if result.Operation.Kind != "" {
		reply.Operation = result.Operation.String()
	}
	if result.Err != nil {
		payload := errorPayload(result.Err)
		reply.Error = &payload
	} else {
		reply.OK = true
		reply.Result = result.Response
	}
	return s.reply(reply)
}

// dispatch decodes in into request and sends it through the mediator
func dispatch(s *engineService, ctx context.Context, in *structpb.Struct, request mediator.Request) (*structpb.Struct, error) {
	ctx = common.WithLogger(ctx, s.logger)

	if err := FromStruct(in, request); err != nil {
		return s.reply(&Reply{Error: &ErrorPayload{Code: shared.CodeValidation, Message: err.Error()}})
	}

	response, err := s.mediator.Send(ctx, request)
	if err != nil {
		if !isInBand(err) {
			return nil, toStatus(err)
		}
		payload := errorPayload(err)
		return s.reply(&Reply{Error: &payload, Text: frontend.RenderError(err)})
	}
	return s.reply(&Reply{OK: true, Result: response})
}

func (s *engineService) reply(r *Reply) (*structpb.Struct, error) {
	out, err := ToStruct(r)
	if err != nil {
		s.logger.Error("failed to encode reply", zap.Error(err))
		return nil, toStatus(err)
	}
	return out, nil
}
