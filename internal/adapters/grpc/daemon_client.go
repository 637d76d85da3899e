package grpc

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/xnova-go/internal/application/engine"
	"github.com/andrescamacho/xnova-go/internal/application/engine/commands"
	"github.com/andrescamacho/xnova-go/internal/application/engine/queries"
)

// EngineClient talks to a running daemon
type EngineClient struct {
	conn *grpc.ClientConn
}

// NewEngineClient connects to target. A target without a scheme is taken as
// a Unix socket path, e.g. "/tmp/xnova-daemon.sock".
func NewEngineClient(target string, opts ...grpc.DialOption) (*EngineClient, error) {
	if strings.HasPrefix(target, "/") {
		target = "unix:" + target
	}
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w", err)
	}
	return &EngineClient{conn: conn}, nil
}

// Close closes the gRPC connection
func (c *EngineClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// RegisterPlayer creates the player on first contact
func (c *EngineClient) RegisterPlayer(ctx context.Context, playerID string) (*engine.RegisterResult, error) {
	var out engine.RegisterResult
	if _, err := c.call(ctx, MethodRegisterPlayer, &commands.RegisterPlayerCommand{PlayerID: playerID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartJob queues a job
func (c *EngineClient) StartJob(ctx context.Context, cmd *commands.StartJobCommand) (*engine.StartJobResult, error) {
	var out engine.StartJobResult
	if _, err := c.call(ctx, MethodStartJob, cmd, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelJob cancels the last job of a queue
func (c *EngineClient) CancelJob(ctx context.Context, cmd *commands.CancelJobCommand) (*engine.CancelJobResult, error) {
	var out engine.CancelJobResult
	if _, err := c.call(ctx, MethodCancelJob, cmd, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetStatus returns the reconciled queues
func (c *EngineClient) GetStatus(ctx context.Context, query *queries.GetStatusQuery) (*engine.StatusResult, error) {
	var out engine.StatusResult
	if _, err := c.call(ctx, MethodGetStatus, query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetResources returns the reconciled ledger
func (c *EngineClient) GetResources(ctx context.Context, playerID string) (*engine.ResourcesResult, error) {
	var out engine.ResourcesResult
	if _, err := c.call(ctx, MethodGetResources, &queries.GetResourcesQuery{PlayerID: playerID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Callback runs callback data and returns the rendered reply text
func (c *EngineClient) Callback(ctx context.Context, playerID, data string) (string, error) {
	reply, err := c.call(ctx, MethodCallback, &CallbackRequest{PlayerID: playerID, Data: data}, nil)
	if reply != nil && reply.Text != "" {
		return reply.Text, err
	}
	return "", err
}

// DeletePlayer destroys a player's colony
func (c *EngineClient) DeletePlayer(ctx context.Context, playerID string) (*engine.DeleteResult, error) {
	var out engine.DeleteResult
	if _, err := c.call(ctx, MethodDeletePlayer, &commands.DeletePlayerCommand{PlayerID: playerID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPlayers returns every registered player id
func (c *EngineClient) ListPlayers(ctx context.Context) (*engine.PlayerListResult, error) {
	var out engine.PlayerListResult
	if _, err := c.call(ctx, MethodListPlayers, &queries.ListPlayersQuery{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// replyEnvelope mirrors Reply with the result left raw
type replyEnvelope struct {
	OK        bool             `json:"ok"`
	Operation string           `json:"operation"`
	Result    *structpb.Struct `json:"-"`
	Error     *ErrorPayload    `json:"error"`
	Text      string           `json:"text"`
}

// call invokes method and decodes the result into out. In-band errors are
// returned as *RemoteError together with the envelope.
func (c *EngineClient) call(ctx context.Context, method string, request, out interface{}) (*replyEnvelope, error) {
	in, err := ToStruct(request)
	if err != nil {
		return nil, err
	}
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, FullMethod(method), in, resp); err != nil {
		return nil, fromStatus(method, err)
	}

	fields := resp.GetFields()
	result := fields["result"].GetStructValue()
	delete(fields, "result")
	var envelope replyEnvelope
	if err := FromStruct(resp, &envelope); err != nil {
		return nil, err
	}
	envelope.Result = result

	if !envelope.OK {
		if envelope.Error == nil {
			return &envelope, fmt.Errorf("%s failed without an error payload", method)
		}
		return &envelope, &RemoteError{Payload: *envelope.Error}
	}
	if out != nil && result != nil {
		if err := FromStruct(result, out); err != nil {
			return &envelope, err
		}
	}
	return &envelope, nil
}
