package grpc_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	grpcadapter "github.com/andrescamacho/xnova-go/internal/adapters/grpc"
	"github.com/andrescamacho/xnova-go/internal/application/engine"
	"github.com/andrescamacho/xnova-go/internal/application/engine/commands"
	"github.com/andrescamacho/xnova-go/internal/application/engine/queries"
	"github.com/andrescamacho/xnova-go/internal/application/setup"
	"github.com/andrescamacho/xnova-go/internal/domain/colony"
	"github.com/andrescamacho/xnova-go/internal/domain/shared"
	"github.com/andrescamacho/xnova-go/test/helpers"
)

type harness struct {
	client *grpcadapter.EngineClient
	clock  *shared.MockClock
	store  *helpers.MemoryStore
}

func newHarness(t *testing.T, interceptors ...grpc.UnaryServerInterceptor) *harness {
	t.Helper()
	gateway, store := helpers.NewMemoryGateway()
	clock := shared.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	opts := engine.DefaultOptions()
	opts.StartingResources = colony.Cost{colony.Metal: 100}
	m, err := setup.NewHandlerRegistry(gateway, helpers.SmallCatalog(t), clock, opts, nil).CreateConfiguredMediator()
	require.NoError(t, err)

	listener := bufconn.Listen(1 << 20)
	server := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))
	grpcadapter.RegisterEngineServiceServer(server, grpcadapter.NewEngineService(m, nil))
	go func() { _ = server.Serve(listener) }()
	t.Cleanup(server.Stop)

	client, err := grpcadapter.NewEngineClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}))
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return &harness{client: client, clock: clock, store: store}
}

func TestEngineService_RoundTrip(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	registered, err := h.client.RegisterPlayer(ctx, "tg:1")
	require.NoError(t, err)
	assert.True(t, registered.Created)

	started, err := h.client.StartJob(ctx, &commands.StartJobCommand{PlayerID: "tg:1", Category: "building", Target: "mine", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, "mine", started.Job.Target)
	assert.Equal(t, int64(30), started.Job.RemainingSeconds)

	h.clock.Advance(time.Minute)
	status, err := h.client.GetStatus(ctx, &queries.GetStatusQuery{PlayerID: "tg:1"})
	require.NoError(t, err)
	assert.Equal(t, 1, status.Status.Buildings["mine"])
	require.Len(t, status.Completed, 1)
	assert.Equal(t, "mine", status.Completed[0].Target)

	resources, err := h.client.GetResources(ctx, "tg:1")
	require.NoError(t, err)
	assert.NotEmpty(t, resources.Resources.Resources)
}

func TestEngineService_BusinessErrorsAreInBand(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	_, err := h.client.RegisterPlayer(ctx, "tg:2")
	require.NoError(t, err)

	_, err = h.client.StartJob(ctx, &commands.StartJobCommand{PlayerID: "tg:2", Category: "building", Target: "silo", Quantity: 1})

	var remote *grpcadapter.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, shared.CodeInsufficientResources, shared.CodeOf(err))
	shortfall, ok := remote.Payload.Details["shortfall"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 300.0, shortfall["metal"])
}

func TestEngineService_Callback(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	_, err := h.client.RegisterPlayer(ctx, "tg:3")
	require.NoError(t, err)

	text, err := h.client.Callback(ctx, "tg:3", "defense:turret:2")
	require.NoError(t, err)
	assert.Contains(t, text, "2 x turret")

	_, err = h.client.Callback(ctx, "tg:3", "defense:dome")
	require.NoError(t, err)

	text, err = h.client.Callback(ctx, "tg:3", "cancel:defense:1")
	assert.Equal(t, shared.CodeNotCancellable, shared.CodeOf(err))
	assert.Contains(t, text, "not the last job")
}

func TestEngineService_StorageFailureIsUnavailable(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	_, err := h.client.RegisterPlayer(ctx, "tg:4")
	require.NoError(t, err)
	h.store.FailNextLoads(2)

	_, err = h.client.GetResources(ctx, "tg:4")

	assert.Equal(t, shared.CodeIOError, shared.CodeOf(err))
}

func TestPlayerRateLimiter_Interceptor(t *testing.T) {
	limiter := grpcadapter.NewPlayerRateLimiter(0.001, 2, time.Minute)
	interceptor := limiter.UnaryInterceptor()
	handler := func(ctx context.Context, req interface{}) (interface{}, error) { return "ok", nil }
	info := &grpc.UnaryServerInfo{FullMethod: grpcadapter.FullMethod(grpcadapter.MethodGetStatus)}
	request := func(player string) *structpb.Struct {
		s, err := structpb.NewStruct(map[string]interface{}{"player_id": player})
		require.NoError(t, err)
		return s
	}

	for i := 0; i < 2; i++ {
		_, err := interceptor(context.Background(), request("TG:5"), info, handler)
		require.NoError(t, err)
	}
	_, err := interceptor(context.Background(), request("tg:5"), info, handler)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))

	_, err = interceptor(context.Background(), request("tg:6"), info, handler)
	assert.NoError(t, err)
	assert.Equal(t, 2, limiter.Len())
}
