package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	grpcadapter "github.com/andrescamacho/xnova-go/internal/adapters/grpc"
	"github.com/andrescamacho/xnova-go/internal/application/engine"
	"github.com/andrescamacho/xnova-go/internal/application/setup"
	"github.com/andrescamacho/xnova-go/internal/domain/colony"
	"github.com/andrescamacho/xnova-go/internal/domain/shared"
	"github.com/andrescamacho/xnova-go/internal/infrastructure/config"
	"github.com/andrescamacho/xnova-go/test/helpers"
)

// startDaemon serves a fresh engine on a socket in a temp dir and points
// HOME at another temp dir so user config never leaks between tests
func startDaemon(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XNOVA_SOCKET", "")

	gateway, _ := helpers.NewMemoryGateway()
	clock := shared.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	opts := engine.DefaultOptions()
	opts.StartingResources = colony.Cost{colony.Metal: 100}
	m, err := setup.NewHandlerRegistry(gateway, helpers.SmallCatalog(t), clock, opts, nil).CreateConfiguredMediator()
	require.NoError(t, err)

	socket := filepath.Join(t.TempDir(), "d.sock")
	server, err := grpcadapter.NewDaemonServer(m, config.DaemonConfig{
		SocketPath:      socket,
		ShutdownTimeout: time.Second,
		RequestTimeout:  5 * time.Second,
	}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return socket
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_RegisterStartAndStatus(t *testing.T) {
	socket := startDaemon(t)

	out, err := run(t, "player", "register", "tg:1", "--use", "--socket", socket)
	require.NoError(t, err)
	assert.Contains(t, out, "Colony founded for tg:1")
	assert.Contains(t, out, "Default player set to tg:1")

	// default player from the user config
	out, err = run(t, "job", "start", "building", "mine", "--socket", socket)
	require.NoError(t, err)
	assert.Contains(t, out, "Queued #1 mine x1 (building)")
	assert.Contains(t, out, "Completes in: 30s")
	assert.Contains(t, out, "50 metal")

	out, err = run(t, "status", "--socket", socket)
	require.NoError(t, err)
	assert.Contains(t, out, "Colony tg:1")
	assert.Contains(t, out, "#1")
	assert.Contains(t, out, "[----------] 0%")

	out, err = run(t, "job", "cancel", "building", "1", "--socket", socket)
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled #1 mine")
	assert.Contains(t, out, "Refunded: 50 metal")
}

func TestCLI_BusinessErrorIsReturned(t *testing.T) {
	socket := startDaemon(t)
	_, err := run(t, "player", "register", "tg:2", "--socket", socket)
	require.NoError(t, err)

	_, err = run(t, "job", "start", "building", "silo", "--player", "tg:2", "--socket", socket)

	require.Error(t, err)
	assert.Equal(t, shared.CodeInsufficientResources, shared.CodeOf(err))
}

func TestCLI_CallbackPrintsRejections(t *testing.T) {
	socket := startDaemon(t)
	_, err := run(t, "player", "register", "tg:3", "--socket", socket)
	require.NoError(t, err)

	out, err := run(t, "callback", "fleet:fighter:2", "--player", "tg:3", "--socket", socket)

	require.NoError(t, err)
	assert.Contains(t, out, "requires mine level 1 (current 0)")
}

func TestCLI_PlayerListAndDelete(t *testing.T) {
	socket := startDaemon(t)
	_, err := run(t, "player", "register", "tg:5", "--use", "--socket", socket)
	require.NoError(t, err)
	_, err = run(t, "player", "register", "tg:4", "--socket", socket)
	require.NoError(t, err)

	out, err := run(t, "player", "list", "--socket", socket)
	require.NoError(t, err)
	assert.Contains(t, out, "Players (2)")
	assert.Contains(t, out, "  tg:4\n  tg:5\n")

	_, err = run(t, "player", "delete", "tg:5", "--socket", socket)
	assert.ErrorContains(t, err, "without --yes")

	out, err = run(t, "player", "delete", "tg:5", "--yes", "--socket", socket)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted player tg:5")
	assert.Contains(t, out, "Default player cleared")
	_, err = resolvePlayer()
	assert.Error(t, err)

	_, err = run(t, "status", "--player", "tg:5", "--socket", socket)
	assert.Equal(t, shared.CodeNotFound, shared.CodeOf(err))

	out, err = run(t, "player", "list", "--socket", socket)
	require.NoError(t, err)
	assert.Contains(t, out, "Players (1)")
	assert.NotContains(t, out, "tg:5")
}

func TestCLI_NoPlayer(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := run(t, "status", "--socket", filepath.Join(t.TempDir(), "none.sock"))

	assert.ErrorContains(t, err, "no player specified")
}

func TestCLI_PlayerUseAndClear(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := run(t, "player", "use", "tg:9")
	require.NoError(t, err)
	got, err := resolvePlayer()
	require.NoError(t, err)
	assert.Equal(t, "tg:9", got)

	_, err = run(t, "player", "clear")
	require.NoError(t, err)
	_, err = resolvePlayer()
	assert.Error(t, err)
}

func TestCLI_Schema(t *testing.T) {
	out, err := run(t, "schema")
	require.NoError(t, err)

	var schema map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &schema))
	assert.Equal(t, "Xnova Player Document", schema["title"])
	assert.Contains(t, out, `"last_synced_at"`)
	assert.Contains(t, out, `"completes_at"`)
}

func TestMaskPassword(t *testing.T) {
	masked := maskPassword("postgresql://xnova:secret@db:5432/xnova")
	assert.NotContains(t, masked, "secret")
	assert.Contains(t, masked, "xnova:")
	assert.Equal(t, "postgresql://db:5432/xnova", maskPassword("postgresql://db:5432/xnova"))
}
