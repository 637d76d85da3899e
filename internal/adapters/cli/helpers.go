package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	grpcadapter "github.com/andrescamacho/xnova-go/internal/adapters/grpc"
	"github.com/andrescamacho/xnova-go/internal/infrastructure/config"
)

// resolvePlayer resolves the player id from flags or defaults
// Priority: --player flag > user config default
func resolvePlayer() (string, error) {
	if playerFlag != "" {
		return playerFlag, nil
	}

	userConfigHandler, err := config.NewUserConfigHandler()
	if err != nil {
		return "", fmt.Errorf("no player specified and failed to load user config: %w", err)
	}
	userCfg, err := userConfigHandler.Load()
	if err != nil {
		return "", fmt.Errorf("no player specified and failed to load user config: %w", err)
	}
	if userCfg.DefaultPlayer != "" {
		return userCfg.DefaultPlayer, nil
	}

	return "", fmt.Errorf("no player specified: use --player, or set a default with 'xnova player use <id>'")
}

// withClient connects to the daemon and runs fn with a request deadline
func withClient(cmd *cobra.Command, fn func(ctx context.Context, client *grpcadapter.EngineClient) error) error {
	client, err := grpcadapter.NewEngineClient(socketPath)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, requestTimeout)
		defer cancel()
	}
	return fn(ctx, client)
}

// withPlayerClient is withClient for commands acting on a player
func withPlayerClient(cmd *cobra.Command, fn func(ctx context.Context, client *grpcadapter.EngineClient, playerID string) error) error {
	playerID, err := resolvePlayer()
	if err != nil {
		return err
	}
	return withClient(cmd, func(ctx context.Context, client *grpcadapter.EngineClient) error {
		return fn(ctx, client, playerID)
	})
}
