package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	grpcadapter "github.com/andrescamacho/xnova-go/internal/adapters/grpc"
	"github.com/andrescamacho/xnova-go/internal/domain/shared"
	"github.com/andrescamacho/xnova-go/internal/infrastructure/config"
)

// NewPlayerCommand creates the player command with subcommands
func NewPlayerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Manage players",
		Long: `Register players with the engine and choose the default player.

Player ids are opaque strings of at most 64 characters. Front-ends usually
namespace them, e.g. "tg:42" for a chat user.

Examples:
  xnova player register tg:42
  xnova player register tg:42 --use
  xnova player use tg:42
  xnova player clear
  xnova player list
  xnova player delete tg:42 --yes`,
	}

	// Add subcommands
	cmd.AddCommand(newPlayerRegisterCommand())
	cmd.AddCommand(newPlayerUseCommand())
	cmd.AddCommand(newPlayerClearCommand())
	cmd.AddCommand(newPlayerListCommand())
	cmd.AddCommand(newPlayerDeleteCommand())

	return cmd
}

// newPlayerRegisterCommand creates the player register subcommand
func newPlayerRegisterCommand() *cobra.Command {
	var use bool

	cmd := &cobra.Command{
		Use:   "register <player-id>",
		Short: "Register a player, founding its colony",
		Long: `Register a player with the engine. Registering an existing player is
harmless and shows its current state.

Example:
  xnova player register tg:42 --use`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client *grpcadapter.EngineClient) error {
				result, err := client.RegisterPlayer(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to register player: %w", err)
				}

				out := cmd.OutOrStdout()
				if result.Created {
					successColor.Fprintf(out, "✓ Colony founded for %s\n\n", result.Status.PlayerID)
				} else {
					infoColor.Fprintf(out, "Player %s is already registered\n\n", result.Status.PlayerID)
				}
				printCompletions(out, result.Completed)
				if err := printStatus(out, result.Status); err != nil {
					return err
				}

				if use {
					return setDefaultPlayer(cmd, result.Status.PlayerID)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&use, "use", false, "Also make this the default player")

	return cmd
}

// newPlayerUseCommand creates the player use subcommand
func newPlayerUseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use <player-id>",
		Short: "Set the default player",
		Long: `Set the player used when --player is not given.

The choice is stored in ~/.xnova/config.json.

Example:
  xnova player use tg:42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			playerID, err := shared.NewPlayerID(args[0])
			if err != nil {
				return err
			}
			return setDefaultPlayer(cmd, playerID.Value())
		},
	}
}

// newPlayerClearCommand creates the player clear subcommand
func newPlayerClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the default player",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := userConfigHandler.ClearDefaultPlayer(); err != nil {
				return fmt.Errorf("failed to clear default player: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Default player cleared")
			return nil
		},
	}
}

// newPlayerListCommand creates the player list subcommand
func newPlayerListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered players",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client *grpcadapter.EngineClient) error {
				result, err := client.ListPlayers(ctx)
				if err != nil {
					return fmt.Errorf("failed to list players: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(result.PlayerIDs) == 0 {
					fmt.Fprintln(out, "No players registered")
					return nil
				}
				titleColor.Fprintf(out, "Players (%d)\n", len(result.PlayerIDs))
				for _, id := range result.PlayerIDs {
					fmt.Fprintf(out, "  %s\n", id)
				}
				return nil
			})
		},
	}
}

// newPlayerDeleteCommand creates the player delete subcommand
func newPlayerDeleteCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <player-id>",
		Short: "Delete a player and its colony",
		Long: `Delete a player's colony, queues and stockpiles. This is account deletion
and cannot be undone. If the player is the default player, the default is
cleared.

Example:
  xnova player delete tg:42 --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete %s without --yes", args[0])
			}
			return withClient(cmd, func(ctx context.Context, client *grpcadapter.EngineClient) error {
				result, err := client.DeletePlayer(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to delete player: %w", err)
				}
				successColor.Fprintf(cmd.OutOrStdout(), "✓ Deleted player %s\n", result.PlayerID)
				return clearDefaultPlayerIf(cmd, result.PlayerID)
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the deletion")

	return cmd
}

// clearDefaultPlayerIf clears the default player when it is playerID
func clearDefaultPlayerIf(cmd *cobra.Command, playerID string) error {
	userConfigHandler, err := config.NewUserConfigHandler()
	if err != nil {
		return fmt.Errorf("failed to create user config handler: %w", err)
	}
	userCfg, err := userConfigHandler.Load()
	if err != nil {
		return fmt.Errorf("failed to load user config: %w", err)
	}
	if userCfg.DefaultPlayer != playerID {
		return nil
	}
	if err := userConfigHandler.ClearDefaultPlayer(); err != nil {
		return fmt.Errorf("failed to clear default player: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Default player cleared")
	return nil
}

func setDefaultPlayer(cmd *cobra.Command, playerID string) error {
	userConfigHandler, err := config.NewUserConfigHandler()
	if err != nil {
		return fmt.Errorf("failed to create user config handler: %w", err)
	}
	if err := userConfigHandler.SetDefaultPlayer(playerID); err != nil {
		return fmt.Errorf("failed to set default player: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Default player set to %s\n", playerID)
	return nil
}
