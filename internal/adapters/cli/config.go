package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/xnova-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage Xnova configuration settings.

Daemon configuration is loaded from multiple sources with priority:
1. Environment variables (XN_* prefix)
2. Config file (config.yaml)
3. Default values

CLI preferences (default player, daemon socket) are stored in ~/.xnova/config.json

Examples:
  xnova config show
  xnova config set-socket /run/xnova/daemon.sock`,
	}

	// Add subcommands
	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetSocketCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			// Load system config
			cfg, err := config.LoadConfig(configFile)
			if err != nil {
				infoColor.Fprintf(out, "Warning: Failed to load config: %v\n", err)
				fmt.Fprintln(out, "Using default configuration.")
				cfg = config.LoadConfigOrDefault("")
			}

			// Load user config
			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			userCfg, err := userConfigHandler.Load()
			if err != nil {
				infoColor.Fprintf(out, "Warning: Failed to load user config: %v\n\n", err)
				userCfg = &config.UserConfig{}
			}

			titleColor.Fprintln(out, "Xnova Configuration")
			fmt.Fprintln(out, "===================")

			fmt.Fprintln(out, "User Preferences:")
			fmt.Fprintf(out, "  Config file:      %s\n", userConfigHandler.GetConfigPath())
			fmt.Fprintf(out, "  Default Player:   %s\n", orNotSet(userCfg.DefaultPlayer))
			fmt.Fprintf(out, "  Daemon Socket:    %s\n", orNotSet(userCfg.DaemonSocket))

			fmt.Fprintln(out, "\nDatabase:")
			fmt.Fprintf(out, "  Type:             %s\n", cfg.Database.Type)
			switch {
			case cfg.Database.URL != "":
				fmt.Fprintf(out, "  URL:              %s\n", maskPassword(cfg.Database.URL))
			case cfg.Database.Type == "sqlite":
				fmt.Fprintf(out, "  Path:             %s\n", cfg.Database.Path)
			default:
				fmt.Fprintf(out, "  Host:             %s:%d\n", cfg.Database.Host, cfg.Database.Port)
				fmt.Fprintf(out, "  Database:         %s\n", cfg.Database.Name)
				fmt.Fprintf(out, "  User:             %s\n", cfg.Database.User)
			}

			fmt.Fprintln(out, "\nDaemon:")
			fmt.Fprintf(out, "  Socket Path:      %s\n", cfg.Daemon.SocketPath)
			fmt.Fprintf(out, "  Address:          %s\n", orNotSet(cfg.Daemon.Address))
			fmt.Fprintf(out, "  Request Timeout:  %s\n", cfg.Daemon.RequestTimeout)
			if cfg.Daemon.RateLimit.Enabled {
				fmt.Fprintf(out, "  Rate Limit:       %.1f req/s per player (burst: %d)\n",
					cfg.Daemon.RateLimit.RequestsPerSecond, cfg.Daemon.RateLimit.Burst)
			} else {
				fmt.Fprintln(out, "  Rate Limit:       disabled")
			}

			fmt.Fprintln(out, "\nEngine:")
			fmt.Fprintf(out, "  Universe Speed:   %g\n", cfg.Engine.UniverseSpeed)
			fmt.Fprintf(out, "  Refund Fraction:  %g\n", cfg.Engine.Refund())
			fmt.Fprintf(out, "  IO Retries:       %d\n", cfg.Engine.Retries())
			fmt.Fprintf(out, "  Catalog:          %s\n", orDefault(cfg.Engine.CatalogPath, "(built-in)"))
			fmt.Fprintf(out, "  Starting Stock:   %s\n", formatAmounts(cfg.Engine.StartingResources))

			fmt.Fprintln(out, "\nLogging:")
			fmt.Fprintf(out, "  Level:            %s\n", cfg.Logging.Level)
			fmt.Fprintf(out, "  Format:           %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "  Output:           %s\n", cfg.Logging.Output)

			fmt.Fprintln(out, "\nMetrics:")
			if cfg.Metrics.Enabled {
				fmt.Fprintf(out, "  Endpoint:         http://%s:%d%s\n", cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
			} else {
				fmt.Fprintln(out, "  Endpoint:         disabled")
			}

			return nil
		},
	}
}

// newConfigSetSocketCommand creates the config set-socket subcommand
func newConfigSetSocketCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-socket <path>",
		Short: "Remember the daemon socket",
		Long: `Store the daemon socket (or host:port) used when --socket is not given.
Pass an empty string to go back to the default.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			userCfg, err := userConfigHandler.Load()
			if err != nil {
				return err
			}
			userCfg.DaemonSocket = args[0]
			if err := userConfigHandler.Save(userCfg); err != nil {
				return fmt.Errorf("failed to save user config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Daemon socket set to %s\n", orDefault(args[0], "(default)"))
			return nil
		},
	}
}

// maskPassword masks passwords in connection strings for display
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "****")
	}
	return u.String()
}

func orNotSet(s string) string {
	return orDefault(s, "(not set)")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
