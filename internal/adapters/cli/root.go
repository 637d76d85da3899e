package cli

import (
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/andrescamacho/xnova-go/internal/infrastructure/config"
)

var (
	// Global flags
	socketPath     string
	playerFlag     string
	configFile     string
	requestTimeout time.Duration
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "xnova",
		Short: "Xnova CLI - Talk to the Xnova engine daemon",
		Long: `Xnova CLI queues and inspects timed jobs of a player colony.
The CLI communicates with the daemon via Unix socket.

Examples:
  xnova player register tg:42 --use
  xnova job start building metal_mine
  xnova job start fleet light_fighter --quantity 5
  xnova job cancel research 12
  xnova status
  xnova resources
  xnova callback "defense:rocket_launcher:10"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", getDefaultSocketPath(),
		"Path to daemon Unix socket, or host:port")
	rootCmd.PersistentFlags().StringVarP(&playerFlag, "player", "p", "",
		"Player id (defaults to the one set with 'xnova player use')")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Daemon config file (config show only)")
	rootCmd.PersistentFlags().DurationVar(&requestTimeout, "timeout", 10*time.Second,
		"Per request timeout")

	// Add command groups
	rootCmd.AddCommand(NewPlayerCommand())
	rootCmd.AddCommand(NewJobCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewResourcesCommand())
	rootCmd.AddCommand(NewCallbackCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewSchemaCommand())

	return rootCmd
}

// getDefaultSocketPath returns the socket from XNOVA_SOCKET, the user config
// or the daemon default, in that order
func getDefaultSocketPath() string {
	if path := os.Getenv("XNOVA_SOCKET"); path != "" {
		return path
	}
	if handler, err := config.NewUserConfigHandler(); err == nil {
		if userCfg, err := handler.Load(); err == nil && userCfg.DaemonSocket != "" {
			return userCfg.DaemonSocket
		}
	}
	return "/tmp/xnova-daemon.sock"
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(1)
	}
}
