package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/xnova-go/internal/adapters/frontend"
	grpcadapter "github.com/andrescamacho/xnova-go/internal/adapters/grpc"
	"github.com/andrescamacho/xnova-go/internal/application/engine/queries"
)

// NewStatusCommand shows the reconciled queues of the player
func NewStatusCommand() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show queues, progress and resources",
		Long: `Show the player's queues with progress and countdowns, followed by the
resource ledger. Jobs that finished since the last request are applied first.

Examples:
  xnova status
  xnova status --category fleet`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPlayerClient(cmd, func(ctx context.Context, client *grpcadapter.EngineClient, playerID string) error {
				result, err := client.GetStatus(ctx, &queries.GetStatusQuery{PlayerID: playerID, Category: category})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				printCompletions(out, result.Completed)
				return printStatus(out, result.Status)
			})
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Only show this queue")

	return cmd
}

// NewResourcesCommand shows the resource ledger of the player
func NewResourcesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "Show stockpiles, production and capacity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPlayerClient(cmd, func(ctx context.Context, client *grpcadapter.EngineClient, playerID string) error {
				result, err := client.GetResources(ctx, playerID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				printCompletions(out, result.Completed)
				titleColor.Fprintf(out, "Resources at %s\n", result.Resources.At.Format("2006-01-02 15:04:05"))
				return printResources(out, result.Resources)
			})
		},
	}
}

// NewCallbackCommand runs front-end callback data, as a chat button would
func NewCallbackCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "callback <data>",
		Short: "Run callback data such as \"build:metal_mine\"",
		Long: `Run front-end callback data and print the reply a chat user would see.

Forms:
  build:<target>                 building upgrade
  research:<target>              research
  fleet:<target>[:<quantity>]    ship production
  defense:<target>[:<quantity>]  defense production
  cancel:<category>:<job id>     cancel the last job of a queue
  status[:<category>]
  resources`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPlayerClient(cmd, func(ctx context.Context, client *grpcadapter.EngineClient, playerID string) error {
				text, err := client.Callback(ctx, playerID, args[0])
				if err != nil && !frontend.IsUserFacing(err) {
					return err
				}
				// rejected operations are part of the reply
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			})
		},
	}
}
