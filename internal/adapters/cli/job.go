package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	grpcadapter "github.com/andrescamacho/xnova-go/internal/adapters/grpc"
	"github.com/andrescamacho/xnova-go/internal/application/engine/commands"
)

// NewJobCommand creates the job command with subcommands
func NewJobCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Start and cancel timed jobs",
		Long: `Queue building upgrades, research, ship and defense production.

Categories: building, research, fleet, defense.
Only the last job of a queue can be cancelled.

Examples:
  xnova job start building metal_mine
  xnova job start fleet light_fighter --quantity 5
  xnova job cancel fleet 7`,
	}

	cmd.AddCommand(newJobStartCommand())
	cmd.AddCommand(newJobCancelCommand())

	return cmd
}

func newJobStartCommand() *cobra.Command {
	var quantity int

	cmd := &cobra.Command{
		Use:   "start <category> <target>",
		Short: "Charge the cost and queue a job",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPlayerClient(cmd, func(ctx context.Context, client *grpcadapter.EngineClient, playerID string) error {
				result, err := client.StartJob(ctx, &commands.StartJobCommand{
					PlayerID: playerID,
					Category: args[0],
					Target:   args[1],
					Quantity: quantity,
				})
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				printCompletions(out, result.Completed)
				job := result.Job
				successColor.Fprintf(out, "✓ Queued #%d %s x%d (%s)\n", job.ID, job.Target, job.Quantity, job.Category)
				fmt.Fprintf(out, "  Completes in: %s\n", job.Countdown)
				fmt.Fprintf(out, "  Cost:         %s\n\n", formatAmounts(job.Cost))
				return printResources(out, result.Resources)
			})
		},
	}

	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "Units to produce (fleet and defense)")

	return cmd
}

func newJobCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <category> <job-id>",
		Short: "Cancel the last job of a queue and refund it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid job id %q", args[1])
			}
			return withPlayerClient(cmd, func(ctx context.Context, client *grpcadapter.EngineClient, playerID string) error {
				result, err := client.CancelJob(ctx, &commands.CancelJobCommand{
					PlayerID: playerID,
					Category: args[0],
					JobID:    jobID,
				})
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				printCompletions(out, result.Completed)
				successColor.Fprintf(out, "✓ Cancelled #%d %s\n", result.JobID, result.Target)
				fmt.Fprintf(out, "  Refunded: %s\n\n", formatAmounts(result.Refund))
				return printResources(out, result.Resources)
			})
		},
	}
}
