package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/andrescamacho/xnova-go/internal/adapters/frontend"
	"github.com/andrescamacho/xnova-go/internal/application/engine"
)

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen, color.Bold)
	infoColor    = color.New(color.FgYellow)
)

func printResources(w io.Writer, view engine.ResourcesView) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Resource", "Amount", "Per Hour", "Capacity", "Fill"}),
	)
	for _, line := range view.Resources {
		capacity, fill := "-", "-"
		if line.Capacity > 0 {
			capacity = fmt.Sprintf("%.0f", line.Capacity)
			fill = fmt.Sprintf("%.0f%%", line.FillRatio*100)
		}
		if err := table.Append([]string{
			string(line.Kind),
			strconv.FormatInt(line.Amount, 10),
			fmt.Sprintf("%.0f", line.RatePerHour),
			capacity,
			fill,
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func printQueues(w io.Writer, status engine.StatusView) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Queue", "Job", "Target", "Qty", "Progress", "Remaining"}),
	)
	for _, queue := range status.Queues {
		slots := fmt.Sprintf("%s (%d/%d)", queue.Category, len(queue.Jobs), queue.MaxConcurrent)
		if len(queue.Jobs) == 0 {
			if err := table.Append([]string{slots, "-", "idle", "", "", ""}); err != nil {
				return err
			}
			continue
		}
		for _, job := range queue.Jobs {
			progress := "waiting"
			if job.Active {
				progress = frontend.ProgressBar(job.Progress)
			}
			if err := table.Append([]string{
				slots,
				fmt.Sprintf("#%d", job.ID),
				job.Target,
				strconv.Itoa(job.Quantity),
				progress,
				job.Countdown,
			}); err != nil {
				return err
			}
		}
	}
	return table.Render()
}

func printStatus(w io.Writer, status engine.StatusView) error {
	titleColor.Fprintf(w, "Colony %s (level %d)\n", status.PlayerID, status.PlayerLevel)
	if err := printQueues(w, status); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return printResources(w, status.Resources)
}

func printCompletions(w io.Writer, events []engine.CompletionView) {
	if len(events) == 0 {
		return
	}
	successColor.Fprintln(w, frontend.RenderCompletions(events))
	fmt.Fprintln(w)
}

func formatAmounts(amounts map[string]float64) string {
	if len(amounts) == 0 {
		return "nothing"
	}
	kinds := make([]string, 0, len(amounts))
	for kind := range amounts {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	parts := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		parts = append(parts, strconv.FormatFloat(amounts[kind], 'f', -1, 64)+" "+kind)
	}
	return strings.Join(parts, ", ")
}
