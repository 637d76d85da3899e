package frontend

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/andrescamacho/xnova-go/internal/application/engine"
	"github.com/andrescamacho/xnova-go/internal/domain/shared"
)

const progressBarWidth = 10

// ProgressBar renders a fraction in [0,1] as "[#####-----] 50%"
func ProgressBar(fraction float64) string {
	fraction = math.Max(0, math.Min(1, fraction))
	filled := int(math.Floor(fraction * progressBarWidth))
	return fmt.Sprintf("[%s%s] %d%%",
		strings.Repeat("#", filled),
		strings.Repeat("-", progressBarWidth-filled),
		int(math.Floor(fraction*100)))
}

// RenderJob renders one pending job as a single line
func RenderJob(job engine.JobView) string {
	name := job.Target
	if job.Quantity > 1 || !job.Category.IsLevelled() {
		name = fmt.Sprintf("%d x %s", job.Quantity, job.Target)
	}
	if !job.Active {
		return fmt.Sprintf("#%d %s (waiting, %s)", job.ID, name, job.Countdown)
	}
	return fmt.Sprintf("#%d %s %s %s", job.ID, name, ProgressBar(job.Progress), job.Countdown)
}

// RenderResources renders the ledger one kind per line
func RenderResources(view engine.ResourcesView) string {
	var b strings.Builder
	for _, line := range view.Resources {
		fmt.Fprintf(&b, "%s: %d (+%.0f/h)", line.Kind, line.Amount, line.RatePerHour)
		if line.Capacity > 0 {
			fmt.Fprintf(&b, " of %.0f", line.Capacity)
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderStatus renders queues followed by resources
func RenderStatus(view engine.StatusView) string {
	var b strings.Builder
	for _, queue := range view.Queues {
		fmt.Fprintf(&b, "%s (%d/%d)\n", queue.Category, len(queue.Jobs), queue.MaxConcurrent)
		if len(queue.Jobs) == 0 {
			b.WriteString("  idle\n")
		}
		for _, job := range queue.Jobs {
			b.WriteString("  " + RenderJob(job) + "\n")
		}
	}
	b.WriteString(RenderResources(view.Resources))
	return b.String()
}

// RenderCompletions renders the completions a request observed
func RenderCompletions(events []engine.CompletionView) string {
	lines := make([]string, 0, len(events))
	for _, e := range events {
		if e.Category.IsLevelled() {
			lines = append(lines, fmt.Sprintf("%s reached level %d", e.Target, e.NewValue))
		} else {
			lines = append(lines, fmt.Sprintf("%d x %s ready (%d total)", e.Quantity, e.Target, e.NewValue))
		}
	}
	return strings.Join(lines, "\n")
}

// RenderError renders an error for the player. Business errors keep their
// message, everything else is reported generically.
func RenderError(err error) string {
	switch {
	case IsUserFacing(err):
		return err.Error()
	case shared.CodeOf(err) == shared.CodeIOError:
		return "storage is unavailable, please try again"
	default:
		return "something went wrong"
	}
}

// IsUserFacing reports whether err is something the player can act on
func IsUserFacing(err error) bool {
	code := shared.CodeOf(err)
	return code.IsBusinessRule() || code == shared.CodeValidation || code == shared.CodeNotFound
}

// RenderResponse renders any engine result
func RenderResponse(response interface{}) string {
	var parts []string
	add := func(s string) {
		if s != "" {
			parts = append(parts, s)
		}
	}
	switch r := response.(type) {
	case *engine.RegisterResult:
		if r.Created {
			add("welcome, your colony has been founded")
		}
		add(RenderCompletions(r.Completed))
		add(RenderStatus(r.Status))
	case *engine.StartJobResult:
		add(RenderCompletions(r.Completed))
		add("queued " + RenderJob(r.Job))
		add(RenderResources(r.Resources))
	case *engine.CancelJobResult:
		add(RenderCompletions(r.Completed))
		add(fmt.Sprintf("cancelled #%d %s, refunded %s", r.JobID, r.Target, renderAmounts(r.Refund)))
		add(RenderResources(r.Resources))
	case *engine.StatusResult:
		add(RenderCompletions(r.Completed))
		add(RenderStatus(r.Status))
	case *engine.ResourcesResult:
		add(RenderCompletions(r.Completed))
		add(RenderResources(r.Resources))
	}
	return strings.Join(parts, "\n\n")
}

func renderAmounts(amounts map[string]float64) string {
	if len(amounts) == 0 {
		return "nothing"
	}
	kinds := make([]string, 0, len(amounts))
	for k := range amounts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		parts = append(parts, strconv.FormatFloat(amounts[k], 'f', -1, 64)+" "+k)
	}
	return strings.Join(parts, ", ")
}
