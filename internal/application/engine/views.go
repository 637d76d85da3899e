package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/andrescamacho/xnova-go/internal/domain/colony"
)

// ResourceLine is one resource kind as shown to the player
type ResourceLine struct {
	Kind        colony.ResourceKind `json:"kind"`
	Amount      int64               `json:"amount"`
	RatePerHour float64             `json:"rate_per_hour"`
	Capacity    float64             `json:"capacity"`
	// FillRatio is amount / capacity, 0 when unbounded
	FillRatio float64 `json:"fill_ratio"`
}

// ResourcesView is the ledger as of At
type ResourcesView struct {
	At        time.Time      `json:"at"`
	Resources []ResourceLine `json:"resources"`
}

// JobView is a pending job as of the view instant
type JobView struct {
	ID               int64              `json:"id"`
	Category         colony.Category    `json:"category"`
	Target           string             `json:"target"`
	Quantity         int                `json:"quantity"`
	Cost             map[string]float64 `json:"cost"`
	StartsAt         time.Time          `json:"starts_at"`
	CompletesAt      time.Time          `json:"completes_at"`
	RemainingSeconds int64              `json:"remaining_seconds"`
	Progress         float64            `json:"progress"`
	Active           bool               `json:"active"`
	Countdown        string             `json:"countdown"`
}

// QueueView is one category queue
type QueueView struct {
	Category      colony.Category `json:"category"`
	MaxConcurrent int             `json:"max_concurrent"`
	Jobs          []JobView       `json:"jobs"`
}

// StatusView is the reconciled state of a player
type StatusView struct {
	PlayerID    string         `json:"player_id"`
	At          time.Time      `json:"at"`
	PlayerLevel int            `json:"player_level"`
	Queues      []QueueView    `json:"queues"`
	Buildings   map[string]int `json:"buildings"`
	Research    map[string]int `json:"research"`
	Fleet       map[string]int `json:"fleet"`
	Defense     map[string]int `json:"defense"`
	Resources   ResourcesView  `json:"resources"`
}

// CompletionView is a completion observed during a request
type CompletionView struct {
	EventID     string          `json:"event_id"`
	JobID       int64           `json:"job_id"`
	Category    colony.Category `json:"category"`
	Target      string          `json:"target"`
	Quantity    int             `json:"quantity"`
	CompletedAt time.Time       `json:"completed_at"`
	NewValue    int             `json:"new_value"`
}

// Countdown renders a duration as "1d 02h 03m 04s", "1h 02m 05s",
// "2m 05s" or "5s"
func Countdown(d time.Duration) string {
	if d <= 0 {
		return "done"
	}
	total := int64(math.Ceil(d.Seconds()))
	days := total / 86400
	hours := total % 86400 / 3600
	minutes := total % 3600 / 60
	seconds := total % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %02dh %02dm %02ds", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dh %02dm %02ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %02ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

func resourcesView(state *colony.PlayerState) ResourcesView {
	view := ResourcesView{At: state.Ledger.LastSyncedAt()}
	for _, kind := range colony.AllResourceKinds() {
		acc := state.Ledger.Account(kind)
		line := ResourceLine{
			Kind:        kind,
			Amount:      int64(math.Floor(acc.Amount)),
			RatePerHour: acc.RatePerSecond * 3600,
			Capacity:    acc.Capacity,
		}
		if acc.Capacity > 0 {
			line.FillRatio = acc.Amount / acc.Capacity
		}
		view.Resources = append(view.Resources, line)
	}
	return view
}

func jobView(status colony.JobStatus) JobView {
	cost := make(map[string]float64, len(status.Job.Cost))
	for kind, v := range status.Job.Cost {
		cost[string(kind)] = v
	}
	return JobView{
		ID:               int64(status.Job.ID),
		Category:         status.Job.Category,
		Target:           status.Job.Target,
		Quantity:         status.Job.Quantity,
		Cost:             cost,
		StartsAt:         status.Job.StartsAt,
		CompletesAt:      status.Job.CompletesAt,
		RemainingSeconds: int64(math.Ceil(status.Remaining.Seconds())),
		Progress:         status.Progress,
		Active:           status.Active,
		Countdown:        Countdown(status.Remaining),
	}
}

func queueView(state *colony.PlayerState, catalog *colony.Catalog, category colony.Category, now time.Time) QueueView {
	view := QueueView{
		Category:      category,
		MaxConcurrent: catalog.MaxConcurrent(category, catalog.PlayerLevel(state.Buildings)),
		Jobs:          []JobView{},
	}
	for _, status := range state.Queue(category).PeekStatus(now) {
		view.Jobs = append(view.Jobs, jobView(status))
	}
	return view
}

func statusView(state *colony.PlayerState, catalog *colony.Catalog, categories []colony.Category, now time.Time) StatusView {
	view := StatusView{
		PlayerID:    state.PlayerID.String(),
		At:          now,
		PlayerLevel: catalog.PlayerLevel(state.Buildings),
		Buildings:   copyCounts(state.Buildings),
		Research:    copyCounts(state.Research),
		Fleet:       copyCounts(state.Fleet),
		Defense:     copyCounts(state.Defense),
		Resources:   resourcesView(state),
	}
	for _, cat := range categories {
		view.Queues = append(view.Queues, queueView(state, catalog, cat, now))
	}
	return view
}

func completionViews(events []colony.CompletionEvent) []CompletionView {
	out := make([]CompletionView, 0, len(events))
	for _, e := range events {
		out = append(out, CompletionView{
			EventID:     e.ID,
			JobID:       int64(e.JobID),
			Category:    e.Category,
			Target:      e.Target,
			Quantity:    e.Quantity,
			CompletedAt: e.CompletedAt,
			NewValue:    e.NewValue,
		})
	}
	return out
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
