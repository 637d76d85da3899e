package colony

import (
	"math"
	"time"
)

// DurationModifiers are the inputs that shorten a job beyond its own cost
type DurationModifiers struct {
	// Divisor is the category's cost-to-hours divisor (2500 for buildings
	// and the shipyard, 1000 for research)
	Divisor float64
	// SpeedupLevel is the level of the category's speed-up building
	// (robotics factory, shipyard, research lab)
	SpeedupLevel int
	// UniverseSpeed divides every duration
	UniverseSpeed float64
}

func (m DurationModifiers) speed() float64 {
	if m.UniverseSpeed <= 0 {
		return 1
	}
	return m.UniverseSpeed
}

// UnitDuration is the time to build one unit or one level costing unitCost:
// (metal + crystal) / (divisor * (1 + speedup)) hours, divided by the universe
// speed, floored to whole seconds and never below one second.
func UnitDuration(unitCost Cost, mods DurationModifiers) time.Duration {
	divisor := mods.Divisor
	if divisor <= 0 {
		divisor = 2500
	}
	hours := (unitCost[Metal] + unitCost[Crystal]) / (divisor * float64(1+mods.SpeedupLevel))
	return clampSeconds(hours * 3600 / mods.speed())
}

// FixedUnitDuration scales a configured base duration by the same speed-up
// rules as UnitDuration
func FixedUnitDuration(baseSeconds float64, mods DurationModifiers) time.Duration {
	return clampSeconds(baseSeconds / float64(1+mods.SpeedupLevel) / mods.speed())
}

func clampSeconds(seconds float64) time.Duration {
	s := math.Floor(seconds)
	if s < 1 {
		s = 1
	}
	return time.Duration(s) * time.Second
}

// BatchDuration is unit * quantity; batches get no parallelism discount
func BatchDuration(unit time.Duration, quantity int) time.Duration {
	if quantity < 1 {
		quantity = 1
	}
	return unit * time.Duration(quantity)
}

// CompletionTime returns start + d
func CompletionTime(start time.Time, d time.Duration) time.Time {
	return start.Add(d)
}

// SequenceStart returns when a job enqueued at now actually starts: jobs in
// a category run one after another
func SequenceStart(now time.Time, previous *Job) time.Time {
	if previous != nil && previous.CompletesAt.After(now) {
		return previous.CompletesAt
	}
	return now
}

// Remaining returns max(0, completesAt - now)
func Remaining(job *Job, now time.Time) time.Duration {
	if !job.CompletesAt.After(now) {
		return 0
	}
	return job.CompletesAt.Sub(now)
}

// Progress returns how far the job is along its own run, in [0, 1]. Jobs
// still waiting behind another job report 0.
func Progress(job *Job, now time.Time) float64 {
	total := job.CompletesAt.Sub(job.StartsAt)
	if total <= 0 || !now.Before(job.CompletesAt) {
		return 1
	}
	if !now.After(job.StartsAt) {
		return 0
	}
	return float64(now.Sub(job.StartsAt)) / float64(total)
}
