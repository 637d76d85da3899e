package colony

import (
	"fmt"

	"github.com/andrescamacho/xnova-go/internal/domain/shared"
)

// CheckPrerequisites verifies the completed building and research levels
// required by def. Queued levels do not count.
func CheckPrerequisites(def *EntityDefinition, state *PlayerState) error {
	for _, id := range sortedKeys(def.Requires.Buildings) {
		required := def.Requires.Buildings[id]
		if current := state.Buildings[id]; current < required {
			return NewPrerequisiteNotMetError(id, required, current)
		}
	}
	for _, id := range sortedKeys(def.Requires.Research) {
		required := def.Requires.Research[id]
		if current := state.Research[id]; current < required {
			return NewPrerequisiteNotMetError(id, required, current)
		}
	}
	return nil
}

// CheckSlots enforces MaxCount for unit entities and MaxLevel for levelled
// ones, counting what is already queued
func CheckSlots(def *EntityDefinition, state *PlayerState, quantity int) error {
	queue := state.Queue(def.Category)
	if def.Category.IsLevelled() {
		if def.MaxLevel <= 0 {
			return nil
		}
		current := state.LevelOf(def.Category, def.ID) + queue.CountTarget(def.ID)
		if current+1 > def.MaxLevel {
			return NewPrerequisiteNotMetError(
				fmt.Sprintf("%s below max level", def.ID), def.MaxLevel, current)
		}
		return nil
	}
	if def.MaxCount <= 0 {
		return nil
	}
	current := state.LevelOf(def.Category, def.ID) + queue.QueuedQuantity(def.ID)
	if current+quantity > def.MaxCount {
		return NewCapacitySlotError(def.ID, def.MaxCount, current)
	}
	return nil
}

// CheckQuantity validates the requested quantity against the category rules
func CheckQuantity(def *EntityDefinition, rules CategoryRules, quantity int) error {
	if quantity < 1 {
		return shared.NewValidationError("quantity", "must be at least 1")
	}
	if def.Category.IsLevelled() && quantity != 1 {
		return shared.NewValidationError("quantity", fmt.Sprintf("%s jobs raise one level at a time", def.Category))
	}
	if rules.MaxBatch > 0 && quantity > rules.MaxBatch {
		return shared.NewValidationError("quantity", fmt.Sprintf("at most %d units per job", rules.MaxBatch))
	}
	return nil
}

// CheckQueueCapacity returns QueueFullError when the category has no free slot
func CheckQueueCapacity(catalog *Catalog, state *PlayerState, category Category) error {
	max := catalog.MaxConcurrent(category, catalog.PlayerLevel(state.Buildings))
	if current := state.Queue(category).Len(); current >= max {
		return NewQueueFullError(category, current, max)
	}
	return nil
}

// CheckNotUpgrading rejects categories whose speed-up building is in the
// building queue
func CheckNotUpgrading(state *PlayerState, category Category, rules CategoryRules) error {
	if !rules.BlockedWhileUpgrading || rules.SpeedupBuilding == "" {
		return nil
	}
	if state.Queue(CategoryBuilding).CountTarget(rules.SpeedupBuilding) > 0 {
		return NewUpgradeInProgressError(category, rules.SpeedupBuilding)
	}
	return nil
}
