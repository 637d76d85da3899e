package colony_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/xnova-go/internal/domain/colony"
	"github.com/andrescamacho/xnova-go/internal/domain/shared"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// 10 metal/s for free, 500 metal storage, a 30s mine costing 50 metal
const smallCatalogYAML = `
base_production:
  metal: 36000
level_step: 10
categories:
  building: {duration_divisor: 2500, max_concurrent: 2}
  fleet: {duration_divisor: 2500, max_concurrent: 2, max_batch: 100}
  defense: {duration_divisor: 2500, max_concurrent: 2}
  research: {duration_divisor: 1000, max_concurrent: 1}
entities:
  - id: mine
    category: building
    base_cost: {metal: 50}
    cost_factor: 2
    base_seconds: 30
  - id: silo
    category: building
    base_cost: {metal: 400}
    stores: {metal: 250}
    base_seconds: 60
  - id: fighter
    category: fleet
    base_cost: {metal: 10}
    base_seconds: 5
    requires:
      buildings: {mine: 1}
  - id: dome
    category: defense
    base_cost: {metal: 20}
    base_seconds: 10
    max_count: 1
  - id: armour
    category: research
    base_cost: {metal: 30}
    base_seconds: 20
`

// same layout, but the mine produces and storage is large
const productiveCatalogYAML = `
base_production:
  metal: 36000
categories:
  building: {duration_divisor: 2500, max_concurrent: 2}
  fleet: {duration_divisor: 2500, max_concurrent: 2}
  defense: {duration_divisor: 2500, max_concurrent: 2}
  research: {duration_divisor: 1000, max_concurrent: 1}
entities:
  - id: mine
    category: building
    base_cost: {metal: 50}
    base_seconds: 30
    produces: {metal: 3600}
  - id: silo
    category: building
    base_cost: {metal: 400}
    stores: {metal: 2500}
    base_seconds: 60
`

func smallCatalog(t *testing.T) *colony.Catalog {
	t.Helper()
	catalog, err := colony.ParseCatalog([]byte(smallCatalogYAML))
	require.NoError(t, err)
	return catalog
}

func newState(t *testing.T, catalog *colony.Catalog, metal float64) *colony.PlayerState {
	t.Helper()
	state, err := colony.NewPlayerState(shared.MustNewPlayerID("p1"), catalog, colony.Cost{colony.Metal: metal}, t0)
	require.NoError(t, err)
	return state
}

func at(seconds int) time.Time {
	return t0.Add(time.Duration(seconds) * time.Second)
}
