package colony_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/xnova-go/internal/domain/colony"
	"github.com/andrescamacho/xnova-go/internal/domain/shared"
)

func TestDefaultCatalog_IsValid(t *testing.T) {
	catalog := colony.DefaultCatalog()

	require.NoError(t, catalog.Validate())
	for _, cat := range colony.AllCategories() {
		assert.NotEmpty(t, catalog.Entities(cat), "category %s has no entities", cat)
	}
}

func TestCatalog_CostGrowsPerLevel(t *testing.T) {
	catalog := colony.DefaultCatalog()
	mine, err := catalog.Entity(colony.CategoryBuilding, "metal_mine")
	require.NoError(t, err)

	assert.Equal(t, 60.0, catalog.CostFor(mine, 1, 1)[colony.Metal])
	level2 := catalog.CostFor(mine, 2, 1)
	assert.Equal(t, 90.0, level2[colony.Metal])
	assert.Equal(t, 22.0, level2[colony.Crystal])
}

func TestCatalog_UnitCostScalesWithQuantity(t *testing.T) {
	catalog := colony.DefaultCatalog()
	fighter, err := catalog.Entity(colony.CategoryFleet, "light_fighter")
	require.NoError(t, err)

	cost := catalog.CostFor(fighter, 0, 5)

	assert.Equal(t, 15000.0, cost[colony.Metal])
	assert.Equal(t, 5000.0, cost[colony.Crystal])
}

func TestCatalog_DurationFromCost(t *testing.T) {
	catalog := colony.DefaultCatalog()
	mine, err := catalog.Entity(colony.CategoryBuilding, "metal_mine")
	require.NoError(t, err)

	// (60 + 15) / 2500 hours
	assert.Equal(t, 108*time.Second, catalog.DurationFor(mine, 1, 1, nil, 1))
	// robotics factory level 2 divides by 3
	assert.Equal(t, 36*time.Second, catalog.DurationFor(mine, 1, 1, map[string]int{"robotics_factory": 2}, 1))
}

func TestCatalog_ProductionAndCapacity(t *testing.T) {
	catalog := colony.DefaultCatalog()

	rates := catalog.ProductionRates(map[string]int{"metal_mine": 1})
	caps := catalog.Capacities(map[string]int{"metal_storage": 1})

	// 30 base + 30 * 1 * 1.1 per hour
	assert.InDelta(t, 63.0/3600, rates[colony.Metal], 1e-12)
	assert.InDelta(t, 15.0/3600, rates[colony.Crystal], 1e-12)
	assert.Equal(t, 20000.0, caps[colony.Metal])
	assert.Equal(t, 10000.0, caps[colony.Crystal])
}

func TestCatalog_MaxConcurrentGrowsWithPlayerLevel(t *testing.T) {
	catalog := colony.DefaultCatalog()

	assert.Equal(t, 2, catalog.MaxConcurrent(colony.CategoryBuilding, 1))
	assert.Equal(t, 3, catalog.MaxConcurrent(colony.CategoryBuilding, 6))
	assert.Equal(t, 5, catalog.MaxConcurrent(colony.CategoryBuilding, 100))
	assert.Equal(t, 1, catalog.MaxConcurrent(colony.CategoryResearch, 100))
}

func TestCatalog_PlayerLevel(t *testing.T) {
	catalog := colony.DefaultCatalog()

	assert.Equal(t, 1, catalog.PlayerLevel(nil))
	assert.Equal(t, 3, catalog.PlayerLevel(map[string]int{"metal_mine": 15, "crystal_mine": 10}))
}

func TestCatalog_UnknownTarget(t *testing.T) {
	catalog := colony.DefaultCatalog()

	_, err := catalog.Entity(colony.CategoryFleet, "metal_mine")

	assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
}

func TestParseCatalog_RejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "missing category rules",
			yaml: `
categories:
  building: {duration_divisor: 2500, max_concurrent: 1}
entities: []
`,
		},
		{
			name: "unknown requirement",
			yaml: `
categories:
  building: {duration_divisor: 2500, max_concurrent: 1}
  fleet: {duration_divisor: 2500, max_concurrent: 1}
  defense: {duration_divisor: 2500, max_concurrent: 1}
  research: {duration_divisor: 1000, max_concurrent: 1}
entities:
  - id: fighter
    category: fleet
    base_cost: {metal: 10}
    requires:
      buildings: {shipyard: 1}
`,
		},
		{
			name: "not yaml",
			yaml: "entities: [",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := colony.ParseCatalog([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadCatalog_ShippedExample(t *testing.T) {
	catalog, err := colony.LoadCatalog("../../../configs/catalog.yaml")
	require.NoError(t, err)

	dome, err := catalog.Entity(colony.CategoryDefense, "small_shield_dome")
	require.NoError(t, err)
	assert.Equal(t, 1, dome.MaxCount)
	assert.Equal(t, 500, catalog.Rules(colony.CategoryFleet).MaxBatch)
}
