package helpers

import (
	"testing"

	"github.com/andrescamacho/xnova-go/internal/domain/colony"
)

// SmallCatalogYAML is a compact universe with easy numbers: 10 metal/s
// for free, 500 metal storage, a 30 second mine costing 50 metal
const SmallCatalogYAML = `
base_production:
  metal: 36000
level_step: 10
categories:
  building: {duration_divisor: 2500, max_concurrent: 2}
  fleet: {duration_divisor: 2500, max_concurrent: 2, max_batch: 100}
  defense: {duration_divisor: 2500, max_concurrent: 3}
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
  - id: turret
    category: defense
    base_cost: {metal: 30}
    base_seconds: 10
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

// ParseSmallCatalog parses SmallCatalogYAML
func ParseSmallCatalog() (*colony.Catalog, error) {
	return colony.ParseCatalog([]byte(SmallCatalogYAML))
}

// SmallCatalog parses SmallCatalogYAML, failing the test on error
func SmallCatalog(t testing.TB) *colony.Catalog {
	t.Helper()
	catalog, err := ParseSmallCatalog()
	if err != nil {
		t.Fatalf("failed to parse test catalog: %v", err)
	}
	return catalog
}
