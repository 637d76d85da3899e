package colony

func building(id string, metal, crystal, deut, factor float64) EntityDefinition {
	return EntityDefinition{
		ID:         id,
		Category:   CategoryBuilding,
		BaseCost:   Cost{Metal: metal, Crystal: crystal, Deuterium: deut},
		CostFactor: factor,
	}
}

func research(id string, metal, crystal, deut float64, requires Requirements) EntityDefinition {
	return EntityDefinition{
		ID:         id,
		Category:   CategoryResearch,
		BaseCost:   Cost{Metal: metal, Crystal: crystal, Deuterium: deut},
		CostFactor: 2,
		Requires:   requires,
	}
}

func unit(id string, category Category, metal, crystal, deut float64, requires Requirements) EntityDefinition {
	return EntityDefinition{
		ID:       id,
		Category: category,
		BaseCost: Cost{Metal: metal, Crystal: crystal, Deuterium: deut},
		Requires: requires,
	}
}

func needs(buildings map[string]int, research map[string]int) Requirements {
	return Requirements{Buildings: buildings, Research: research}
}

// DefaultCatalog returns the classic universe balance
func DefaultCatalog() *Catalog {
	metalMine := building("metal_mine", 60, 15, 0, 1.5)
	metalMine.Produces = map[ResourceKind]float64{Metal: 30}
	crystalMine := building("crystal_mine", 48, 24, 0, 1.6)
	crystalMine.Produces = map[ResourceKind]float64{Crystal: 20}
	synthesizer := building("deuterium_synthesizer", 225, 75, 0, 1.5)
	synthesizer.Produces = map[ResourceKind]float64{Deuterium: 10}
	metalStorage := building("metal_storage", 1000, 0, 0, 2)
	metalStorage.Stores = map[ResourceKind]float64{Metal: 5000}
	crystalStorage := building("crystal_storage", 1000, 500, 0, 2)
	crystalStorage.Stores = map[ResourceKind]float64{Crystal: 5000}
	deuteriumTank := building("deuterium_tank", 1000, 1000, 0, 2)
	deuteriumTank.Stores = map[ResourceKind]float64{Deuterium: 5000}
	shipyard := building("shipyard", 400, 200, 100, 2)
	shipyard.Requires = needs(map[string]int{"robotics_factory": 2}, nil)

	smallDome := unit("small_shield_dome", CategoryDefense, 10000, 10000, 0,
		needs(map[string]int{"shipyard": 1}, map[string]int{"shielding_technology": 2}))
	smallDome.MaxCount = 1
	largeDome := unit("large_shield_dome", CategoryDefense, 50000, 50000, 0,
		needs(map[string]int{"shipyard": 6}, map[string]int{"shielding_technology": 6}))
	largeDome.MaxCount = 1

	entities := []EntityDefinition{
		metalMine,
		crystalMine,
		synthesizer,
		building("robotics_factory", 400, 120, 200, 2),
		shipyard,
		building("research_lab", 200, 400, 200, 2),
		metalStorage,
		crystalStorage,
		deuteriumTank,

		research("energy_technology", 0, 800, 400, needs(map[string]int{"research_lab": 1}, nil)),
		research("computer_technology", 0, 400, 600, needs(map[string]int{"research_lab": 1}, nil)),
		research("combustion_drive", 400, 0, 600,
			needs(map[string]int{"research_lab": 1}, map[string]int{"energy_technology": 1})),
		research("laser_technology", 200, 100, 0,
			needs(map[string]int{"research_lab": 1}, map[string]int{"energy_technology": 2})),
		research("weapons_technology", 800, 200, 0, needs(map[string]int{"research_lab": 4}, nil)),
		research("shielding_technology", 200, 600, 0,
			needs(map[string]int{"research_lab": 6}, map[string]int{"energy_technology": 3})),

		unit("light_fighter", CategoryFleet, 3000, 1000, 0,
			needs(map[string]int{"shipyard": 1}, map[string]int{"combustion_drive": 1})),
		unit("small_cargo", CategoryFleet, 2000, 2000, 0,
			needs(map[string]int{"shipyard": 2}, map[string]int{"combustion_drive": 2})),
		unit("heavy_fighter", CategoryFleet, 6000, 4000, 0,
			needs(map[string]int{"shipyard": 3}, map[string]int{"laser_technology": 2})),
		unit("espionage_probe", CategoryFleet, 0, 1000, 0,
			needs(map[string]int{"shipyard": 3}, map[string]int{"combustion_drive": 3})),
		unit("colony_ship", CategoryFleet, 10000, 20000, 10000, needs(map[string]int{"shipyard": 4}, nil)),

		unit("rocket_launcher", CategoryDefense, 2000, 0, 0, needs(map[string]int{"shipyard": 1}, nil)),
		unit("light_laser", CategoryDefense, 1500, 500, 0,
			needs(map[string]int{"shipyard": 2}, map[string]int{"laser_technology": 3, "energy_technology": 1})),
		unit("heavy_laser", CategoryDefense, 6000, 2000, 0,
			needs(map[string]int{"shipyard": 4}, map[string]int{"laser_technology": 6, "energy_technology": 3})),
		smallDome,
		largeDome,
	}

	categories := map[Category]CategoryRules{
		CategoryBuilding: {
			DurationDivisor:      2500,
			SpeedupBuilding:      "robotics_factory",
			MaxConcurrent:        2,
			SlotsPerPlayerLevels: 5,
			MaxConcurrentCap:     5,
		},
		CategoryFleet: {
			DurationDivisor:       2500,
			SpeedupBuilding:       "shipyard",
			MaxConcurrent:         3,
			SlotsPerPlayerLevels:  5,
			MaxConcurrentCap:      10,
			MaxBatch:              1000,
			BlockedWhileUpgrading: true,
		},
		CategoryDefense: {
			DurationDivisor:       2500,
			SpeedupBuilding:       "shipyard",
			MaxConcurrent:         3,
			SlotsPerPlayerLevels:  5,
			MaxConcurrentCap:      10,
			MaxBatch:              1000,
			BlockedWhileUpgrading: true,
		},
		CategoryResearch: {
			DurationDivisor:       1000,
			SpeedupBuilding:       "research_lab",
			MaxConcurrent:         1,
			BlockedWhileUpgrading: true,
		},
	}

	catalog, err := NewCatalog(
		entities,
		categories,
		map[ResourceKind]float64{Metal: 30, Crystal: 15},
		1.1,
		10,
	)
	if err != nil {
		panic("default catalog is invalid: " + err.Error())
	}
	return catalog
}
