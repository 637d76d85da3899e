package colony

import (
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Requirements lists the minimum levels needed before an entity can be queued
type Requirements struct {
	Buildings map[string]int `yaml:"buildings,omitempty" json:"buildings,omitempty"`
	Research  map[string]int `yaml:"research,omitempty" json:"research,omitempty"`
}

// EntityDefinition describes something a job can produce
type EntityDefinition struct {
	ID       string   `yaml:"id" json:"id"`
	Category Category `yaml:"category" json:"category"`
	// BaseCost is the cost of level 1 (levelled) or of one unit
	BaseCost Cost `yaml:"base_cost" json:"base_cost"`
	// CostFactor multiplies the cost for every further level
	CostFactor float64 `yaml:"cost_factor,omitempty" json:"cost_factor,omitempty"`
	// BaseSeconds overrides the cost-derived duration of level 1 / one unit
	BaseSeconds float64      `yaml:"base_seconds,omitempty" json:"base_seconds,omitempty"`
	Requires    Requirements `yaml:"requires,omitempty" json:"requires,omitempty"`
	// Produces is the hourly production factor per resource kind (mines)
	Produces map[ResourceKind]float64 `yaml:"produces,omitempty" json:"produces,omitempty"`
	// Stores is the base storage capacity per resource kind (storages)
	Stores map[ResourceKind]float64 `yaml:"stores,omitempty" json:"stores,omitempty"`
	// MaxCount limits built + queued units (shield domes); 0 means unlimited
	MaxCount int `yaml:"max_count,omitempty" json:"max_count,omitempty"`
	// MaxLevel limits levelled entities; 0 means unlimited
	MaxLevel int `yaml:"max_level,omitempty" json:"max_level,omitempty"`
}

// CategoryRules holds the per-category queue and timing rules
type CategoryRules struct {
	DurationDivisor float64 `yaml:"duration_divisor" json:"duration_divisor"`
	SpeedupBuilding string  `yaml:"speedup_building,omitempty" json:"speedup_building,omitempty"`
	MaxConcurrent   int     `yaml:"max_concurrent" json:"max_concurrent"`
	// SlotsPerPlayerLevels grants one extra slot every N player levels; 0 disables
	SlotsPerPlayerLevels int `yaml:"slots_per_player_levels,omitempty" json:"slots_per_player_levels,omitempty"`
	MaxConcurrentCap     int `yaml:"max_concurrent_cap,omitempty" json:"max_concurrent_cap,omitempty"`
	// MaxBatch caps the quantity of one fleet/defense job; 0 means unlimited
	MaxBatch int `yaml:"max_batch,omitempty" json:"max_batch,omitempty"`
	// BlockedWhileUpgrading rejects new jobs while the speed-up building is
	// itself in the building queue
	BlockedWhileUpgrading bool `yaml:"blocked_while_upgrading,omitempty" json:"blocked_while_upgrading,omitempty"`
}

// Catalog is the game-balance configuration: entities, queue rules and
// production parameters
type Catalog struct {
	entities   map[string]*EntityDefinition
	order      []string
	Categories map[Category]CategoryRules
	// BaseProduction is the hourly production every colony has for free
	BaseProduction map[ResourceKind]float64
	// ProductionGrowth is the per-level growth of mine output (1.1)
	ProductionGrowth float64
	// LevelStep is how many building levels make one player level
	LevelStep int
}

type catalogFile struct {
	Entities         []EntityDefinition         `yaml:"entities"`
	Categories       map[Category]CategoryRules `yaml:"categories"`
	BaseProduction   map[ResourceKind]float64   `yaml:"base_production"`
	ProductionGrowth float64                    `yaml:"production_growth"`
	LevelStep        int                        `yaml:"level_step"`
}

// NewCatalog builds and validates a catalog
func NewCatalog(
	entities []EntityDefinition,
	categories map[Category]CategoryRules,
	baseProduction map[ResourceKind]float64,
	productionGrowth float64,
	levelStep int,
) (*Catalog, error) {
	c := &Catalog{
		entities:         make(map[string]*EntityDefinition, len(entities)),
		Categories:       categories,
		BaseProduction:   baseProduction,
		ProductionGrowth: productionGrowth,
		LevelStep:        levelStep,
	}
	if c.ProductionGrowth <= 0 {
		c.ProductionGrowth = 1.1
	}
	if c.LevelStep <= 0 {
		c.LevelStep = 10
	}
	for i := range entities {
		def := entities[i]
		if def.CostFactor <= 0 {
			def.CostFactor = 1
		}
		if _, dup := c.entities[def.ID]; dup {
			return nil, fmt.Errorf("duplicate entity: %s", def.ID)
		}
		c.entities[def.ID] = &def
		c.order = append(c.order, def.ID)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadCatalog reads a catalog from a YAML file
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a catalog from YAML
func ParseCatalog(data []byte) (*Catalog, error) {
	var raw catalogFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return NewCatalog(raw.Entities, raw.Categories, raw.BaseProduction, raw.ProductionGrowth, raw.LevelStep)
}

// Validate checks internal consistency
func (c *Catalog) Validate() error {
	for _, cat := range AllCategories() {
		rules, ok := c.Categories[cat]
		if !ok {
			return fmt.Errorf("missing rules for category %s", cat)
		}
		if rules.MaxConcurrent < 1 {
			return fmt.Errorf("category %s: max_concurrent must be at least 1", cat)
		}
		if rules.DurationDivisor <= 0 {
			return fmt.Errorf("category %s: duration_divisor must be positive", cat)
		}
		if rules.SpeedupBuilding != "" {
			if def, ok := c.entities[rules.SpeedupBuilding]; !ok || def.Category != CategoryBuilding {
				return fmt.Errorf("category %s: unknown speedup building %s", cat, rules.SpeedupBuilding)
			}
		}
	}
	for _, id := range c.order {
		def := c.entities[id]
		if def.ID == "" {
			return fmt.Errorf("entity with empty id")
		}
		if !def.Category.IsValid() {
			return fmt.Errorf("entity %s: invalid category %q", def.ID, def.Category)
		}
		for kind, v := range def.BaseCost {
			if !kind.IsValid() || v < 0 {
				return fmt.Errorf("entity %s: invalid cost %s=%v", def.ID, kind, v)
			}
		}
		if def.BaseCost.Total() <= 0 && def.BaseSeconds <= 0 {
			return fmt.Errorf("entity %s: needs a cost or base_seconds", def.ID)
		}
		for req := range def.Requires.Buildings {
			if r, ok := c.entities[req]; !ok || r.Category != CategoryBuilding {
				return fmt.Errorf("entity %s: unknown required building %s", def.ID, req)
			}
		}
		for req := range def.Requires.Research {
			if r, ok := c.entities[req]; !ok || r.Category != CategoryResearch {
				return fmt.Errorf("entity %s: unknown required research %s", def.ID, req)
			}
		}
	}
	return nil
}

// Entity looks up a definition within a category
func (c *Catalog) Entity(category Category, id string) (*EntityDefinition, error) {
	def, ok := c.entities[id]
	if !ok || def.Category != category {
		return nil, NewUnknownTargetError(category, id)
	}
	return def, nil
}

// Entities returns the definitions of a category in catalog order
func (c *Catalog) Entities(category Category) []*EntityDefinition {
	var out []*EntityDefinition
	for _, id := range c.order {
		if def := c.entities[id]; def.Category == category {
			out = append(out, def)
		}
	}
	return out
}

// Rules returns the rules of a category
func (c *Catalog) Rules(category Category) CategoryRules {
	return c.Categories[category]
}

// CostFor returns the cost of a job: the given level of a levelled entity,
// or quantity units of a unit entity. Costs are whole units.
func (c *Catalog) CostFor(def *EntityDefinition, level, quantity int) Cost {
	if def.Category.IsLevelled() {
		if level < 1 {
			level = 1
		}
		return def.BaseCost.Scale(math.Pow(def.CostFactor, float64(level-1))).Floor()
	}
	if quantity < 1 {
		quantity = 1
	}
	return def.BaseCost.Floor().Scale(float64(quantity))
}

// DurationFor returns the run time of a job for the given level / quantity
func (c *Catalog) DurationFor(def *EntityDefinition, level, quantity int, buildings map[string]int, universeSpeed float64) time.Duration {
	rules := c.Rules(def.Category)
	mods := DurationModifiers{
		Divisor:       rules.DurationDivisor,
		UniverseSpeed: universeSpeed,
	}
	if rules.SpeedupBuilding != "" {
		mods.SpeedupLevel = buildings[rules.SpeedupBuilding]
	}
	if def.Category.IsLevelled() {
		if def.BaseSeconds > 0 {
			return FixedUnitDuration(def.BaseSeconds*math.Pow(def.CostFactor, float64(level-1)), mods)
		}
		return UnitDuration(c.CostFor(def, level, 1), mods)
	}
	var unit time.Duration
	if def.BaseSeconds > 0 {
		unit = FixedUnitDuration(def.BaseSeconds, mods)
	} else {
		unit = UnitDuration(def.BaseCost, mods)
	}
	return BatchDuration(unit, quantity)
}

// ProductionRates returns the per-second production of every resource kind
// for the given building levels
func (c *Catalog) ProductionRates(buildings map[string]int) map[ResourceKind]float64 {
	rates := make(map[ResourceKind]float64)
	for _, kind := range AllResourceKinds() {
		rates[kind] = c.BaseProduction[kind] / 3600
	}
	for _, def := range c.Entities(CategoryBuilding) {
		level := buildings[def.ID]
		if level <= 0 {
			continue
		}
		for kind, factor := range def.Produces {
			hourly := factor * float64(level) * math.Pow(c.ProductionGrowth, float64(level))
			rates[kind] += hourly / 3600
		}
	}
	return rates
}

// Capacities returns the storage capacity of every resource kind. Kinds
// without a storage building are unbounded (0).
func (c *Catalog) Capacities(buildings map[string]int) map[ResourceKind]float64 {
	caps := make(map[ResourceKind]float64)
	for _, def := range c.Entities(CategoryBuilding) {
		level := buildings[def.ID]
		for kind, base := range def.Stores {
			caps[kind] += base * math.Floor(2.5*math.Exp(20*float64(level)/33))
		}
	}
	return caps
}

// PlayerLevel derives the player level from total building levels
func (c *Catalog) PlayerLevel(buildings map[string]int) int {
	total := 0
	for _, level := range buildings {
		total += level
	}
	return 1 + total/c.LevelStep
}

// MaxConcurrent returns how many pending jobs a category may hold
func (c *Catalog) MaxConcurrent(category Category, playerLevel int) int {
	rules := c.Rules(category)
	max := rules.MaxConcurrent
	if rules.SlotsPerPlayerLevels > 0 && playerLevel > 1 {
		max += (playerLevel - 1) / rules.SlotsPerPlayerLevels
	}
	if rules.MaxConcurrentCap > 0 && max > rules.MaxConcurrentCap {
		max = rules.MaxConcurrentCap
	}
	return max
}

// sortedKeys returns map keys in deterministic order
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
