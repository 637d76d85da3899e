package config

// EngineConfig holds the game rules that are not part of the catalog
type EngineConfig struct {
	// Multiplier applied to every job duration divisor
	UniverseSpeed float64 `mapstructure:"universe_speed" validate:"gt=0"`

	// Fraction of a cancelled job's cost given back, in [0,1]. Nil means a
	// full refund; an explicit 0 disables refunds.
	RefundFraction *float64 `mapstructure:"refund_fraction" validate:"omitempty,min=0,max=1"`

	// Catalog YAML file; empty uses the built-in catalog
	CatalogPath string `mapstructure:"catalog_path" validate:"omitempty,file"`

	// Stockpile credited to a newly registered player
	StartingResources map[string]float64 `mapstructure:"starting_resources" validate:"dive,keys,oneof=metal crystal deuterium,endkeys,min=0"`

	// Retries with a fresh load after a persistence failure. Nil means one.
	IORetries *int `mapstructure:"io_retries" validate:"omitempty,min=0,max=5"`
}

// Refund returns the effective refund fraction
func (e EngineConfig) Refund() float64 {
	if e.RefundFraction == nil {
		return 1
	}
	return *e.RefundFraction
}

// Retries returns the effective IO retry count
func (e EngineConfig) Retries() int {
	if e.IORetries == nil {
		return 1
	}
	return *e.IORetries
}
