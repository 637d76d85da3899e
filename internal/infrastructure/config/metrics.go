package config

// MetricsConfig controls the engine and command collectors and the
// Prometheus scrape endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1024,max=65535"`
	// Path defaults to /metrics
	Path string `mapstructure:"path"`
}
