package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	// Namespace for all metrics
	namespace = "xnova"
	// Subsystem for engine metrics
	subsystem = "engine"
)

// NewRegistry creates a registry carrying the Go runtime and process
// collectors next to the engine's own metrics
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

func register(registerer prometheus.Registerer, metrics ...prometheus.Collector) error {
	if registerer == nil {
		return nil // Metrics not enabled
	}
	for _, metric := range metrics {
		if err := registerer.Register(metric); err != nil {
			return err
		}
	}
	return nil
}
