package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/xnova-go/internal/domain/shared"
)

// CommandMetricsCollector handles all command/query execution metrics
type CommandMetricsCollector struct {
	commandDuration *prometheus.HistogramVec
	commandsTotal   *prometheus.CounterVec
}

// NewCommandMetricsCollector creates a new command metrics collector
func NewCommandMetricsCollector() *CommandMetricsCollector {
	return &CommandMetricsCollector{
		commandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "command_duration_seconds",
				Help:      "Command execution duration distribution",
				Buckets:   []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
			[]string{"command", "status"},
		),
		commandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "commands_total",
				Help:      "Total number of commands executed by type and status",
			},
			[]string{"command", "status"},
		),
	}
}

// Register registers all command metrics
func (c *CommandMetricsCollector) Register(registerer prometheus.Registerer) error {
	return register(registerer, c.commandDuration, c.commandsTotal)
}

// RecordCommandExecution records one command. Status is "success",
// "rejected" for user-correctable errors or "error".
func (c *CommandMetricsCollector) RecordCommandExecution(commandName string, duration float64, err error) {
	status := commandStatus(err)
	c.commandDuration.WithLabelValues(commandName, status).Observe(duration)
	c.commandsTotal.WithLabelValues(commandName, status).Inc()
}

func commandStatus(err error) string {
	if err == nil {
		return "success"
	}
	switch code := shared.CodeOf(err); {
	case code.IsBusinessRule(), code == shared.CodeValidation, code == shared.CodeNotFound:
		return "rejected"
	default:
		return "error"
	}
}
