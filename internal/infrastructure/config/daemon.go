package config

import "time"

// DaemonConfig holds daemon service configuration
type DaemonConfig struct {
	// gRPC TCP address (host:port); empty disables TCP
	Address string `mapstructure:"address" validate:"omitempty,hostname_port"`

	// Unix socket path for local clients; empty disables the socket
	SocketPath string `mapstructure:"socket_path"`

	// PID file location
	PIDFile string `mapstructure:"pid_file" validate:"required"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`

	// Per-player request throttling
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// Deadline applied to every request
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"required"`
}

// RateLimitConfig holds per-player request rate limiting configuration
type RateLimitConfig struct {
	// Disable throttling entirely
	Enabled bool `mapstructure:"enabled"`

	// Sustained requests per second per player
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"min=0"`

	// Burst size per player
	Burst int `mapstructure:"burst" validate:"min=0"`

	// Idle limiters are forgotten after this long
	IdleTTL time.Duration `mapstructure:"idle_ttl"`
}
