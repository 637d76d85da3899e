package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/andrescamacho/xnova-go/internal/adapters/grpc"
	"github.com/andrescamacho/xnova-go/internal/adapters/metrics"
	"github.com/andrescamacho/xnova-go/internal/adapters/persistence"
	"github.com/andrescamacho/xnova-go/internal/application/engine"
	"github.com/andrescamacho/xnova-go/internal/application/mediator"
	"github.com/andrescamacho/xnova-go/internal/application/setup"
	"github.com/andrescamacho/xnova-go/internal/domain/colony"
	"github.com/andrescamacho/xnova-go/internal/domain/shared"
	"github.com/andrescamacho/xnova-go/internal/infrastructure/config"
	"github.com/andrescamacho/xnova-go/internal/infrastructure/database"
	"github.com/andrescamacho/xnova-go/internal/infrastructure/logging"
	"github.com/andrescamacho/xnova-go/internal/infrastructure/pidfile"
)

func main() {
	os.Exit(daemonMain(os.Args[1:]))
}

// daemonMain runs the daemon and returns the process exit code. Every
// deferred cleanup, including releasing the PID file, runs before main exits.
func daemonMain(args []string) int {
	// Parse command-line flags
	flags := flag.NewFlagSet("xnova-daemon", flag.ContinueOnError)
	configPath := flags.String("config", "", "Config file (default: search ./config.yaml, ./configs, /etc/xnova)")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	fmt.Println("Xnova Engine Daemon v0.1.0")
	fmt.Println("==========================")

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}

	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		log.Printf("Failed to create logger: %v", err)
		return 1
	}
	defer logging.Sync(logger)

	// Acquire PID file lock to prevent multiple instances
	pf := pidfile.New(cfg.Daemon.PIDFile)
	if err := pf.Acquire(); err != nil {
		logger.Error("failed to acquire PID file lock", zap.String("path", pf.Path()), zap.Error(err))
		return 1
	}
	defer func() {
		if err := pf.Release(); err != nil {
			logger.Warn("failed to release PID file", zap.Error(err))
		}
	}()

	if err := run(cfg, logger); err != nil {
		logger.Error("daemon stopped with error", zap.Error(err))
		return 1
	}
	return 0
}

func run(cfg *config.Config, logger *zap.Logger) error {
	// 1. Database
	logger.Info("connecting to database", zap.String("type", cfg.Database.Type))
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// 2. Catalog
	catalog := colony.DefaultCatalog()
	if cfg.Engine.CatalogPath != "" {
		catalog, err = colony.LoadCatalog(cfg.Engine.CatalogPath)
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		logger.Info("catalog loaded", zap.String("path", cfg.Engine.CatalogPath))
	}

	// 3. Persistence gateway
	repo := persistence.NewGormPlayerStateRepository(db)
	gateway := persistence.NewGateway(repo, persistence.NewPlayerLocks())

	// 4. Metrics
	options, err := engineOptions(cfg.Engine)
	if err != nil {
		return err
	}
	var middlewares []mediator.Middleware
	if cfg.Metrics.Enabled {
		registry := metrics.NewRegistry()
		commandMetrics := metrics.NewCommandMetricsCollector()
		engineMetrics := metrics.NewEngineMetricsCollector()
		if err := commandMetrics.Register(registry); err != nil {
			return fmt.Errorf("failed to register command metrics: %w", err)
		}
		if err := engineMetrics.Register(registry); err != nil {
			return fmt.Errorf("failed to register engine metrics: %w", err)
		}
		options.Metrics = engineMetrics
		middlewares = append(middlewares, metrics.PrometheusMiddleware(commandMetrics))

		addr := net.JoinHostPort(cfg.Metrics.Host, strconv.Itoa(cfg.Metrics.Port))
		metricsServer, err := metrics.NewServer(addr, cfg.Metrics.Path, registry, logger)
		if err != nil {
			return err
		}
		metricsServer.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Warn("metrics server shutdown failed", zap.Error(err))
			}
		}()
	}

	// 5. Mediator with handlers
	registry := setup.NewHandlerRegistry(gateway, catalog, shared.NewRealClock(), options, logger, middlewares...)
	med, err := registry.CreateConfiguredMediator()
	if err != nil {
		return fmt.Errorf("failed to configure mediator: %w", err)
	}

	// 6. gRPC daemon
	if cfg.Daemon.SocketPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Daemon.SocketPath), 0o755); err != nil {
			return fmt.Errorf("failed to create socket directory: %w", err)
		}
	}
	daemonServer, err := grpc.NewDaemonServer(med, cfg.Daemon, logger)
	if err != nil {
		return fmt.Errorf("failed to create daemon server: %w", err)
	}

	logger.Info("engine ready",
		zap.Strings("addrs", daemonServer.Addrs()),
		zap.Float64("universe_speed", options.Settings.UniverseSpeed),
		zap.Float64("refund_fraction", options.Settings.RefundFraction))
	return daemonServer.Serve(context.Background())
}

// engineOptions maps the engine config onto coordinator options
func engineOptions(cfg config.EngineConfig) (engine.Options, error) {
	options := engine.DefaultOptions()
	options.Settings = colony.Settings{
		UniverseSpeed:  cfg.UniverseSpeed,
		RefundFraction: cfg.Refund(),
	}
	options.IORetries = cfg.Retries()

	if cfg.StartingResources != nil {
		starting := make(colony.Cost, len(cfg.StartingResources))
		for name, amount := range cfg.StartingResources {
			kind, err := colony.ParseResourceKind(name)
			if err != nil {
				return engine.Options{}, fmt.Errorf("invalid starting resource: %w", err)
			}
			starting[kind] = amount
		}
		options.StartingResources = starting
	}
	return options, nil
}
