package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/andrescamacho/xnova-go/internal/application/mediator"
	"github.com/andrescamacho/xnova-go/internal/infrastructure/config"
)

// DaemonServer serves EngineService on a Unix socket and/or a TCP address
type DaemonServer struct {
	grpcServer      *grpc.Server
	listeners       []net.Listener
	socketPath      string
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

// NewDaemonServer binds the configured listeners and registers the service
func NewDaemonServer(m mediator.Mediator, cfg config.DaemonConfig, logger *zap.Logger) (*DaemonServer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SocketPath == "" && cfg.Address == "" {
		return nil, errors.New("daemon needs a socket path or an address")
	}

	server := &DaemonServer{
		socketPath:      cfg.SocketPath,
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}

	if cfg.SocketPath != "" {
		// Remove existing socket file if present
		if err := os.RemoveAll(cfg.SocketPath); err != nil {
			return nil, fmt.Errorf("failed to remove existing socket: %w", err)
		}
		listener, err := net.Listen("unix", cfg.SocketPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create unix socket listener: %w", err)
		}
		// Set socket permissions (owner only)
		if err := os.Chmod(cfg.SocketPath, 0o600); err != nil {
			listener.Close()
			return nil, fmt.Errorf("failed to set socket permissions: %w", err)
		}
		server.listeners = append(server.listeners, listener)
	}

	if cfg.Address != "" {
		listener, err := net.Listen("tcp", cfg.Address)
		if err != nil {
			server.closeListeners()
			return nil, fmt.Errorf("failed to listen on %s: %w", cfg.Address, err)
		}
		server.listeners = append(server.listeners, listener)
	}

	interceptors := []grpc.UnaryServerInterceptor{timeoutInterceptor(cfg.RequestTimeout)}
	if cfg.RateLimit.Enabled {
		limiter := NewPlayerRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, cfg.RateLimit.IdleTTL)
		interceptors = append(interceptors, limiter.UnaryInterceptor())
	}
	server.grpcServer = grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))
	RegisterEngineServiceServer(server.grpcServer, NewEngineService(m, logger))

	return server, nil
}

// Addrs returns the bound addresses
func (s *DaemonServer) Addrs() []string {
	addrs := make([]string, 0, len(s.listeners))
	for _, l := range s.listeners {
		addrs = append(addrs, l.Addr().String())
	}
	return addrs
}

// Serve blocks until ctx is done, SIGINT/SIGTERM arrives or a listener
// fails, then stops gracefully
func (s *DaemonServer) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	errChan := make(chan error, len(s.listeners))
	for _, listener := range s.listeners {
		s.logger.Info("daemon listening", zap.String("addr", listener.Addr().String()))
		wg.Add(1)
		go func(l net.Listener) {
			defer wg.Done()
			if err := s.grpcServer.Serve(l); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				errChan <- fmt.Errorf("gRPC server error on %s: %w", l.Addr(), err)
			}
		}(listener)
	}

	var serveErr error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, stopping daemon")
	case serveErr = <-errChan:
		s.logger.Error("listener failed, stopping daemon", zap.Error(serveErr))
	}

	s.stop()
	wg.Wait()
	close(errChan)
	for err := range errChan {
		serveErr = multierr.Append(serveErr, err)
	}
	return multierr.Append(serveErr, s.removeSocket())
}

// stop drains in-flight requests, forcing a stop after the shutdown timeout
func (s *DaemonServer) stop() {
	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()

	timeout := s.shutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	select {
	case <-done:
	case <-time.After(timeout):
		s.logger.Warn("graceful shutdown timed out, forcing stop", zap.Duration("timeout", timeout))
		s.grpcServer.Stop()
		<-done
	}
}

func (s *DaemonServer) closeListeners() {
	for _, l := range s.listeners {
		l.Close()
	}
	_ = s.removeSocket()
}

func (s *DaemonServer) removeSocket() error {
	if s.socketPath == "" {
		return nil
	}
	if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove socket: %w", err)
	}
	return nil
}
