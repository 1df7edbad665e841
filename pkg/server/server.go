package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/sourcegraph/conc"

	"mercator-hq/rotator/pkg/config"
	"mercator-hq/rotator/pkg/proxy/middleware"
	"mercator-hq/rotator/pkg/routing"
	"mercator-hq/rotator/pkg/telemetry/health"
	"mercator-hq/rotator/pkg/telemetry/metrics"
	"mercator-hq/rotator/pkg/telemetry/tracing"
)

// Options holds the components a Server exposes.
type Options struct {
	Config *config.Config

	// Proxy is the failover handler; the server wraps it in the middleware chain.
	Proxy http.Handler

	Instances *config.InstanceSet
	Rotation  *routing.Rotation
	Stats     *routing.Stats
	Checker   *health.Checker
	Metrics   *metrics.Collector
	Logger    *slog.Logger

	// Tracer is optional; nil disables request spans.
	Tracer *tracing.Tracer

	// Build information served on /version.
	Version   string
	Commit    string
	BuildTime string
}

// Server runs the proxy listener and, when enabled, the admin listener.
type Server struct {
	config       *config.Config
	logger       *slog.Logger
	proxyServer  *http.Server
	adminServer  *http.Server
	proxyAddr    net.Addr
	adminAddr    net.Addr
	ready        chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates a server. Nothing listens until Start.
func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Proxy == nil {
		return nil, errors.New("proxy handler is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	cfg := opts.Config
	s := &Server{
		config: cfg,
		logger: opts.Logger,
		ready:  make(chan struct{}),
	}

	// No WriteTimeout: streamed responses may run for minutes.
	s.proxyServer = &http.Server{
		Handler:           middleware.Chain(opts.Proxy, opts.Logger, opts.Tracer),
		ReadHeaderTimeout: cfg.Proxy.ReadHeaderTimeout,
		IdleTimeout:       cfg.Proxy.IdleTimeout,
		MaxHeaderBytes:    cfg.Proxy.MaxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(opts.Logger.Handler(), slog.LevelWarn),
	}

	if cfg.Admin.Enabled {
		s.adminServer = &http.Server{
			Handler:           newAdminMux(opts),
			ReadHeaderTimeout: cfg.Proxy.ReadHeaderTimeout,
			IdleTimeout:       cfg.Proxy.IdleTimeout,
			ErrorLog:          slog.NewLogLogger(opts.Logger.Handler(), slog.LevelWarn),
		}
	}

	return s, nil
}

// Start binds the listeners, serves until ctx is cancelled or a listener
// fails, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	proxyLn, err := net.Listen("tcp", s.config.Proxy.ListenAddress)
	if err != nil {
		s.setRunning(false)
		return fmt.Errorf("failed to listen on %s: %w", s.config.Proxy.ListenAddress, err)
	}

	var adminLn net.Listener
	if s.adminServer != nil {
		adminLn, err = net.Listen("tcp", s.config.Admin.ListenAddress)
		if err != nil {
			proxyLn.Close()
			s.setRunning(false)
			return fmt.Errorf("failed to listen on %s: %w", s.config.Admin.ListenAddress, err)
		}
	}

	s.mu.Lock()
	s.proxyAddr = proxyLn.Addr()
	if adminLn != nil {
		s.adminAddr = adminLn.Addr()
	}
	s.mu.Unlock()

	errChan := make(chan error, 2)
	var wg conc.WaitGroup

	wg.Go(func() {
		s.logger.Info("starting proxy listener", "address", proxyLn.Addr().String())
		if err := s.proxyServer.Serve(proxyLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("proxy server error: %w", err)
		}
	})
	if adminLn != nil {
		wg.Go(func() {
			s.logger.Info("starting admin listener", "address", adminLn.Addr().String())
			if err := s.adminServer.Serve(adminLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- fmt.Errorf("admin server error: %w", err)
			}
		})
	}

	close(s.ready)

	var serveErr error
	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
	case serveErr = <-errChan:
		s.logger.Error("listener failed, initiating shutdown", "error", serveErr)
	}

	shutdownErr := s.Shutdown(context.Background())
	wg.Wait()

	return errors.Join(serveErr, shutdownErr)
}

// Shutdown gracefully shuts down both listeners, waiting up to the
// configured shutdown timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if !s.IsRunning() {
			return
		}

		timeout := s.config.Proxy.ShutdownTimeout
		s.logger.Info("initiating graceful shutdown", "timeout", timeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		var errs []error
		if err := s.proxyServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during proxy shutdown", "error", err)
			errs = append(errs, fmt.Errorf("proxy shutdown error: %w", err))
		}
		if s.adminServer != nil {
			if err := s.adminServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during admin shutdown", "error", err)
				errs = append(errs, fmt.Errorf("admin shutdown error: %w", err))
			}
		}
		shutdownErr = errors.Join(errs...)

		s.setRunning(false)
		s.logger.Info("server stopped")
	})

	return shutdownErr
}

// Ready is closed once both listeners are bound.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// ProxyAddr returns the bound proxy address, or "" before Start.
func (s *Server) ProxyAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.proxyAddr == nil {
		return ""
	}
	return s.proxyAddr.String()
}

// AdminAddr returns the bound admin address, or "" when the admin listener
// is disabled or not started.
func (s *Server) AdminAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.adminAddr == nil {
		return ""
	}
	return s.adminAddr.String()
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func (s *Server) setRunning(running bool) {
	s.mu.Lock()
	s.isRunning = running
	s.mu.Unlock()
}
