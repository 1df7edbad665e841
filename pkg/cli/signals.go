package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// ShutdownSignals are the signals that trigger a graceful shutdown.
var ShutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// SetupSignalHandler returns a context that is cancelled on SIGINT or
// SIGTERM. A second signal exits immediately. Call stop to release the
// signal handler.
func SetupSignalHandler(parent context.Context, logger *slog.Logger) (ctx context.Context, stop context.CancelFunc) {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, ShutdownSignals...)

	stopped := make(chan struct{})
	var once sync.Once

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received shutdown signal", "signal", sig.String())
			cancel()
		case <-ctx.Done():
			return
		case <-stopped:
			return
		}

		select {
		case sig := <-sigChan:
			logger.Warn("received second signal, exiting", "signal", sig.String())
			os.Exit(1)
		case <-stopped:
		}
	}()

	return ctx, func() {
		once.Do(func() {
			signal.Stop(sigChan)
			close(stopped)
			cancel()
		})
	}
}
