package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/spf13/cobra"

	"mercator-hq/rotator/pkg/cli"
	"mercator-hq/rotator/pkg/config"
	"mercator-hq/rotator/pkg/proxy"
	"mercator-hq/rotator/pkg/routing"
	"mercator-hq/rotator/pkg/server"
	"mercator-hq/rotator/pkg/telemetry/health"
	"mercator-hq/rotator/pkg/telemetry/logging"
	"mercator-hq/rotator/pkg/telemetry/metrics"
	"mercator-hq/rotator/pkg/telemetry/tracing"
	"mercator-hq/rotator/pkg/upstream"
)

// readyTimeout bounds how long run waits for the listeners to answer.
const readyTimeout = 5 * time.Second

var runFlags struct {
	instancesPath string
	listenAddress string
	adminAddress  string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the rotator proxy",
	Long: `Start the rotator proxy with the specified configuration.

Configuration precedence is defaults < config file < ROTATOR_* environment
variables < flags. The instances document is read from --instances,
ROTATOR_INSTANCES_PATH, instances.path in the config file, or
azure_instances.json, in that order.

Examples:
  # Start with defaults and ./azure_instances.json
  rotator run

  # Start with custom config
  rotator run --config /etc/rotator/rotator.yaml

  # Override listen addresses
  rotator run --listen 0.0.0.0:8080 --admin-listen 127.0.0.1:9091

  # Validate both documents without starting
  rotator run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.instancesPath, "instances", "i", "", "instances document (JSON or YAML)")
	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override proxy listen address")
	runCmd.Flags().StringVar(&runFlags.adminAddress, "admin-listen", "", "override admin listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadServerConfig(cmd)
	if err != nil {
		return err
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Proxy.ListenAddress = runFlags.listenAddress
	}
	if runFlags.adminAddress != "" {
		cfg.Admin.ListenAddress = runFlags.adminAddress
	}
	if runFlags.logLevel != "" {
		cfg.Log.Level = runFlags.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return cli.WrapConfigError("flags", err)
	}

	set, instancesPath, err := loadInstanceSet(cmd.Context(), cfg, runFlags.instancesPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		AddSource: cfg.Log.AddSource,
		Secrets:   set.Credentials(),
		Writer:    os.Stderr,
	})
	if err != nil {
		return cli.WrapConfigError("log", err)
	}
	slog.SetDefault(logger)

	out := cmd.OutOrStdout()
	if runFlags.dryRun {
		fmt.Fprintf(out, "✓ Configuration valid (%d instances from %s)\n", set.Len(), instancesPath)
		return nil
	}

	logger.Info("instances loaded",
		"path", instancesPath,
		"count", set.Len(),
		"endpoints", set.Endpoints(),
		"header", set.HeaderName(),
	)

	rotation, err := routing.NewRotation(set.Len())
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	collector := metrics.NewCollector(&cfg.Metrics, nil)

	tracer, err := tracing.New(&cfg.Tracing, Version)
	if err != nil {
		return cli.WrapConfigError("tracing", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Tracing.Timeout)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to flush traces", "error", err)
		}
	}()

	forwarder := upstream.NewForwarder(cfg.Upstream, set.HeaderName(), logger).WithTracer(tracer)
	defer forwarder.Close()

	handler, err := proxy.NewHandler(proxy.Options{
		Instances:           set,
		Rotation:            rotation,
		Forwarder:           forwarder,
		Stats:               routing.NewStats(set.Len()),
		Metrics:             collector,
		Tracer:              tracer,
		Logger:              logger,
		MaxRequestBodyBytes: cfg.Proxy.MaxRequestBodyBytes,
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	checker := health.New(2 * time.Second)
	srv, err := server.New(server.Options{
		Config:    cfg,
		Proxy:     handler,
		Instances: set,
		Rotation:  rotation,
		Stats:     handler.Stats(),
		Checker:   checker,
		Metrics:   collector,
		Tracer:    tracer,
		Logger:    logger,
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context(), logger)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(ctx)
	}()

	select {
	case <-srv.Ready():
	case err := <-errChan:
		return cli.NewCommandError("run", err)
	}

	if addr := srv.AdminAddr(); addr != "" {
		if err := waitForServerReady(ctx, addr, readyTimeout); err != nil {
			stop()
			<-errChan
			return cli.NewCommandError("run", fmt.Errorf("server failed to start: %w", err))
		}
	}

	fmt.Fprintf(out, "Rotator v%s\n", Version)
	fmt.Fprintf(out, "✓ %d instances loaded from %s\n", set.Len(), instancesPath)
	fmt.Fprintf(out, "✓ Proxy listening on %s\n", srv.ProxyAddr())
	if tracer.Enabled() {
		fmt.Fprintf(out, "✓ Tracing to %s (%s sampler)\n", cfg.Tracing.Endpoint, cfg.Tracing.Sampler)
	}
	if addr := srv.AdminAddr(); addr != "" {
		fmt.Fprintf(out, "✓ Health endpoint: http://%s%s (checks: %s)\n",
			addr, health.PathReady, strings.Join(checker.ListChecks(), ", "))
		if cfg.Metrics.Enabled {
			fmt.Fprintf(out, "✓ Metrics endpoint: http://%s/metrics\n", addr)
		}
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	if err := <-errChan; err != nil {
		return cli.NewCommandError("run", err)
	}
	fmt.Fprintln(out, "✓ Server stopped")
	return nil
}

// waitForServerReady polls the admin liveness endpoint with exponential
// backoff until it answers 200 or timeout elapses.
func waitForServerReady(ctx context.Context, address string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	backoffCfg := backoff.NewExponentialBackOff()
	backoffCfg.InitialInterval = 20 * time.Millisecond
	backoffCfg.MaxInterval = 500 * time.Millisecond

	client := &http.Client{Timeout: time.Second}
	url := "http://" + address + health.PathLive

	for {
		err := probe(ctx, client, url)
		if err == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s not ready: %w", url, err)
		case <-time.After(backoffCfg.NextBackOff()):
		}
	}
}

func probe(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
