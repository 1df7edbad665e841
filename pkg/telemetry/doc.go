// Package telemetry groups the proxy's observability packages.
//
// # Components
//
//   - logging: slog JSON/text logging with credential redaction
//   - metrics: Prometheus counters and histograms per request, attempt and instance
//   - tracing: OpenTelemetry spans per request and per instance attempt
//   - health: liveness and readiness endpoints for the admin listener
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:   cfg.Log.Level,
//	    Format:  cfg.Log.Format,
//	    Secrets: set.Credentials(),
//	})
//	collector := metrics.NewCollector(&cfg.Metrics, nil)
//	tracer, err := tracing.New(&cfg.Tracing, version)
//	checker := health.New(2 * time.Second)
//
// # Credential Protection
//
// Every instance credential is registered with the logger's redactor, so
// the literal key is masked wherever it appears in a log record:
//
//   - instance keys: sk-abc123 → ***
//   - Bearer tokens: Bearer eyJ... → Bearer ***
//   - attributes named api_key, authorization, secret, token → ***
//
// Metrics and spans identify instances by index only.
package telemetry
