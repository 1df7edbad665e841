package metrics

import (
	"time"

	"mercator-hq/rotator/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Collector is the main orchestrator for all Prometheus metrics in rotator.
// It owns a private registry and offers one method per event the proxy
// reports. When metrics are disabled every method is a no-op, so callers
// never need to check.
//
// A nil *Collector is also valid and records nothing.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// Request metrics
	requestMetrics *RequestMetrics

	// Instance metrics
	instanceMetrics *InstanceMetrics
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry with Go runtime
// and process collectors is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "rotator",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	// Set defaults if not specified
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = config.DefaultDurationBuckets
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}

	c.requestMetrics = NewRequestMetrics(cfg, registry)
	c.instanceMetrics = NewInstanceMetrics(cfg, registry)

	return c
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordRequest records a completed inbound request.
//
// Parameters:
//   - result: "success", "terminal", "exhausted", "cancelled" or "rejected"
//   - duration: Total request duration, including relay
func (c *Collector) RecordRequest(result string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.requestMetrics.RecordRequest(result, duration)
}

// RecordAttempt records one upstream attempt.
func (c *Collector) RecordAttempt(instance int, outcome string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.instanceMetrics.RecordAttempt(instance, outcome, duration)
}

// RecordAggregateStatus records the status synthesized for an exhausted request.
func (c *Collector) RecordAggregateStatus(status int) {
	if !c.enabled() {
		return
	}
	c.requestMetrics.RecordAggregateStatus(status)
}

// AddRelayBytes records response body bytes relayed to a caller.
func (c *Collector) AddRelayBytes(n int64) {
	if !c.enabled() {
		return
	}
	c.requestMetrics.AddRelayBytes(n)
}

// SetRotationPointer publishes the current rotation pointer.
func (c *Collector) SetRotationPointer(idx int) {
	if !c.enabled() {
		return
	}
	c.instanceMetrics.SetPointer(idx)
}

// SetInstances publishes the configured instance count.
func (c *Collector) SetInstances(n int) {
	if !c.enabled() {
		return
	}
	c.instanceMetrics.SetInstances(n)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
