package metrics

import (
	"strconv"
	"time"

	"mercator-hq/rotator/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// InstanceMetrics tracks per-instance attempts and the rotation pointer.
// Instances are labelled by index; endpoints never appear in label values.
//
// Metrics:
//   - rotator_attempts_total: Attempts by instance and outcome
//   - rotator_attempt_duration_seconds: Time to response headers or failure
//   - rotator_rotation_pointer: Index the next request tries first
//   - rotator_instances: Number of configured instances
type InstanceMetrics struct {
	attempts        *prometheus.CounterVec
	attemptDuration *prometheus.HistogramVec
	pointer         prometheus.Gauge
	instances       prometheus.Gauge
}

// NewInstanceMetrics creates and registers instance metrics with the provided registry.
func NewInstanceMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *InstanceMetrics {
	im := &InstanceMetrics{
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "attempts_total",
				Help:      "Total number of upstream attempts by instance and outcome",
			},
			[]string{"instance", "outcome"},
		),

		attemptDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "attempt_duration_seconds",
				Help:      "Upstream attempt duration in seconds, up to response headers",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"instance"},
		),

		pointer: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "rotation_pointer",
				Help:      "Instance index the next request tries first",
			},
		),

		instances: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "instances",
				Help:      "Number of configured upstream instances",
			},
		),
	}

	registry.MustRegister(
		im.attempts,
		im.attemptDuration,
		im.pointer,
		im.instances,
	)

	return im
}

// RecordAttempt records one attempt.
func (im *InstanceMetrics) RecordAttempt(instance int, outcome string, duration time.Duration) {
	label := strconv.Itoa(instance)
	im.attempts.WithLabelValues(label, outcome).Inc()
	im.attemptDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// SetPointer publishes the rotation pointer.
func (im *InstanceMetrics) SetPointer(idx int) {
	im.pointer.Set(float64(idx))
}

// SetInstances publishes the instance count.
func (im *InstanceMetrics) SetInstances(n int) {
	im.instances.Set(float64(n))
}
