package metrics

import (
	"strconv"
	"time"

	"mercator-hq/rotator/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks metrics for inbound requests as a whole.
//
// Metrics:
//   - rotator_requests_total: Requests by result (success, terminal, exhausted, cancelled, rejected)
//   - rotator_request_duration_seconds: End-to-end duration including relay
//   - rotator_aggregate_status_total: Synthesized status codes for exhausted requests
//   - rotator_relay_bytes_total: Response body bytes relayed to callers
type RequestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	aggregateStatus *prometheus.CounterVec
	relayBytes      prometheus.Counter
}

// NewRequestMetrics creates and registers request metrics with the provided registry.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "requests_total",
				Help:      "Total number of proxied requests by result",
			},
			[]string{"result"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "request_duration_seconds",
				Help:      "Duration of proxied requests in seconds, including relay",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"result"},
		),

		aggregateStatus: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "aggregate_status_total",
				Help:      "Status codes returned after every instance failed",
			},
			[]string{"status"},
		),

		relayBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "relay_bytes_total",
				Help:      "Total response body bytes relayed to callers",
			},
		),
	}

	registry.MustRegister(
		rm.requestsTotal,
		rm.requestDuration,
		rm.aggregateStatus,
		rm.relayBytes,
	)

	return rm
}

// RecordRequest records a completed request.
func (rm *RequestMetrics) RecordRequest(result string, duration time.Duration) {
	rm.requestsTotal.WithLabelValues(result).Inc()
	rm.requestDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// RecordAggregateStatus counts one synthesized failure status.
func (rm *RequestMetrics) RecordAggregateStatus(status int) {
	rm.aggregateStatus.WithLabelValues(strconv.Itoa(status)).Inc()
}

// AddRelayBytes adds relayed body bytes.
func (rm *RequestMetrics) AddRelayBytes(n int64) {
	if n > 0 {
		rm.relayBytes.Add(float64(n))
	}
}
