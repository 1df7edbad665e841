// Package metrics provides Prometheus metrics collection for rotator.
//
// # Metrics
//
//   - rotator_requests_total{result}: inbound requests by result
//   - rotator_request_duration_seconds{result}: end-to-end request duration
//   - rotator_attempts_total{instance,outcome}: upstream attempts
//   - rotator_attempt_duration_seconds{instance}: time to headers or failure
//   - rotator_aggregate_status_total{status}: statuses synthesized on exhaustion
//   - rotator_relay_bytes_total: body bytes relayed to callers
//   - rotator_rotation_pointer: index the next request tries first
//   - rotator_instances: configured instance count
//
// Instances are labelled by index so label cardinality is bounded by the
// instance list and endpoints never leak into the exposition.
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Metrics, nil)
//	collector.RecordAttempt(1, "retryable_status", 120*time.Millisecond)
//	collector.RecordRequest("success", time.Second)
//
//	adminMux.Handle("/metrics", collector.Handler())
package metrics
