// Package tracing provides OpenTelemetry distributed tracing for the proxy.
//
// # Spans
//
// Each proxied request gets a server span (proxy.request) started by the
// tracing middleware. Every instance attempt inside it gets a client span
// (proxy.attempt) carrying the instance index, the attempt's outcome and
// the status it returned. The request span records the final result, the
// number of failed attempts and where the rotation pointer moved.
//
// Endpoints and credentials are never recorded.
//
// # Propagation
//
// W3C Trace Context is extracted from inbound requests so the proxy's spans
// join the caller's trace, and injected into each outbound attempt. When
// tracing is disabled nothing is injected and an inbound traceparent is
// forwarded as-is.
//
// # Sampling
//
// "always", "never" or "ratio", each wrapped in ParentBased so an inbound
// sampled flag decides for the whole request.
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
// Spans are exported over OTLP/gRPC. Tests build a Tracer with
// NewWithProvider over an sdktrace provider backed by a tracetest.SpanRecorder.
package tracing
