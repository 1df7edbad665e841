package middleware

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/rotator/pkg/telemetry/tracing"
)

// TraceIDHeader echoes the trace id to callers when a span is active.
const TraceIDHeader = "X-Trace-ID"

// TracingMiddleware joins the caller's trace (W3C traceparent) and wraps the
// request in a server span. The handler annotates the span with the result.
//
// Example usage:
//
//	handler = TracingMiddleware(tracer)(handler)
func TracingMiddleware(tracer *tracing.Tracer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := tracer.Extract(r.Context(), r.Header)
			ctx, span := tracer.Start(ctx, tracing.SpanRequest,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String(tracing.AttrHTTPMethod, r.Method),
					attribute.String(tracing.AttrURLPath, r.URL.Path),
					attribute.String(tracing.AttrRequestID, GetRequestID(r.Context())),
				),
			)
			defer span.End()

			if traceID := tracing.TraceID(ctx); traceID != "" && span.IsRecording() {
				w.Header().Set(TraceIDHeader, traceID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
