package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span names.
const (
	SpanRequest = "proxy.request"
	SpanAttempt = "proxy.attempt"
)

// Attribute keys. HTTP keys follow the OpenTelemetry semantic conventions;
// the rest live under "rotator.".
const (
	AttrHTTPMethod     = "http.request.method"
	AttrHTTPStatusCode = "http.response.status_code"
	AttrURLPath        = "url.path"

	AttrRequestID     = "rotator.request_id"
	AttrInstanceIndex = "rotator.instance.index"
	AttrOutcome       = "rotator.outcome"
	AttrResult        = "rotator.result"
	AttrFailedCount   = "rotator.failed_attempts"
	AttrNextInstance  = "rotator.next_instance"
)

// StartAttempt starts the client span for one instance attempt.
// Endpoints and credentials are never recorded; instances appear by index.
func (t *Tracer) StartAttempt(ctx context.Context, idx int) (context.Context, trace.Span) {
	return t.Start(ctx, SpanAttempt,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.Int(AttrInstanceIndex, idx)),
	)
}

// EndAttempt records an attempt's classification and ends span. A non-empty
// errMsg marks the span as failed.
func EndAttempt(span trace.Span, outcome string, status int, errMsg string) {
	span.SetAttributes(attribute.String(AttrOutcome, outcome))
	if status != 0 {
		span.SetAttributes(attribute.Int(AttrHTTPStatusCode, status))
	}
	if errMsg != "" {
		span.SetStatus(codes.Error, errMsg)
	}
	span.End()
}

// RecordResult annotates the request span in ctx with how the request
// ended. Requests answered with a 5xx are marked as failed.
func RecordResult(ctx context.Context, result string, status, failed int) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(
		attribute.String(AttrResult, result),
		attribute.Int(AttrFailedCount, failed),
	)
	if status != 0 {
		span.SetAttributes(attribute.Int(AttrHTTPStatusCode, status))
	}
	if status >= 500 {
		span.SetStatus(codes.Error, result)
	}
}

// RecordNextInstance notes where the rotation pointer moved.
func RecordNextInstance(ctx context.Context, next int) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int(AttrNextInstance, next))
}
