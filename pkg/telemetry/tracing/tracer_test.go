package tracing

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"mercator-hq/rotator/pkg/config"
)

// newRecordingTracer returns an always-sampling tracer and the recorder its
// ended spans land in.
func newRecordingTracer(t *testing.T) (*Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithSpanProcessor(recorder),
	)
	tracer := NewWithProvider(provider)
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })
	return tracer, recorder
}

func attrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *config.TracingConfig
		enabled bool
		wantErr bool
	}{
		{name: "nil config", config: nil, wantErr: true},
		{name: "disabled", config: &config.TracingConfig{Enabled: false}, enabled: false},
		{
			name: "enabled with ratio sampler",
			config: &config.TracingConfig{
				Enabled:     true,
				Sampler:     SamplerRatio,
				SampleRatio: 0.5,
				Endpoint:    "localhost:4317",
				Insecure:    true,
				Timeout:     time.Second,
				ServiceName: "rotator-test",
			},
			enabled: true,
		},
		{
			name: "bad sampler",
			config: &config.TracingConfig{
				Enabled:  true,
				Sampler:  "sometimes",
				Endpoint: "localhost:4317",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer, err := New(tt.config, "test")
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			defer func() { _ = tracer.Shutdown(ctx) }()

			if tracer.Enabled() != tt.enabled {
				t.Errorf("Enabled() = %v, want %v", tracer.Enabled(), tt.enabled)
			}
		})
	}
}

func TestNoop_InjectsNothing(t *testing.T) {
	tracer := Noop()
	ctx, span := tracer.Start(context.Background(), "op")
	defer span.End()

	if span.IsRecording() {
		t.Error("noop span should not record")
	}

	h := http.Header{}
	tracer.Inject(ctx, h)
	if len(h) != 0 {
		t.Errorf("expected no headers, got %v", h)
	}
}

func TestTracer_ExtractInject(t *testing.T) {
	tracer, _ := newRecordingTracer(t)

	inbound := http.Header{}
	inbound.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")

	ctx := tracer.Extract(context.Background(), inbound)
	ctx, span := tracer.Start(ctx, "child")
	defer span.End()

	if got := TraceID(ctx); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("expected inbound trace id, got %q", got)
	}

	outbound := http.Header{}
	tracer.Inject(ctx, outbound)

	_, traceID, parentID, _, ok := ParseTraceParent(outbound.Get("traceparent"))
	if !ok {
		t.Fatalf("expected valid traceparent, got %q", outbound.Get("traceparent"))
	}
	if traceID != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("expected trace id to be preserved, got %s", traceID)
	}
	if parentID == "00f067aa0ba902b7" {
		t.Error("expected parent id to be the child span, got the inbound parent")
	}
}

func TestAttemptSpans(t *testing.T) {
	tracer, recorder := newRecordingTracer(t)

	ctx, req := tracer.Start(context.Background(), SpanRequest)

	_, a0 := tracer.StartAttempt(ctx, 0)
	EndAttempt(a0, "retryable_status", http.StatusTooManyRequests, "")

	_, a1 := tracer.StartAttempt(ctx, 1)
	EndAttempt(a1, "transport_error", 0, "connection refused")

	RecordResult(ctx, "exhausted", http.StatusBadGateway, 2)
	RecordNextInstance(ctx, 1)
	req.End()

	ended := recorder.Ended()
	if len(ended) != 3 {
		t.Fatalf("expected 3 spans, got %d", len(ended))
	}

	first := attrs(ended[0])
	if ended[0].Name() != SpanAttempt || first[AttrInstanceIndex].AsInt64() != 0 {
		t.Errorf("unexpected first attempt span %s %v", ended[0].Name(), first)
	}
	if first[AttrHTTPStatusCode].AsInt64() != http.StatusTooManyRequests {
		t.Errorf("expected status 429 on first attempt, got %v", first[AttrHTTPStatusCode])
	}
	if ended[0].Status().Code == codes.Error {
		t.Error("retryable status should not mark the span as failed")
	}

	if ended[1].Status().Code != codes.Error {
		t.Error("transport error should mark the span as failed")
	}
	if _, ok := attrs(ended[1])[AttrHTTPStatusCode]; ok {
		t.Error("transport error should carry no status")
	}

	root := attrs(ended[2])
	if root[AttrResult].AsString() != "exhausted" || root[AttrFailedCount].AsInt64() != 2 || root[AttrNextInstance].AsInt64() != 1 {
		t.Errorf("unexpected request span attributes %v", root)
	}
	if ended[2].Status().Code != codes.Error {
		t.Error("expected request span to be failed on 502")
	}
	if ended[0].Parent().SpanID() != ended[2].SpanContext().SpanID() {
		t.Error("attempt span should be a child of the request span")
	}
}

func TestSetError(t *testing.T) {
	tracer, recorder := newRecordingTracer(t)

	_, span := tracer.Start(context.Background(), "op")
	SetError(span, nil)
	SetError(span, errors.New("boom"))
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 || ended[0].Status().Code != codes.Error || ended[0].Status().Description != "boom" {
		t.Errorf("expected failed span, got %+v", ended)
	}
}
