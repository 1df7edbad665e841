package proxy

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/rotator/pkg/config"
	"mercator-hq/rotator/pkg/routing"
	"mercator-hq/rotator/pkg/telemetry/logging"
	"mercator-hq/rotator/pkg/telemetry/metrics"
	"mercator-hq/rotator/pkg/telemetry/tracing"
	"mercator-hq/rotator/pkg/upstream"
)

// Request results, used for metrics and stats.
const (
	ResultSuccess   = "success"
	ResultTerminal  = "terminal"
	ResultExhausted = "exhausted"
	ResultCancelled = "cancelled"
	ResultRejected  = "rejected"
)

// Options configures a Handler.
type Options struct {
	Instances *config.InstanceSet
	Rotation  *routing.Rotation
	Forwarder *upstream.Forwarder

	// Stats, Metrics and Tracer are optional.
	Stats   *routing.Stats
	Metrics *metrics.Collector
	Tracer  *tracing.Tracer

	Logger *slog.Logger

	// MaxRequestBodyBytes bounds the buffered inbound body.
	MaxRequestBodyBytes int64
}

// Handler is the failover proxy. Each request is tried against the
// instances in attempt order, starting at the rotation pointer, until one
// answers with a success or a terminal client error.
type Handler struct {
	instances *config.InstanceSet
	rotation  *routing.Rotation
	forwarder *upstream.Forwarder
	stats     *routing.Stats
	metrics   *metrics.Collector
	tracer    *tracing.Tracer
	logger    *slog.Logger
	maxBody   int64
}

// NewHandler creates a failover handler.
func NewHandler(opts Options) (*Handler, error) {
	if opts.Instances == nil || opts.Instances.Len() == 0 {
		return nil, routing.ErrNoInstances
	}
	if opts.Rotation == nil || opts.Rotation.Size() != opts.Instances.Len() {
		return nil, fmt.Errorf("rotation size does not match %d instances", opts.Instances.Len())
	}
	if opts.Forwarder == nil {
		return nil, errors.New("forwarder is required")
	}

	h := &Handler{
		instances: opts.Instances,
		rotation:  opts.Rotation,
		forwarder: opts.Forwarder,
		stats:     opts.Stats,
		metrics:   opts.Metrics,
		tracer:    opts.Tracer,
		logger:    opts.Logger,
		maxBody:   opts.MaxRequestBodyBytes,
	}
	if h.stats == nil {
		h.stats = routing.NewStats(opts.Instances.Len())
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.tracer == nil {
		h.tracer = tracing.Noop()
	}
	if h.maxBody <= 0 {
		h.maxBody = config.DefaultMaxRequestBodyBytes
	}

	h.metrics.SetInstances(opts.Instances.Len())
	h.metrics.SetRotationPointer(opts.Rotation.Peek())

	return h, nil
}

// Stats returns the handler's routing statistics.
func (h *Handler) Stats() *routing.Stats {
	return h.stats
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	ctx := r.Context()
	logger := logging.FromContext(ctx, h.logger)

	requestID := logging.GetRequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	h.stats.IncrementTotal()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		h.rejectBody(w, r, err, requestID, logger, startTime)
		return
	}

	out := upstream.NewOutbound(r, body, requestID, h.instances.HeaderName())

	start := h.rotation.Start()
	order := routing.AttemptOrder(start, h.instances.Len())
	attempts := make([]upstream.Attempt, 0, len(order))

	for _, idx := range order {
		if ctx.Err() != nil {
			h.cancel(logger, r, len(attempts), startTime)
			return
		}

		actx, span := h.tracer.StartAttempt(ctx, idx)
		resp, attempt := h.forwarder.Try(actx, idx, h.instances.At(idx), out)
		tracing.EndAttempt(span, string(attempt.Outcome), attempt.Status, attempt.Error)
		if attempt.Outcome == upstream.OutcomeTransportError && ctx.Err() != nil {
			h.cancel(logger, r, len(attempts), startTime)
			return
		}

		h.stats.RecordAttempt(idx, string(attempt.Outcome))
		h.metrics.RecordAttempt(idx, string(attempt.Outcome), attempt.Elapsed)

		switch attempt.Outcome {
		case upstream.OutcomeSuccess:
			next := h.rotation.AdvanceTo(idx + 1)
			h.metrics.SetRotationPointer(next)
			h.stats.IncrementSuccess()
			tracing.RecordNextInstance(ctx, next)
			tracing.RecordResult(ctx, ResultSuccess, resp.StatusCode, len(attempts))
			h.relay(w, r, resp, requestID, idx, ResultSuccess, logger, startTime)
			return

		case upstream.OutcomeTerminalStatus:
			h.stats.IncrementTerminal()
			tracing.RecordResult(ctx, ResultTerminal, resp.StatusCode, len(attempts))
			h.relay(w, r, resp, requestID, idx, ResultTerminal, logger, startTime)
			return
		}

		logger.WarnContext(ctx, "instance attempt failed",
			"instance", idx,
			"outcome", attempt.Outcome,
			"status", attempt.Status,
			"error", attempt.Error,
			"elapsed_ms", attempt.ElapsedMS,
		)
		attempts = append(attempts, attempt)
	}

	next := h.rotation.AdvanceTo(start + 1)
	h.metrics.SetRotationPointer(next)
	h.stats.IncrementExhausted()

	failure := NewAggregateFailure(out, attempts, next, time.Since(startTime))
	failure.Write(w)

	tracing.RecordNextInstance(ctx, next)
	tracing.RecordResult(ctx, ResultExhausted, failure.Status, len(attempts))

	h.metrics.RecordAggregateStatus(failure.Status)
	h.metrics.RecordRequest(ResultExhausted, time.Since(startTime))

	logger.ErrorContext(ctx, "all instances failed",
		"method", r.Method,
		"path", r.URL.Path,
		"attempts", len(attempts),
		"status", failure.Status,
		"next_instance", next,
	)
}

func (h *Handler) relay(w http.ResponseWriter, r *http.Request, resp *http.Response, requestID string, idx int, result string, logger *slog.Logger, startTime time.Time) {
	n, err := Relay(w, resp, requestID)
	h.metrics.AddRelayBytes(n)
	h.metrics.RecordRequest(result, time.Since(startTime))

	if err != nil {
		// The status line is already out; the caller sees a truncated body.
		tracing.SetError(trace.SpanFromContext(r.Context()), err)
		logger.WarnContext(r.Context(), "relay interrupted",
			"instance", idx,
			"status", resp.StatusCode,
			"bytes", n,
			"error", err,
		)
		return
	}

	logger.DebugContext(r.Context(), "response relayed",
		"instance", idx,
		"status", resp.StatusCode,
		"bytes", n,
		"result", result,
	)
}

func (h *Handler) rejectBody(w http.ResponseWriter, r *http.Request, err error, requestID string, logger *slog.Logger, startTime time.Time) {
	if r.Context().Err() != nil {
		h.cancel(logger, r, 0, startTime)
		return
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		WriteError(w, http.StatusRequestEntityTooLarge, ErrorTypeRequestTooLarge,
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), requestID)
		tracing.RecordResult(r.Context(), ResultRejected, http.StatusRequestEntityTooLarge, 0)
	} else {
		WriteError(w, http.StatusBadRequest, ErrorTypeInvalidRequest,
			"failed to read request body", requestID)
	}

	h.metrics.RecordRequest(ResultRejected, time.Since(startTime))
	logger.WarnContext(r.Context(), "request body rejected",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
}

// cancel accounts for a client that went away mid-loop. Nothing is written
// and the rotation pointer is left as it was.
func (h *Handler) cancel(logger *slog.Logger, r *http.Request, attempted int, startTime time.Time) {
	tracing.RecordResult(r.Context(), ResultCancelled, 0, attempted)
	h.stats.IncrementCancelled()
	h.metrics.RecordRequest(ResultCancelled, time.Since(startTime))
	logger.InfoContext(r.Context(), "client cancelled request",
		"method", r.Method,
		"path", r.URL.Path,
		"failed_attempts", attempted,
	)
}
