package middleware

import (
	"log/slog"
	"net/http"

	"mercator-hq/rotator/pkg/telemetry/tracing"
)

// Chain applies the standard middleware stack to the proxy handler:
//
//	RequestID -> Logging -> Tracing -> Recovery -> handler
//
// RequestID runs first so every log line, span and panic report carries the
// id. A nil tracer skips the tracing layer.
func Chain(handler http.Handler, logger *slog.Logger, tracer *tracing.Tracer) http.Handler {
	handler = RecoveryMiddleware(handler)
	if tracer != nil {
		handler = TracingMiddleware(tracer)(handler)
	}
	handler = LoggingMiddleware(logger)(handler)
	return RequestIDMiddleware(handler)
}
