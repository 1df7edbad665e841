package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/goccy/go-json"

	"mercator-hq/rotator/pkg/telemetry/logging"
)

// errorBody is the JSON error shape shared with the proxy's own failures.
type errorBody struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// RecoveryMiddleware recovers from panics in HTTP handlers and returns a 500
// Internal Server Error response. It logs the panic with stack trace but does
// not expose internal details to clients. If the response was already
// started (mid-relay) nothing more is written.
//
// http.ErrAbortHandler is re-raised so the server aborts the connection.
//
// Example usage:
//
//	handler = RecoveryMiddleware(handler)
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			err := recover()
			if err == nil {
				return
			}
			if err == http.ErrAbortHandler {
				panic(err)
			}

			requestID := GetRequestID(r.Context())
			logging.FromContext(r.Context(), nil).ErrorContext(r.Context(), "panic in handler",
				"error", err,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)

			if ww, ok := w.(interface{ Written() bool }); ok && ww.Written() {
				return
			}

			var body errorBody
			body.Error.Type = "internal_error"
			body.Error.Message = "An internal error occurred. Please try again later."
			body.RequestID = requestID

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(body)
		}()

		next.ServeHTTP(w, r)
	})
}
