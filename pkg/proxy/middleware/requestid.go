package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"mercator-hq/rotator/pkg/telemetry/logging"
)

const (
	// RequestIDHeader is the HTTP header for request ID.
	RequestIDHeader = "X-Request-ID"

	// maxRequestIDLength bounds a client-supplied request ID.
	maxRequestIDLength = 128
)

// RequestIDMiddleware assigns a request ID to every request and adds it to
// the context and response headers. A well-formed X-Request-ID supplied by
// the client is propagated; otherwise a UUIDv4 is generated.
//
// The request ID is:
//   - Added to the request context (see GetRequestID)
//   - Included in the X-Request-ID response header
//   - Forwarded to every upstream attempt
//
// Example usage:
//
//	handler = RequestIDMiddleware(handler)
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if !validRequestID(requestID) {
			requestID = uuid.NewString()
		}

		ctx := logging.WithRequestID(r.Context(), requestID)
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID extracts the request ID from the context.
// Returns empty string if not found.
func GetRequestID(ctx context.Context) string {
	return logging.GetRequestID(ctx)
}

// validRequestID accepts short printable ASCII without spaces, so a client
// value can be echoed in headers and logs verbatim.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}
