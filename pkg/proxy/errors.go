package proxy

import (
	"net/http"

	"github.com/goccy/go-json"

	"mercator-hq/rotator/pkg/upstream"
)

// Error types reported in the "type" field of JSON error bodies.
const (
	ErrorTypeAllInstancesFailed = "all_instances_failed"
	ErrorTypeRequestTooLarge    = "request_too_large"
	ErrorTypeInvalidRequest     = "invalid_request"
)

// ErrorDetail is the "error" object of every JSON error body.
type ErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ErrorResponse is the body written when the proxy rejects a request
// before contacting any instance.
type ErrorResponse struct {
	Error     ErrorDetail `json:"error"`
	RequestID string      `json:"request_id,omitempty"`
}

// WriteError writes a JSON error body with the given status.
func WriteError(w http.ResponseWriter, status int, errType, message, requestID string) {
	writeJSON(w, status, requestID, ErrorResponse{
		Error:     ErrorDetail{Type: errType, Message: message},
		RequestID: requestID,
	})
}

func writeJSON(w http.ResponseWriter, status int, requestID string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		// Only reachable with an unencodable value; keep the status.
		data = []byte(`{"error":{"type":"internal_error","message":"failed to encode response"}}`)
	}

	h := w.Header()
	h.Set("Content-Type", "application/json")
	if requestID != "" {
		h.Set(upstream.HeaderRequestID, requestID)
	}
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}
