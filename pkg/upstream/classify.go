package upstream

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
)

// Outcome is how a single attempt against an instance ended.
type Outcome string

const (
	// OutcomeSuccess: relay the response and advance past this instance.
	OutcomeSuccess Outcome = "success"

	// OutcomeTransportError: no response (dial, DNS, TLS, timeout). Try the next instance.
	OutcomeTransportError Outcome = "transport_error"

	// OutcomeRetryableStatus: the instance answered but may be unhealthy,
	// throttled or misconfigured. Try the next instance.
	OutcomeRetryableStatus Outcome = "retryable_status"

	// OutcomeTerminalStatus: the client's request is at fault. Relay as-is.
	OutcomeTerminalStatus Outcome = "terminal_status"
)

// Classify maps an upstream status code to an outcome.
//
// 429 and the 5xx gateway family are retryable. 401, 403 and 404 are also
// retryable because instances are configured independently: one deployment
// may lack a key, a model or a route that another has. Every other 4xx is
// terminal, and everything else (1xx, 2xx, 3xx, 501, 505...) is a success.
func Classify(status int) Outcome {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusNotFound:
		return OutcomeRetryableStatus
	}
	if status >= 400 && status < 500 {
		return OutcomeTerminalStatus
	}
	return OutcomeSuccess
}

// IsTimeout reports whether a transport error was a timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}
