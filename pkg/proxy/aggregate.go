package proxy

import (
	"fmt"
	"net/http"
	"time"

	"mercator-hq/rotator/pkg/upstream"
)

// AggregateFailure is the diagnostic body written when every instance in a
// request's attempt order failed. Credentials and endpoints never appear in
// it; instances are identified by index.
type AggregateFailure struct {
	Error             ErrorDetail        `json:"error"`
	RequestID         string             `json:"request_id"`
	Method            string             `json:"method"`
	Path              string             `json:"path"`
	Query             string             `json:"query"`
	Attempts          []upstream.Attempt `json:"attempts"`
	NextInstanceIndex int                `json:"next_instance_index"`
	ElapsedMS         int64              `json:"elapsed_ms"`

	// Status and RetryAfter are derived from Attempts.
	Status     int    `json:"-"`
	RetryAfter string `json:"-"`
}

// NewAggregateFailure builds the failure report for out.
func NewAggregateFailure(out *upstream.Outbound, attempts []upstream.Attempt, next int, elapsed time.Duration) *AggregateFailure {
	status, retryAfter := AggregateStatus(attempts)
	return &AggregateFailure{
		Error: ErrorDetail{
			Type:    ErrorTypeAllInstancesFailed,
			Message: fmt.Sprintf("all %d instances failed", len(attempts)),
		},
		RequestID:         out.RequestID,
		Method:            out.Method,
		Path:              out.Path,
		Query:             out.RawQuery,
		Attempts:          attempts,
		NextInstanceIndex: next,
		ElapsedMS:         elapsed.Milliseconds(),
		Status:            status,
		RetryAfter:        retryAfter,
	}
}

// Write sends the failure to the caller with its derived status.
func (f *AggregateFailure) Write(w http.ResponseWriter) {
	if f.RetryAfter != "" {
		w.Header().Set("Retry-After", f.RetryAfter)
	}
	writeJSON(w, f.Status, f.RequestID, f)
}

// AggregateStatus derives one status code from the failed attempts, first
// match wins:
//
//  1. every attempt returned 404: 404
//  2. any attempt returned 429: 429, with the Retry-After of the first
//     429 attempt that carried one
//  3. any 504, or any transport timeout: 504
//  4. every attempt returned 401 or 403: 401 if all were 401, else 403
//  5. anything else: 502
//
// Transport errors have no status and so break the "every attempt" rules.
func AggregateStatus(attempts []upstream.Attempt) (int, string) {
	if len(attempts) == 0 {
		return http.StatusBadGateway, ""
	}

	all404, allAuth, all401 := true, true, true
	saw429, saw504 := false, false
	retryAfter := ""

	for _, a := range attempts {
		if a.Status != http.StatusNotFound {
			all404 = false
		}
		if a.Status != http.StatusUnauthorized {
			all401 = false
			if a.Status != http.StatusForbidden {
				allAuth = false
			}
		}
		switch {
		case a.Status == http.StatusTooManyRequests:
			if retryAfter == "" {
				retryAfter = a.RetryAfter()
			}
			saw429 = true
		case a.Status == http.StatusGatewayTimeout:
			saw504 = true
		case a.Outcome == upstream.OutcomeTransportError && a.Timeout:
			saw504 = true
		}
	}

	switch {
	case all404:
		return http.StatusNotFound, ""
	case saw429:
		return http.StatusTooManyRequests, retryAfter
	case saw504:
		return http.StatusGatewayTimeout, ""
	case allAuth && all401:
		return http.StatusUnauthorized, ""
	case allAuth:
		return http.StatusForbidden, ""
	default:
		return http.StatusBadGateway, ""
	}
}
