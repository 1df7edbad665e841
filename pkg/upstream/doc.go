// Package upstream sends buffered requests to instances and classifies what
// comes back.
//
// Statuses 429, 500, 502, 503, 504, 401, 403 and 404 are retryable: the
// instance may be throttled, unhealthy or misconfigured, so the next one is
// tried. Any other 4xx is the caller's fault and is relayed as-is. Everything
// else, including 3xx and 1xx, counts as success.
package upstream
