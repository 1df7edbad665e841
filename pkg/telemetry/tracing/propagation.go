package tracing

import "strings"

// W3C Trace Context (https://www.w3.org/TR/trace-context/) carries trace
// identity in the traceparent header:
//
//	version-trace_id-parent_id-trace_flags
//	00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
//
// The proxy extracts it from inbound requests and, when tracing is enabled,
// replaces it on each outbound attempt with the attempt span's context so
// the instance's spans hang off the attempt that reached them.

// ValidateTraceParent reports whether traceparent is well formed.
func ValidateTraceParent(traceparent string) bool {
	parts := strings.Split(traceparent, "-")
	if len(parts) != 4 {
		return false
	}

	for i, want := range []int{2, 32, 16, 2} {
		if len(parts[i]) != want || !isHexString(parts[i]) {
			return false
		}
	}

	// All-zero ids are invalid
	if strings.Trim(parts[1], "0") == "" || strings.Trim(parts[2], "0") == "" {
		return false
	}

	return true
}

// ParseTraceParent splits a valid traceparent into its fields.
func ParseTraceParent(traceparent string) (version, traceID, parentID, flags string, valid bool) {
	if !ValidateTraceParent(traceparent) {
		return "", "", "", "", false
	}

	parts := strings.Split(traceparent, "-")
	return parts[0], parts[1], parts[2], parts[3], true
}

func isHexString(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
