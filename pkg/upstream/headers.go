package upstream

import (
	"net/http"
	"strings"
)

// HeaderRequestID carries the request correlation id in both directions.
const HeaderRequestID = "X-Request-ID"

// hopHeaders are the hop-by-hop headers; they apply to a single connection
// and are never forwarded in either direction.
var hopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Trailers",
	"Transfer-Encoding",
	"Upgrade",
}

// snapshotHeaders is the allow-list kept from failed attempts for diagnostics.
var snapshotHeaders = []string{
	"Content-Type",
	"Retry-After",
	"X-Request-ID",
	"Apim-Request-Id",
	"X-Ms-Region",
	"X-Ms-Error-Code",
	"X-Ratelimit-Remaining-Requests",
	"X-Ratelimit-Remaining-Tokens",
	"X-Ratelimit-Reset-Requests",
	"X-Ratelimit-Reset-Tokens",
}

// RemoveHopByHop deletes hop-by-hop headers from h in place, including any
// header listed as a token in the Connection header.
func RemoveHopByHop(h http.Header) {
	for _, v := range h.Values("Connection") {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				h.Del(name)
			}
		}
	}
	for _, name := range hopHeaders {
		h.Del(name)
	}
}

// SanitizeRequestHeaders returns a copy of the inbound headers safe to send
// to an instance. Hop-by-hop headers, Host, Content-Length, Authorization and
// the credential header are removed; the caller's own credentials never reach
// an upstream.
func SanitizeRequestHeaders(in http.Header, credentialHeader string) http.Header {
	out := in.Clone()
	if out == nil {
		out = make(http.Header)
	}

	RemoveHopByHop(out)
	out.Del("Host")
	out.Del("Content-Length")
	out.Del("Authorization")
	if credentialHeader != "" {
		out.Del(credentialHeader)
	}
	return out
}

// SnapshotHeaders returns the allow-listed headers of a failed attempt.
// It returns nil when none are present.
func SnapshotHeaders(h http.Header) map[string]string {
	var out map[string]string
	for _, name := range snapshotHeaders {
		v := h.Get(name)
		if v == "" {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[name] = v
	}
	return out
}
