// Package middleware provides the HTTP middleware wrapped around the proxy
// handler.
//
// # Middleware Chain
//
// Chain applies, outermost first:
//
//	RequestID -> Logging -> Tracing -> Recovery -> proxy handler
//
// # Request ID
//
// Every request gets an X-Request-ID. A short printable value sent by the
// client is kept; anything else is replaced by a UUIDv4. The id lands in the
// request context, the response header and every upstream attempt.
//
// # Logging
//
// One "request completed" line per request with method, path, status,
// bytes and latency. The level follows the status class. The handler
// receives a logger already carrying request_id:
//
//	logger := logging.FromContext(r.Context(), fallback)
//
// # Tracing
//
// Joins the caller's W3C trace and opens the proxy.request span. Skipped
// when Chain is given a nil tracer.
//
// # Recovery
//
// Panics become a JSON 500 unless the response has already started, in
// which case the connection is left to the server.
package middleware
