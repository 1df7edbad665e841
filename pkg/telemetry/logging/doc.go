// Package logging provides structured logging with credential redaction.
//
// # Overview
//
// The logging package builds log/slog loggers with:
//   - JSON or text output
//   - Redaction of instance credentials, bearer tokens and credential-named
//     attributes (api-key, authorization, ...)
//   - Request-scoped loggers carried in the context
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:   "info",
//	    Format:  "json",
//	    Secrets: instances.Credentials(),
//	})
//
//	logger.Info("request relayed",
//	    "request_id", "req-123",
//	    "api-key", "abc123", // always "***"
//	)
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	ctx = logging.WithLogger(ctx, logging.Scoped(ctx, logger))
//	logging.FromContext(ctx, logger).Info("processing") // includes request_id
package logging
