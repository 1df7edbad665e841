package config

import (
	"fmt"
	"net"
	"sort"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "proxy.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

// HasField reports whether a field error was recorded for the dotted path.
func (e ValidationError) HasField(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateProxy(&cfg.Proxy)...)
	errs = append(errs, validateAdmin(&cfg.Admin, cfg.Proxy.ListenAddress)...)
	errs = append(errs, validateUpstream(&cfg.Upstream)...)

	if strings.TrimSpace(cfg.Instances.Path) == "" {
		errs = append(errs, FieldError{
			Field:   "instances.path",
			Message: "instances document path is required",
		})
	}

	if cfg.Secrets.EnvPrefix != "" && strings.ContainsAny(cfg.Secrets.EnvPrefix, "= \t") {
		errs = append(errs, FieldError{
			Field:   "secrets.env_prefix",
			Message: "env prefix must not contain '=' or whitespace",
		})
	}

	errs = append(errs, validateLogging(&cfg.Log)...)
	errs = append(errs, validateMetrics(&cfg.Metrics)...)
	errs = append(errs, validateTracing(&cfg.Tracing)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateProxy validates proxy listener configuration.
func validateProxy(cfg *ProxyConfig) []FieldError {
	var errs []FieldError

	errs = append(errs, validateListenAddress("proxy.listen_address", cfg.ListenAddress)...)

	if cfg.ReadHeaderTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.read_header_timeout",
			Message: "read header timeout must be positive",
		})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.idle_timeout",
			Message: "idle timeout must be positive",
		})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.shutdown_timeout",
			Message: "shutdown timeout must be positive",
		})
	}

	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}
	if cfg.MaxHeaderBytes > 10*1024*1024 { // 10MB is excessive
		errs = append(errs, FieldError{
			Field:   "proxy.max_header_bytes",
			Message: "max header bytes exceeds reasonable limit (10MB)",
		})
	}
	if cfg.MaxRequestBodyBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.max_request_body_bytes",
			Message: "max request body bytes must be non-negative",
		})
	}

	return errs
}

func validateAdmin(cfg *AdminConfig, proxyAddr string) []FieldError {
	if !cfg.Enabled {
		return nil
	}

	errs := validateListenAddress("admin.listen_address", cfg.ListenAddress)
	if len(errs) == 0 && cfg.ListenAddress == proxyAddr {
		errs = append(errs, FieldError{
			Field:   "admin.listen_address",
			Message: "admin listener must not share the proxy listen address",
		})
	}
	return errs
}

// validateUpstream validates the outbound transport settings.
func validateUpstream(cfg *UpstreamConfig) []FieldError {
	var errs []FieldError

	if cfg.DialTimeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "upstream.dial_timeout",
			Message: "dial timeout must be positive",
		})
	}
	if cfg.HandshakeTimeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "upstream.handshake_timeout",
			Message: "TLS handshake timeout must be positive",
		})
	}
	if cfg.ResponseHeaderTimeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "upstream.response_header_timeout",
			Message: "response header timeout must be positive",
		})
	}
	if cfg.IdleConnTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "upstream.idle_conn_timeout",
			Message: "idle connection timeout must be non-negative",
		})
	}
	if cfg.MaxIdleConnsPerHost < 0 {
		errs = append(errs, FieldError{
			Field:   "upstream.max_idle_conns_per_host",
			Message: "max idle connections per host must be non-negative",
		})
	}
	if cfg.MaxPreviewBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "upstream.max_preview_bytes",
			Message: "max preview bytes must be non-negative",
		})
	}
	if cfg.MaxPreviewBytes > 1024*1024 {
		errs = append(errs, FieldError{
			Field:   "upstream.max_preview_bytes",
			Message: "max preview bytes exceeds reasonable limit (1MB)",
		})
	}
	if cfg.PreviewTimeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "upstream.preview_timeout",
			Message: "preview timeout must be positive",
		})
	}

	return errs
}

// validateLogging validates logging configuration.
func validateLogging(cfg *LoggingConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Level)] {
		errs = append(errs, FieldError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid log level %q (must be one of: %s)", cfg.Level, joinKeys(validLevels)),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(cfg.Format)] {
		errs = append(errs, FieldError{
			Field:   "log.format",
			Message: fmt.Sprintf("invalid log format %q (must be one of: %s)", cfg.Format, joinKeys(validFormats)),
		})
	}

	return errs
}

// validateMetrics validates metrics configuration.
func validateMetrics(cfg *MetricsConfig) []FieldError {
	if !cfg.Enabled {
		return nil
	}

	var errs []FieldError
	if cfg.Namespace == "" {
		errs = append(errs, FieldError{
			Field:   "metrics.namespace",
			Message: "namespace is required when metrics are enabled",
		})
	}
	for i := 1; i < len(cfg.DurationBuckets); i++ {
		if cfg.DurationBuckets[i] <= cfg.DurationBuckets[i-1] {
			errs = append(errs, FieldError{
				Field:   "metrics.duration_buckets",
				Message: "buckets must be strictly increasing",
			})
			break
		}
	}
	return errs
}

func validateTracing(cfg *TracingConfig) []FieldError {
	if !cfg.Enabled {
		return nil
	}

	var errs []FieldError
	switch cfg.Sampler {
	case "always", "never", "ratio":
	default:
		errs = append(errs, FieldError{
			Field:   "tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q (valid: always, never, ratio)", cfg.Sampler),
		})
	}
	if cfg.SampleRatio < 0 || cfg.SampleRatio > 1 {
		errs = append(errs, FieldError{
			Field:   "tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}
	if cfg.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "tracing.endpoint",
			Message: "endpoint is required when tracing is enabled",
		})
	}
	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "tracing.timeout",
			Message: "timeout must be positive",
		})
	}
	return errs
}

func validateListenAddress(field, addr string) []FieldError {
	if addr == "" {
		return []FieldError{{Field: field, Message: "listen address is required"}}
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return []FieldError{{Field: field, Message: fmt.Sprintf("invalid listen address %q: %v", addr, err)}}
	}
	return nil
}

func joinKeys(m map[string]bool) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
