package config

import "time"

// Config is the root configuration structure for the rotator server.
// It covers the proxy and admin listeners, the outbound transport used to
// reach upstream instances, the location of the instances document and
// telemetry settings. The instances themselves live in a separate document
// (see LoadInstances) so credentials never share a file with tuning knobs.
type Config struct {
	// Proxy contains the inbound listener configuration. Every path on this
	// listener is forwarded upstream.
	Proxy ProxyConfig `yaml:"proxy"`

	// Admin contains the listener serving health, metrics and stats.
	Admin AdminConfig `yaml:"admin"`

	// Upstream contains the outbound transport and diagnostic settings.
	Upstream UpstreamConfig `yaml:"upstream"`

	// Instances points at the instances document.
	Instances InstancesConfig `yaml:"instances"`

	// Secrets configures where ${secret:name} references in the instances
	// document are resolved from.
	Secrets SecretsConfig `yaml:"secrets"`

	// Log contains structured logging settings.
	Log LoggingConfig `yaml:"log"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry settings.
	Tracing TracingConfig `yaml:"tracing"`
}

// ProxyConfig contains configuration for the inbound proxy listener.
type ProxyConfig struct {
	// ListenAddress is the address and port for the proxy to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address" split_words:"true"`

	// ReadHeaderTimeout bounds how long the server waits for request headers.
	// There is deliberately no whole-request read or write timeout: relayed
	// responses may stream for minutes.
	// Default: 10s
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" split_words:"true"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout" split_words:"true"`

	// ShutdownTimeout is the maximum duration to wait for in-flight requests
	// during graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true"`

	// MaxHeaderBytes limits the size of inbound request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes" split_words:"true"`

	// MaxRequestBodyBytes limits the inbound body buffered before the
	// attempt loop. Larger bodies are rejected with 413.
	// Default: 33554432 (32MB)
	MaxRequestBodyBytes int64 `yaml:"max_request_body_bytes" split_words:"true"`
}

// AdminConfig contains configuration for the admin listener.
type AdminConfig struct {
	// Enabled controls whether the admin listener is started.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the admin listener address.
	// Default: "127.0.0.1:9090"
	ListenAddress string `yaml:"listen_address" split_words:"true"`
}

// UpstreamConfig contains configuration for requests sent to instances.
type UpstreamConfig struct {
	// DialTimeout bounds establishing the TCP connection.
	// Default: 10s
	DialTimeout time.Duration `yaml:"dial_timeout" split_words:"true"`

	// HandshakeTimeout bounds the TLS handshake.
	// Default: 10s
	HandshakeTimeout time.Duration `yaml:"handshake_timeout" split_words:"true"`

	// ResponseHeaderTimeout bounds the wait for response headers once the
	// request has been written. The body is not subject to this timeout.
	// Default: 60s
	ResponseHeaderTimeout time.Duration `yaml:"response_header_timeout" split_words:"true"`

	// IdleConnTimeout is how long idle upstream connections are kept.
	// Default: 90s
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout" split_words:"true"`

	// MaxIdleConnsPerHost caps idle connections kept per instance host.
	// Default: 32
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host" split_words:"true"`

	// MaxPreviewBytes caps the body preview captured for failed attempts.
	// Default: 2048
	MaxPreviewBytes int `yaml:"max_preview_bytes" split_words:"true"`

	// PreviewTimeout bounds reading the body preview of a failed attempt.
	// An instance that stalls its body past this is abandoned.
	// Default: 10s
	PreviewTimeout time.Duration `yaml:"preview_timeout" split_words:"true"`
}

// InstancesConfig locates the instances document.
type InstancesConfig struct {
	// Path is the instances document path (JSON, or YAML by extension).
	// Default: "azure_instances.json"
	Path string `yaml:"path"`
}

// SecretsConfig configures credential reference resolution. An api_key of
// the form ${secret:name} is looked up in the environment first, then in
// Dir when set.
type SecretsConfig struct {
	// EnvPrefix is prepended to the upper-cased secret name to form the
	// environment variable ("east-key" -> ROTATOR_SECRET_EAST_KEY).
	// Default: "ROTATOR_SECRET_"
	EnvPrefix string `yaml:"env_prefix" split_words:"true"`

	// Dir is a directory holding one file per secret, named after it.
	// Files must be readable by the owner only (0600 or 0400).
	// Default: "" (disabled)
	Dir string `yaml:"dir"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	// Default: false
	AddSource bool `yaml:"add_source" split_words:"true"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are recorded and exposed.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace prefixes every metric name.
	// Default: "rotator"
	Namespace string `yaml:"namespace"`

	// DurationBuckets are histogram buckets (seconds) for request and
	// attempt durations.
	DurationBuckets []float64 `yaml:"duration_buckets" split_words:"true"`
}

// TracingConfig contains distributed tracing configuration. Each proxied
// request gets a server span with one client span per instance attempt.
type TracingConfig struct {
	// Enabled controls whether spans are recorded and exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy: "always", "never", "ratio".
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio" split_words:"true"`

	// Endpoint is the OTLP gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS to the collector.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "rotator"
	ServiceName string `yaml:"service_name" split_words:"true"`
}
