package config

import "time"

// Default values for configuration fields.
const (
	// Proxy defaults
	DefaultListenAddress       = "127.0.0.1:8080"
	DefaultReadHeaderTimeout   = 10 * time.Second
	DefaultIdleTimeout         = 120 * time.Second
	DefaultShutdownTimeout     = 30 * time.Second
	DefaultMaxHeaderBytes      = 1048576  // 1MB
	DefaultMaxRequestBodyBytes = 33554432 // 32MB

	// Admin defaults
	DefaultAdminEnabled       = true
	DefaultAdminListenAddress = "127.0.0.1:9090"

	// Upstream defaults
	DefaultDialTimeout           = 10 * time.Second
	DefaultHandshakeTimeout      = 10 * time.Second
	DefaultResponseHeaderTimeout = 60 * time.Second
	DefaultIdleConnTimeout       = 90 * time.Second
	DefaultMaxIdleConnsPerHost   = 32
	DefaultMaxPreviewBytes       = 2048
	DefaultPreviewTimeout        = 10 * time.Second

	// Instances defaults
	DefaultInstancesPath = "azure_instances.json"
	DefaultHeaderName    = "api-key"

	// Secrets defaults
	DefaultSecretEnvPrefix = "ROTATOR_SECRET_"

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultMetricsEnabled   = true
	DefaultMetricsNamespace = "rotator"

	// Tracing defaults
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 0.1
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingTimeout     = 10 * time.Second
	DefaultTracingServiceName = "rotator"
)

// DefaultDurationBuckets spans quick failovers up to long streamed completions.
var DefaultDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120}

// DefaultConfig returns a configuration with every field at its default.
// Loading starts from this value so that booleans defaulting to true survive
// a YAML file that does not mention them.
func DefaultConfig() *Config {
	cfg := &Config{
		Admin: AdminConfig{
			Enabled: DefaultAdminEnabled,
		},
		Metrics: MetricsConfig{
			Enabled: DefaultMetricsEnabled,
		},
		Tracing: TracingConfig{
			SampleRatio: DefaultTracingSampleRatio,
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults.
// Booleans are left alone; see DefaultConfig.
func ApplyDefaults(cfg *Config) {
	// Proxy defaults
	if cfg.Proxy.ListenAddress == "" {
		cfg.Proxy.ListenAddress = DefaultListenAddress
	}
	if cfg.Proxy.ReadHeaderTimeout == 0 {
		cfg.Proxy.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if cfg.Proxy.IdleTimeout == 0 {
		cfg.Proxy.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Proxy.ShutdownTimeout == 0 {
		cfg.Proxy.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Proxy.MaxHeaderBytes == 0 {
		cfg.Proxy.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Proxy.MaxRequestBodyBytes == 0 {
		cfg.Proxy.MaxRequestBodyBytes = DefaultMaxRequestBodyBytes
	}

	if cfg.Admin.ListenAddress == "" {
		cfg.Admin.ListenAddress = DefaultAdminListenAddress
	}

	// Upstream defaults
	if cfg.Upstream.DialTimeout == 0 {
		cfg.Upstream.DialTimeout = DefaultDialTimeout
	}
	if cfg.Upstream.HandshakeTimeout == 0 {
		cfg.Upstream.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if cfg.Upstream.ResponseHeaderTimeout == 0 {
		cfg.Upstream.ResponseHeaderTimeout = DefaultResponseHeaderTimeout
	}
	if cfg.Upstream.IdleConnTimeout == 0 {
		cfg.Upstream.IdleConnTimeout = DefaultIdleConnTimeout
	}
	if cfg.Upstream.MaxIdleConnsPerHost == 0 {
		cfg.Upstream.MaxIdleConnsPerHost = DefaultMaxIdleConnsPerHost
	}
	if cfg.Upstream.MaxPreviewBytes == 0 {
		cfg.Upstream.MaxPreviewBytes = DefaultMaxPreviewBytes
	}
	if cfg.Upstream.PreviewTimeout == 0 {
		cfg.Upstream.PreviewTimeout = DefaultPreviewTimeout
	}

	if cfg.Instances.Path == "" {
		cfg.Instances.Path = DefaultInstancesPath
	}

	if cfg.Secrets.EnvPrefix == "" {
		cfg.Secrets.EnvPrefix = DefaultSecretEnvPrefix
	}

	// Telemetry defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLoggingLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLoggingFormat
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Metrics.DurationBuckets) == 0 {
		cfg.Metrics.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}

	// SampleRatio has no zero default: 0 is a valid ratio and the
	// default is seeded by DefaultConfig.
	if cfg.Tracing.Sampler == "" {
		cfg.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Tracing.Endpoint == "" {
		cfg.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Tracing.Timeout == 0 {
		cfg.Tracing.Timeout = DefaultTracingTimeout
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultTracingServiceName
	}
}
