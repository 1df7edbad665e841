package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	configPath := writeFile(t, "rotator.yaml", `
proxy:
  listen_address: "0.0.0.0:8080"
  read_header_timeout: "5s"
  max_request_body_bytes: 1024

upstream:
  response_header_timeout: "90s"
  max_preview_bytes: 512
  preview_timeout: "3s"

instances:
  path: "/etc/rotator/instances.json"

log:
  level: "debug"
  format: "text"
`)

	cfg, err := LoadConfigWithEnvOverrides(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Proxy.ListenAddress != "0.0.0.0:8080" {
		t.Errorf("expected listen address %q, got %q", "0.0.0.0:8080", cfg.Proxy.ListenAddress)
	}
	if cfg.Proxy.ReadHeaderTimeout != 5*time.Second {
		t.Errorf("expected read header timeout %v, got %v", 5*time.Second, cfg.Proxy.ReadHeaderTimeout)
	}
	if cfg.Proxy.MaxRequestBodyBytes != 1024 {
		t.Errorf("expected max request body bytes 1024, got %d", cfg.Proxy.MaxRequestBodyBytes)
	}
	if cfg.Upstream.ResponseHeaderTimeout != 90*time.Second {
		t.Errorf("expected response header timeout %v, got %v", 90*time.Second, cfg.Upstream.ResponseHeaderTimeout)
	}
	if cfg.Upstream.MaxPreviewBytes != 512 {
		t.Errorf("expected max preview bytes 512, got %d", cfg.Upstream.MaxPreviewBytes)
	}
	if cfg.Upstream.PreviewTimeout != 3*time.Second {
		t.Errorf("expected preview timeout %v, got %v", 3*time.Second, cfg.Upstream.PreviewTimeout)
	}
	if cfg.Instances.Path != "/etc/rotator/instances.json" {
		t.Errorf("expected instances path, got %q", cfg.Instances.Path)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected logging level %q, got %q", "debug", cfg.Log.Level)
	}
}

func TestLoadConfig_DefaultsSurviveSparseFile(t *testing.T) {
	configPath := writeFile(t, "rotator.yaml", `
log:
  format: "text"
`)

	cfg, err := LoadConfigWithEnvOverrides(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if !cfg.Admin.Enabled {
		t.Error("expected admin listener enabled by default")
	}
	if !cfg.Metrics.Enabled {
		t.Error("expected metrics enabled by default")
	}
	if cfg.Upstream.MaxPreviewBytes != DefaultMaxPreviewBytes {
		t.Errorf("expected default preview bytes %d, got %d", DefaultMaxPreviewBytes, cfg.Upstream.MaxPreviewBytes)
	}
	if cfg.Instances.Path != DefaultInstancesPath {
		t.Errorf("expected default instances path %q, got %q", DefaultInstancesPath, cfg.Instances.Path)
	}
}

func TestLoadConfig_ExplicitFalse(t *testing.T) {
	configPath := writeFile(t, "rotator.yaml", `
admin:
  enabled: false
metrics:
  enabled: false
`)

	cfg, err := LoadConfigWithEnvOverrides(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Admin.Enabled {
		t.Error("expected admin listener disabled")
	}
	if cfg.Metrics.Enabled {
		t.Error("expected metrics disabled")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := writeFile(t, "rotator.yaml", "proxy: [unclosed")

	_, err := LoadConfigWithEnvOverrides(configPath)
	if err == nil {
		t.Fatal("expected parse error")
	}

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
	if cfgErr.Source != configPath {
		t.Errorf("expected source %q, got %q", configPath, cfgErr.Source)
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	configPath := writeFile(t, "rotator.yaml", `
log:
  level: "verbose"
upstream:
  max_preview_bytes: -1
`)

	_, err := LoadConfigWithEnvOverrides(configPath)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if !verr.HasField("log.level") {
		t.Error("expected log.level error")
	}
	if !verr.HasField("upstream.max_preview_bytes") {
		t.Error("expected upstream.max_preview_bytes error")
	}
}

func TestLoadConfigWithEnvOverrides_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfigWithEnvOverrides(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("expected defaults for missing file, got %v", err)
	}
	if cfg.Proxy.ListenAddress != DefaultListenAddress {
		t.Errorf("expected %q, got %q", DefaultListenAddress, cfg.Proxy.ListenAddress)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	configPath := writeFile(t, "rotator.yaml", `
proxy:
  listen_address: "127.0.0.1:8080"
upstream:
  max_preview_bytes: 512
log:
  level: "info"
`)

	t.Setenv("ROTATOR_PROXY_LISTEN_ADDRESS", "0.0.0.0:9000")
	t.Setenv("ROTATOR_UPSTREAM_MAX_PREVIEW_BYTES", "4096")
	t.Setenv("ROTATOR_UPSTREAM_DIAL_TIMEOUT", "3s")
	t.Setenv("ROTATOR_INSTANCES_PATH", "/tmp/instances.yaml")
	t.Setenv("ROTATOR_LOG_LEVEL", "warn")
	t.Setenv("ROTATOR_METRICS_ENABLED", "false")
	t.Setenv("ROTATOR_SECRETS_DIR", "/run/secrets")
	t.Setenv("ROTATOR_TRACING_ENABLED", "true")
	t.Setenv("ROTATOR_TRACING_SAMPLE_RATIO", "0.5")

	cfg, err := LoadConfigWithEnvOverrides(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"listen address", cfg.Proxy.ListenAddress, "0.0.0.0:9000"},
		{"preview bytes", cfg.Upstream.MaxPreviewBytes, 4096},
		{"dial timeout", cfg.Upstream.DialTimeout, 3 * time.Second},
		{"instances path", cfg.Instances.Path, "/tmp/instances.yaml"},
		{"log level", cfg.Log.Level, "warn"},
		{"metrics enabled", cfg.Metrics.Enabled, false},
		{"secrets dir", cfg.Secrets.Dir, "/run/secrets"},
		{"secrets prefix default", cfg.Secrets.EnvPrefix, DefaultSecretEnvPrefix},
		{"tracing enabled", cfg.Tracing.Enabled, true},
		{"tracing ratio", cfg.Tracing.SampleRatio, 0.5},
		{"tracing sampler default", cfg.Tracing.Sampler, DefaultTracingSampler},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, tt.got)
			}
		})
	}
}

func TestLoadConfigWithEnvOverrides_InvalidValue(t *testing.T) {
	t.Setenv("ROTATOR_UPSTREAM_MAX_PREVIEW_BYTES", "lots")

	_, err := LoadConfigWithEnvOverrides("")
	if err == nil {
		t.Fatal("expected error for unparsable env value")
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
