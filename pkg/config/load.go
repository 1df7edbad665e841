package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment variable overrides, e.g.
// ROTATOR_PROXY_LISTEN_ADDRESS or ROTATOR_LOG_LEVEL.
const EnvPrefix = "ROTATOR"

// LoadConfigWithEnvOverrides loads configuration from an optional YAML file
// and applies environment variable overrides. Environment variables follow the
// naming convention ROTATOR_SECTION_FIELD (e.g., ROTATOR_PROXY_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Start from DefaultConfig
// 2. Overlay YAML from file, if the file exists
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// defaults only
		case err != nil:
			return nil, &ConfigError{Source: path, Err: fmt.Errorf("failed to read configuration file: %w", err)}
		default:
			if cfg, err = parseConfig(path, data); err != nil {
				return nil, err
			}
		}
	}

	if err := ApplyEnvOverrides(cfg); err != nil {
		return nil, &ConfigError{Source: "environment", Err: err}
	}

	if err := Validate(cfg); err != nil {
		return nil, &ConfigError{Source: path, Err: err}
	}

	return cfg, nil
}

// ApplyEnvOverrides overlays ROTATOR_* environment variables onto cfg.
// Unset variables leave the current value in place.
func ApplyEnvOverrides(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	return nil
}

// parseConfig decodes YAML over the defaults and fills anything still unset.
func parseConfig(path string, data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &ConfigError{Source: path, Err: fmt.Errorf("failed to parse configuration file: %w", err)}
	}
	ApplyDefaults(cfg)
	return cfg, nil
}
