// Package config provides configuration management for rotator.
//
// Two inputs are handled here: the server configuration (listeners, upstream
// transport, secrets, logging, metrics, tracing) and the instances document
// listing the upstream backends and their credentials.
//
// # Server Configuration
//
// The server configuration is an optional YAML file:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("rotator.yaml")
//
// A missing file yields the defaults. Values are applied in the following
// order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Command-line flags (applied by cmd/rotator)
//
// Validation runs last and fails fast with every field error collected.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention ROTATOR_SECTION_FIELD:
//
//   - ROTATOR_PROXY_LISTEN_ADDRESS overrides proxy.listen_address
//   - ROTATOR_UPSTREAM_MAX_PREVIEW_BYTES overrides upstream.max_preview_bytes
//   - ROTATOR_UPSTREAM_PREVIEW_TIMEOUT overrides upstream.preview_timeout
//   - ROTATOR_INSTANCES_PATH overrides instances.path
//   - ROTATOR_LOG_LEVEL overrides log.level
//   - ROTATOR_TRACING_ENABLED overrides tracing.enabled
//
// # Instances Document
//
// The instances document is JSON, or YAML when the path ends in .yaml/.yml:
//
//	{
//	  "instances": [
//	    {"endpoint": "https://east.example.com", "api_key": "..."},
//	    {"endpoint": "https://west.example.com", "api_key": "..."}
//	  ],
//	  "header_name": "api-key"
//	}
//
// LoadInstances trims trailing slashes from endpoints, drops exact duplicate
// (endpoint, api_key) pairs keeping the first, and requires at least one
// instance. The resulting InstanceSet is immutable.
//
// An api_key may hold ${secret:name} references. LoadInstancesWith passes
// each api_key through a CredentialResolver (see package secrets) before
// validation; LoadInstances leaves them as written.
//
// # Error Handling
//
// Every load failure is a *ConfigError wrapping the cause; field problems are
// reported together as a ValidationError:
//
//	set, err := config.LoadInstances(path)
//	if errors.Is(err, config.ErrInvalidConfig) {
//	    var verr config.ValidationError
//	    if errors.As(err, &verr) {
//	        for _, fe := range verr.Errors {
//	            fmt.Printf("  %s: %s\n", fe.Field, fe.Message)
//	        }
//	    }
//	}
package config
