package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is matched by every configuration load failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigError is returned when a configuration source cannot be loaded.
// It is fatal at startup.
type ConfigError struct {
	// Source is the file path (or "environment") that failed.
	Source string

	// Err is the underlying cause, often a ValidationError.
	Err error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is(err, ErrInvalidConfig) for any ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}
