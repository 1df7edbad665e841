package secrets

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a provider that has no value for a name.
var ErrNotFound = errors.New("secret not found")

// Provider retrieves secrets from a backend.
type Provider interface {
	// GetSecret retrieves a secret by name. A missing secret yields an
	// error matching ErrNotFound.
	GetSecret(ctx context.Context, name string) (string, error)

	// Name returns the provider name (env, file).
	Name() string
}
