package secrets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"mercator-hq/rotator/pkg/config"
)

// refPattern matches ${secret:name}.
var refPattern = regexp.MustCompile(`\$\{secret:([^}]+)\}`)

// Resolver looks secrets up across providers in order, first hit wins.
type Resolver struct {
	providers []Provider
	logger    *slog.Logger
}

// NewResolver creates a resolver over providers.
func NewResolver(logger *slog.Logger, providers ...Provider) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{providers: providers, logger: logger}
}

// NewResolverFromConfig builds the env provider and, when a directory is
// configured, a file provider behind it.
func NewResolverFromConfig(cfg config.SecretsConfig, logger *slog.Logger) (*Resolver, error) {
	providers := []Provider{NewEnvProvider(cfg.EnvPrefix)}
	if cfg.Dir != "" {
		fp, err := NewFileProvider(cfg.Dir)
		if err != nil {
			return nil, &config.ConfigError{Source: cfg.Dir, Err: err}
		}
		providers = append(providers, fp)
	}
	return NewResolver(logger, providers...), nil
}

// GetSecret returns the first value any provider has for name. Errors other
// than ErrNotFound stop the search.
func (r *Resolver) GetSecret(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("empty secret name")
	}

	for _, p := range r.providers {
		value, err := p.GetSecret(ctx, name)
		if err == nil {
			r.logger.DebugContext(ctx, "secret resolved", "provider", p.Name(), "name", redactName(name))
			return value, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", fmt.Errorf("%s provider: %w", p.Name(), err)
		}
	}

	return "", fmt.Errorf("%w: %q", ErrNotFound, name)
}

// ResolveReferences replaces every ${secret:name} in input with its value.
// Input without references is returned unchanged. On failure the error
// lists every reference that could not be resolved.
func (r *Resolver) ResolveReferences(ctx context.Context, input string) (string, error) {
	if !HasReference(input) {
		return input, nil
	}

	var failed []string
	output := refPattern.ReplaceAllStringFunc(input, func(match string) string {
		name := refPattern.FindStringSubmatch(match)[1]
		value, err := r.GetSecret(ctx, name)
		if err != nil {
			failed = append(failed, fmt.Sprintf("%q: %v", name, err))
			return match
		}
		return value
	})

	if len(failed) > 0 {
		return "", fmt.Errorf("failed to resolve secret references: %s", strings.Join(failed, "; "))
	}
	return output, nil
}

// HasReference reports whether s contains a ${secret:name} reference.
func HasReference(s string) bool {
	return refPattern.MatchString(s)
}

func redactName(name string) string {
	if len(name) <= 4 {
		return "***"
	}
	return name[:2] + "..." + name[len(name)-2:]
}
