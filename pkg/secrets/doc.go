// Package secrets resolves ${secret:name} references in instance
// credentials.
//
// Two providers are supported. EnvProvider reads a prefixed environment
// variable; FileProvider reads a file from a directory such as a mounted
// Kubernetes secret. A Resolver chains them, environment first:
//
//	r, err := secrets.NewResolverFromConfig(cfg.Secrets, logger)
//	set, err := config.LoadInstancesWith(ctx, path, r)
//
// Secrets are resolved once, when the instances document is loaded.
// Changing a secret afterwards requires a restart.
package secrets
