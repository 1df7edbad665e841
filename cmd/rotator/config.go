package main

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/rotator/pkg/cli"
	"mercator-hq/rotator/pkg/config"
	"mercator-hq/rotator/pkg/secrets"
)

// loadServerConfig loads the server config: defaults, then the YAML file,
// then ROTATOR_* environment variables. A missing file is only an error
// when --config was given explicitly.
func loadServerConfig(cmd *cobra.Command) (*config.Config, error) {
	if cmd.Flags().Changed("config") {
		if _, err := os.Stat(cfgFile); errors.Is(err, fs.ErrNotExist) {
			return nil, cli.WrapConfigError(cfgFile, err)
		}
	}

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.WrapConfigError(cfgFile, err)
	}
	return cfg, nil
}

// loadInstanceSet loads the instances document and resolves any
// ${secret:name} credentials. The --instances flag wins over the path from
// the server config.
func loadInstanceSet(ctx context.Context, cfg *config.Config, flagPath string) (*config.InstanceSet, string, error) {
	path := cfg.Instances.Path
	if flagPath != "" {
		path = flagPath
	}
	if path == "" {
		path = config.DefaultInstancesPath
	}

	resolver, err := secrets.NewResolverFromConfig(cfg.Secrets, nil)
	if err != nil {
		return nil, path, cli.WrapConfigError("secrets", err)
	}

	set, err := config.LoadInstancesWith(ctx, path, resolver)
	if err != nil {
		return nil, path, cli.WrapConfigError(path, err)
	}
	return set, path, nil
}
