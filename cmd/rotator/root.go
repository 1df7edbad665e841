package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/rotator/pkg/cli"
)

var (
	// Global flags
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "rotator",
	Short: "Rotator - failover reverse proxy for identical API instances",
	Long: `Rotator load-balances HTTP requests across functionally identical upstream
API instances, each with its own endpoint and credential.

  - Requests start at a shared rotation pointer and fail over in order
  - 429, 5xx, 401, 403, 404 and network errors move on to the next instance
  - Other 4xx responses are returned to the caller untouched
  - Streaming responses are relayed chunk by chunk
  - When every instance fails, a JSON report of each attempt is returned`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "rotator.yaml", "server config file path (optional; defaults apply when missing)")
}
