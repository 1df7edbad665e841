package main

import (
	"github.com/spf13/cobra"

	"mercator-hq/rotator/pkg/cli"
)

var validateFlags struct {
	instancesPath string
	format        string
}

// validateResult is the JSON output of the validate command.
type validateResult struct {
	Path       string   `json:"path"`
	HeaderName string   `json:"header_name"`
	Count      int      `json:"count"`
	Instances  []string `json:"instances"`
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the instances document",
	Long: `Load and validate the instances document and print the normalized
endpoint list. Credentials are never printed.

The document must contain at least one instance, and every instance needs an
absolute http(s) endpoint and a non-empty api_key. Duplicate entries are
collapsed into the first occurrence.

Examples:
  # Validate the default document
  rotator validate

  # Validate a YAML document and print JSON
  rotator validate --instances instances.yaml --output json`,
	RunE: validateInstances,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.instancesPath, "instances", "i", "", "instances document (JSON or YAML)")
	validateCmd.Flags().StringVarP(&validateFlags.format, "output", "o", "text", "output format: text, json")
}

func validateInstances(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(validateFlags.format)
	if err != nil {
		return err
	}

	cfg, err := loadServerConfig(cmd)
	if err != nil {
		return err
	}

	set, path, err := loadInstanceSet(cmd.Context(), cfg, validateFlags.instancesPath)
	if err != nil {
		return err
	}

	var data any = set.Endpoints()
	if format == cli.FormatJSON {
		data = validateResult{
			Path:       path,
			HeaderName: set.HeaderName(),
			Count:      set.Len(),
			Instances:  set.Endpoints(),
		}
	}

	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), data)
}
