/*
Package cli provides command-line helpers for the rotator command.

Output Formatting:

Commands that print results accept --output text|json:

	format, err := cli.ParseOutputFormat(outputFlag)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(os.Stdout, set.Endpoints())

Errors:

ConfigError marks failures caused by configuration; CommandError wraps any
other command failure. ExitCode maps either to the process exit status.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background(), logger)
	defer stop()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
