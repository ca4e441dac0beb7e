/*
Package cli provides command-line interface utilities for easybackup.

The cli package includes output formatters, exit code mapping and signal
handling shared by the easybackup commands.

Output Formatting:

Commands print results as text, JSON or CSV. Tabular results implement
Table so that every format can render them:

	formatter := cli.NewFormatter(cli.FormatCSV)
	if err := formatter.FormatTo(os.Stdout, runs); err != nil {
		return err
	}

Exit Codes:

ExitCode maps command errors to process exit codes: 1 when a backup
completed with errors, 2 for configuration problems.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()
*/
package cli
