// Package cli implements the payment-engine command surface.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Options holds the flags of the process command.
type Options struct {
	Verbose bool
	Shards  int
	Config  string
	Strict  bool
	AuditDB string
}

// NewRootCommand creates the payment-engine command. The binary has a single
// job, so the root command does the processing itself: it reads the
// transactions file named by the one positional argument and writes the
// account report to stdout.
func NewRootCommand() *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:   "payment-engine <transactions.csv>",
		Short: "Process a batch of payment transactions",
		Long: `Process a CSV stream of deposits, withdrawals and dispute operations and
print the final state of every touched client account.

Operations for one client are applied in file order; independent clients are
processed in parallel across shard workers. The output row order is
unspecified.

Example:
  payment-engine transactions.csv > accounts.csv
  payment-engine --shards 4 --strict transactions.csv`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return WrapExitError(ExitCommandError, "invalid arguments", err)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(opts.Verbose)
			return runProcess(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.Flags().IntVar(&opts.Shards, "shards", 0, "shard worker count (0 = host parallelism)")
	cmd.Flags().StringVar(&opts.Config, "config", "", "path to YAML config file")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "abort on the first malformed record instead of skipping it")
	cmd.Flags().StringVar(&opts.AuditDB, "audit-db", "", "also record the run in a SQLite audit database at this path")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	})

	return cmd
}

// setupLogging points slog at stderr so the report on stdout stays clean.
func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
