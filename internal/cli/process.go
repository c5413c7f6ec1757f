package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nicmue/payment-engine/internal/audit"
	"github.com/nicmue/payment-engine/internal/config"
	"github.com/nicmue/payment-engine/internal/csvio"
	"github.com/nicmue/payment-engine/internal/engine"
)

// runProcess executes one end-to-end engine run.
func runProcess(cmd *cobra.Command, opts *Options, inputPath string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	runID := uuid.NewString()
	logger := slog.Default().With("run_id", runID)

	input, err := os.Open(inputPath)
	if err != nil {
		return WrapExitError(ExitFailure, "open transactions file", err)
	}
	defer input.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline := engine.New(engine.Options{
		Shards:          cfg.Shards,
		ChannelCapacity: cfg.ChannelCapacity,
		Strict:          cfg.OnParseError == config.PolicyAbort,
	})

	logger.Debug("run starting", "input", inputPath, "shards", cfg.Shards)
	startedAt := time.Now()

	sink := csvio.NewWriter(cmd.OutOrStdout())
	collector := &collectingSink{next: sink}

	stats, err := pipeline.Run(ctx, csvio.NewReader(input), collector)
	if err != nil {
		return WrapExitError(ExitFailure, "process transactions", err)
	}
	finishedAt := time.Now()

	logger.Debug("run finished",
		"processed", stats.Processed,
		"skipped", stats.Skipped,
		"accounts", stats.Accounts,
		"elapsed", finishedAt.Sub(startedAt),
	)

	if opts.AuditDB != "" {
		run := audit.Run{
			ID:         runID,
			InputPath:  inputPath,
			Shards:     stats.Shards,
			Processed:  stats.Processed,
			Skipped:    stats.Skipped,
			StartedAt:  startedAt,
			FinishedAt: finishedAt,
		}
		if err := recordAudit(cmd, opts.AuditDB, run, collector); err != nil {
			return WrapExitError(ExitFailure, "record audit run", err)
		}
		logger.Debug("audit recorded", "db", opts.AuditDB)
	}

	return nil
}

func loadConfig(opts *Options) (config.Config, error) {
	cfg := config.Default()
	if opts.Config != "" {
		loaded, err := config.Load(opts.Config)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	// Flags win over the file.
	if opts.Shards > 0 {
		cfg.Shards = opts.Shards
	}
	if opts.Strict {
		cfg.OnParseError = config.PolicyAbort
	}
	return cfg, cfg.Validate()
}

func recordAudit(cmd *cobra.Command, path string, run audit.Run, collector *collectingSink) error {
	store, err := audit.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.RecordRun(cmd.Context(), run, collector.snaps)
}
