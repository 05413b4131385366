package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/earthsurvivors/earthsurvivors/internal/character"
	"github.com/earthsurvivors/earthsurvivors/internal/export"
	"github.com/earthsurvivors/earthsurvivors/internal/progress"
	"github.com/earthsurvivors/earthsurvivors/internal/progress/sinks"
)

// newFetchCmd creates and configures the 'fetch' subcommand.
func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Writes the filtered characters to a CSV file",
		Long: `Runs one fetch of the character roster, applies the survivor filter, and
writes the result as CSV. A page failure aborts the run with a nonzero exit
and no file is written.`,
		RunE: runFetchCommand,
	}
}

func runFetchCommand(cmd *cobra.Command, _ []string) error {
	rt, err := resolveRuntime(cmd.Context())
	if err != nil {
		return err
	}
	cfg, logger := rt.Config, rt.Logger

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := progress.NewHub(
		progress.Config{Logger: logger.Named("progress")},
		sinks.NewLogSink(logger.Named("fetch")),
	)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if cerr := hub.Close(closeCtx); cerr != nil {
			logger.Warn("progress hub close failed", zap.Error(cerr))
		}
	}()

	fetcher := buildFetcher(cfg, hub, logger)

	records, err := fetcher.FetchFiltered(ctx)
	if err != nil {
		return fmt.Errorf("fetch characters: %w", err)
	}

	sink := export.NewCSVSink(cfg.Fetch.OutputFile, logger.Named("export"))
	if err := sink.Save(ctx, character.Reduce(records)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
