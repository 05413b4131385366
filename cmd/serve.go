package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/earthsurvivors/earthsurvivors/internal/api"
	"github.com/earthsurvivors/earthsurvivors/internal/metrics"
	"github.com/earthsurvivors/earthsurvivors/internal/progress"
	"github.com/earthsurvivors/earthsurvivors/internal/progress/sinks"
	"github.com/earthsurvivors/earthsurvivors/internal/snapshot"
	"github.com/earthsurvivors/earthsurvivors/internal/upstream"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
	recentRunWindow   = 50
)

// newServeCmd creates and configures the 'serve' subcommand.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Runs the HTTP server",
		Long: `Fetches the character roster once at startup, caches the survivors in
memory, and serves them over HTTP. When the startup fetch fails the server
still comes up and reports itself degraded until a refresh succeeds.`,
		RunE: runServeCommand,
	}
}

func runServeCommand(cmd *cobra.Command, _ []string) error {
	rt, err := resolveRuntime(cmd.Context())
	if err != nil {
		return err
	}
	cfg, logger := rt.Config, rt.Logger

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Init()

	promSink, err := sinks.NewPrometheusSink(nil)
	if err != nil {
		return fmt.Errorf("init progress metrics: %w", err)
	}
	recent := sinks.NewRecentSink(recentRunWindow)
	hub := progress.NewHub(
		progress.Config{Logger: logger.Named("progress")},
		sinks.NewLogSink(logger.Named("fetch")),
		promSink,
		recent,
	)

	fetcher := buildFetcher(cfg, hub, logger)

	store := snapshot.NewStore(initialSnapshot(ctx, fetcher, logger))
	observeStore(store)

	server := api.NewServer(cfg, store, recent, logger.Named("api"))
	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           server.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if cfg.Server.RefreshInterval > 0 {
		g.Go(func() error {
			runRefresher(gctx, fetcher, store, cfg.Server.RefreshInterval, logger)
			return nil
		})
	}

	err = g.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if cerr := hub.Close(closeCtx); cerr != nil {
		logger.Warn("progress hub close failed", zap.Error(cerr))
	}

	if err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

// initialSnapshot performs the startup fetch. A failure leaves the service
// running in degraded mode instead of aborting startup, so the endpoints
// stay reachable while the upstream is down.
func initialSnapshot(ctx context.Context, fetcher *upstream.Fetcher, logger *zap.Logger) *snapshot.Snapshot {
	records, err := fetcher.FetchFiltered(ctx)
	if err != nil {
		logger.Error("startup fetch failed, serving degraded", zap.Error(err))
		return snapshot.Degraded(err, time.Now().UTC())
	}
	logger.Info("character snapshot loaded", zap.Int("characters", len(records)))
	return snapshot.New(records, time.Now().UTC())
}

// runRefresher re-fetches the roster on the configured interval. A failed
// refresh keeps the previous snapshot; readers never observe a partial or
// torn roster.
func runRefresher(
	ctx context.Context,
	fetcher *upstream.Fetcher,
	store *snapshot.Store,
	interval time.Duration,
	logger *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			records, err := fetcher.FetchFiltered(ctx)
			if err != nil {
				logger.Warn("refresh failed, keeping previous snapshot", zap.Error(err))
				continue
			}
			store.Swap(snapshot.New(records, time.Now().UTC()))
			observeStore(store)
			logger.Info("snapshot refreshed", zap.Int("characters", len(records)))
		}
	}
}

// observeStore publishes the current snapshot state to the metrics gauges.
func observeStore(store *snapshot.Store) {
	snap := store.Current()
	metrics.ObserveSnapshot(snap.Count(), snap.Degraded())
}
