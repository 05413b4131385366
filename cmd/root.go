// Package cmd wires the earthsurvivors command line interface. The root
// command loads configuration and logging once and hands them to the
// subcommands through the command context.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/earthsurvivors/earthsurvivors/internal/config"
	"github.com/earthsurvivors/earthsurvivors/internal/logging"
	"github.com/earthsurvivors/earthsurvivors/internal/progress"
	"github.com/earthsurvivors/earthsurvivors/internal/upstream"
	pkgconfig "github.com/earthsurvivors/earthsurvivors/pkg/config"
)

var cfgFile string

// runtimeKeyType is the key for storing the Runtime in the context.
type runtimeKeyType struct{}

var runtimeKey runtimeKeyType

// Runtime carries the shared dependencies built by the root command for use
// by the subcommands.
type Runtime struct {
	Config config.Config
	Logger *zap.Logger
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "earthsurvivors",
		Short: "Serves the roster of characters who survived on Earth",
		Long: `earthsurvivors pulls the character listing from the Rick and Morty API,
keeps the humans that are alive with an Earth origin, and republishes the
result as a small JSON and HTML service or as a CSV export.`,
		SilenceUsage:  true,
		SilenceErrors: true,

		// This hook runs BEFORE the subcommand's RunE. Configuration and
		// logging are built here once and injected for subcommands to use.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := pkgconfig.InitConfig(cfgFile); err != nil {
				return err
			}
			cfg, err := config.FromViper(viper.GetViper())
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("init logging: %w", err)
			}
			zap.ReplaceGlobals(logger)
			if used := viper.ConfigFileUsed(); used != "" {
				logger.Info("using config file", zap.String("path", used))
			}

			ctx := context.WithValue(cmd.Context(), runtimeKey, &Runtime{
				Config: cfg,
				Logger: logger,
			})
			cmd.SetContext(ctx)
			return nil
		},

		// This hook ensures buffered log output is flushed on the way out.
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if rt, err := resolveRuntime(cmd.Context()); err == nil {
				_ = rt.Logger.Sync() //nolint:errcheck // best-effort flush
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newFetchCmd())

	return rootCmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// resolveRuntime pulls the Runtime out of the command context.
func resolveRuntime(ctx context.Context) (*Runtime, error) {
	rt, ok := ctx.Value(runtimeKey).(*Runtime)
	if !ok || rt == nil {
		return nil, fmt.Errorf("runtime not initialized; root command did not run")
	}
	return rt, nil
}

// buildFetcher assembles the fetch pipeline shared by the serve and fetch
// commands. Run IDs and timestamps use the package defaults.
func buildFetcher(cfg config.Config, hub *progress.Hub, logger *zap.Logger) *upstream.Fetcher {
	pages := upstream.NewCollyFetcher(upstream.CollyConfig{
		UserAgent: cfg.Upstream.UserAgent,
		Timeout:   cfg.Upstream.Timeout,
	}, logger.Named("upstream"))

	return upstream.NewFetcher(
		pages,
		nil,
		nil,
		hub,
		upstream.Config{
			BaseURL:  cfg.Upstream.BaseURL,
			MaxPages: cfg.Upstream.MaxPages,
		},
		logger.Named("fetcher"),
	)
}
