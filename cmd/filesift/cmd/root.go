// Package cmd provides the CLI commands for filesift.
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/filesift/filesift/internal/config"
	"github.com/filesift/filesift/internal/engine"
	"github.com/filesift/filesift/internal/logging"
	"github.com/filesift/filesift/internal/source"
	"github.com/filesift/filesift/internal/telemetry"
	"github.com/filesift/filesift/pkg/version"
)

var (
	debugMode      bool
	noColor        bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the filesift CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filesift",
		Short: "Adaptive fuzzy file search",
		Long: `filesift indexes file metadata into a trie and serves typo-tolerant,
synonym-aware, filterable searches that learn from your interactions.

Queries mix free text with filters:

  filesift search "vacation @type:image @size:<5mb @date:>2026-01-01"`,
		Version:      version.Short(),
		SilenceUsage: true,
	}

	cmd.SetVersionTemplate("filesift version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.filesift/logs/")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newReindexCmd())
	cmd.AddCommand(newSuggestCmd())
	cmd.AddCommand(newInteractCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newSnapshotCmd())
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func startLogging(_ *cobra.Command, _ []string) error {
	if !debugMode {
		return nil
	}
	logger, cleanup, err := logging.Setup(logging.DebugConfig())
	if err != nil {
		return fmt.Errorf("setup debug logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	slog.Info("debug_logging_enabled", slog.String("log_file", logging.DefaultLogPath()))
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig loads configuration against the current directory.
func loadConfig() (*config.Config, error) {
	return config.Load(".")
}

// engineConfig maps the application config onto engine tuning.
func engineConfig(cfg *config.Config) engine.Config {
	return engine.Config{
		FuzzyDistance:   cfg.Engine.FuzzyDistance,
		NodeBudget:      cfg.Engine.NodeBudget,
		PrefixCap:       cfg.Engine.PrefixCap,
		MaxResults:      cfg.Engine.MaxResults,
		DecayWindowDays: cfg.Engine.DecayWindowDays,
		CacheSize:       cfg.Engine.CacheSize,
		BatchSize:       cfg.Source.BatchSize,
		SnapshotPath:    cfg.Snapshot.Path,
	}
}

// buildSource constructs the configured metadata source, or nil for
// kind "none".
func buildSource(cfg *config.Config) (source.MetadataSource, error) {
	switch cfg.Source.Kind {
	case "dir":
		return source.NewDirSource(cfg.Source.Root), nil
	case "sqlite":
		return source.NewSQLiteSource(cfg.Source.DSN)
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
	}
}

// buildMetrics constructs the telemetry collector, which is nil (and
// safely inert) when telemetry is disabled.
func buildMetrics(cfg *config.Config) (*telemetry.QueryMetrics, error) {
	if !cfg.Telemetry.Enabled {
		return nil, nil
	}
	var store telemetry.HistoryStore
	if cfg.Telemetry.HistoryPath != "" {
		s, err := telemetry.OpenHistory(cfg.Telemetry.HistoryPath)
		if err != nil {
			return nil, err
		}
		store = s
	}
	return telemetry.NewQueryMetrics(cfg.Telemetry.BufferSize, store), nil
}

// openEngine is the common startup path: build the configured source and
// open the engine from its snapshot, rebuilding when necessary.
func openEngine(ctx context.Context, cfg *config.Config, metrics *telemetry.QueryMetrics) (*engine.Engine, error) {
	src, err := buildSource(cfg)
	if err != nil {
		return nil, err
	}

	opts := []engine.Option{
		engine.WithLogger(slog.Default()),
		engine.WithMetrics(metrics),
	}
	if src != nil {
		opts = append(opts, engine.WithSource(src))
	}

	return engine.Open(ctx, engineConfig(cfg), opts...)
}
