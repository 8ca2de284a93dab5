package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/filesift/filesift/internal/telemetry"
	"github.com/filesift/filesift/internal/ui"
)

func newStatsCmd() *cobra.Command {
	var history bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index statistics",
		Long: `Show index statistics: file and token counts, trie size, learned
interactions, and engine state. With --history, also print the
persisted search history (top terms, zero-result queries).

Examples:
  filesift stats
  filesift stats --history`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStats(cmd, history)
		},
	}

	cmd.Flags().BoolVar(&history, "history", false, "Include persisted search history")

	return cmd
}

func runStats(cmd *cobra.Command, history bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	e, err := openEngine(cmd.Context(), cfg, nil)
	if err != nil {
		return err
	}
	defer func() { _ = e.Close() }()

	r := ui.NewRenderer(cmd.OutOrStdout(), noColor)
	r.Stats(e.Stats())

	if !history {
		return nil
	}
	if cfg.Telemetry.HistoryPath == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "no history database configured (telemetry.history_path)")
		return nil
	}
	return printHistory(cmd, cfg.Telemetry.HistoryPath)
}

func printHistory(cmd *cobra.Command, path string) error {
	store, err := telemetry.OpenHistory(path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	out := cmd.OutOrStdout()

	terms, err := store.GetTopTerms(10)
	if err != nil {
		return err
	}
	if len(terms) > 0 {
		fmt.Fprintln(out, "\ntop search terms:")
		for _, tc := range terms {
			fmt.Fprintf(out, "  %6d  %s\n", tc.Count, tc.Term)
		}
	}

	zero, err := store.GetZeroResultQueries(10)
	if err != nil {
		return err
	}
	if len(zero) > 0 {
		fmt.Fprintln(out, "\nrecent zero-result queries:")
		for _, q := range zero {
			fmt.Fprintf(out, "  %s\n", q)
		}
	}

	return nil
}
