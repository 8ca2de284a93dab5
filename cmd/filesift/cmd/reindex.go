package cmd

import (
	"github.com/spf13/cobra"

	"github.com/filesift/filesift/internal/output"
	"github.com/filesift/filesift/internal/ui"
)

func newReindexCmd() *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the index from the metadata source",
		Long: `Rebuild the whole index from the configured metadata source and save
a fresh snapshot. The previous index keeps serving until the rebuild
succeeds.

Examples:
  filesift reindex
  filesift reindex --batch-size 128`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReindex(cmd, batchSize)
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Files per rebuild batch (default from config)")

	return cmd
}

func runReindex(cmd *cobra.Command, batchSize int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if batchSize > 0 {
		cfg.Source.BatchSize = batchSize
	}

	e, err := openEngine(cmd.Context(), cfg, nil)
	if err != nil {
		return err
	}
	defer func() { _ = e.Close() }()

	out := output.New(cmd.OutOrStdout())
	out.Status("🔄", "rebuilding index from "+cfg.Source.Kind+" source")

	stats, err := e.ReindexAll(cmd.Context())
	if err != nil {
		return err
	}
	if err := e.SaveSnapshot(cmd.Context()); err != nil {
		return err
	}

	ui.NewRenderer(cmd.OutOrStdout(), noColor).Rebuild(stats)
	out.Success("snapshot saved to " + cfg.Snapshot.Path)
	return nil
}
