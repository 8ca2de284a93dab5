package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/filesift/filesift/internal/ui"
)

type searchOptions struct {
	limit  int
	format string
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the index",
		Long: `Search indexed files by name, with typo tolerance and synonyms.

Filter terms narrow results:
  @type:<category>   image, video, audio, document, code, executable, compressed, other
  @ext:<extension>   exact extension match
  @size:<op><value>  e.g. @size:<1mb, @size:>=500kb
  @date:<op><value>  e.g. @date:>2026-01-01, @date:=today

Examples:
  filesift search vacation
  filesift search "vacaton @type:image" --limit 5
  filesift search "@type:document @size:>10mb" --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "Maximum number of results")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, opts searchOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	metrics, err := buildMetrics(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = metrics.Close() }()

	e, err := openEngine(cmd.Context(), cfg, metrics)
	if err != nil {
		return err
	}
	defer func() { _ = e.Close() }()

	res, err := e.Search(query, opts.limit)
	if err != nil {
		return err
	}

	if opts.format == "json" {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	ui.NewRenderer(cmd.OutOrStdout(), noColor).SearchResult(res)
	return nil
}
