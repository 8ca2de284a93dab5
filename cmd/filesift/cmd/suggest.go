package cmd

import (
	"github.com/spf13/cobra"

	"github.com/filesift/filesift/internal/ui"
)

func newSuggestCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "suggest <prefix>",
		Short: "Suggest completions for a name prefix",
		Long: `List files whose tokens start with the given prefix, most relevant
first. Useful for shell completion and incremental search UIs.

Examples:
  filesift suggest vac
  filesift suggest rep --limit 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuggest(cmd, args[0], limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of suggestions")

	return cmd
}

func runSuggest(cmd *cobra.Command, prefix string, limit int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	e, err := openEngine(cmd.Context(), cfg, nil)
	if err != nil {
		return err
	}
	defer func() { _ = e.Close() }()

	suggestions, err := e.Suggest(prefix, limit)
	if err != nil {
		return err
	}

	ui.NewRenderer(cmd.OutOrStdout(), noColor).Suggestions(suggestions)
	return nil
}
