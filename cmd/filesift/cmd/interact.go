package cmd

import (
	"github.com/spf13/cobra"

	"github.com/filesift/filesift/internal/learn"
	"github.com/filesift/filesift/internal/output"
)

func newInteractCmd() *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "interact <file-id> <type>",
		Short: "Record a file interaction",
		Long: `Record that a file was viewed, downloaded, or selected. Interactions
boost that file's ranking for the configured decay window.

Examples:
  filesift interact photos/vacation.jpg viewed
  filesift interact photos/vacation.jpg downloaded
  filesift interact --clear`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if clear {
				return runClearInteractions(cmd)
			}
			if len(args) != 2 {
				return cmd.Help()
			}
			return runInteract(cmd, args[0], args[1])
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "Reset all learned interactions")

	return cmd
}

func runInteract(cmd *cobra.Command, fileID, interaction string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	e, err := openEngine(cmd.Context(), cfg, nil)
	if err != nil {
		return err
	}
	defer func() { _ = e.Close() }()

	if err := e.RecordInteraction(fileID, learn.Type(interaction)); err != nil {
		return err
	}
	if err := e.SaveSnapshot(cmd.Context()); err != nil {
		return err
	}

	output.New(cmd.OutOrStdout()).Successf("recorded %s for %s", interaction, fileID)
	return nil
}

func runClearInteractions(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	e, err := openEngine(cmd.Context(), cfg, nil)
	if err != nil {
		return err
	}
	defer func() { _ = e.Close() }()

	e.ClearInteractions()
	if err := e.SaveSnapshot(cmd.Context()); err != nil {
		return err
	}

	output.New(cmd.OutOrStdout()).Success("interaction history cleared")
	return nil
}
