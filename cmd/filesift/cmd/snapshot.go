package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/filesift/filesift/internal/engine"
	"github.com/filesift/filesift/internal/output"
)

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save or restore the index snapshot",
	}

	cmd.AddCommand(newSnapshotSaveCmd())
	cmd.AddCommand(newSnapshotRestoreCmd())

	return cmd
}

func newSnapshotSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Write the current index state to the snapshot file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			e, err := openEngine(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			defer func() { _ = e.Close() }()

			if err := e.SaveSnapshot(cmd.Context()); err != nil {
				return err
			}
			output.New(cmd.OutOrStdout()).Success("snapshot saved to " + cfg.Snapshot.Path)
			return nil
		},
	}
}

func newSnapshotRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file>",
		Short: "Validate a snapshot file and install it",
		Long: `Decode the given snapshot file, verify its integrity, and install it
as the active snapshot. Corrupt or version-mismatched files are
rejected without touching the current snapshot.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			// Restore validates the container before anything is written.
			e, err := engine.New(engineConfig(cfg))
			if err != nil {
				return err
			}
			if err := e.Restore(data); err != nil {
				return err
			}
			if err := e.SaveSnapshot(cmd.Context()); err != nil {
				return err
			}

			out := output.New(cmd.OutOrStdout())
			out.Successf("restored %d files from %s", e.Stats().FilesIndexed, args[0])
			return nil
		},
	}
}
