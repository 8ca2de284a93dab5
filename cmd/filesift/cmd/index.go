package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/filesift/filesift/internal/index"
	"github.com/filesift/filesift/internal/output"
)

func newIndexCmd() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "index <file>...",
		Short: "Index one or more files",
		Long: `Index individual files into the search index and save the snapshot.

The file id defaults to the path relative to the configured source root
(falling back to the cleaned path), matching what a full reindex would
assign.

Examples:
  filesift index photos/vacation.jpg
  filesift index report.pdf --id custom-id`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if id != "" && len(args) > 1 {
				return cmd.Help()
			}
			return runIndex(cmd, args, id)
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Explicit file id (single file only)")

	return cmd
}

func runIndex(cmd *cobra.Command, paths []string, explicitID string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	e, err := openEngine(cmd.Context(), cfg, nil)
	if err != nil {
		return err
	}
	defer func() { _ = e.Close() }()

	out := output.New(cmd.OutOrStdout())
	for _, path := range paths {
		entry, err := entryFromPath(path, cfg.Source.Root)
		if err != nil {
			return err
		}
		if explicitID != "" {
			entry.FileID = explicitID
		}
		if err := e.Index(entry); err != nil {
			return err
		}
		out.Successf("indexed %s (id %s)", entry.Name, entry.FileID)
	}

	return e.SaveSnapshot(cmd.Context())
}

// entryFromPath builds an index entry from a file on disk.
func entryFromPath(path, root string) (index.Entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return index.Entry{}, err
	}

	fileID := filepath.Clean(path)
	if rel, err := filepath.Rel(root, path); err == nil && !filepath.IsAbs(rel) && rel != ".." && !isOutside(rel) {
		fileID = rel
	}

	ext := index.NormalizeExtension(filepath.Ext(path))
	return index.Entry{
		FileID:       filepath.ToSlash(fileID),
		Name:         filepath.Base(path),
		Extension:    ext,
		SizeBytes:    info.Size(),
		CreatedAt:    info.ModTime(),
		TypeCategory: index.ClassifyExtension(ext),
	}, nil
}

func isOutside(rel string) bool {
	return rel == ".." || len(rel) > 2 && rel[:3] == "../"
}
