package cmd

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	sifterrors "github.com/filesift/filesift/internal/errors"
	"github.com/filesift/filesift/internal/index"
	"github.com/filesift/filesift/internal/output"
	"github.com/filesift/filesift/internal/source"
)

func newWatchCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Watch a directory and index changes live",
		Long: `Watch a directory tree and apply file events to the index as they
happen. The snapshot is saved periodically and on shutdown.

Examples:
  filesift watch
  filesift watch ~/Documents --snapshot-interval 10s`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runWatch(cmd, dir, interval)
		},
	}

	cmd.Flags().DurationVar(&interval, "snapshot-interval", 30*time.Second, "How often to save the snapshot")

	return cmd
}

func runWatch(cmd *cobra.Command, dir string, interval time.Duration) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if dir != "" {
		cfg.Source.Kind = "dir"
		cfg.Source.Root = dir
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e, err := openEngine(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer func() { _ = e.Close() }()

	out := output.New(cmd.OutOrStdout())

	// A cold engine gets an initial build before watching.
	if e.Stats().FilesIndexed == 0 {
		if _, err := e.ReindexAll(ctx); err != nil {
			return err
		}
	}

	window := time.Duration(cfg.Source.DebounceMS) * time.Millisecond
	watcher, err := source.NewFSWatcher(source.NewDirSource(cfg.Source.Root), window, nil)
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}
	defer func() { _ = watcher.Stop() }()

	out.Statusf("👀", "watching %s (ctrl-c to stop)", cfg.Source.Root)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			out.Newline()
			if err := e.SaveSnapshot(cmd.Context()); err != nil {
				return err
			}
			out.Success("snapshot saved")
			return nil

		case <-ticker.C:
			if err := e.SaveSnapshot(ctx); err != nil {
				out.Warningf("snapshot save failed: %v", err)
			}

		case ev, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			if err := applyEvent(e, ev, out); err != nil {
				out.Warningf("apply %s %s: %v", ev.Op, ev.Entry.FileID, err)
			}
		}
	}
}

func applyEvent(e engineSink, ev source.Event, out *output.Writer) error {
	switch ev.Op {
	case source.Created, source.Updated:
		if err := e.Index(ev.Entry); err != nil {
			return err
		}
		out.Statusf("", "%s %s", ev.Op, ev.Entry.FileID)
	case source.Deleted:
		err := e.Remove(ev.Entry.FileID)
		if err != nil && sifterrors.GetCode(err) != sifterrors.ErrCodeUnknownFile {
			return err
		}
		if err == nil {
			out.Statusf("", "deleted %s", ev.Entry.FileID)
		}
	}
	return nil
}

// engineSink is the slice of the engine the watch loop needs; tests
// substitute a recorder.
type engineSink interface {
	Index(entry index.Entry) error
	Remove(fileID string) error
}
