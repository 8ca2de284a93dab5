// Package source provides metadata sources for the engine: a directory
// walker, a SQLite-backed catalog reader, and an fsnotify watcher that
// turns filesystem activity into index events.
package source

import (
	"context"

	"github.com/filesift/filesift/internal/index"
)

// MetadataSource enumerates the files the engine should index. List returns
// the full current catalog; incremental updates arrive through a Watcher.
type MetadataSource interface {
	List(ctx context.Context) ([]index.Entry, error)
	Close() error
}

// Op is the kind of change a watcher observed.
type Op int

const (
	// Created means a file appeared.
	Created Op = iota
	// Updated means an existing file's metadata changed.
	Updated
	// Deleted means a file is gone.
	Deleted
)

func (op Op) String() string {
	switch op {
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Event is one observed change. For Deleted events only Entry.FileID is
// populated; the file no longer exists to stat.
type Event struct {
	Op    Op
	Entry index.Entry
}
