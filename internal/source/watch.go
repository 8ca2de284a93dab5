package source

import (
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	sifterrors "github.com/filesift/filesift/internal/errors"
	"github.com/filesift/filesift/internal/index"
)

// FSWatcher watches a DirSource root and emits debounced index events.
// Raw fsnotify events for the same path within the debounce window are
// coalesced so an editor's create/write/rename burst becomes one event:
//
//   - create then write  = created (file is still new)
//   - create then remove = nothing (file never really existed)
//   - write then remove  = deleted
//   - remove then create = updated (file was replaced)
type FSWatcher struct {
	dir      *DirSource
	notifier *fsnotify.Watcher
	window   time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]Event
	timer   *time.Timer
	stopped bool

	events chan Event
	done   chan struct{}
}

// NewFSWatcher builds a watcher over the DirSource's root with the given
// debounce window. Start must be called before events flow.
func NewFSWatcher(dir *DirSource, window time.Duration, logger *slog.Logger) (*FSWatcher, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, sifterrors.SourceError("create fs watcher", err)
	}
	return &FSWatcher{
		dir:      dir,
		notifier: notifier,
		window:   window,
		logger:   logger,
		pending:  make(map[string]Event),
		events:   make(chan Event, 64),
		done:     make(chan struct{}),
	}, nil
}

// Start registers the root (recursively) and begins translating events.
func (w *FSWatcher) Start() error {
	if err := w.addRecursive(w.dir.Root()); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Events returns the debounced event stream. It is closed by Stop.
func (w *FSWatcher) Events() <-chan Event { return w.events }

// Stop tears down the watcher and closes the event channel. Pending
// debounced events are dropped.
func (w *FSWatcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.notifier.Close()
	<-w.done
	close(w.events)
	return err
}

func (w *FSWatcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return sifterrors.SourceError("watch "+path, err)
		}
		if !de.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(de.Name(), ".") {
			return filepath.SkipDir
		}
		if werr := w.notifier.Add(path); werr != nil {
			return sifterrors.SourceError("watch "+path, werr)
		}
		return nil
	})
}

func (w *FSWatcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.notifier.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.notifier.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher_error", slog.String("error", err.Error()))
		}
	}
}

func (w *FSWatcher) handle(ev fsnotify.Event) {
	name := filepath.Base(ev.Name)
	if strings.HasPrefix(name, ".") {
		return
	}

	// New directories need to be registered; their files arrive as
	// separate create events.
	if ev.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			_ = w.addRecursive(ev.Name)
			return
		}
	}

	var next Event
	switch {
	case ev.Op.Has(fsnotify.Create):
		e, ok := w.statEntry(ev.Name)
		if !ok {
			return
		}
		next = Event{Op: Created, Entry: e}
	case ev.Op.Has(fsnotify.Write):
		e, ok := w.statEntry(ev.Name)
		if !ok {
			return
		}
		next = Event{Op: Updated, Entry: e}
	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		next = Event{Op: Deleted, Entry: index.Entry{FileID: w.fileID(ev.Name)}}
	default:
		return
	}

	w.enqueue(next)
}

func (w *FSWatcher) statEntry(path string) (index.Entry, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return index.Entry{}, false
	}
	ext := index.NormalizeExtension(filepath.Ext(path))
	return index.Entry{
		FileID:       w.fileID(path),
		Name:         filepath.Base(path),
		Extension:    ext,
		SizeBytes:    info.Size(),
		CreatedAt:    info.ModTime(),
		TypeCategory: index.ClassifyExtension(ext),
	}, true
}

func (w *FSWatcher) fileID(path string) string {
	rel, err := filepath.Rel(w.dir.Root(), path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (w *FSWatcher) enqueue(ev Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}

	id := ev.Entry.FileID
	if prev, ok := w.pending[id]; ok {
		merged, keep := coalesce(prev, ev)
		if !keep {
			delete(w.pending, id)
		} else {
			w.pending[id] = merged
		}
	} else {
		w.pending[id] = ev
	}

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.window, w.flush)
}

func coalesce(prev, next Event) (Event, bool) {
	switch {
	case prev.Op == Created && next.Op == Updated:
		next.Op = Created
		return next, true
	case prev.Op == Created && next.Op == Deleted:
		return Event{}, false
	case prev.Op == Deleted && next.Op == Created:
		next.Op = Updated
		return next, true
	default:
		return next, true
	}
}

// flush publishes pending events. The send happens under the mutex so Stop
// cannot close the channel mid-send; the channel is buffered and events are
// dropped rather than blocking when the consumer falls behind.
func (w *FSWatcher) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	batch := make([]Event, 0, len(w.pending))
	for _, ev := range w.pending {
		batch = append(batch, ev)
	}
	w.pending = make(map[string]Event)

	for _, ev := range batch {
		select {
		case w.events <- ev:
		default:
			w.logger.Warn("watcher_event_dropped",
				slog.String("file_id", ev.Entry.FileID),
				slog.String("op", ev.Op.String()))
		}
	}
}
