package snapshot

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	sifterrors "github.com/filesift/filesift/internal/errors"
)

// Manager owns the snapshot file: atomic writes under a cross-process
// advisory lock, load with corruption detection, and discard. Concurrent
// CLI invocations serialize on the lock so writers never interleave.
type Manager struct {
	path   string
	lock   *flock.Flock
	logger *slog.Logger
}

// NewManager builds a Manager for the given snapshot path. A nil logger
// discards log output.
func NewManager(path string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logger,
	}
}

// Path returns the snapshot file location.
func (m *Manager) Path() string { return m.path }

// Save writes the encoded snapshot atomically: temp file in the same
// directory, fsync, rename. The advisory lock is held for the duration so a
// concurrent Save from another process cannot interleave.
func (m *Manager) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return sifterrors.SnapshotError("create snapshot directory", err).WithDetail("path", dir)
	}

	if err := m.lock.Lock(); err != nil {
		return sifterrors.New(sifterrors.ErrCodeSnapshotLocked, "acquire snapshot lock", err)
	}
	defer func() { _ = m.lock.Unlock() }()

	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return sifterrors.SnapshotError("create temp snapshot", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return sifterrors.SnapshotError("write snapshot", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return sifterrors.SnapshotError("sync snapshot", err)
	}
	if err := tmp.Close(); err != nil {
		return sifterrors.SnapshotError("close snapshot", err)
	}

	if err := os.Rename(tmpName, m.path); err != nil {
		return sifterrors.SnapshotError("publish snapshot", err)
	}

	m.logger.Debug("snapshot_saved", slog.String("path", m.path), slog.Int("bytes", len(data)))
	return nil
}

// Load reads and decodes the snapshot. A missing file returns
// ErrCodeSnapshotNotFound. Any corruption discards the file on disk and
// returns ErrCodeCorruptSnapshot so the caller rebuilds from source instead
// of loading partial state.
func (m *Manager) Load(ctx context.Context) (*State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, sifterrors.New(sifterrors.ErrCodeSnapshotNotFound, "no snapshot at "+m.path, err)
		}
		return nil, sifterrors.SnapshotError("read snapshot", err)
	}

	state, err := Decode(data)
	if err != nil {
		m.logger.Warn("snapshot_corrupt",
			slog.String("path", m.path),
			slog.String("reason", err.Error()))
		m.Discard()
		return nil, sifterrors.CorruptSnapshotError(err.Error(), err).WithDetail("path", m.path)
	}

	m.logger.Debug("snapshot_loaded",
		slog.String("path", m.path),
		slog.Int("tokens", len(state.TokenPostings)),
		slog.Int("entries", len(state.Entries)))
	return state, nil
}

// Discard removes the snapshot file. Missing files are fine; discard is
// called on corruption where the file may already be half gone.
func (m *Manager) Discard() {
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		m.logger.Warn("snapshot_discard_failed", slog.String("path", m.path), slog.String("error", err.Error()))
	}
}

// Exists reports whether a snapshot file is present on disk.
func (m *Manager) Exists() bool {
	info, err := os.Stat(m.path)
	return err == nil && !info.IsDir()
}
