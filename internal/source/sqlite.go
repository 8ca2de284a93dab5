package source

import (
	"context"
	"database/sql"
	"strings"
	"time"

	sifterrors "github.com/filesift/filesift/internal/errors"
	"github.com/filesift/filesift/internal/index"
)

// filesSchema is the catalog table a SQLiteSource reads. CreateSchema
// applies it so tests and fresh installs can seed a catalog; production
// catalogs are written by whatever system owns the files.
const filesSchema = `
CREATE TABLE IF NOT EXISTS files (
    file_id     TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    extension   TEXT NOT NULL DEFAULT '',
    size_bytes  INTEGER NOT NULL DEFAULT 0,
    created_at  INTEGER NOT NULL DEFAULT 0,
    type        TEXT NOT NULL DEFAULT '',
    tags        TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    is_deleted  INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_files_deleted ON files(is_deleted);
`

// SQLiteSource reads the catalog from a `files` table. Soft-deleted rows
// (is_deleted != 0) are skipped so the engine never indexes tombstones.
type SQLiteSource struct {
	db *sql.DB
}

// NewSQLiteSource opens the catalog database. WAL mode and a busy timeout
// are applied so the engine can read while the owning system writes.
func NewSQLiteSource(dsn string) (*SQLiteSource, error) {
	db, err := sql.Open(sqliteDriver, dsn)
	if err != nil {
		return nil, sifterrors.SourceError("open catalog "+dsn, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, sifterrors.SourceError("apply "+p, err)
		}
	}

	return &SQLiteSource{db: db}, nil
}

// CreateSchema creates the files table if it does not exist.
func (s *SQLiteSource) CreateSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, filesSchema); err != nil {
		return sifterrors.SourceError("create catalog schema", err)
	}
	return nil
}

// Upsert inserts or replaces one catalog row. Used by tests and by tooling
// that seeds a catalog.
func (s *SQLiteSource) Upsert(ctx context.Context, e index.Entry) error {
	var createdNs int64
	if !e.CreatedAt.IsZero() {
		createdNs = e.CreatedAt.UnixNano()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO files (file_id, name, extension, size_bytes, created_at, type, tags, description, is_deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(file_id) DO UPDATE SET
			name = excluded.name,
			extension = excluded.extension,
			size_bytes = excluded.size_bytes,
			created_at = excluded.created_at,
			type = excluded.type,
			tags = excluded.tags,
			description = excluded.description,
			is_deleted = 0`,
		e.FileID, e.Name, index.NormalizeExtension(e.Extension), e.SizeBytes,
		createdNs, string(e.TypeCategory),
		strings.Join(e.Tags, ","), e.Description)
	if err != nil {
		return sifterrors.SourceError("upsert "+e.FileID, err)
	}
	return nil
}

// SoftDelete marks a row deleted without removing it, matching how the
// owning system tombstones files.
func (s *SQLiteSource) SoftDelete(ctx context.Context, fileID string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE files SET is_deleted = 1 WHERE file_id = ?`, fileID)
	if err != nil {
		return sifterrors.SourceError("soft-delete "+fileID, err)
	}
	return nil
}

// List returns every live catalog row.
func (s *SQLiteSource) List(ctx context.Context) ([]index.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT file_id, name, extension, size_bytes, created_at, type, tags, description
		FROM files WHERE is_deleted = 0 ORDER BY file_id`)
	if err != nil {
		return nil, sifterrors.SourceError("query catalog", err)
	}
	defer rows.Close()

	var entries []index.Entry
	for rows.Next() {
		var (
			e         index.Entry
			createdNs int64
			typ, tags string
		)
		if err := rows.Scan(&e.FileID, &e.Name, &e.Extension, &e.SizeBytes,
			&createdNs, &typ, &tags, &e.Description); err != nil {
			return nil, sifterrors.SourceError("scan catalog row", err)
		}
		if createdNs != 0 {
			e.CreatedAt = time.Unix(0, createdNs).UTC()
		}
		if cat, ok := index.ParseTypeCategory(typ); ok {
			e.TypeCategory = cat
		} else {
			e.TypeCategory = index.ClassifyExtension(e.Extension)
		}
		if tags != "" {
			e.Tags = strings.Split(tags, ",")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, sifterrors.SourceError("iterate catalog", err)
	}

	return entries, nil
}

// Close releases the database handle.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}
