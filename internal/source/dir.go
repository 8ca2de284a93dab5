package source

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	sifterrors "github.com/filesift/filesift/internal/errors"
	"github.com/filesift/filesift/internal/index"
)

// DirSource lists the files under a root directory. The file's path
// relative to the root is its FileID, so repeated scans of the same tree
// produce stable identifiers. Hidden files and directories (dot-prefixed)
// are skipped.
type DirSource struct {
	root string
}

// NewDirSource builds a DirSource over root. The root must exist and be a
// directory; that is checked lazily by List so construction never touches
// the filesystem.
func NewDirSource(root string) *DirSource {
	return &DirSource{root: root}
}

// Root returns the directory being listed.
func (d *DirSource) Root() string { return d.root }

// List walks the root and returns one entry per regular file. Cancellation
// is checked between directory entries.
func (d *DirSource) List(ctx context.Context) ([]index.Entry, error) {
	var entries []index.Entry

	err := filepath.WalkDir(d.root, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}

		name := de.Name()
		if de.IsDir() {
			if path != d.root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !de.Type().IsRegular() {
			return nil
		}

		e, eerr := d.entryFor(path, de)
		if eerr != nil {
			return eerr
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, sifterrors.SourceError("walk "+d.root, err)
	}

	return entries, nil
}

func (d *DirSource) entryFor(path string, de fs.DirEntry) (index.Entry, error) {
	info, err := de.Info()
	if err != nil {
		return index.Entry{}, sifterrors.SourceError("stat "+path, err)
	}

	rel, err := filepath.Rel(d.root, path)
	if err != nil {
		rel = path
	}

	ext := index.NormalizeExtension(filepath.Ext(de.Name()))
	return index.Entry{
		FileID:       filepath.ToSlash(rel),
		Name:         de.Name(),
		Extension:    ext,
		SizeBytes:    info.Size(),
		CreatedAt:    info.ModTime(),
		TypeCategory: index.ClassifyExtension(ext),
	}, nil
}

// Close is a no-op; a DirSource holds no resources between calls.
func (d *DirSource) Close() error { return nil }
