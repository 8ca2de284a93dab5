package source

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filesift/filesift/internal/index"
)

func newCatalog(t *testing.T) *SQLiteSource {
	t.Helper()
	src, err := NewSQLiteSource(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = src.Close() })
	require.NoError(t, src.CreateSchema(context.Background()))
	return src
}

func TestSQLiteSource_RoundTrip(t *testing.T) {
	// Given: a catalog with one fully populated row
	src := newCatalog(t)
	created := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, src.Upsert(context.Background(), index.Entry{
		FileID:       "f1",
		Name:         "My_girl.mp4",
		Extension:    "MP4",
		SizeBytes:    42 << 20,
		CreatedAt:    created,
		TypeCategory: index.TypeVideo,
		Tags:         []string{"family", "2026"},
		Description:  "birthday clip",
	}))

	// When: listing
	entries, err := src.List(context.Background())
	require.NoError(t, err)

	// Then: the entry survives with a normalized extension
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "f1", e.FileID)
	assert.Equal(t, "mp4", e.Extension)
	assert.Equal(t, index.TypeVideo, e.TypeCategory)
	assert.True(t, e.CreatedAt.Equal(created))
	assert.Equal(t, []string{"family", "2026"}, e.Tags)
}

func TestSQLiteSource_SkipsSoftDeletedRows(t *testing.T) {
	src := newCatalog(t)
	ctx := context.Background()
	require.NoError(t, src.Upsert(ctx, index.Entry{FileID: "keep", Name: "keep.txt"}))
	require.NoError(t, src.Upsert(ctx, index.Entry{FileID: "gone", Name: "gone.txt"}))
	require.NoError(t, src.SoftDelete(ctx, "gone"))

	entries, err := src.List(ctx)
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, "keep", entries[0].FileID)
}

func TestSQLiteSource_UpsertRevivesDeletedRow(t *testing.T) {
	src := newCatalog(t)
	ctx := context.Background()
	require.NoError(t, src.Upsert(ctx, index.Entry{FileID: "f1", Name: "old.txt"}))
	require.NoError(t, src.SoftDelete(ctx, "f1"))

	// Re-upserting the same file id clears the tombstone.
	require.NoError(t, src.Upsert(ctx, index.Entry{FileID: "f1", Name: "new.txt"}))

	entries, err := src.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "new.txt", entries[0].Name)
}

func TestSQLiteSource_UnknownTypeFallsBackToExtension(t *testing.T) {
	src := newCatalog(t)
	ctx := context.Background()
	require.NoError(t, src.Upsert(ctx, index.Entry{
		FileID: "f1", Name: "chart.png", Extension: "png", TypeCategory: "bogus",
	}))

	entries, err := src.List(ctx)
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, index.TypeImage, entries[0].TypeCategory)
}
