package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/filesift/filesift/internal/engine"
	"github.com/filesift/filesift/internal/index"
	"github.com/filesift/filesift/internal/search"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{512, "512b"},
		{2 << 10, "2.0kb"},
		{3 << 20, "3.0mb"},
		{2 << 30, "2.0gb"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSize(tt.bytes))
	}
}

func TestRenderer_SearchResultPlain(t *testing.T) {
	// Given: one exact hit with a truncated result set
	var buf bytes.Buffer
	r := NewRenderer(&buf, true)

	r.SearchResult(engine.SearchResult{
		Items: []engine.ScoredItem{{
			FileID:    "f1",
			Score:     100,
			MatchType: search.MatchExact,
			Entry: index.Entry{
				Name:         "vacation.jpg",
				TypeCategory: index.TypeImage,
				SizeBytes:    2 << 20,
				CreatedAt:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			},
		}},
		Truncated: true,
	})

	out := buf.String()
	assert.Contains(t, out, "vacation.jpg")
	assert.Contains(t, out, "100.0")
	assert.Contains(t, out, "[exact]")
	assert.Contains(t, out, "2.0mb")
	assert.Contains(t, out, "truncated")
	// A buffer is not a TTY, so no escape codes leak in.
	assert.NotContains(t, out, "\x1b[")
}

func TestRenderer_EmptyResult(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(&buf, true).SearchResult(engine.SearchResult{})

	assert.Contains(t, buf.String(), "no matches")
}

func TestRenderer_DegradedNotice(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(&buf, true).SearchResult(engine.SearchResult{Degraded: true})

	assert.Contains(t, buf.String(), "malformed filter")
}

func TestRenderer_Suggestions(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(&buf, true).Suggestions([]engine.Suggestion{
		{FileID: "f1", Name: "vacation.jpg", TypeCategory: index.TypeImage},
	})

	assert.Contains(t, buf.String(), "vacation.jpg")
	assert.Contains(t, buf.String(), "image")
}

func TestRenderer_Stats(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(&buf, true).Stats(engine.IndexStats{
		FilesIndexed: 3, TokensIndexed: 12, State: engine.StateReady,
	})

	out := buf.String()
	assert.Contains(t, out, "READY")
	assert.Contains(t, out, "3")
	assert.Contains(t, out, "12")
}
