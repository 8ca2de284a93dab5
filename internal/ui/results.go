package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/filesift/filesift/internal/engine"
	"github.com/filesift/filesift/internal/search"
)

// Renderer writes human-readable engine output.
type Renderer struct {
	out    io.Writer
	styles Styles
}

// NewRenderer builds a renderer for out. Color is enabled only when out is
// a real terminal and noColor is false.
func NewRenderer(out io.Writer, noColor bool) *Renderer {
	return &Renderer{
		out:    out,
		styles: GetStyles(noColor || !isTerminal(out)),
	}
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SearchResult prints ranked hits, one line per file, with score and match
// type, followed by truncation and degradation notices.
func (r *Renderer) SearchResult(res engine.SearchResult) {
	if len(res.Items) == 0 {
		fmt.Fprintln(r.out, r.styles.Meta.Render("no matches"))
	}
	for i, item := range res.Items {
		fmt.Fprintf(r.out, "%2d. %s  %s  %s%s\n",
			i+1,
			r.styles.Name.Render(item.Entry.Name),
			r.styles.Score.Render(fmt.Sprintf("%.1f", item.Score)),
			r.matchTag(item.MatchType),
			r.styles.Meta.Render("  "+r.metaLine(item)),
		)
	}
	if res.Truncated {
		fmt.Fprintln(r.out, r.styles.Warning.Render("results truncated (search bound reached)"))
	}
	if res.Degraded {
		fmt.Fprintln(r.out, r.styles.Warning.Render("note: a malformed filter was treated as free text"))
	}
}

func (r *Renderer) matchTag(mt search.MatchType) string {
	label := "[" + string(mt) + "]"
	switch mt {
	case search.MatchExact:
		return r.styles.Exact.Render(label)
	case search.MatchFuzzy:
		return r.styles.Fuzzy.Render(label)
	case search.MatchSemantic:
		return r.styles.Semantic.Render(label)
	default:
		return r.styles.Filter.Render(label)
	}
}

func (r *Renderer) metaLine(item engine.ScoredItem) string {
	parts := []string{item.FileID, string(item.Entry.TypeCategory), FormatSize(item.Entry.SizeBytes)}
	if !item.Entry.CreatedAt.IsZero() {
		parts = append(parts, item.Entry.CreatedAt.Format("2006-01-02"))
	}
	return strings.Join(parts, " · ")
}

// Suggestions prints prefix completions.
func (r *Renderer) Suggestions(suggestions []engine.Suggestion) {
	if len(suggestions) == 0 {
		fmt.Fprintln(r.out, r.styles.Meta.Render("no suggestions"))
		return
	}
	for _, s := range suggestions {
		fmt.Fprintf(r.out, "%s  %s\n",
			r.styles.Name.Render(s.Name),
			r.styles.Meta.Render(s.FileID+" · "+string(s.TypeCategory)))
	}
}

// Stats prints the index statistics block.
func (r *Renderer) Stats(stats engine.IndexStats) {
	row := func(label string, value any) {
		fmt.Fprintf(r.out, "%s %v\n", r.styles.Label.Render(fmt.Sprintf("%-18s", label)), value)
	}
	row("state", stats.State)
	row("files indexed", stats.FilesIndexed)
	row("tokens indexed", stats.TokensIndexed)
	row("trie nodes", stats.TrieNodes)
	row("interactions", stats.Interactions)
	row("searches", stats.SearchesRecorded)
}

// Rebuild prints a reindex summary.
func (r *Renderer) Rebuild(stats engine.RebuildStats) {
	fmt.Fprintf(r.out, "reindexed %d files (%d tokens) in %s\n",
		stats.FilesIndexed, stats.TokensIndexed, stats.Duration.Round(time.Millisecond))
}

// FormatSize renders a byte count in the unit the size filter grammar
// uses, so output and queries speak the same language.
func FormatSize(bytes int64) string {
	const (
		kb = 1 << 10
		mb = 1 << 20
		gb = 1 << 30
	)
	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1fgb", float64(bytes)/gb)
	case bytes >= mb:
		return fmt.Sprintf("%.1fmb", float64(bytes)/mb)
	case bytes >= kb:
		return fmt.Sprintf("%.1fkb", float64(bytes)/kb)
	default:
		return fmt.Sprintf("%db", bytes)
	}
}
