package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filesift/filesift/internal/index"
	"github.com/filesift/filesift/internal/learn"
)

var rankNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// rankFixture wires a trie, entry cache, and ranker over a small corpus of
// files mimicking what the engine holds under its read lock.
type rankFixture struct {
	trie    *index.Trie
	entries map[string]index.Entry
	learner *learn.Store
	ranker  *Ranker
	parser  *Parser
}

func newRankFixture() *rankFixture {
	f := &rankFixture{
		trie:    index.NewTrie(),
		entries: make(map[string]index.Entry),
		learner: learn.NewStore(7),
	}
	f.ranker = NewRanker(index.NewMatcher(2, 0), DefaultSynonyms(), f.learner)
	f.parser = NewParser(func() time.Time { return rankNow })
	return f
}

func (f *rankFixture) add(id, name string, cat index.TypeCategory, size int64, age time.Duration) {
	f.entries[id] = index.Entry{
		FileID:       id,
		Name:         name,
		Extension:    index.NormalizeExtension(extOf(name)),
		SizeBytes:    size,
		CreatedAt:    rankNow.Add(-age),
		TypeCategory: cat,
	}
	for _, tok := range index.Tokenize(name) {
		f.trie.Insert(tok, id)
	}
}

func extOf(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i+1:]
		}
	}
	return ""
}

func (f *rankFixture) search(raw string, limit int) ([]Result, bool) {
	q := f.parser.Parse(raw)
	cands, _ := f.ranker.Gather(f.trie, q.FreeTerms)
	return f.ranker.Rank(q, cands, f.entries, limit, rankNow)
}

func TestRanker_ExactMatch(t *testing.T) {
	// Given: a file whose name tokenizes to "my" and "girl"
	f := newRankFixture()
	f.add("1", "My_girl.mp4", index.TypeVideo, 1<<20, time.Hour)

	// When: searching one of its tokens
	results, _ := f.search("girl", 10)

	// Then: the file comes back as an exact hit at the exact weight
	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].FileID)
	assert.Equal(t, MatchExact, results[0].MatchType)
	assert.InDelta(t, 100, results[0].Score, 0.001)
}

func TestRanker_FuzzyTolerance(t *testing.T) {
	f := newRankFixture()
	f.add("2", "vacation.jpg", index.TypeImage, 1<<20, time.Hour)

	// "vacaton" is one deletion away from "vacation".
	results, _ := f.search("vacaton", 10)

	require.NotEmpty(t, results)
	assert.Equal(t, "2", results[0].FileID)
	assert.Equal(t, MatchFuzzy, results[0].MatchType)
	assert.InDelta(t, 50, results[0].Score, 0.001) // 60 - 10x1
}

func TestRanker_SemanticLinkage(t *testing.T) {
	f := newRankFixture()
	f.add("3", "image_01.png", index.TypeImage, 1<<20, time.Hour)

	// "photo" never appears in the name; the synonym table bridges it.
	results, _ := f.search("photo", 10)

	require.NotEmpty(t, results)
	assert.Equal(t, "3", results[0].FileID)
	assert.Equal(t, MatchSemantic, results[0].MatchType)
}

func TestRanker_ImpliedCategoryBias(t *testing.T) {
	// Given: an image whose name shares no token with any photo synonym
	f := newRankFixture()
	f.add("4", "DSC04712.nef.jpg", index.TypeImage, 1<<20, time.Hour)
	f.add("5", "notes.txt", index.TypeDocument, 1024, time.Hour)

	// When: querying the bare vocabulary word
	results, _ := f.search("photos", 10)

	// Then: the image surfaces semantically, the document does not
	require.Len(t, results, 1)
	assert.Equal(t, "4", results[0].FileID)
	assert.Equal(t, MatchSemantic, results[0].MatchType)
}

func TestRanker_MaxNotSumAcrossMatchTypes(t *testing.T) {
	// A file reachable both exactly and semantically scores the exact
	// weight, not the sum of both contributions.
	f := newRankFixture()
	f.add("6", "image.png", index.TypeImage, 1<<20, time.Hour)

	results, _ := f.search("image", 10)

	require.Len(t, results, 1)
	assert.Equal(t, MatchExact, results[0].MatchType)
	assert.InDelta(t, 100, results[0].Score, 0.001)
}

func TestRanker_FiltersAreHardPredicates(t *testing.T) {
	// Given: two images either side of 1mb and one document
	f := newRankFixture()
	f.add("small", "beach_photo.jpg", index.TypeImage, 512*1024, time.Hour)
	f.add("large", "beach_photo_raw.jpg", index.TypeImage, 8<<20, time.Hour)
	f.add("doc", "beach_notes.txt", index.TypeDocument, 1024, time.Hour)

	// When: filtering on type and size together
	results, _ := f.search("beach @type:image @size:<1mb", 10)

	// Then: only the file passing both predicates remains
	require.Len(t, results, 1)
	assert.Equal(t, "small", results[0].FileID)
}

func TestRanker_FilterOnlyQuery(t *testing.T) {
	f := newRankFixture()
	f.add("a", "clip.mp4", index.TypeVideo, 1<<20, time.Hour)
	f.add("b", "track.mp3", index.TypeAudio, 1<<20, time.Hour)

	results, _ := f.search("@type:video", 10)

	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].FileID)
	assert.Equal(t, MatchFilter, results[0].MatchType)
}

func TestRanker_InteractionBonusRanksHigher(t *testing.T) {
	// Given: two otherwise identical files, one with download history
	f := newRankFixture()
	f.add("cold", "summer_trip_1.jpg", index.TypeImage, 1<<20, time.Hour)
	f.add("hot", "summer_trip_2.jpg", index.TypeImage, 1<<20, time.Hour)
	f.learner.Record("hot", learn.TypeDownloaded, rankNow.Add(-time.Hour))
	f.learner.Record("hot", learn.TypeDownloaded, rankNow.Add(-time.Hour))

	// When: searching a shared token
	results, _ := f.search("summer", 10)

	// Then: the downloaded file scores strictly higher
	require.Len(t, results, 2)
	assert.Equal(t, "hot", results[0].FileID)
	assert.Equal(t, "cold", results[1].FileID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestRanker_TieBreakByCreatedAtThenID(t *testing.T) {
	f := newRankFixture()
	f.add("older", "report_a.pdf", index.TypeDocument, 1024, 48*time.Hour)
	f.add("newer", "report_b.pdf", index.TypeDocument, 1024, time.Hour)

	results, _ := f.search("report", 10)

	// Equal scores: newer CreatedAt wins.
	require.Len(t, results, 2)
	assert.Equal(t, "newer", results[0].FileID)
	assert.Equal(t, "older", results[1].FileID)
}

func TestRanker_LimitTruncates(t *testing.T) {
	f := newRankFixture()
	for _, id := range []string{"1", "2", "3", "4", "5"} {
		f.add(id, "invoice_"+id+".pdf", index.TypeDocument, 1024, time.Hour)
	}

	results, truncated := f.search("invoice", 3)

	assert.Len(t, results, 3)
	assert.True(t, truncated)
}

func TestRanker_ExplicitTypeFilterDisablesImpliedBias(t *testing.T) {
	// "@type:document photos" must not drag images in through the implied
	// category; the explicit filter wins.
	f := newRankFixture()
	f.add("img", "DSC04712.jpg", index.TypeImage, 1<<20, time.Hour)
	f.add("doc", "photos_catalog.pdf", index.TypeDocument, 1024, time.Hour)

	results, _ := f.search("photos @type:document", 10)

	require.Len(t, results, 1)
	assert.Equal(t, "doc", results[0].FileID)
}

func TestRanker_UnknownFileCandidateIgnored(t *testing.T) {
	// A candidate whose id is missing from the cache is skipped, never a
	// panic; the trie and cache can only drift transiently mid-mutation.
	f := newRankFixture()
	f.trie.Insert("ghost", "gone")

	results, _ := f.search("ghost", 10)

	assert.Empty(t, results)
}

func TestGather_TruncationPropagates(t *testing.T) {
	// A one-node budget cannot finish any traversal.
	f := newRankFixture()
	f.add("1", "vacation.jpg", index.TypeImage, 1<<20, time.Hour)
	tight := NewRanker(index.NewMatcher(2, 1), DefaultSynonyms(), f.learner)

	_, truncated := tight.Gather(f.trie, []string{"vacation"})

	assert.True(t, truncated)
}
