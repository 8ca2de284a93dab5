package index

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrie_InsertAndLookup(t *testing.T) {
	// Given: a trie with two tokens sharing a prefix
	tr := NewTrie()
	tr.Insert("vacation", "f1")
	tr.Insert("vacations", "f2")

	// Then: each exact token resolves to its own posting set
	assert.Equal(t, []string{"f1"}, tr.Lookup("vacation"))
	assert.Equal(t, []string{"f2"}, tr.Lookup("vacations"))
	assert.Nil(t, tr.Lookup("vacat"))
	assert.Equal(t, 2, tr.TokenCount())
}

func TestTrie_InsertIdempotent(t *testing.T) {
	// Inserting the same token/file pair twice must leave the posting set
	// and node count identical to a single insert.
	tr := NewTrie()
	tr.Insert("report", "f1")
	nodes := tr.NodeCount()

	tr.Insert("report", "f1")

	assert.Equal(t, []string{"f1"}, tr.Lookup("report"))
	assert.Equal(t, nodes, tr.NodeCount())
	assert.Equal(t, 1, tr.TokenCount())
}

func TestTrie_MultiplePostingsPerToken(t *testing.T) {
	tr := NewTrie()
	tr.Insert("report", "f2")
	tr.Insert("report", "f1")
	tr.Insert("report", "f3")

	// Postings come back sorted regardless of insert order.
	assert.Equal(t, []string{"f1", "f2", "f3"}, tr.Lookup("report"))
}

func TestTrie_RemovePrunesEmptyBranches(t *testing.T) {
	// Given: one long token from a single file
	tr := NewTrie()
	tr.Insert("screenshot", "f1")
	require.Equal(t, len("screenshot"), tr.NodeCount())

	// When: the only posting is removed
	tr.Remove("screenshot", "f1")

	// Then: the whole branch is gone, not just the posting
	assert.Nil(t, tr.Lookup("screenshot"))
	assert.Equal(t, 0, tr.NodeCount())
	assert.Equal(t, 0, tr.TokenCount())
}

func TestTrie_RemoveKeepsSharedPrefixAlive(t *testing.T) {
	// Given: "car" and "cart" share a branch
	tr := NewTrie()
	tr.Insert("car", "f1")
	tr.Insert("cart", "f2")

	// When: the longer token is removed
	tr.Remove("cart", "f2")

	// Then: pruning stops at the surviving end node
	assert.Equal(t, []string{"f1"}, tr.Lookup("car"))
	assert.Nil(t, tr.Lookup("cart"))
	assert.Equal(t, 3, tr.NodeCount())
}

func TestTrie_RemoveInteriorToken(t *testing.T) {
	// Removing "car" while "cart" survives must clear the end marker but
	// keep the branch intact for the longer token.
	tr := NewTrie()
	tr.Insert("car", "f1")
	tr.Insert("cart", "f2")

	tr.Remove("car", "f1")

	assert.Nil(t, tr.Lookup("car"))
	assert.Equal(t, []string{"f2"}, tr.Lookup("cart"))
	assert.Equal(t, 4, tr.NodeCount())
}

func TestTrie_RemoveAbsentPairIsNoOp(t *testing.T) {
	tr := NewTrie()
	tr.Insert("photo", "f1")

	tr.Remove("photo", "f9")
	tr.Remove("missing", "f1")

	assert.Equal(t, []string{"f1"}, tr.Lookup("photo"))
	assert.Equal(t, 1, tr.TokenCount())
}

func TestTrie_RemoveOnlyTargetPosting(t *testing.T) {
	tr := NewTrie()
	tr.Insert("photo", "f1")
	tr.Insert("photo", "f2")

	tr.Remove("photo", "f1")

	assert.Equal(t, []string{"f2"}, tr.Lookup("photo"))
}

func TestTrie_PrefixSearch(t *testing.T) {
	// Given: several tokens under the "vac" prefix and one outside it
	tr := NewTrie()
	tr.Insert("vacation", "f1")
	tr.Insert("vacations", "f2")
	tr.Insert("vacancy", "f3")
	tr.Insert("video", "f4")

	// When: searching the shared prefix
	ids, truncated := tr.PrefixSearch("vac", 0)

	// Then: all files under the prefix are found, lexicographic token order
	assert.False(t, truncated)
	assert.Equal(t, []string{"f3", "f1", "f2"}, ids)
}

func TestTrie_PrefixSearch_CapTruncates(t *testing.T) {
	// Given: more matching files than the cap allows
	tr := NewTrie()
	for i := 0; i < 20; i++ {
		tr.Insert(fmt.Sprintf("report%02d", i), fmt.Sprintf("f%02d", i))
	}

	// When: capping at 5
	ids, truncated := tr.PrefixSearch("report", 5)

	// Then: exactly cap ids, flagged truncated, deterministic order
	require.Len(t, ids, 5)
	assert.True(t, truncated)
	assert.Equal(t, []string{"f00", "f01", "f02", "f03", "f04"}, ids)
}

func TestTrie_PrefixSearch_DeduplicatesAcrossTokens(t *testing.T) {
	// One file reachable through two completions must count once.
	tr := NewTrie()
	tr.Insert("report", "f1")
	tr.Insert("reports", "f1")

	ids, truncated := tr.PrefixSearch("rep", 0)

	assert.False(t, truncated)
	assert.Equal(t, []string{"f1"}, ids)
}

func TestTrie_PrefixSearch_MissingPrefix(t *testing.T) {
	tr := NewTrie()
	tr.Insert("photo", "f1")

	ids, truncated := tr.PrefixSearch("xyz", 0)

	assert.Empty(t, ids)
	assert.False(t, truncated)
}

func TestTrie_WalkTokens_SortedAndComplete(t *testing.T) {
	tr := NewTrie()
	tr.Insert("cherry", "f3")
	tr.Insert("apple", "f1")
	tr.Insert("banana", "f2")
	tr.Insert("apple", "f2")

	var tokens []string
	postings := make(map[string][]string)
	tr.WalkTokens(func(token string, ids []string) bool {
		tokens = append(tokens, token)
		postings[token] = ids
		return true
	})

	assert.Equal(t, []string{"apple", "banana", "cherry"}, tokens)
	assert.Equal(t, []string{"f1", "f2"}, postings["apple"])
}

func TestTrie_WalkTokens_StopsEarly(t *testing.T) {
	tr := NewTrie()
	tr.Insert("a", "f1")
	tr.Insert("b", "f2")

	count := 0
	tr.WalkTokens(func(string, []string) bool {
		count++
		return false
	})

	assert.Equal(t, 1, count)
}

func TestTrie_UnicodeTokens(t *testing.T) {
	tr := NewTrie()
	tr.Insert("ファイル", "f1")

	assert.Equal(t, []string{"f1"}, tr.Lookup("ファイル"))

	tr.Remove("ファイル", "f1")
	assert.Equal(t, 0, tr.NodeCount())
}
