// Package engine is the facade over the filesift core: it owns the trie
// index, metadata cache, query pipeline, learning store, and snapshot
// manager, and exposes the operations the CLI consumes.
package engine

import (
	"time"

	"github.com/filesift/filesift/internal/index"
	"github.com/filesift/filesift/internal/search"
)

// State is the engine lifecycle state.
type State string

const (
	// StateUninitialized means no index has been built or loaded yet.
	StateUninitialized State = "UNINITIALIZED"
	// StateRebuilding means a full reindex is in flight. Searches keep
	// serving the previous index.
	StateRebuilding State = "REBUILDING"
	// StateReady means the index is serving.
	StateReady State = "READY"
)

// Config carries the engine tuning knobs. Zero values are replaced by
// defaults, so Config{} is usable.
type Config struct {
	// FuzzyDistance is the maximum edit distance for fuzzy matches.
	FuzzyDistance int
	// NodeBudget caps trie nodes visited per fuzzy term.
	NodeBudget int
	// PrefixCap caps prefix-search fan-out.
	PrefixCap int
	// MaxResults clamps the caller's search limit.
	MaxResults int
	// DecayWindowDays is the interaction recency window.
	DecayWindowDays int
	// CacheSize is the query-result LRU capacity.
	CacheSize int
	// BatchSize is the reindex pipeline batch size.
	BatchSize int
	// SnapshotPath is the snapshot file location; empty disables
	// file-backed persistence.
	SnapshotPath string
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		FuzzyDistance:   2,
		NodeBudget:      50000,
		PrefixCap:       500,
		MaxResults:      100,
		DecayWindowDays: 7,
		CacheSize:       256,
		BatchSize:       64,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.FuzzyDistance <= 0 {
		c.FuzzyDistance = def.FuzzyDistance
	}
	if c.NodeBudget <= 0 {
		c.NodeBudget = def.NodeBudget
	}
	if c.PrefixCap <= 0 {
		c.PrefixCap = def.PrefixCap
	}
	if c.MaxResults <= 0 {
		c.MaxResults = def.MaxResults
	}
	if c.DecayWindowDays <= 0 {
		c.DecayWindowDays = def.DecayWindowDays
	}
	if c.CacheSize <= 0 {
		c.CacheSize = def.CacheSize
	}
	if c.BatchSize <= 0 {
		c.BatchSize = def.BatchSize
	}
	return c
}

// ScoredItem is one ranked search hit.
type ScoredItem struct {
	FileID       string
	Score        float64
	MatchType    search.MatchType
	MatchedToken string
	Entry        index.Entry
}

// SearchResult is the outcome of one Search call.
type SearchResult struct {
	// Items are the ranked hits, best first.
	Items []ScoredItem
	// Truncated is set when a search bound was hit (fuzzy node budget or
	// result limit); the results are valid but possibly incomplete.
	Truncated bool
	// Degraded is set when a malformed filter term was demoted to free
	// text.
	Degraded bool
}

// Suggestion is one prefix completion.
type Suggestion struct {
	FileID       string
	Name         string
	TypeCategory index.TypeCategory
	Score        float64
	MatchType    search.MatchType
}

// RebuildStats summarizes a completed ReindexAll.
type RebuildStats struct {
	FilesIndexed  int
	TokensIndexed int
	Duration      time.Duration
}

// IndexStats is the point-in-time view returned by Stats.
type IndexStats struct {
	FilesIndexed     int
	TokensIndexed    int
	TrieNodes        int
	Interactions     int
	SearchesRecorded int64
	State            State
}
