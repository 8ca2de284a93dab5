// Package search turns raw query strings into ranked file results: a
// filter-grammar parser, a static synonym expander, and the ranker that
// fuses exact, fuzzy, and semantic trie matches with learned interaction
// bonuses.
package search

import (
	"time"

	"github.com/filesift/filesift/internal/index"
)

// MatchType labels how a candidate file was reached from a query term.
type MatchType string

const (
	// MatchExact is a verbatim token hit.
	MatchExact MatchType = "exact"
	// MatchFuzzy is a hit within the edit-distance bound.
	MatchFuzzy MatchType = "fuzzy"
	// MatchSemantic is a hit through the synonym table.
	MatchSemantic MatchType = "semantic"
	// MatchFilter marks results of a filter-only query, where every file
	// passing the predicates matches without any free-text term.
	MatchFilter MatchType = "filter"
)

// Match weights. A candidate's base score is the maximum weight across the
// match types that reached it, never the sum, so a file matching one term
// three ways does not outrank a better single match.
const (
	exactWeight       = 100.0
	fuzzyBaseWeight   = 60.0
	fuzzyDistanceCost = 10.0
	fuzzyFloorWeight  = 10.0
	semanticWeight    = 40.0
	filterWeight      = 30.0
)

// Candidate is one (file, reason) pair produced while matching a single
// query term. Transient; the ranker folds candidates into scored results.
type Candidate struct {
	FileID       string
	MatchType    MatchType
	Distance     int
	MatchedToken string
}

// Weight returns the candidate's contribution before interaction bonuses.
func (c Candidate) Weight() float64 {
	switch c.MatchType {
	case MatchExact:
		return exactWeight
	case MatchFuzzy:
		w := fuzzyBaseWeight - fuzzyDistanceCost*float64(c.Distance)
		if w < fuzzyFloorWeight {
			w = fuzzyFloorWeight
		}
		return w
	case MatchSemantic:
		return semanticWeight
	case MatchFilter:
		return filterWeight
	default:
		return 0
	}
}

// Filters are the structured predicates parsed from @name:value terms.
// Nil fields are absent predicates. All present predicates AND together.
type Filters struct {
	Type     *index.TypeCategory
	Ext      *string
	SizeMin  *int64
	SizeMax  *int64
	DateFrom *time.Time
	DateTo   *time.Time
}

// Empty reports whether no predicate was parsed.
func (f Filters) Empty() bool {
	return f.Type == nil && f.Ext == nil && f.SizeMin == nil && f.SizeMax == nil &&
		f.DateFrom == nil && f.DateTo == nil
}

// Accept applies every present predicate to an entry.
func (f Filters) Accept(e index.Entry) bool {
	if f.Type != nil && e.TypeCategory != *f.Type {
		return false
	}
	if f.Ext != nil && index.NormalizeExtension(e.Extension) != *f.Ext {
		return false
	}
	if f.SizeMin != nil && e.SizeBytes < *f.SizeMin {
		return false
	}
	if f.SizeMax != nil && e.SizeBytes > *f.SizeMax {
		return false
	}
	if f.DateFrom != nil && e.CreatedAt.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && e.CreatedAt.After(*f.DateTo) {
		return false
	}
	return true
}

// Query is the parsed form of a raw query string.
type Query struct {
	// FreeTerms are the lower-cased free-text terms, in input order.
	FreeTerms []string
	// Filters are the structured predicates.
	Filters Filters
	// Degraded is set when at least one @-term failed to parse and was
	// reinserted as free text.
	Degraded bool
	// Raw is the original query string.
	Raw string
}

// Result is one ranked search hit.
type Result struct {
	FileID       string
	Score        float64
	MatchType    MatchType
	MatchedToken string
	Entry        index.Entry
}
