package search

import (
	"sort"
	"time"

	"github.com/filesift/filesift/internal/index"
	"github.com/filesift/filesift/internal/learn"
)

// Ranker fuses trie matches, structured filters, and learned interaction
// bonuses into the final ordered result list. It holds no index state of its
// own; the engine hands it the trie and metadata cache under its read lock.
type Ranker struct {
	matcher  *index.Matcher
	synonyms *Synonyms
	learner  *learn.Store
}

// NewRanker builds a Ranker over the given matcher, synonym table, and
// learning store.
func NewRanker(matcher *index.Matcher, synonyms *Synonyms, learner *learn.Store) *Ranker {
	return &Ranker{matcher: matcher, synonyms: synonyms, learner: learner}
}

// Gather collects match candidates for every free term: exact postings for
// the term itself, fuzzy postings within the edit bound, and exact postings
// for each synonym expansion tagged semantic. The truncation flag is set
// when any fuzzy traversal ran out of node budget.
//
// Candidate order is deterministic: terms in query order, posting sets
// sorted, fuzzy matches lexicographic. Rank relies on that to break weight
// ties stably.
func (r *Ranker) Gather(t *index.Trie, terms []string) ([]Candidate, bool) {
	var cands []Candidate
	truncated := false

	for _, term := range terms {
		for _, id := range t.Lookup(term) {
			cands = append(cands, Candidate{FileID: id, MatchType: MatchExact, MatchedToken: term})
		}

		matches, cut := r.matcher.Search(t, term)
		if cut {
			truncated = true
		}
		for _, m := range matches {
			if m.Distance == 0 {
				// Distance zero is the exact hit collected above.
				continue
			}
			for _, id := range t.Lookup(m.Token) {
				cands = append(cands, Candidate{
					FileID:       id,
					MatchType:    MatchFuzzy,
					Distance:     m.Distance,
					MatchedToken: m.Token,
				})
			}
		}

		for _, syn := range r.synonyms.Expand(term) {
			for _, id := range t.Lookup(syn) {
				cands = append(cands, Candidate{FileID: id, MatchType: MatchSemantic, MatchedToken: syn})
			}
		}
	}

	return cands, truncated
}

// Rank folds candidates into scored results: filters apply as hard AND
// predicates, the base score is the maximum contributing match weight (never
// the sum), and the interaction bonus decays linearly over the learning
// window. Results sort by score descending, then CreatedAt descending, then
// FileID ascending; the second return reports whether the limit cut the
// list short.
func (r *Ranker) Rank(q Query, cands []Candidate, entries map[string]index.Entry, limit int, now time.Time) ([]Result, bool) {
	cands = r.expandImplied(q, cands, entries)

	// A filter-only query matches every file; the predicates decide.
	if len(q.FreeTerms) == 0 && !q.Filters.Empty() {
		for _, id := range sortedIDs(entries) {
			cands = append(cands, Candidate{FileID: id, MatchType: MatchFilter})
		}
	}

	best := make(map[string]Candidate)
	for _, c := range cands {
		entry, ok := entries[c.FileID]
		if !ok || !q.Filters.Accept(entry) {
			continue
		}
		if cur, seen := best[c.FileID]; !seen || c.Weight() > cur.Weight() {
			best[c.FileID] = c
		}
	}

	results := make([]Result, 0, len(best))
	for id, c := range best {
		results = append(results, Result{
			FileID:       id,
			Score:        c.Weight() + r.learner.BonusFor(id, now),
			MatchType:    c.MatchType,
			MatchedToken: c.MatchedToken,
			Entry:        entries[id],
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if !results[i].Entry.CreatedAt.Equal(results[j].Entry.CreatedAt) {
			return results[i].Entry.CreatedAt.After(results[j].Entry.CreatedAt)
		}
		return results[i].FileID < results[j].FileID
	})

	truncated := false
	if limit > 0 && len(results) > limit {
		results = results[:limit]
		truncated = true
	}
	return results, truncated
}

// expandImplied adds semantic candidates for files whose category a bare
// vocabulary term implies, so "photos" surfaces image files even when no
// filename token matches. Skipped when the query already carries an
// explicit @type filter.
func (r *Ranker) expandImplied(q Query, cands []Candidate, entries map[string]index.Entry) []Candidate {
	if q.Filters.Type != nil {
		return cands
	}
	for _, term := range q.FreeTerms {
		cat, ok := r.synonyms.ImpliedCategory(term)
		if !ok {
			continue
		}
		for _, id := range sortedIDs(entries) {
			if entries[id].TypeCategory == cat {
				cands = append(cands, Candidate{FileID: id, MatchType: MatchSemantic, MatchedToken: term})
			}
		}
	}
	return cands
}

func sortedIDs(entries map[string]index.Entry) []string {
	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
