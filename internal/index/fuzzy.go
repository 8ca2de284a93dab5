package index

// DefaultMaxDistance is the edit-distance bound applied when a Matcher is
// configured with a non-positive distance.
const DefaultMaxDistance = 2

// DefaultNodeBudget caps how many trie nodes a single fuzzy search may
// visit. A pathological query against a huge trie stops at the budget and
// reports truncation instead of stalling the engine.
const DefaultNodeBudget = 50000

// FuzzyMatch is one trie-resident token within the configured edit
// distance of a query token. Distance 0 means the token is present
// verbatim.
type FuzzyMatch struct {
	Token    string
	Distance int
}

// Matcher performs bounded approximate lookups against a trie using the
// trie+Levenshtein row-carrying technique: a depth-first descent where each
// edge advances one dynamic-programming row, and any branch whose minimum
// achievable distance exceeds the bound is pruned.
type Matcher struct {
	maxDistance int
	nodeBudget  int
}

// NewMatcher builds a Matcher. Non-positive arguments select the package
// defaults.
func NewMatcher(maxDistance, nodeBudget int) *Matcher {
	if maxDistance <= 0 {
		maxDistance = DefaultMaxDistance
	}
	if nodeBudget <= 0 {
		nodeBudget = DefaultNodeBudget
	}
	return &Matcher{maxDistance: maxDistance, nodeBudget: nodeBudget}
}

// MaxDistance returns the configured edit-distance bound.
func (m *Matcher) MaxDistance() int { return m.maxDistance }

// fuzzyFrame is one pending node in the iterative descent. The row slice is
// owned by the frame; rows are never shared between siblings.
type fuzzyFrame struct {
	node   *trieNode
	prefix []rune
	row    []int
}

// Search returns every trie token within the distance bound of query,
// ordered lexicographically, plus a truncation flag that is set when the
// node budget ran out before the traversal finished. The traversal is
// iterative; depth is bounded by token length, not stack size.
func (m *Matcher) Search(t *Trie, query string) ([]FuzzyMatch, bool) {
	if query == "" {
		return nil, false
	}

	q := []rune(query)
	initial := make([]int, len(q)+1)
	for i := range initial {
		initial[i] = i
	}

	var matches []FuzzyMatch
	visited := 0
	truncated := false

	stack := []fuzzyFrame{{node: t.root, row: initial}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		visited++
		if visited > m.nodeBudget {
			truncated = true
			break
		}

		if f.node.end && f.row[len(q)] <= m.maxDistance {
			matches = append(matches, FuzzyMatch{Token: string(f.prefix), Distance: f.row[len(q)]})
		}

		for _, r := range sortedChildrenDesc(f.node) {
			next := advanceRow(f.row, r, q)
			if minRow(next) > m.maxDistance {
				continue
			}
			prefix := make([]rune, len(f.prefix)+1)
			copy(prefix, f.prefix)
			prefix[len(f.prefix)] = r
			stack = append(stack, fuzzyFrame{node: f.node.children[r], prefix: prefix, row: next})
		}
	}

	return matches, truncated
}

// advanceRow computes the next DP row after consuming edge rune r.
// row[i] is the edit distance between the current trie prefix and the first
// i runes of the query.
func advanceRow(row []int, r rune, query []rune) []int {
	next := make([]int, len(row))
	next[0] = row[0] + 1
	for i := 1; i < len(row); i++ {
		cost := 1
		if query[i-1] == r {
			cost = 0
		}
		next[i] = minInt(next[i-1]+1, minInt(row[i]+1, row[i-1]+cost))
	}
	return next
}

func minRow(row []int) int {
	m := row[0]
	for _, v := range row[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Distance computes the Levenshtein distance between a and b with early
// termination: once every cell of a row exceeds max, the result cannot come
// back under the bound and max+1 is returned. Backs the matcher's tests and
// ad hoc distance checks.
func Distance(a, b string, max int) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return clampDistance(len(rb), max)
	}
	if len(rb) == 0 {
		return clampDistance(len(ra), max)
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		rowMin := cur[0]
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = minInt(cur[j-1]+1, minInt(prev[j]+1, prev[j-1]+cost))
			if cur[j] < rowMin {
				rowMin = cur[j]
			}
		}
		if max >= 0 && rowMin > max {
			return max + 1
		}
		prev, cur = cur, prev
	}

	return clampDistance(prev[len(rb)], max)
}

func clampDistance(d, max int) int {
	if max >= 0 && d > max {
		return max + 1
	}
	return d
}
