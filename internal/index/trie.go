package index

import "sort"

// DefaultPrefixCap bounds the number of file ids a single prefix search may
// return. Short prefixes over a large index would otherwise fan out across
// most of the trie.
const DefaultPrefixCap = 500

// trieNode is one character position in the trie. Posting sets live only on
// end-of-word nodes; interior nodes carry structure, nothing else.
type trieNode struct {
	children map[rune]*trieNode
	end      bool
	postings map[string]struct{}
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[rune]*trieNode)}
}

// Trie maps tokens to posting sets of file ids.
//
// Invariant: a file id is present in the posting set at the end node of
// token t exactly when t is in that file's current token set. Insert and
// Remove preserve the invariant one token at a time; Remove prunes branches
// that no longer lead to any end node so memory tracks the live token set.
type Trie struct {
	root   *trieNode
	tokens int
	nodes  int
}

// NewTrie returns an empty trie.
func NewTrie() *Trie {
	return &Trie{root: newTrieNode()}
}

// Insert adds fileID to the posting set for token, creating nodes as
// needed. Inserting the same pair twice is a no-op, which makes indexing
// idempotent. Empty tokens are ignored.
func (t *Trie) Insert(token, fileID string) {
	if token == "" || fileID == "" {
		return
	}

	n := t.root
	for _, r := range token {
		child, ok := n.children[r]
		if !ok {
			child = newTrieNode()
			n.children[r] = child
			t.nodes++
		}
		n = child
	}

	if !n.end {
		n.end = true
		n.postings = make(map[string]struct{})
		t.tokens++
	}
	n.postings[fileID] = struct{}{}
}

// Remove deletes fileID from the posting set for token. When the posting
// set empties, the end marker is cleared and any branch that no longer
// leads to an end node is pruned eagerly. Removing an absent pair is a
// no-op.
func (t *Trie) Remove(token, fileID string) {
	if token == "" || fileID == "" {
		return
	}

	// Record the path so pruning can walk back up without recursion.
	runes := []rune(token)
	path := make([]*trieNode, 0, len(runes)+1)
	n := t.root
	path = append(path, n)
	for _, r := range runes {
		child, ok := n.children[r]
		if !ok {
			return
		}
		n = child
		path = append(path, n)
	}

	if !n.end {
		return
	}
	if _, ok := n.postings[fileID]; !ok {
		return
	}
	delete(n.postings, fileID)
	if len(n.postings) > 0 {
		return
	}

	n.end = false
	n.postings = nil
	t.tokens--

	// Prune childless non-end nodes from the leaf toward the root.
	for i := len(path) - 1; i > 0; i-- {
		cur := path[i]
		if cur.end || len(cur.children) > 0 {
			break
		}
		parent := path[i-1]
		delete(parent.children, runes[i-1])
		t.nodes--
	}
}

// Lookup returns the posting set for an exact token, sorted for
// deterministic downstream ordering. A missing token yields nil.
func (t *Trie) Lookup(token string) []string {
	n := t.walk(token)
	if n == nil || !n.end {
		return nil
	}
	return sortedPostings(n.postings)
}

// Contains reports whether token is present in the trie.
func (t *Trie) Contains(token string) bool {
	n := t.walk(token)
	return n != nil && n.end
}

// PrefixSearch collects the file ids of every token starting with prefix,
// visiting completions in lexicographic order, until cap distinct ids have
// been gathered. The second return is true when the cap cut the result
// short; callers are never handed a silently incomplete set. A cap <= 0
// falls back to DefaultPrefixCap.
func (t *Trie) PrefixSearch(prefix string, cap int) ([]string, bool) {
	if cap <= 0 {
		cap = DefaultPrefixCap
	}

	start := t.walk(prefix)
	if start == nil {
		return nil, false
	}

	seen := make(map[string]struct{})
	ids := make([]string, 0)
	truncated := false

	// Iterative DFS in sorted child order; pushing reversed keeps pops
	// lexicographic.
	stack := []*trieNode{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.end {
			for _, id := range sortedPostings(n.postings) {
				if _, dup := seen[id]; dup {
					continue
				}
				if len(ids) >= cap {
					truncated = true
					return ids, truncated
				}
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}

		for _, r := range sortedChildrenDesc(n) {
			stack = append(stack, n.children[r])
		}
	}

	return ids, truncated
}

// WalkTokens visits every token and its sorted posting set in lexicographic
// token order. Returning false from fn stops the walk. Used by snapshot
// export and stats.
func (t *Trie) WalkTokens(fn func(token string, ids []string) bool) {
	type frame struct {
		node   *trieNode
		prefix []rune
	}

	stack := []frame{{node: t.root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.node.end {
			if !fn(string(f.prefix), sortedPostings(f.node.postings)) {
				return
			}
		}

		for _, r := range sortedChildrenDesc(f.node) {
			child := f.node.children[r]
			prefix := make([]rune, len(f.prefix)+1)
			copy(prefix, f.prefix)
			prefix[len(f.prefix)] = r
			stack = append(stack, frame{node: child, prefix: prefix})
		}
	}
}

// TokenCount returns the number of distinct tokens.
func (t *Trie) TokenCount() int { return t.tokens }

// NodeCount returns the number of allocated nodes, excluding the root.
func (t *Trie) NodeCount() int { return t.nodes }

// walk descends the trie along token, returning nil when the path is
// absent. An empty token returns the root.
func (t *Trie) walk(token string) *trieNode {
	n := t.root
	for _, r := range token {
		child, ok := n.children[r]
		if !ok {
			return nil
		}
		n = child
	}
	return n
}

func sortedPostings(postings map[string]struct{}) []string {
	ids := make([]string, 0, len(postings))
	for id := range postings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// sortedChildrenDesc returns child runes in descending order, matching the
// reverse-push / in-order-pop pattern of the iterative traversals above.
func sortedChildrenDesc(n *trieNode) []rune {
	runes := make([]rune, 0, len(n.children))
	for r := range n.children {
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] > runes[j] })
	return runes
}
