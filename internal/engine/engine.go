package engine

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	sifterrors "github.com/filesift/filesift/internal/errors"
	"github.com/filesift/filesift/internal/index"
	"github.com/filesift/filesift/internal/learn"
	"github.com/filesift/filesift/internal/search"
	"github.com/filesift/filesift/internal/snapshot"
	"github.com/filesift/filesift/internal/source"
	"github.com/filesift/filesift/internal/telemetry"
)

// Engine owns the index and serves the filesift operations. A single
// readers-writer lock guards the trie and metadata cache as one unit:
// Search takes the read side, structural mutations take the write side.
// The learning store locks independently so recording interactions never
// blocks a search.
type Engine struct {
	cfg Config

	mu      sync.RWMutex
	trie    *index.Trie
	entries map[string]index.Entry

	learner  *learn.Store
	parser   *search.Parser
	ranker   *search.Ranker
	synonyms *search.Synonyms
	cache    *lru.Cache[string, SearchResult]

	snapshots *snapshot.Manager
	src       source.MetadataSource
	metrics   *telemetry.QueryMetrics
	logger    *slog.Logger
	clock     func() time.Time

	stateMu  sync.Mutex
	state    State
	searches atomic.Int64
}

// New builds an engine from cfg. Zero config fields take defaults; options
// inject the logger, clock, metadata source, and synonym table.
func New(cfg Config, opts ...Option) (*Engine, error) {
	cfg = cfg.withDefaults()

	e := &Engine{
		cfg:      cfg,
		trie:     index.NewTrie(),
		entries:  make(map[string]index.Entry),
		learner:  learn.NewStore(cfg.DecayWindowDays),
		synonyms: search.DefaultSynonyms(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:    time.Now,
		state:    StateUninitialized,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.parser = search.NewParser(e.clock)
	e.ranker = search.NewRanker(
		index.NewMatcher(cfg.FuzzyDistance, cfg.NodeBudget),
		e.synonyms,
		e.learner,
	)

	cache, err := lru.New[string, SearchResult](cfg.CacheSize)
	if err != nil {
		return nil, sifterrors.InternalError("create query cache", err)
	}
	e.cache = cache

	if cfg.SnapshotPath != "" {
		e.snapshots = snapshot.NewManager(cfg.SnapshotPath, e.logger)
	}

	return e, nil
}

// State returns the lifecycle state.
func (e *Engine) State() State {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return e.state
}

func (e *Engine) setState(s State) {
	e.stateMu.Lock()
	e.state = s
	e.stateMu.Unlock()
}

// Index inserts or refreshes one entry. Re-indexing an existing file id
// first removes its old postings, so renames never leave stale tokens.
func (e *Engine) Index(entry index.Entry) error {
	if entry.FileID == "" {
		return sifterrors.New(sifterrors.ErrCodeInvalidInput, "entry has no file id", nil)
	}
	if entry.Name == "" {
		return sifterrors.New(sifterrors.ErrCodeInvalidInput, "entry has no name", nil)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if old, ok := e.entries[entry.FileID]; ok {
		for _, tok := range index.EntryTokens(old) {
			e.trie.Remove(tok, old.FileID)
		}
	}
	for _, tok := range index.EntryTokens(entry) {
		e.trie.Insert(tok, entry.FileID)
	}
	e.entries[entry.FileID] = entry

	e.cache.Purge()
	if e.State() == StateUninitialized {
		e.setState(StateReady)
	}
	return nil
}

// Remove deletes a file from the index and drops its learning records.
// Unknown file ids are a validation error.
func (e *Engine) Remove(fileID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	old, ok := e.entries[fileID]
	if !ok {
		return sifterrors.New(sifterrors.ErrCodeUnknownFile, "unknown file id "+fileID, nil)
	}
	for _, tok := range index.EntryTokens(old) {
		e.trie.Remove(tok, fileID)
	}
	delete(e.entries, fileID)
	e.learner.Forget(fileID)

	e.cache.Purge()
	return nil
}

// Search parses, matches, and ranks a query. limit <= 0 means the
// configured maximum; larger limits are clamped to it. Results are served
// from the LRU cache when the same normalized query was asked since the
// last mutation.
func (e *Engine) Search(query string, limit int) (SearchResult, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return SearchResult{}, sifterrors.New(sifterrors.ErrCodeQueryEmpty, "empty query", nil)
	}
	if limit <= 0 || limit > e.cfg.MaxResults {
		limit = e.cfg.MaxResults
	}

	key := strings.ToLower(trimmed) + "|" + strconv.Itoa(limit)
	if cached, ok := e.cache.Get(key); ok {
		return cached, nil
	}

	start := e.clock()
	q := e.parser.Parse(trimmed)

	e.mu.RLock()
	cands, budgetHit := e.ranker.Gather(e.trie, q.FreeTerms)
	ranked, limitHit := e.ranker.Rank(q, cands, e.entries, limit, start)
	e.mu.RUnlock()

	result := SearchResult{
		Items:     make([]ScoredItem, 0, len(ranked)),
		Truncated: budgetHit || limitHit,
		Degraded:  q.Degraded,
	}
	for _, r := range ranked {
		result.Items = append(result.Items, ScoredItem{
			FileID:       r.FileID,
			Score:        r.Score,
			MatchType:    r.MatchType,
			MatchedToken: r.MatchedToken,
			Entry:        r.Entry,
		})
	}

	if q.Degraded {
		e.logger.Debug("query_degraded", slog.String("query", trimmed))
	}

	e.searches.Add(1)
	e.metrics.Record(telemetry.QueryEvent{
		Query:       trimmed,
		ResultCount: len(result.Items),
		Latency:     time.Since(start),
		Truncated:   result.Truncated,
		Timestamp:   start,
	})

	e.cache.Add(key, result)
	return result, nil
}

// RecordInteraction appends one interaction for a known file. Interaction
// writes invalidate the query cache since they change scores.
func (e *Engine) RecordInteraction(fileID string, t learn.Type) error {
	parsed, ok := learn.ParseType(string(t))
	if !ok {
		return sifterrors.New(sifterrors.ErrCodeInvalidInteraction,
			"unknown interaction type "+string(t), nil)
	}

	e.mu.RLock()
	_, known := e.entries[fileID]
	e.mu.RUnlock()
	if !known {
		return sifterrors.New(sifterrors.ErrCodeUnknownFile, "unknown file id "+fileID, nil)
	}

	e.learner.Record(fileID, parsed, e.clock())
	e.cache.Purge()
	return nil
}

// ClearInteractions resets the learning store but keeps the index.
func (e *Engine) ClearInteractions() {
	e.learner.Reset()
	e.cache.Purge()
}

// Suggest returns up to limit completions for a name prefix, scored like
// exact search hits (base weight plus interaction bonus).
func (e *Engine) Suggest(prefix string, limit int) ([]Suggestion, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return nil, sifterrors.New(sifterrors.ErrCodeInvalidInput, "empty prefix", nil)
	}
	if limit <= 0 || limit > e.cfg.MaxResults {
		limit = e.cfg.MaxResults
	}

	now := e.clock()
	base := search.Candidate{MatchType: search.MatchExact}.Weight()

	type scored struct {
		sug     Suggestion
		created time.Time
	}

	e.mu.RLock()
	ids, _ := e.trie.PrefixSearch(prefix, e.cfg.PrefixCap)
	seen := make(map[string]struct{}, len(ids))
	hits := make([]scored, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		entry, ok := e.entries[id]
		if !ok {
			continue
		}
		hits = append(hits, scored{
			sug: Suggestion{
				FileID:       id,
				Name:         entry.Name,
				TypeCategory: entry.TypeCategory,
				Score:        base + e.learner.BonusFor(id, now),
				MatchType:    search.MatchExact,
			},
			created: entry.CreatedAt,
		})
	}
	e.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].sug.Score != hits[j].sug.Score {
			return hits[i].sug.Score > hits[j].sug.Score
		}
		if !hits[i].created.Equal(hits[j].created) {
			return hits[i].created.After(hits[j].created)
		}
		return hits[i].sug.FileID < hits[j].sug.FileID
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	suggestions := make([]Suggestion, 0, len(hits))
	for _, h := range hits {
		suggestions = append(suggestions, h.sug)
	}
	return suggestions, nil
}

// ReindexAll rebuilds the index from the metadata source. The rebuild goes
// into fresh structures and swaps in only on success, so a failed or
// cancelled rebuild leaves the prior state untouched.
func (e *Engine) ReindexAll(ctx context.Context) (RebuildStats, error) {
	if e.src == nil {
		return RebuildStats{}, sifterrors.New(sifterrors.ErrCodeSourceUnavailable,
			"no metadata source configured", nil)
	}

	prev := e.State()
	e.setState(StateRebuilding)
	start := e.clock()

	stats, err := e.rebuild(ctx)
	if err != nil {
		e.setState(prev)
		return RebuildStats{}, err
	}

	stats.Duration = e.clock().Sub(start)
	e.setState(StateReady)
	e.logger.Info("reindex_complete",
		slog.Int("files", stats.FilesIndexed),
		slog.Int("tokens", stats.TokensIndexed),
		slog.Duration("duration", stats.Duration))
	return stats, nil
}

type tokenizedEntry struct {
	entry  index.Entry
	tokens []string
}

func (e *Engine) rebuild(ctx context.Context) (RebuildStats, error) {
	listed, err := e.src.List(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return RebuildStats{}, err
		}
		return RebuildStats{}, sifterrors.New(sifterrors.ErrCodeSourceUnavailable,
			"list metadata source", err)
	}

	// Tokenize batches concurrently; the trie itself is filled
	// sequentially afterwards since it is not safe for concurrent writes.
	batchSize := e.cfg.BatchSize
	numBatches := (len(listed) + batchSize - 1) / batchSize
	tokenized := make([][]tokenizedEntry, numBatches)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for bi := 0; bi < numBatches; bi++ {
		bi := bi
		batch := listed[bi*batchSize : min((bi+1)*batchSize, len(listed))]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out := make([]tokenizedEntry, 0, len(batch))
			for _, entry := range batch {
				out = append(out, tokenizedEntry{entry: entry, tokens: index.EntryTokens(entry)})
			}
			tokenized[bi] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return RebuildStats{}, err
	}
	if err := ctx.Err(); err != nil {
		return RebuildStats{}, err
	}

	fresh := index.NewTrie()
	entries := make(map[string]index.Entry, len(listed))
	for _, batch := range tokenized {
		for _, te := range batch {
			for _, tok := range te.tokens {
				fresh.Insert(tok, te.entry.FileID)
			}
			entries[te.entry.FileID] = te.entry
		}
	}

	e.mu.Lock()
	e.trie = fresh
	e.entries = entries
	e.mu.Unlock()
	e.cache.Purge()

	return RebuildStats{
		FilesIndexed:  len(entries),
		TokensIndexed: fresh.TokenCount(),
	}, nil
}

// Snapshot serializes the full engine state.
func (e *Engine) Snapshot() ([]byte, error) {
	e.mu.RLock()
	st := snapshot.State{
		TokenPostings: make(map[string][]string, e.trie.TokenCount()),
		Entries:       make([]index.Entry, 0, len(e.entries)),
	}
	e.trie.WalkTokens(func(token string, ids []string) bool {
		st.TokenPostings[token] = append([]string(nil), ids...)
		return true
	})
	for _, entry := range e.entries {
		st.Entries = append(st.Entries, entry)
	}
	e.mu.RUnlock()

	st.Interactions = e.learner.Export()
	return snapshot.Encode(&st), nil
}

// Restore replaces the engine state with a decoded snapshot.
func (e *Engine) Restore(data []byte) error {
	st, err := snapshot.Decode(data)
	if err != nil {
		return sifterrors.CorruptSnapshotError(err.Error(), err)
	}

	fresh := index.NewTrie()
	for token, ids := range st.TokenPostings {
		for _, id := range ids {
			fresh.Insert(token, id)
		}
	}
	entries := make(map[string]index.Entry, len(st.Entries))
	for _, entry := range st.Entries {
		entries[entry.FileID] = entry
	}

	e.mu.Lock()
	e.trie = fresh
	e.entries = entries
	e.mu.Unlock()

	e.learner.Import(st.Interactions)
	e.cache.Purge()
	e.setState(StateReady)
	return nil
}

// SaveSnapshot writes the current state through the snapshot manager.
func (e *Engine) SaveSnapshot(ctx context.Context) error {
	if e.snapshots == nil {
		return sifterrors.ConfigError("no snapshot path configured", nil)
	}
	data, err := e.Snapshot()
	if err != nil {
		return err
	}
	return e.snapshots.Save(ctx, data)
}

// LoadSnapshot restores state from the snapshot file. Missing and corrupt
// snapshots surface as their respective error codes; the corrupt case has
// already been discarded on disk by the manager.
func (e *Engine) LoadSnapshot(ctx context.Context) error {
	if e.snapshots == nil {
		return sifterrors.ConfigError("no snapshot path configured", nil)
	}
	st, err := e.snapshots.Load(ctx)
	if err != nil {
		return err
	}

	fresh := index.NewTrie()
	for token, ids := range st.TokenPostings {
		for _, id := range ids {
			fresh.Insert(token, id)
		}
	}
	entries := make(map[string]index.Entry, len(st.Entries))
	for _, entry := range st.Entries {
		entries[entry.FileID] = entry
	}

	e.mu.Lock()
	e.trie = fresh
	e.entries = entries
	e.mu.Unlock()

	e.learner.Import(st.Interactions)
	e.cache.Purge()
	e.setState(StateReady)
	return nil
}

// Stats returns the current index statistics.
func (e *Engine) Stats() IndexStats {
	e.mu.RLock()
	files := len(e.entries)
	tokens := e.trie.TokenCount()
	nodes := e.trie.NodeCount()
	e.mu.RUnlock()

	return IndexStats{
		FilesIndexed:     files,
		TokensIndexed:    tokens,
		TrieNodes:        nodes,
		Interactions:     e.learner.TotalCount(),
		SearchesRecorded: e.searches.Load(),
		State:            e.State(),
	}
}

// Close releases the metadata source. The engine must not be used after.
func (e *Engine) Close() error {
	if e.src != nil {
		return e.src.Close()
	}
	return nil
}

// Open is the standard startup path: build the engine, load the snapshot
// if one exists, and fall back to a full rebuild from the source when the
// snapshot is missing or corrupt. With no snapshot configured the index
// is built straight from the source.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Engine, error) {
	e, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}

	if e.snapshots == nil {
		if e.src != nil {
			if _, err := e.ReindexAll(ctx); err != nil {
				return nil, err
			}
		}
		return e, nil
	}

	err = e.LoadSnapshot(ctx)
	if err == nil {
		return e, nil
	}
	code := sifterrors.GetCode(err)
	if code != sifterrors.ErrCodeSnapshotNotFound && code != sifterrors.ErrCodeCorruptSnapshot {
		return nil, err
	}

	if e.src == nil {
		// Nothing to rebuild from; start empty.
		return e, nil
	}

	e.logger.Info("snapshot_unusable_rebuilding", slog.String("code", code))
	if _, err := e.ReindexAll(ctx); err != nil {
		return nil, err
	}
	if err := e.SaveSnapshot(ctx); err != nil {
		return nil, err
	}
	return e, nil
}
