// Package telemetry collects local search telemetry: a ring buffer of
// recent query events plus aggregate counters, optionally flushed to a
// SQLite history store. Nothing leaves the machine.
package telemetry

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// LatencyBucket is one histogram bucket for query latency.
type LatencyBucket string

const (
	BucketP10   LatencyBucket = "p10"   // <10ms
	BucketP50   LatencyBucket = "p50"   // 10-50ms
	BucketP100  LatencyBucket = "p100"  // 50-100ms
	BucketP500  LatencyBucket = "p500"  // 100-500ms
	BucketP1000 LatencyBucket = "p1000" // >=500ms
)

// LatencyToBucket converts a duration to its histogram bucket.
func LatencyToBucket(d time.Duration) LatencyBucket {
	ms := d.Milliseconds()
	switch {
	case ms < 10:
		return BucketP10
	case ms < 50:
		return BucketP50
	case ms < 100:
		return BucketP100
	case ms < 500:
		return BucketP500
	default:
		return BucketP1000
	}
}

// QueryEvent is one recorded search.
type QueryEvent struct {
	Query       string
	ResultCount int
	Latency     time.Duration
	Truncated   bool
	Timestamp   time.Time
}

// IsZeroResult reports whether the query returned nothing.
func (e QueryEvent) IsZeroResult() bool { return e.ResultCount == 0 }

// CircularBuffer is a fixed-capacity FIFO buffer.
type CircularBuffer[T any] struct {
	items    []T
	head     int
	size     int
	capacity int
	mu       sync.RWMutex
}

// NewCircularBuffer creates a buffer with the given capacity.
func NewCircularBuffer[T any](capacity int) *CircularBuffer[T] {
	if capacity <= 0 {
		capacity = 100
	}
	return &CircularBuffer[T]{
		items:    make([]T, capacity),
		capacity: capacity,
	}
}

// Add appends an item, evicting the oldest when full.
func (b *CircularBuffer[T]) Add(item T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items[b.head] = item
	b.head = (b.head + 1) % b.capacity
	if b.size < b.capacity {
		b.size++
	}
}

// Items returns the buffered items oldest-first.
func (b *CircularBuffer[T]) Items() []T {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.size == 0 {
		return nil
	}
	out := make([]T, 0, b.size)
	start := (b.head - b.size + b.capacity) % b.capacity
	for i := 0; i < b.size; i++ {
		out = append(out, b.items[(start+i)%b.capacity])
	}
	return out
}

// Size returns the current item count.
func (b *CircularBuffer[T]) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// Clear drops all buffered items.
func (b *CircularBuffer[T]) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.head = 0
	b.size = 0
}

// ExtractTerms splits a query into lower-cased free-text terms, dropping
// @name:value filter terms so the history counts vocabulary, not syntax.
func ExtractTerms(query string) []string {
	var terms []string
	for _, f := range strings.Fields(strings.ToLower(query)) {
		if strings.HasPrefix(f, "@") {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}

// TermCount pairs a term with its occurrence count.
type TermCount struct {
	Term  string
	Count int64
}

// Snapshot is a point-in-time aggregate view of the collected metrics.
type Snapshot struct {
	TotalQueries     int64
	ZeroResults      int64
	TruncatedQueries int64
	LatencyCounts    map[LatencyBucket]int64
	TopTerms         []TermCount
	Recent           []QueryEvent
}

// ZeroResultPercentage returns the share of queries that found nothing.
func (s *Snapshot) ZeroResultPercentage() float64 {
	if s.TotalQueries == 0 {
		return 0
	}
	return float64(s.ZeroResults) / float64(s.TotalQueries) * 100
}

// HistoryStore persists aggregates between runs.
type HistoryStore interface {
	UpsertTermCounts(terms map[string]int64) error
	AddZeroResultQuery(query string, at time.Time) error
	SaveLatencyCounts(date string, counts map[LatencyBucket]int64) error
	GetTopTerms(limit int) ([]TermCount, error)
	GetZeroResultQueries(limit int) ([]string, error)
	GetLatencyCounts(from, to string) (map[LatencyBucket]int64, error)
	Close() error
}

// QueryMetrics accumulates query events in memory. A nil *QueryMetrics is
// valid and records nothing, so callers need no nil checks.
type QueryMetrics struct {
	mu            sync.Mutex
	recent        *CircularBuffer[QueryEvent]
	totalQueries  int64
	zeroResults   int64
	truncated     int64
	latencyCounts map[LatencyBucket]int64
	termCounts    map[string]int64
	store         HistoryStore
}

// NewQueryMetrics builds a collector with the given ring-buffer capacity.
// store may be nil for in-memory-only operation.
func NewQueryMetrics(bufferSize int, store HistoryStore) *QueryMetrics {
	return &QueryMetrics{
		recent:        NewCircularBuffer[QueryEvent](bufferSize),
		latencyCounts: make(map[LatencyBucket]int64),
		termCounts:    make(map[string]int64),
		store:         store,
	}
}

// Record adds one query event to the buffer and aggregates.
func (m *QueryMetrics) Record(event QueryEvent) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.recent.Add(event)
	m.totalQueries++
	if event.IsZeroResult() {
		m.zeroResults++
		if m.store != nil {
			_ = m.store.AddZeroResultQuery(event.Query, event.Timestamp)
		}
	}
	if event.Truncated {
		m.truncated++
	}
	m.latencyCounts[LatencyToBucket(event.Latency)]++
	for _, term := range ExtractTerms(event.Query) {
		m.termCounts[term]++
	}
}

// Snapshot returns the current aggregates. Top terms are sorted by count
// descending, term ascending on ties.
func (m *QueryMetrics) Snapshot() *Snapshot {
	if m == nil {
		return &Snapshot{LatencyCounts: map[LatencyBucket]int64{}}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	latency := make(map[LatencyBucket]int64, len(m.latencyCounts))
	for k, v := range m.latencyCounts {
		latency[k] = v
	}

	terms := make([]TermCount, 0, len(m.termCounts))
	for term, count := range m.termCounts {
		terms = append(terms, TermCount{Term: term, Count: count})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Count != terms[j].Count {
			return terms[i].Count > terms[j].Count
		}
		return terms[i].Term < terms[j].Term
	})
	if len(terms) > 10 {
		terms = terms[:10]
	}

	return &Snapshot{
		TotalQueries:     m.totalQueries,
		ZeroResults:      m.zeroResults,
		TruncatedQueries: m.truncated,
		LatencyCounts:    latency,
		TopTerms:         terms,
		Recent:           m.recent.Items(),
	}
}

// TotalQueries returns the number of recorded events.
func (m *QueryMetrics) TotalQueries() int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalQueries
}

// Flush writes the accumulated term and latency counts to the history
// store and resets them; the ring buffer is kept. No-op without a store.
func (m *QueryMetrics) Flush() error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store == nil {
		return nil
	}

	if len(m.termCounts) > 0 {
		if err := m.store.UpsertTermCounts(m.termCounts); err != nil {
			return err
		}
		m.termCounts = make(map[string]int64)
	}
	if len(m.latencyCounts) > 0 {
		date := time.Now().UTC().Format("2006-01-02")
		if err := m.store.SaveLatencyCounts(date, m.latencyCounts); err != nil {
			return err
		}
		m.latencyCounts = make(map[LatencyBucket]int64)
	}
	return nil
}

// Close flushes and releases the history store.
func (m *QueryMetrics) Close() error {
	if m == nil {
		return nil
	}
	if err := m.Flush(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store == nil {
		return nil
	}
	return m.store.Close()
}
