// Package learn records user interactions with search results and converts
// them into ranking bonuses that decay linearly over a configurable window.
package learn

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Type identifies what a user did with a search result.
type Type string

const (
	// TypeViewed is a preview or open of a result.
	TypeViewed Type = "viewed"
	// TypeDownloaded is a download of a result.
	TypeDownloaded Type = "downloaded"
	// TypeSelected is an explicit pick of a result from a ranked list.
	TypeSelected Type = "selected"
)

// ParseType maps a string to an interaction Type. The short verb forms the
// original HTTP API accepted (view, download, select) are taken as aliases.
func ParseType(s string) (Type, bool) {
	switch strings.ToLower(s) {
	case "viewed", "view":
		return TypeViewed, true
	case "downloaded", "download":
		return TypeDownloaded, true
	case "selected", "select":
		return TypeSelected, true
	default:
		return "", false
	}
}

// Weight returns the ranking weight of an interaction type. Selections
// outweigh downloads, downloads outweigh views.
func (t Type) Weight() float64 {
	switch t {
	case TypeViewed:
		return 2
	case TypeDownloaded:
		return 5
	case TypeSelected:
		return 10
	default:
		return 0
	}
}

// Record is one observed interaction. Records are append-only; they are
// never mutated, only expired by compaction.
type Record struct {
	FileID     string
	Type       Type
	OccurredAt time.Time
}

// DefaultWindowDays is the decay window applied when a Store is built with
// a non-positive window.
const DefaultWindowDays = 7

// compactInterval is how stale the log may get before a read lazily
// triggers compaction.
const compactInterval = time.Hour

// recencyScale stretches the normalized recency factor; a fresh
// interaction contributes weight x 3, one at the window edge contributes
// nothing.
const recencyScale = 3

// Store is the append-only interaction log, keyed by file id.
//
// The store carries its own lock, separate from the engine's trie lock, so
// recording interactions never blocks searches. Reads take the shared lock;
// appends, compaction, and imports take the exclusive lock.
type Store struct {
	mu          sync.RWMutex
	window      time.Duration
	records     map[string][]Record
	total       int
	lastCompact time.Time
}

// NewStore builds a Store with the given decay window in days.
func NewStore(windowDays int) *Store {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &Store{
		window:  time.Duration(windowDays) * 24 * time.Hour,
		records: make(map[string][]Record),
	}
}

// WindowDays returns the configured decay window in whole days.
func (s *Store) WindowDays() int {
	return int(s.window / (24 * time.Hour))
}

// Record appends one interaction.
func (s *Store) Record(fileID string, t Type, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[fileID] = append(s.records[fileID], Record{FileID: fileID, Type: t, OccurredAt: at})
	s.total++
	if s.lastCompact.IsZero() {
		s.lastCompact = at
	}
}

// BonusFor computes the decayed ranking bonus for a file: the sum over its
// non-expired records of type weight times the linear recency factor.
// Reads lazily trigger compaction once the log has gone stale.
func (s *Store) BonusFor(fileID string, now time.Time) float64 {
	s.mu.RLock()
	bonus := 0.0
	for _, r := range s.records[fileID] {
		bonus += r.Type.Weight() * s.recencyFactor(r.OccurredAt, now)
	}
	stale := !s.lastCompact.IsZero() && now.Sub(s.lastCompact) >= compactInterval
	s.mu.RUnlock()

	if stale {
		s.Compact(now)
	}
	return bonus
}

// recencyFactor is max(0, (window - age) / window) * recencyScale.
// Expired records contribute zero even before compaction removes them.
func (s *Store) recencyFactor(occurred, now time.Time) float64 {
	age := now.Sub(occurred)
	if age < 0 {
		age = 0
	}
	remaining := float64(s.window-age) / float64(s.window)
	if remaining <= 0 {
		return 0
	}
	return remaining * recencyScale
}

// Compact drops records older than the decay window and returns how many
// were removed. Files with no expired records are untouched.
func (s *Store) Compact(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-s.window)
	dropped := 0
	for id, recs := range s.records {
		kept := recs[:0]
		for _, r := range recs {
			if r.OccurredAt.After(cutoff) {
				kept = append(kept, r)
			} else {
				dropped++
			}
		}
		if len(kept) == 0 {
			delete(s.records, id)
		} else {
			s.records[id] = kept
		}
	}
	s.total -= dropped
	s.lastCompact = now
	return dropped
}

// Forget drops every record for one file. Used when a file leaves the
// index so its history cannot resurface through a reused id.
func (s *Store) Forget(fileID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if recs, ok := s.records[fileID]; ok {
		s.total -= len(recs)
		delete(s.records, fileID)
	}
}

// CountFor returns the number of live records for one file.
func (s *Store) CountFor(fileID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records[fileID])
}

// TotalCount returns the number of live records across all files.
func (s *Store) TotalCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Reset clears all learning data while leaving configuration intact. The
// index a store rides alongside is not affected.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string][]Record)
	s.total = 0
	s.lastCompact = time.Time{}
}

// Export returns every live record sorted by file id, then time, then
// type. The deterministic order keeps snapshots stable across runs.
func (s *Store) Export() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, s.total)
	for _, recs := range s.records {
		out = append(out, recs...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FileID != out[j].FileID {
			return out[i].FileID < out[j].FileID
		}
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.Before(out[j].OccurredAt)
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// Import replaces the store's contents with the given records, typically
// from a snapshot restore.
func (s *Store) Import(records []Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string][]Record, len(records))
	s.total = 0
	for _, r := range records {
		s.records[r.FileID] = append(s.records[r.FileID], r)
		s.total++
	}
	s.lastCompact = time.Time{}
}
