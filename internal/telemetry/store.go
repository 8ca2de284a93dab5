package telemetry

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteHistoryStore persists query history in a local SQLite database.
type SQLiteHistoryStore struct {
	db *sql.DB
}

var _ HistoryStore = (*SQLiteHistoryStore)(nil)

// OpenHistory opens (or creates) the history database at path.
func OpenHistory(path string) (*SQLiteHistoryStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure history db: %w", err)
	}
	s := &SQLiteHistoryStore{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteHistoryStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS term_counts (
		term  TEXT PRIMARY KEY,
		count INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS zero_result_queries (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		query     TEXT NOT NULL,
		timestamp INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS latency_counts (
		date   TEXT NOT NULL,
		bucket TEXT NOT NULL,
		count  INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (date, bucket)
	);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("init history schema: %w", err)
	}
	return nil
}

// UpsertTermCounts adds the given counts to the persisted totals.
func (s *SQLiteHistoryStore) UpsertTermCounts(terms map[string]int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin term upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO term_counts (term, count) VALUES (?, ?)
		ON CONFLICT(term) DO UPDATE SET count = count + excluded.count`)
	if err != nil {
		return fmt.Errorf("prepare term upsert: %w", err)
	}
	defer stmt.Close()

	for term, count := range terms {
		if _, err := stmt.Exec(term, count); err != nil {
			return fmt.Errorf("upsert term %q: %w", term, err)
		}
	}
	return tx.Commit()
}

// AddZeroResultQuery records one query that found nothing.
func (s *SQLiteHistoryStore) AddZeroResultQuery(query string, at time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO zero_result_queries (query, timestamp) VALUES (?, ?)`,
		query, at.UnixNano())
	if err != nil {
		return fmt.Errorf("add zero-result query: %w", err)
	}
	return nil
}

// SaveLatencyCounts adds bucket counts for a date.
func (s *SQLiteHistoryStore) SaveLatencyCounts(date string, counts map[LatencyBucket]int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin latency save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for bucket, count := range counts {
		_, err := tx.Exec(`
			INSERT INTO latency_counts (date, bucket, count) VALUES (?, ?, ?)
			ON CONFLICT(date, bucket) DO UPDATE SET count = count + excluded.count`,
			date, string(bucket), count)
		if err != nil {
			return fmt.Errorf("save latency bucket %s: %w", bucket, err)
		}
	}
	return tx.Commit()
}

// GetTopTerms returns the most frequent terms, count descending.
func (s *SQLiteHistoryStore) GetTopTerms(limit int) ([]TermCount, error) {
	rows, err := s.db.Query(
		`SELECT term, count FROM term_counts ORDER BY count DESC, term ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query top terms: %w", err)
	}
	defer rows.Close()

	var out []TermCount
	for rows.Next() {
		var tc TermCount
		if err := rows.Scan(&tc.Term, &tc.Count); err != nil {
			return nil, fmt.Errorf("scan term count: %w", err)
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

// GetZeroResultQueries returns the most recent queries that found nothing.
func (s *SQLiteHistoryStore) GetZeroResultQueries(limit int) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT query FROM zero_result_queries ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query zero-result history: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("scan zero-result query: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// GetLatencyCounts sums bucket counts over an inclusive date range.
func (s *SQLiteHistoryStore) GetLatencyCounts(from, to string) (map[LatencyBucket]int64, error) {
	rows, err := s.db.Query(`
		SELECT bucket, SUM(count) FROM latency_counts
		WHERE date >= ? AND date <= ? GROUP BY bucket`, from, to)
	if err != nil {
		return nil, fmt.Errorf("query latency counts: %w", err)
	}
	defer rows.Close()

	out := make(map[LatencyBucket]int64)
	for rows.Next() {
		var bucket string
		var count int64
		if err := rows.Scan(&bucket, &count); err != nil {
			return nil, fmt.Errorf("scan latency count: %w", err)
		}
		out[LatencyBucket(bucket)] = count
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *SQLiteHistoryStore) Close() error {
	return s.db.Close()
}
