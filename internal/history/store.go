// Package history implements the persistent review audit log.
//
// Every compliance review the MCP host performs can be recorded here so
// assistants can see pass-rate trends and repeat offenders across
// sessions. The engine itself never reads history — statelessness of
// the core pipeline is preserved; this is host-side bookkeeping only.
//
// Backed by SQLite in WAL mode. The subsystem is optional: if it fails
// to initialize, the server logs a warning and serves without it.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mvca-labs/mandate/internal/compliance"
	"github.com/mvca-labs/mandate/internal/rules"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// timeNow is a package-level var for testability.
var timeNow = time.Now

// --- Types ---

// Review is one persisted compliance review outcome.
type Review struct {
	ID             string `json:"id"`
	Category       string `json:"category"`
	Score          int    `json:"score"`
	Passed         bool   `json:"passed"`
	RequestExcerpt string `json:"request_excerpt"`
	ViolationCount int    `json:"violation_count"`
	CreatedAt      string `json:"created_at"`
}

// Stats holds aggregate review statistics.
type Stats struct {
	TotalReviews int             `json:"total_reviews"`
	PassedCount  int             `json:"passed_count"`
	PassRate     float64         `json:"pass_rate"` // 0..1, 0 when no reviews
	AverageScore float64         `json:"average_score"`
	TopViolated  []MandateCount  `json:"top_violated,omitempty"`
	ByCategory   []CategoryCount `json:"by_category,omitempty"`
}

// MandateCount pairs a mandate id with how often it was violated.
type MandateCount struct {
	MandateID string `json:"mandate_id"`
	Count     int    `json:"count"`
}

// CategoryCount pairs a request category with its review count.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// --- Config ---

// Config holds history store configuration.
type Config struct {
	DataDir          string
	MaxExcerptLength int
	MaxRecentResults int
	MaxTopViolated   int
}

// DefaultConfig returns the default configuration for the history store.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:          filepath.Join(home, ".mandate"),
		MaxExcerptLength: 200,
		MaxRecentResults: 20,
		MaxTopViolated:   5,
	}
}

// --- Store ---

// Store is the review audit log backed by SQLite.
type Store struct {
	db  *sql.DB
	cfg Config
}

// New creates a Store with the given configuration. It creates the data
// directory if needed, opens SQLite with WAL mode, and runs migrations.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("history: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "history.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("history: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("history: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS reviews (
			id              TEXT PRIMARY KEY,
			category        TEXT    NOT NULL,
			score           INTEGER NOT NULL,
			passed          INTEGER NOT NULL,
			request_excerpt TEXT    NOT NULL,
			violation_count INTEGER NOT NULL,
			created_at      TEXT    NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_reviews_created  ON reviews(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_reviews_category ON reviews(category);

		CREATE TABLE IF NOT EXISTS violations (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			review_id  TEXT NOT NULL,
			mandate_id TEXT NOT NULL,
			severity   TEXT NOT NULL,
			message    TEXT NOT NULL,
			FOREIGN KEY (review_id) REFERENCES reviews(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_violations_review  ON violations(review_id);
		CREATE INDEX IF NOT EXISTS idx_violations_mandate ON violations(mandate_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// --- Writes ---

// SaveReview persists one pipeline result and returns the review id.
// The raw request is truncated to the configured excerpt length —
// history is an audit trail, not a transcript.
func (s *Store) SaveReview(rawInput string, result compliance.Result) (string, error) {
	id := uuid.NewString()
	now := timeNow().UTC().Format(time.RFC3339)

	excerpt := rawInput
	if len(excerpt) > s.cfg.MaxExcerptLength {
		excerpt = excerpt[:s.cfg.MaxExcerptLength] + "…"
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("history: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(
		`INSERT INTO reviews (id, category, score, passed, request_excerpt, violation_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, result.Category, result.Report.Score, boolToInt(result.Report.Passed),
		excerpt, len(result.Report.Violations), now,
	); err != nil {
		return "", fmt.Errorf("history: insert review: %w", err)
	}

	for _, v := range result.Report.Violations {
		if _, err := tx.Exec(
			`INSERT INTO violations (review_id, mandate_id, severity, message) VALUES (?, ?, ?, ?)`,
			id, v.MandateID, string(v.Severity), v.Message,
		); err != nil {
			return "", fmt.Errorf("history: insert violation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("history: commit: %w", err)
	}
	return id, nil
}

// --- Reads ---

// Recent returns the most recent reviews, newest first.
func (s *Store) Recent(limit int) ([]Review, error) {
	if limit <= 0 || limit > s.cfg.MaxRecentResults {
		limit = s.cfg.MaxRecentResults
	}

	rows, err := s.db.Query(
		`SELECT id, category, score, passed, request_excerpt, violation_count, created_at
		 FROM reviews ORDER BY created_at DESC, id LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history: recent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []Review
	for rows.Next() {
		var r Review
		var passed int
		if err := rows.Scan(&r.ID, &r.Category, &r.Score, &passed, &r.RequestExcerpt, &r.ViolationCount, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Passed = passed != 0
		results = append(results, r)
	}
	return results, rows.Err()
}

// Violations returns the persisted violations for one review.
func (s *Store) Violations(reviewID string) ([]compliance.Violation, error) {
	rows, err := s.db.Query(
		`SELECT mandate_id, severity, message FROM violations WHERE review_id = ? ORDER BY id`,
		reviewID,
	)
	if err != nil {
		return nil, fmt.Errorf("history: violations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []compliance.Violation
	for rows.Next() {
		var v compliance.Violation
		var severity string
		if err := rows.Scan(&v.MandateID, &severity, &v.Message); err != nil {
			return nil, err
		}
		v.Severity = rules.Severity(severity)
		results = append(results, v)
	}
	return results, rows.Err()
}

// Stats aggregates all persisted reviews.
func (s *Store) Stats() (*Stats, error) {
	stats := &Stats{}

	row := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(passed), 0), COALESCE(AVG(score), 0) FROM reviews`,
	)
	if err := row.Scan(&stats.TotalReviews, &stats.PassedCount, &stats.AverageScore); err != nil {
		return nil, fmt.Errorf("history: stats: %w", err)
	}
	if stats.TotalReviews > 0 {
		stats.PassRate = float64(stats.PassedCount) / float64(stats.TotalReviews)
	}

	rows, err := s.db.Query(
		`SELECT mandate_id, COUNT(*) as n FROM violations
		 GROUP BY mandate_id ORDER BY n DESC, mandate_id LIMIT ?`,
		s.cfg.MaxTopViolated,
	)
	if err != nil {
		return nil, fmt.Errorf("history: top violated: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var mc MandateCount
		if err := rows.Scan(&mc.MandateID, &mc.Count); err != nil {
			return nil, err
		}
		stats.TopViolated = append(stats.TopViolated, mc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	catRows, err := s.db.Query(
		`SELECT category, COUNT(*) as n FROM reviews
		 GROUP BY category ORDER BY n DESC, category`,
	)
	if err != nil {
		return nil, fmt.Errorf("history: by category: %w", err)
	}
	defer func() { _ = catRows.Close() }()
	for catRows.Next() {
		var cc CategoryCount
		if err := catRows.Scan(&cc.Category, &cc.Count); err != nil {
			return nil, err
		}
		stats.ByCategory = append(stats.ByCategory, cc)
	}
	return stats, catRows.Err()
}

// --- Helpers ---

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
