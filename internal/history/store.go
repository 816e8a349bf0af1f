// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists discovery runs and summary outcomes in a local
// SQLite database, so repeat digest runs can skip papers that already have
// a summary for the requested language and audience level.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-digest/pkg/types"
)

const dbFile = "digest.db"

// Store manages the run history SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the history database at dir/digest.db,
// creating the schema if it does not exist.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "history"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			topic TEXT NOT NULL,
			date_from TEXT,
			date_to TEXT,
			outcome TEXT NOT NULL,
			attempts INTEGER,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS papers (
			url TEXT NOT NULL,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			title TEXT,
			publication_date TEXT,
			citation_number INTEGER,
			composite_score REAL,
			PRIMARY KEY (url, run_id)
		)`,
		`CREATE TABLE IF NOT EXISTS summaries (
			paper_url TEXT NOT NULL,
			language TEXT NOT NULL,
			level TEXT NOT NULL,
			status TEXT NOT NULL,
			processing_seconds REAL,
			error TEXT,
			created_at TEXT NOT NULL,
			PRIMARY KEY (paper_url, language, level)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_run_id ON papers(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordRun stores one discovery run and its accepted papers, returning
// the new run ID.
func (s *Store) RecordRun(topic, dateFrom, dateTo, outcome string, attempts int, papers []types.SearchedPaper) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO runs (topic, date_from, date_to, outcome, attempts, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		topic, dateFrom, dateTo, outcome, attempts, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run ID: %w", err)
	}

	for _, p := range papers {
		if _, err := tx.Exec(
			`INSERT INTO papers (url, run_id, title, publication_date, citation_number, composite_score)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			p.URL, runID, p.Title, p.PublicationDate, p.CitationNumber, p.CompositeScore,
		); err != nil {
			return 0, fmt.Errorf("inserting paper %s: %w", p.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// RecordSummaries stores the outcome of each summary attempt. An existing
// record for the same (paper, language, level) tuple is replaced, so a
// retried failure can be upgraded to a success.
func (s *Store) RecordSummaries(results []types.SummaryResult, language, level string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, r := range results {
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO summaries
			 (paper_url, language, level, status, processing_seconds, error, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.PaperURL, language, level, string(r.Status), r.ProcessingSeconds, r.Error, now,
		); err != nil {
			return fmt.Errorf("inserting summary for %s: %w", r.PaperURL, err)
		}
	}

	return tx.Commit()
}

// HasSummary reports whether a successful summary already exists for the
// (paper, language, level) tuple.
func (s *Store) HasSummary(paperURL, language, level string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT count(*) FROM summaries
		 WHERE paper_url = ? AND language = ? AND level = ? AND status = ?`,
		paperURL, language, level, string(types.StatusSuccess),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("querying summaries: %w", err)
	}
	return count > 0, nil
}

// RunSummary is one row of the run listing.
type RunSummary struct {
	ID       int64
	Topic    string
	DateFrom string
	DateTo   string
	Outcome  string
	Papers   int
	Created  string
}

// ListRuns returns the most recent discovery runs, newest first.
func (s *Store) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT r.id, r.topic, r.date_from, r.date_to, r.outcome, r.created_at,
		        (SELECT count(*) FROM papers p WHERE p.run_id = r.id)
		 FROM runs r ORDER BY r.id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.Topic, &r.DateFrom, &r.DateTo, &r.Outcome, &r.Created, &r.Papers); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
