// Package store persists pipeline artifacts (filtered quotations, speaker
// summaries, scored quotations and run history) in SQLite.
package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// ErrNotFound means an artifact was never written for the requested year
var ErrNotFound = errors.New("artifact not found")

// Artifact kinds
const (
	KindQuotations = "quotations"
	KindSpeakers   = "speakers"
	KindScored     = "scored"

	// kindStagedQuotations holds an extraction until it is committed
	kindStagedQuotations = "quotations_staging"
)

// Store is a SQLite artifact database
type Store struct {
	db      *sql.DB
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// Open opens or creates the database at path with WAL mode enabled
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && path != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// one writer at a time; sqlite serializes writes anyway
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{
		db:      db,
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	command TEXT NOT NULL,
	started_at TEXT NOT NULL,
	finished_at TEXT,
	status TEXT NOT NULL DEFAULT 'running',
	detail TEXT
);

CREATE TABLE IF NOT EXISTS artifacts (
	kind TEXT NOT NULL,
	year INTEGER NOT NULL,
	row_count INTEGER NOT NULL DEFAULT 0,
	updated_at TEXT NOT NULL,
	PRIMARY KEY(kind, year)
);

CREATE TABLE IF NOT EXISTS quotations (
	year INTEGER NOT NULL,
	seq INTEGER NOT NULL,
	quote_id TEXT NOT NULL,
	quotation TEXT,
	speaker TEXT NOT NULL,
	qids TEXT,
	date TEXT,
	num_occurrences INTEGER NOT NULL DEFAULT 0,
	probas TEXT,
	urls TEXT,
	phase TEXT,
	PRIMARY KEY(year, seq)
);

CREATE TABLE IF NOT EXISTS quotations_staging (
	year INTEGER NOT NULL,
	seq INTEGER NOT NULL,
	quote_id TEXT NOT NULL,
	quotation TEXT,
	speaker TEXT NOT NULL,
	qids TEXT,
	date TEXT,
	num_occurrences INTEGER NOT NULL DEFAULT 0,
	probas TEXT,
	urls TEXT,
	phase TEXT,
	PRIMARY KEY(year, seq)
);

CREATE TABLE IF NOT EXISTS speakers (
	year INTEGER NOT NULL,
	seq INTEGER NOT NULL,
	speaker TEXT NOT NULL,
	quotation_count INTEGER NOT NULL,
	gender TEXT,
	age INTEGER,
	nationality TEXT,
	political_party TEXT,
	occupation TEXT,
	PRIMARY KEY(year, seq)
);

CREATE TABLE IF NOT EXISTS scored (
	year INTEGER NOT NULL,
	seq INTEGER NOT NULL,
	quote_id TEXT NOT NULL,
	quotation TEXT NOT NULL,
	speaker TEXT NOT NULL,
	num_occurrences INTEGER NOT NULL DEFAULT 0,
	month TEXT,
	sentiment_label TEXT,
	sentiment_score REAL,
	complexity REAL,
	gender TEXT,
	age INTEGER,
	nationality TEXT,
	political_party TEXT,
	region TEXT,
	PRIMARY KEY(year, seq)
);

CREATE INDEX IF NOT EXISTS idx_quotations_speaker ON quotations(year, speaker);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

// reset clears one artifact inside tx and marks it present with no rows
func (s *Store) reset(ctx context.Context, tx *sql.Tx, kind string, year int) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+kind+" WHERE year = ?", year); err != nil {
		return fmt.Errorf("clear %s %d: %w", kind, year, err)
	}
	_, err := tx.ExecContext(ctx, `
INSERT INTO artifacts(kind, year, row_count, updated_at) VALUES(?, ?, 0, ?)
ON CONFLICT(kind, year) DO UPDATE SET row_count = 0, updated_at = excluded.updated_at`,
		kind, year, s.timestamp())
	if err != nil {
		return fmt.Errorf("mark %s %d: %w", kind, year, err)
	}
	return nil
}

// nextSeq returns the row count of an artifact, which is the next sequence number
func nextSeq(ctx context.Context, tx *sql.Tx, kind string, year int) (int, error) {
	var rows int
	err := tx.QueryRowContext(ctx,
		"SELECT row_count FROM artifacts WHERE kind = ? AND year = ?", kind, year).Scan(&rows)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%s %d: %w", kind, year, ErrNotFound)
	}
	return rows, err
}

func (s *Store) bumpRows(ctx context.Context, tx *sql.Tx, kind string, year, added int) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE artifacts SET row_count = row_count + ?, updated_at = ? WHERE kind = ? AND year = ?",
		added, s.timestamp(), kind, year)
	return err
}

// exists reports whether an artifact was written
func (s *Store) exists(ctx context.Context, kind string, year int) error {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM artifacts WHERE kind = ? AND year = ?", kind, year).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", kind, year, ErrNotFound)
	}
	return err
}

// Years lists the years with an artifact of kind, ascending
func (s *Store) Years(ctx context.Context, kind string) ([]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT year FROM artifacts WHERE kind = ? ORDER BY year", kind)
	if err != nil {
		return nil, fmt.Errorf("list years: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// withTx runs fn in a transaction, committing when fn succeeds
func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
