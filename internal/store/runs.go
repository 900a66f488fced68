package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// Run status values
const (
	RunRunning   = "running"
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
)

// Run is one recorded command invocation
type Run struct {
	ID         string     `json:"id"`
	Command    string     `json:"command"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Status     string     `json:"status"`
	Detail     string     `json:"detail,omitempty"`
}

// BeginRun records the start of a command and returns its ULID
func (s *Store) BeginRun(ctx context.Context, command string) (string, error) {
	s.mu.Lock()
	id := ulid.MustNew(ulid.Timestamp(s.now()), s.entropy).String()
	s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs(id, command, started_at, status) VALUES(?, ?, ?, ?)",
		id, command, s.timestamp(), RunRunning)
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	return id, nil
}

// FinishRun records the outcome of a run. A nil runErr marks success.
func (s *Store) FinishRun(ctx context.Context, id string, runErr error, detail string) error {
	status := RunSucceeded
	if runErr != nil {
		status = RunFailed
		if detail == "" {
			detail = runErr.Error()
		}
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE runs SET finished_at = ?, status = ?, detail = ? WHERE id = ?",
		s.timestamp(), status, detail, id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return nil
}

// Runs lists recorded runs, most recent first
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, command, started_at, finished_at, status, detail FROM runs ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r        Run
			started  string
			finished sql.NullString
			detail   sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Command, &started, &finished, &r.Status, &detail); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if finished.Valid {
			if t, err := time.Parse(time.RFC3339Nano, finished.String); err == nil {
				r.FinishedAt = &t
			}
		}
		r.Detail = detail.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
