package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ppiankov/quotelens/internal/model"
)

// BeginQuotations starts a staged extraction for year. The stored
// quotations stay visible until CommitQuotations swaps the staged set in.
func (s *Store) BeginQuotations(ctx context.Context, year int) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.reset(ctx, tx, kindStagedQuotations, year)
	})
}

// AppendQuotations adds quotations to the staged set for year.
// BeginQuotations must be called first.
func (s *Store) AppendQuotations(ctx context.Context, year int, quotes []model.Quotation) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.appendQuotations(ctx, tx, kindStagedQuotations, year, quotes)
	})
}

// CommitQuotations replaces the year's quotations with the staged set
func (s *Store) CommitQuotations(ctx context.Context, year int) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := nextSeq(ctx, tx, kindStagedQuotations, year)
		if err != nil {
			return err
		}
		if err := s.reset(ctx, tx, KindQuotations, year); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO quotations(year, seq, quote_id, quotation, speaker, qids, date, num_occurrences, probas, urls, phase)
SELECT year, seq, quote_id, quotation, speaker, qids, date, num_occurrences, probas, urls, phase
FROM quotations_staging WHERE year = ?`, year)
		if err != nil {
			return fmt.Errorf("copy staged quotations: %w", err)
		}
		if err := s.bumpRows(ctx, tx, KindQuotations, year, rows); err != nil {
			return fmt.Errorf("count quotations: %w", err)
		}
		return dropStaged(ctx, tx, year)
	})
}

// AbortQuotations discards the staged set, leaving stored quotations untouched
func (s *Store) AbortQuotations(ctx context.Context, year int) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return dropStaged(ctx, tx, year)
	})
}

func dropStaged(ctx context.Context, tx *sql.Tx, year int) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM quotations_staging WHERE year = ?", year); err != nil {
		return fmt.Errorf("clear staged quotations %d: %w", year, err)
	}
	_, err := tx.ExecContext(ctx, "DELETE FROM artifacts WHERE kind = ? AND year = ?", kindStagedQuotations, year)
	if err != nil {
		return fmt.Errorf("unmark staged quotations %d: %w", year, err)
	}
	return nil
}

// SaveQuotations replaces the year's quotations in one transaction
func (s *Store) SaveQuotations(ctx context.Context, year int, quotes []model.Quotation) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.reset(ctx, tx, KindQuotations, year); err != nil {
			return err
		}
		return s.appendQuotations(ctx, tx, KindQuotations, year, quotes)
	})
}

// appendQuotations inserts into the quotations table named by kind
func (s *Store) appendQuotations(ctx context.Context, tx *sql.Tx, kind string, year int, quotes []model.Quotation) error {
	seq, err := nextSeq(ctx, tx, kind, year)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO `+kind+`(year, seq, quote_id, quotation, speaker, qids, date, num_occurrences, probas, urls, phase)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, q := range quotes {
		qids, err := jsonColumn(q.QIDs)
		if err != nil {
			return err
		}
		probas, err := jsonColumn(q.Probas)
		if err != nil {
			return err
		}
		urls, err := jsonColumn(q.URLs)
		if err != nil {
			return err
		}

		_, err = stmt.ExecContext(ctx, year, seq+i, q.QuoteID, nullString(q.Quotation), q.Speaker,
			qids, q.Date, q.NumOccurrences, probas, urls, q.Phase)
		if err != nil {
			return fmt.Errorf("insert quotation %s: %w", q.QuoteID, err)
		}
	}

	if err := s.bumpRows(ctx, tx, kind, year, len(quotes)); err != nil {
		return fmt.Errorf("count quotations: %w", err)
	}
	return nil
}

// LoadQuotations returns the year's quotations in the order they were stored
func (s *Store) LoadQuotations(ctx context.Context, year int) ([]model.Quotation, error) {
	if err := s.exists(ctx, KindQuotations, year); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT quote_id, quotation, speaker, qids, date, num_occurrences, probas, urls, phase
FROM quotations WHERE year = ? ORDER BY seq`, year)
	if err != nil {
		return nil, fmt.Errorf("query quotations: %w", err)
	}
	defer rows.Close()

	quotes := []model.Quotation{}
	for rows.Next() {
		var (
			q                  model.Quotation
			text               sql.NullString
			qids, probas, urls sql.NullString
			date, phase        sql.NullString
		)
		if err := rows.Scan(&q.QuoteID, &text, &q.Speaker, &qids, &date, &q.NumOccurrences, &probas, &urls, &phase); err != nil {
			return nil, err
		}
		if text.Valid {
			q.Quotation = model.StringPtr(text.String)
		}
		if err := fromJSON(qids, &q.QIDs); err != nil {
			return nil, err
		}
		if err := fromJSON(probas, &q.Probas); err != nil {
			return nil, err
		}
		if err := fromJSON(urls, &q.URLs); err != nil {
			return nil, err
		}
		q.Date = date.String
		q.Phase = phase.String
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

// jsonColumn encodes a list as JSON text, nil as NULL
func jsonColumn[T any](v []T) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode column: %w", err)
	}
	return string(data), nil
}

func fromJSON[T any](col sql.NullString, dst *[]T) error {
	if !col.Valid {
		return nil
	}
	if err := json.Unmarshal([]byte(col.String), dst); err != nil {
		return fmt.Errorf("decode column: %w", err)
	}
	return nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullInt(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return model.StringPtr(ns.String)
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	return model.IntPtr(int(n.Int64))
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	return model.FloatPtr(f.Float64)
}
