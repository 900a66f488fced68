package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ppiankov/quotelens/internal/model"
)

// SaveSpeakers replaces the year's speaker summaries
func (s *Store) SaveSpeakers(ctx context.Context, year int, speakers []model.SpeakerSummary) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.reset(ctx, tx, KindSpeakers, year); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO speakers(year, seq, speaker, quotation_count, gender, age, nationality, political_party, occupation)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, sp := range speakers {
			_, err := stmt.ExecContext(ctx, year, i, sp.Speaker, sp.QuotationCount,
				nullString(sp.Gender), nullInt(sp.Age), nullString(sp.Nationality),
				nullString(sp.PoliticalParty), nullString(sp.Occupation))
			if err != nil {
				return fmt.Errorf("insert speaker %q: %w", sp.Speaker, err)
			}
		}
		return s.bumpRows(ctx, tx, KindSpeakers, year, len(speakers))
	})
}

// LoadSpeakers returns the year's speaker summaries in stored order
func (s *Store) LoadSpeakers(ctx context.Context, year int) ([]model.SpeakerSummary, error) {
	if err := s.exists(ctx, KindSpeakers, year); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT speaker, quotation_count, gender, age, nationality, political_party, occupation
FROM speakers WHERE year = ? ORDER BY seq`, year)
	if err != nil {
		return nil, fmt.Errorf("query speakers: %w", err)
	}
	defer rows.Close()

	speakers := []model.SpeakerSummary{}
	for rows.Next() {
		var (
			sp                                     model.SpeakerSummary
			gender, nationality, party, occupation sql.NullString
			age                                    sql.NullInt64
		)
		if err := rows.Scan(&sp.Speaker, &sp.QuotationCount, &gender, &age, &nationality, &party, &occupation); err != nil {
			return nil, err
		}
		sp.Year = year
		sp.Gender = stringPtr(gender)
		sp.Age = intPtr(age)
		sp.Nationality = stringPtr(nationality)
		sp.PoliticalParty = stringPtr(party)
		sp.Occupation = stringPtr(occupation)
		speakers = append(speakers, sp)
	}
	return speakers, rows.Err()
}

// SaveScored replaces the year's scored quotations
func (s *Store) SaveScored(ctx context.Context, year int, scored []model.ScoredQuotation) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.reset(ctx, tx, KindScored, year); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO scored(year, seq, quote_id, quotation, speaker, num_occurrences, month, sentiment_label,
	sentiment_score, complexity, gender, age, nationality, political_party, region)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, q := range scored {
			_, err := stmt.ExecContext(ctx, year, i, q.QuoteID, q.Quotation, q.Speaker, q.NumOccurrences,
				q.Month, q.SentimentLabel, nullFloat(q.SentimentScore), nullFloat(q.Complexity),
				nullString(q.Gender), nullInt(q.Age), nullString(q.Nationality),
				nullString(q.PoliticalParty), nullString(q.Region))
			if err != nil {
				return fmt.Errorf("insert scored %s: %w", q.QuoteID, err)
			}
		}
		return s.bumpRows(ctx, tx, KindScored, year, len(scored))
	})
}

// LoadScored returns the year's scored quotations in stored order
func (s *Store) LoadScored(ctx context.Context, year int) ([]model.ScoredQuotation, error) {
	if err := s.exists(ctx, KindScored, year); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT quote_id, quotation, speaker, num_occurrences, month, sentiment_label, sentiment_score,
	complexity, gender, age, nationality, political_party, region
FROM scored WHERE year = ? ORDER BY seq`, year)
	if err != nil {
		return nil, fmt.Errorf("query scored: %w", err)
	}
	defer rows.Close()

	scored := []model.ScoredQuotation{}
	for rows.Next() {
		var (
			q                                  model.ScoredQuotation
			month, label                       sql.NullString
			sentiment, complexity              sql.NullFloat64
			gender, nationality, party, region sql.NullString
			age                                sql.NullInt64
		)
		err := rows.Scan(&q.QuoteID, &q.Quotation, &q.Speaker, &q.NumOccurrences, &month, &label,
			&sentiment, &complexity, &gender, &age, &nationality, &party, &region)
		if err != nil {
			return nil, err
		}
		q.Year = year
		q.Month = month.String
		q.SentimentLabel = label.String
		q.SentimentScore = floatPtr(sentiment)
		q.Complexity = floatPtr(complexity)
		q.Gender = stringPtr(gender)
		q.Age = intPtr(age)
		q.Nationality = stringPtr(nationality)
		q.PoliticalParty = stringPtr(party)
		q.Region = stringPtr(region)
		scored = append(scored, q)
	}
	return scored, rows.Err()
}
