package pipeline

import (
	"context"
	"fmt"
	"sort"

	"github.com/ppiankov/quotelens/internal/logging"
	"github.com/ppiankov/quotelens/internal/model"
	"github.com/ppiankov/quotelens/internal/resolve"
	"github.com/ppiankov/quotelens/internal/text"
	"github.com/ppiankov/quotelens/internal/worker"
	"github.com/sirupsen/logrus"
)

// Scorer enriches quotations with text metrics and speaker attributes
type Scorer struct {
	batch   *worker.BatchClassifier
	regions map[string]string // nationality -> region
	log     *logrus.Entry
}

// NewScorer creates a scorer. A nil batch classifier leaves sentiment unset.
func NewScorer(batch *worker.BatchClassifier, regions map[string][]string, log *logrus.Entry) *Scorer {
	if log == nil {
		log = logging.Discard()
	}
	return &Scorer{
		batch:   batch,
		regions: invertRegions(regions),
		log:     log,
	}
}

// Score returns one scored record per quotation, in input order. A failed
// classification leaves that record's sentiment nil. Speaker attributes come
// from the qids of the speaker's first quotation in quotes.
func (s *Scorer) Score(ctx context.Context, quotes []model.Quotation, resolver *resolve.Resolver) ([]model.ScoredQuotation, error) {
	out := make([]model.ScoredQuotation, len(quotes))

	var texts []string
	var positions []int
	for i, q := range quotes {
		out[i] = model.ScoredQuotation{
			QuoteID:        q.QuoteID,
			Quotation:      q.Text(),
			Speaker:        q.Speaker,
			NumOccurrences: q.NumOccurrences,
			Month:          text.MonthFromQuoteID(q.QuoteID),
		}
		if q.Quotation == nil {
			continue
		}
		out[i].Complexity = model.FloatPtr(text.Complexity(*q.Quotation))
		texts = append(texts, *q.Quotation)
		positions = append(positions, i)
	}

	if err := s.sentiment(ctx, out, texts, positions); err != nil {
		return nil, err
	}
	if err := s.attributes(quotes, out, resolver); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Scorer) sentiment(ctx context.Context, out []model.ScoredQuotation, texts []string, positions []int) error {
	if s.batch == nil || len(texts) == 0 {
		return nil
	}

	failed := 0
	for i, r := range s.batch.ScoreBatch(ctx, texts) {
		if r.Err != nil {
			failed++
			s.log.WithField("quote", out[positions[i]].QuoteID).WithError(r.Err).Debug("classification failed")
			continue
		}

		label := r.Label.String()
		score, err := text.ParseSentimentLabel(label)
		if err != nil {
			failed++
			s.log.WithField("label", label).WithError(err).Debug("unparseable label")
			continue
		}
		rec := &out[positions[i]]
		rec.SentimentLabel = label
		rec.SentimentScore = model.FloatPtr(score)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("score sentiment: %w", err)
	}
	if failed > 0 {
		s.log.WithFields(logrus.Fields{
			"failed": failed,
			"total":  len(texts),
		}).Warn("some quotations were not classified")
	}
	return nil
}

func (s *Scorer) attributes(quotes []model.Quotation, out []model.ScoredQuotation, resolver *resolve.Resolver) error {
	if resolver == nil {
		return nil
	}

	resolved := make(map[string]resolve.Attributes)
	for i, q := range quotes {
		attrs, ok := resolved[q.Speaker]
		if !ok {
			var err error
			attrs, err = resolver.Attributes(q.QIDs)
			if err != nil {
				return fmt.Errorf("resolve %q: %w", q.Speaker, err)
			}
			resolved[q.Speaker] = attrs
		}

		rec := &out[i]
		rec.Gender = attrs.Gender
		rec.Age = attrs.Age
		rec.Nationality = attrs.Nationality
		rec.PoliticalParty = attrs.PoliticalParty
		if attrs.Nationality != nil {
			if region, ok := s.regions[*attrs.Nationality]; ok {
				rec.Region = model.StringPtr(region)
			}
		}
	}
	return nil
}

// invertRegions maps each nationality to its region. A nationality listed
// under several regions belongs to the alphabetically first.
func invertRegions(regions map[string][]string) map[string]string {
	names := make([]string, 0, len(regions))
	for name := range regions {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]string)
	for _, name := range names {
		for _, nationality := range regions[name] {
			if _, taken := out[nationality]; !taken {
				out[nationality] = name
			}
		}
	}
	return out
}
