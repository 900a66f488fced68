package corpus

import (
	"context"
	"errors"
	"fmt"

	"github.com/ppiankov/quotelens/internal/logging"
	"github.com/ppiankov/quotelens/internal/model"
	"github.com/sirupsen/logrus"
)

// Sink persists filtered quotations per year. Appended batches replace the
// stored year only on CommitQuotations; AbortQuotations discards them.
type Sink interface {
	BeginQuotations(ctx context.Context, year int) error
	AppendQuotations(ctx context.Context, year int, quotes []model.Quotation) error
	CommitQuotations(ctx context.Context, year int) error
	AbortQuotations(ctx context.Context, year int) error
}

// Extractor filters each year's corpus file into the sink
type Extractor struct {
	filter  *Filter
	sink    Sink
	dir     string
	pattern string
	log     *logrus.Entry
}

// NewExtractor creates an extractor reading files named by pattern under dir
func NewExtractor(filter *Filter, sink Sink, dir, pattern string, log *logrus.Entry) *Extractor {
	if log == nil {
		log = logging.Discard()
	}
	return &Extractor{
		filter:  filter,
		sink:    sink,
		dir:     dir,
		pattern: pattern,
		log:     log,
	}
}

// ExtractYear replaces the stored quotations of year with the filtered corpus
func (e *Extractor) ExtractYear(ctx context.Context, year int) (Stats, error) {
	path := CorpusPath(e.dir, e.pattern, year)
	log := e.log.WithFields(logrus.Fields{"year": year, "path": path})
	log.Info("filtering corpus")

	rc, err := OpenFile(path)
	if err != nil {
		return Stats{}, err
	}
	defer func() { _ = rc.Close() }()

	if err := e.sink.BeginQuotations(ctx, year); err != nil {
		return Stats{}, fmt.Errorf("begin year %d: %w", year, err)
	}

	stats, err := e.filter.FilterReader(ctx, rc, func(batch []model.Quotation) error {
		if err := e.sink.AppendQuotations(ctx, year, batch); err != nil {
			return fmt.Errorf("store batch: %w", err)
		}
		log.WithField("matched", len(batch)).Debug("stored batch")
		return nil
	})
	if err != nil {
		err = fmt.Errorf("filter %s: %w", path, err)
		if abortErr := e.sink.AbortQuotations(context.WithoutCancel(ctx), year); abortErr != nil {
			err = errors.Join(err, fmt.Errorf("abort year %d: %w", year, abortErr))
		}
		return stats, err
	}

	if err := e.sink.CommitQuotations(ctx, year); err != nil {
		return stats, fmt.Errorf("commit year %d: %w", year, err)
	}

	log.WithFields(logrus.Fields{
		"lines":     stats.Lines,
		"matched":   stats.Matched,
		"malformed": stats.Malformed,
		"batches":   stats.Batches,
	}).Info("corpus filtered")

	return stats, nil
}

// ExtractYears runs ExtractYear for each year in order, stopping at the first error
func (e *Extractor) ExtractYears(ctx context.Context, years []int) (map[int]Stats, error) {
	all := make(map[int]Stats, len(years))
	for _, year := range years {
		stats, err := e.ExtractYear(ctx, year)
		if err != nil {
			return all, err
		}
		all[year] = stats
	}
	return all, nil
}
