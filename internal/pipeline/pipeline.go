// Package pipeline wires the corpus, resolution, scoring and report stages
// over the artifact store.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ppiankov/quotelens/internal/cache"
	"github.com/ppiankov/quotelens/internal/clean"
	"github.com/ppiankov/quotelens/internal/corpus"
	"github.com/ppiankov/quotelens/internal/llm"
	"github.com/ppiankov/quotelens/internal/logging"
	"github.com/ppiankov/quotelens/internal/model"
	"github.com/ppiankov/quotelens/internal/resolve"
	"github.com/ppiankov/quotelens/internal/store"
	"github.com/ppiankov/quotelens/internal/wikidata"
	"github.com/ppiankov/quotelens/internal/worker"
	"github.com/sirupsen/logrus"
)

// Pipeline orchestrates the processing stages
type Pipeline struct {
	config *model.Config
	store  *store.Store
	log    *logrus.Entry
	now    func() time.Time
}

// NewPipeline creates a pipeline over an open store
func NewPipeline(cfg *model.Config, st *store.Store, log *logrus.Entry) *Pipeline {
	if log == nil {
		log = logging.Discard()
	}
	return &Pipeline{
		config: cfg,
		store:  st,
		log:    log,
		now:    time.Now,
	}
}

// SetClock fixes the clock used for speaker ages
func (p *Pipeline) SetClock(now func() time.Time) {
	p.now = now
}

// Fetch downloads each URL into the download directory
func (p *Pipeline) Fetch(ctx context.Context, urls []string) ([]*FetchResult, error) {
	cfg := p.config.Download
	fetcher := NewFetcher(cfg.Timeout, cfg.UserAgent, cfg.MaxBytes,
		p.config.Classifier.HTTPProxy, p.config.Classifier.HTTPSProxy, p.config.Classifier.NoProxy)

	results := make([]*FetchResult, 0, len(urls))
	for _, u := range urls {
		p.log.WithField("url", u).Info("downloading")
		result, err := fetcher.FetchWithRetry(ctx, u, cfg.Dir)
		if err != nil {
			return results, fmt.Errorf("download %s: %w", u, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// Extract filters the corpus of each year into the store
func (p *Pipeline) Extract(ctx context.Context, years []int) (map[int]corpus.Stats, error) {
	cfg := p.config.Corpus
	filter, err := corpus.NewFilter(cfg.Keywords,
		corpus.WithBatchSize(cfg.BatchSize),
		corpus.WithLogger(p.log),
	)
	if err != nil {
		return nil, fmt.Errorf("build filter: %w", err)
	}

	extractor := corpus.NewExtractor(filter, p.store, cfg.Dir, cfg.Pattern, p.log)
	return extractor.ExtractYears(ctx, years)
}

// SpeakersResult is the output of the speakers stage
type SpeakersResult struct {
	ByYear map[int][]model.SpeakerSummary
	Misses []resolve.LabelMiss
}

// Speakers resolves and stores the speaker summaries of each year
func (p *Pipeline) Speakers(ctx context.Context, years []int) (*SpeakersResult, error) {
	quotes, err := p.normalized(ctx, years)
	if err != nil {
		return nil, err
	}

	resolver, err := p.resolver(ctx, quotes)
	if err != nil {
		return nil, err
	}

	result := &SpeakersResult{ByYear: make(map[int][]model.SpeakerSummary, len(years))}
	for _, year := range years {
		summaries, err := resolver.Summaries(quotes[year], year)
		if err != nil {
			return nil, fmt.Errorf("summarize %d: %w", year, err)
		}
		if err := p.store.SaveSpeakers(ctx, year, summaries); err != nil {
			return nil, fmt.Errorf("save speakers %d: %w", year, err)
		}
		result.ByYear[year] = summaries
	}

	result.Misses = resolver.Misses()
	if len(result.Misses) > 0 {
		p.log.WithField("distinct", len(result.Misses)).Warn("attribute ids without labels")
	}
	return result, nil
}

// Score classifies and measures the quotations of each year and stores the
// scored records. Returns the number of records per year.
func (p *Pipeline) Score(ctx context.Context, years []int, scorer *Scorer) (map[int]int, error) {
	quotes, err := p.normalized(ctx, years)
	if err != nil {
		return nil, err
	}

	resolver, err := p.resolver(ctx, quotes)
	if err != nil {
		return nil, err
	}

	counts := make(map[int]int, len(years))
	for _, year := range years {
		log := p.log.WithField("year", year)
		log.WithField("quotations", len(quotes[year])).Info("scoring quotations")

		scored, err := scorer.Score(ctx, quotes[year], resolver)
		if err != nil {
			return counts, fmt.Errorf("score %d: %w", year, err)
		}
		for i := range scored {
			scored[i].Year = year
		}

		if err := p.store.SaveScored(ctx, year, scored); err != nil {
			return counts, fmt.Errorf("save scored %d: %w", year, err)
		}
		counts[year] = len(scored)
	}
	return counts, nil
}

// NewScorer builds the configured classifier stack: provider, cache,
// rate limiter and worker pool
func (p *Pipeline) NewScorer() (*Scorer, error) {
	cfg := p.config.Classifier

	classifier, err := llm.NewClassifier(llm.ConfigFromModel(cfg))
	if err != nil {
		return nil, fmt.Errorf("create classifier: %w", err)
	}

	if c := cache.New(p.config.Cache); c != nil {
		classifier = llm.NewCachedClassifier(classifier, c, cfg.Model, p.config.Cache.DiskTTL)
	}

	var limiter *worker.Limiter
	var limitKey string
	if llm.Remote(cfg.Provider) {
		limiter = worker.NewLimiter(cfg.RequestsPerSecond, cfg.BurstSize)
		limitKey = worker.Key(cfg.Provider, cfg.BaseURL)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	batch := worker.NewBatchClassifier(classifier, limiter, limitKey, workers)
	return NewScorer(batch, p.config.Regions, p.log), nil
}

// normalized loads each year's quotations with speaker aliases merged.
// Years are normalized independently.
func (p *Pipeline) normalized(ctx context.Context, years []int) (map[int][]model.Quotation, error) {
	out := make(map[int][]model.Quotation, len(years))
	for _, year := range years {
		quotes, err := p.store.LoadQuotations(ctx, year)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("no quotations for %d, run extract first: %w", year, err)
			}
			return nil, fmt.Errorf("load quotations %d: %w", year, err)
		}
		out[year] = clean.Clean(quotes)
	}
	return out, nil
}

// resolver loads the knowledge base restricted to the speakers of quotes
func (p *Pipeline) resolver(ctx context.Context, quotes map[int][]model.Quotation) (*resolve.Resolver, error) {
	ids := make(map[string]struct{})
	for _, qs := range quotes {
		for id := range wikidata.CanonicalIDs(qs) {
			ids[id] = struct{}{}
		}
	}

	kb := p.config.KnowledgeBase
	entities, err := wikidata.LoadEntitiesFile(ctx, kb.Entities, wikidata.Keep(ids))
	if err != nil {
		return nil, fmt.Errorf("load entities: %w", err)
	}
	index := wikidata.Restrict(entities, ids)

	labels, err := wikidata.LoadLabelsFile(kb.Labels)
	if err != nil {
		return nil, fmt.Errorf("load labels: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"speakers": len(ids),
		"entities": index.Len(),
		"labels":   len(labels),
	}).Info("knowledge base loaded")

	return resolve.NewResolver(index, labels,
		resolve.WithClock(p.now),
		resolve.WithStrictLabels(p.config.Resolve.StrictLabels),
		resolve.WithStrictDates(p.config.Resolve.StrictDates),
		resolve.WithLogger(p.log),
	), nil
}
