// Package corpus streams the year-partitioned quotation corpus and keeps the
// quotations that mention any of a set of keywords.
package corpus

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ppiankov/quotelens/internal/logging"
	"github.com/ppiankov/quotelens/internal/model"
	"github.com/sirupsen/logrus"
)

// DefaultBatchSize is the number of corpus lines decoded and held at once
const DefaultBatchSize = 100000

// maxLineBytes bounds a single corpus line
const maxLineBytes = 16 << 20

var (
	// ErrNoKeywords is returned when a filter is built without keywords
	ErrNoKeywords = errors.New("no keywords")
)

// Stats counts what a filter run saw
type Stats struct {
	Lines         int64 `json:"lines"`
	Matched       int64 `json:"matched"`
	Malformed     int64 `json:"malformed"`
	NullQuotation int64 `json:"null_quotation"`
	Batches       int64 `json:"batches"`
}

// Add accumulates other into s
func (s *Stats) Add(other Stats) {
	s.Lines += other.Lines
	s.Matched += other.Matched
	s.Malformed += other.Malformed
	s.NullQuotation += other.NullQuotation
	s.Batches += other.Batches
}

// Filter keeps quotations whose text matches a keyword alternation
type Filter struct {
	pattern   *regexp.Regexp
	batchSize int
	log       *logrus.Entry
}

// Option configures a Filter
type Option func(*Filter)

// WithBatchSize sets how many lines are decoded per batch
func WithBatchSize(n int) Option {
	return func(f *Filter) {
		if n > 0 {
			f.batchSize = n
		}
	}
}

// WithLogger sets the logger used for warnings
func WithLogger(log *logrus.Entry) Option {
	return func(f *Filter) {
		if log != nil {
			f.log = log
		}
	}
}

// NewFilter builds a filter from keyword patterns. Keywords are regular
// expression fragments joined into one case-insensitive alternation.
func NewFilter(keywords []string, opts ...Option) (*Filter, error) {
	var parts []string
	for _, k := range keywords {
		if strings.TrimSpace(k) == "" {
			continue
		}
		parts = append(parts, k)
	}
	if len(parts) == 0 {
		return nil, ErrNoKeywords
	}

	pattern, err := regexp.Compile("(?i)(" + strings.Join(parts, "|") + ")")
	if err != nil {
		return nil, fmt.Errorf("compile keyword pattern: %w", err)
	}

	f := &Filter{
		pattern:   pattern,
		batchSize: DefaultBatchSize,
		log:       logging.Discard(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Pattern returns the compiled alternation
func (f *Filter) Pattern() string {
	return f.pattern.String()
}

// Match reports whether the quotation text contains any keyword.
// Quotations without text never match.
func (f *Filter) Match(q model.Quotation) bool {
	if q.Quotation == nil {
		return false
	}
	return f.pattern.MatchString(*q.Quotation)
}

// FilterReader streams JSON lines from r in batches and passes each batch's
// matching quotations to emit. Only one batch is held in memory at a time.
func (f *Filter) FilterReader(ctx context.Context, r io.Reader, emit func([]model.Quotation) error) (Stats, error) {
	var stats Stats

	reader := bufio.NewReaderSize(r, 1<<20)
	batch := make([][]byte, 0, min(f.batchSize, 4096))

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		stats.Batches++
		matched := f.filterBatch(batch, &stats)
		batch = batch[:0]
		if len(matched) == 0 {
			return nil
		}
		stats.Matched += int64(len(matched))
		return emit(matched)
	}

	for {
		line, err := readLine(reader)
		if len(line) > 0 {
			stats.Lines++
			batch = append(batch, line)
			if len(batch) >= f.batchSize {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return stats, ctxErr
				}
				if emitErr := flush(); emitErr != nil {
					return stats, emitErr
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("read corpus: %w", err)
		}
	}

	if err := flush(); err != nil {
		return stats, err
	}
	return stats, nil
}

// FilterFile opens path (decompressing .bz2 and .gz) and filters it
func (f *Filter) FilterFile(ctx context.Context, path string, emit func([]model.Quotation) error) (Stats, error) {
	rc, err := OpenFile(path)
	if err != nil {
		return Stats{}, err
	}
	defer func() { _ = rc.Close() }()

	stats, err := f.FilterReader(ctx, rc, emit)
	if err != nil {
		return stats, fmt.Errorf("filter %s: %w", path, err)
	}
	return stats, nil
}

func (f *Filter) filterBatch(lines [][]byte, stats *Stats) []model.Quotation {
	var matched []model.Quotation
	for _, line := range lines {
		var q model.Quotation
		if err := json.Unmarshal(line, &q); err != nil {
			stats.Malformed++
			f.log.WithError(err).Warn("skipping malformed corpus line")
			continue
		}
		if q.Quotation == nil {
			stats.NullQuotation++
			continue
		}
		if f.Match(q) {
			matched = append(matched, q)
		}
	}
	return matched
}

// readLine returns the next non-empty line without its terminator.
// The returned slice is owned by the caller.
func readLine(r *bufio.Reader) ([]byte, error) {
	var buf []byte
	for {
		chunk, err := r.ReadSlice('\n')
		buf = append(buf, chunk...)
		if len(buf) > maxLineBytes {
			return nil, fmt.Errorf("line exceeds %d bytes", maxLineBytes)
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		return bytes.TrimSpace(buf), err
	}
}
