package worker

import (
	"context"
	"fmt"

	"github.com/ppiankov/quotelens/internal/llm"
)

// ClassifyJob labels one quotation
type ClassifyJob struct {
	Position   int
	Text       string
	Classifier llm.Classifier
	Limiter    *Limiter
	LimitKey   string
}

// Execute waits for rate clearance, then classifies
func (j *ClassifyJob) Execute(ctx context.Context) Result {
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, j.LimitKey); err != nil {
			return &ClassifyResult{Position: j.Position, Err: fmt.Errorf("rate limit: %w", err)}
		}
	}

	label, err := j.Classifier.Classify(ctx, j.Text)
	return &ClassifyResult{Position: j.Position, Label: label, Err: err}
}

// ClassifyResult is the label of one quotation, or the error that prevented it
type ClassifyResult struct {
	Position int
	Label    llm.Label
	Err      error
}

// Index returns the quotation position
func (r *ClassifyResult) Index() int {
	return r.Position
}

// GetError returns the classification error
func (r *ClassifyResult) GetError() error {
	return r.Err
}

// BatchClassifier classifies many quotations concurrently
type BatchClassifier struct {
	classifier  llm.Classifier
	limiter     *Limiter
	limitKey    string
	concurrency int
}

// NewBatchClassifier creates a batch classifier. A nil limiter disables pacing.
func NewBatchClassifier(classifier llm.Classifier, limiter *Limiter, limitKey string, concurrency int) *BatchClassifier {
	return &BatchClassifier{
		classifier:  classifier,
		limiter:     limiter,
		limitKey:    limitKey,
		concurrency: concurrency,
	}
}

// ScoreBatch classifies texts and returns one result per text, in input
// order. A failed text carries its error; the others are unaffected.
// When ctx is cancelled the unfinished texts report ctx.Err().
func (b *BatchClassifier) ScoreBatch(ctx context.Context, texts []string) []ClassifyResult {
	out := make([]ClassifyResult, len(texts))
	if len(texts) == 0 {
		return out
	}
	for i := range out {
		out[i] = ClassifyResult{Position: i, Err: context.Canceled}
	}

	pool := NewPoolWithContext(ctx, b.concurrency)
	pool.Start()

	go func() {
		defer pool.Close()
		for i, text := range texts {
			job := &ClassifyJob{
				Position:   i,
				Text:       text,
				Classifier: b.classifier,
				Limiter:    b.limiter,
				LimitKey:   b.limitKey,
			}
			if !pool.Submit(job) {
				return
			}
		}
	}()

	for result := range pool.Results() {
		r := result.(*ClassifyResult)
		out[r.Position] = *r
	}

	if err := ctx.Err(); err != nil {
		for i := range out {
			if out[i].Err == context.Canceled {
				out[i].Err = err
			}
		}
	}
	return out
}
