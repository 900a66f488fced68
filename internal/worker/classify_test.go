package worker

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/quotelens/internal/llm"
)

// echoClassifier labels texts starting with "bad" negative and fails on "error"
type echoClassifier struct {
	calls int32
	delay func(text string) time.Duration
}

func (c *echoClassifier) Name() string { return "echo" }

func (c *echoClassifier) IsAvailable(ctx context.Context) bool { return true }

func (c *echoClassifier) Classify(ctx context.Context, text string) (llm.Label, error) {
	atomic.AddInt32(&c.calls, 1)
	if c.delay != nil {
		select {
		case <-time.After(c.delay(text)):
		case <-ctx.Done():
			return llm.Label{}, ctx.Err()
		}
	}
	switch {
	case text == "error":
		return llm.Label{}, errors.New("classifier failed")
	case strings.HasPrefix(text, "bad"):
		return llm.Label{Value: llm.Negative, Score: 0.9}, nil
	default:
		return llm.Label{Value: llm.Positive, Score: float64(len(text)) / 100}, nil
	}
}

func TestScoreBatch_PreservesOrder(t *testing.T) {
	texts := []string{"good", "bad news", "error", "a much longer good text", "bad"}
	classifier := &echoClassifier{
		// later texts finish first
		delay: func(text string) time.Duration {
			return time.Duration(30-len(text)) * time.Millisecond
		},
	}

	b := NewBatchClassifier(classifier, nil, "", 3)
	results := b.ScoreBatch(context.Background(), texts)

	if len(results) != len(texts) {
		t.Fatalf("expected %d results, got %d", len(texts), len(results))
	}
	for i, r := range results {
		if r.Position != i {
			t.Errorf("result %d has position %d", i, r.Position)
		}
	}

	if results[0].Label.Value != llm.Positive || results[0].Label.Score != 0.04 {
		t.Errorf("result 0 = %+v", results[0])
	}
	if results[1].Label.Value != llm.Negative {
		t.Errorf("result 1 = %+v", results[1])
	}
	if results[2].Err == nil {
		t.Error("expected result 2 to carry the classifier error")
	}
	if results[3].Err != nil || results[4].Err != nil {
		t.Error("expected a failure to leave other results untouched")
	}
	if atomic.LoadInt32(&classifier.calls) != int32(len(texts)) {
		t.Errorf("expected %d calls, got %d", len(texts), classifier.calls)
	}
}

func TestScoreBatch_ManyTexts(t *testing.T) {
	texts := make([]string, 500)
	for i := range texts {
		texts[i] = strings.Repeat("x", i%40)
	}

	results := NewBatchClassifier(&echoClassifier{}, NewLimiter(0, 1), "echo", 4).ScoreBatch(context.Background(), texts)
	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("result %d failed: %v", i, r.Err)
		}
		if want := float64(i%40) / 100; r.Label.Score != want {
			t.Fatalf("result %d score %v, want %v", i, r.Label.Score, want)
		}
	}
}

func TestScoreBatch_Empty(t *testing.T) {
	results := NewBatchClassifier(&echoClassifier{}, nil, "", 2).ScoreBatch(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestScoreBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	texts := []string{"a", "b", "c"}
	results := NewBatchClassifier(&echoClassifier{}, nil, "", 2).ScoreBatch(ctx, texts)
	if len(results) != len(texts) {
		t.Fatalf("expected %d results, got %d", len(texts), len(results))
	}
	for i, r := range results {
		if r.Position != i {
			t.Errorf("result %d has position %d", i, r.Position)
		}
		if r.Err == nil && r.Label.Value == "" {
			t.Errorf("result %d has neither a label nor an error", i)
		}
	}
}

func TestScoreBatch_RateLimited(t *testing.T) {
	limiter := NewLimiter(50, 1)
	texts := []string{"a", "b", "c", "d", "e", "f"}

	start := time.Now()
	results := NewBatchClassifier(&echoClassifier{}, limiter, "echo", 6).ScoreBatch(context.Background(), texts)
	elapsed := time.Since(start)

	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("result %d failed: %v", i, r.Err)
		}
	}
	// 5 tokens beyond the burst at 50/s
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected pacing, batch finished in %v", elapsed)
	}
}
