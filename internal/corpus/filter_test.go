package corpus

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/quotelens/internal/model"
)

const sampleCorpus = `{"quoteID":"2019-05-01-000001","quotation":"Climate change is real","speaker":"Greta Thunberg","qids":["Q56434717"],"numOccurrences":12}
{"quoteID":"2019-05-01-000002","quotation":"The economy is booming","speaker":"Donald Trump","qids":["Q22686"],"numOccurrences":40}
{"quoteID":"2019-05-02-000003","quotation":null,"speaker":"None","qids":[],"numOccurrences":1}
not json at all
{"quoteID":"2019-06-01-000004","quotation":"GLOBAL WARMING is a hoax","speaker":"Donald Trump","qids":["Q22686"],"numOccurrences":7}

{"quoteID":"2019-06-03-000005","speaker":"Someone","qids":["Q1"],"numOccurrences":1}
`

func TestNewFilter_NoKeywords(t *testing.T) {
	if _, err := NewFilter(nil); !errors.Is(err, ErrNoKeywords) {
		t.Errorf("expected ErrNoKeywords, got %v", err)
	}
	if _, err := NewFilter([]string{"", "  "}); !errors.Is(err, ErrNoKeywords) {
		t.Errorf("expected ErrNoKeywords for blank keywords, got %v", err)
	}
}

func TestNewFilter_InvalidPattern(t *testing.T) {
	if _, err := NewFilter([]string{"climate("}); err == nil {
		t.Error("expected error for invalid keyword pattern")
	}
}

func TestFilter_Match(t *testing.T) {
	f, err := NewFilter([]string{"climate change", "global warming"})
	if err != nil {
		t.Fatalf("NewFilter failed: %v", err)
	}

	tests := []struct {
		name  string
		quote model.Quotation
		want  bool
	}{
		{"lower case", model.Quotation{Quotation: model.StringPtr("climate change matters")}, true},
		{"mixed case", model.Quotation{Quotation: model.StringPtr("Stop Global Warming now")}, true},
		{"substring", model.Quotation{Quotation: model.StringPtr("anti-climate changers")}, true},
		{"no keyword", model.Quotation{Quotation: model.StringPtr("taxes are too high")}, false},
		{"nil quotation", model.Quotation{}, false},
		{"empty quotation", model.Quotation{Quotation: model.StringPtr("")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Match(tt.quote); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_FilterReader(t *testing.T) {
	f, err := NewFilter([]string{"climate change", "global warming"}, WithBatchSize(2))
	if err != nil {
		t.Fatalf("NewFilter failed: %v", err)
	}

	var batches [][]model.Quotation
	stats, err := f.FilterReader(context.Background(), strings.NewReader(sampleCorpus), func(batch []model.Quotation) error {
		batches = append(batches, batch)
		return nil
	})
	if err != nil {
		t.Fatalf("FilterReader failed: %v", err)
	}

	if stats.Lines != 6 {
		t.Errorf("expected 6 non-empty lines, got %d", stats.Lines)
	}
	if stats.Batches != 3 {
		t.Errorf("expected 3 batches of size 2, got %d", stats.Batches)
	}
	if stats.Malformed != 1 {
		t.Errorf("expected 1 malformed line, got %d", stats.Malformed)
	}
	if stats.NullQuotation != 2 {
		t.Errorf("expected 2 null quotations, got %d", stats.NullQuotation)
	}
	if stats.Matched != 2 {
		t.Errorf("expected 2 matches, got %d", stats.Matched)
	}

	var ids []string
	for _, b := range batches {
		for _, q := range b {
			ids = append(ids, q.QuoteID)
		}
	}
	want := []string{"2019-05-01-000001", "2019-06-01-000004"}
	if strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, ids)
	}
}

func TestFilter_FilterReader_EmitError(t *testing.T) {
	f, _ := NewFilter([]string{"climate"})
	boom := errors.New("disk full")

	_, err := f.FilterReader(context.Background(), strings.NewReader(sampleCorpus), func([]model.Quotation) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected emit error to propagate, got %v", err)
	}
}

func TestFilter_FilterReader_Cancelled(t *testing.T) {
	f, _ := NewFilter([]string{"climate"}, WithBatchSize(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.FilterReader(ctx, strings.NewReader(sampleCorpus), func([]model.Quotation) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestFilter_FilterFile_Gzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quotes-2019.json.gz")

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(sampleCorpus)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	f, _ := NewFilter([]string{"hoax"})
	var got []model.Quotation
	stats, err := f.FilterFile(context.Background(), path, func(batch []model.Quotation) error {
		got = append(got, batch...)
		return nil
	})
	if err != nil {
		t.Fatalf("FilterFile failed: %v", err)
	}
	if stats.Matched != 1 || len(got) != 1 || got[0].Speaker != "Donald Trump" {
		t.Errorf("expected the single hoax quotation, got %+v", got)
	}
}

func TestFilter_FilterFile_Missing(t *testing.T) {
	f, _ := NewFilter([]string{"climate"})
	_, err := f.FilterFile(context.Background(), filepath.Join(t.TempDir(), "nope.json"), func([]model.Quotation) error { return nil })
	if err == nil {
		t.Error("expected error for missing corpus file")
	}
}

func TestOpenFile_MissingNamesPathOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotes-2017.json.bz2")
	_, err := OpenFile(path)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
	if n := strings.Count(err.Error(), path); n != 1 {
		t.Errorf("expected path once in %q, got %d", err.Error(), n)
	}
}

func TestCorpusPath(t *testing.T) {
	got := CorpusPath("data/quotebank", "quotes-{year}.json.bz2", 2019)
	want := filepath.Join("data/quotebank", "quotes-2019.json.bz2")
	if got != want {
		t.Errorf("CorpusPath() = %q, want %q", got, want)
	}
}
