package corpus

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/quotelens/internal/model"
	"github.com/ppiankov/quotelens/internal/store"
)

type memorySink struct {
	commits map[int]int
	aborts  map[int]int
	staged  map[int][]model.Quotation
	years   map[int][]model.Quotation
}

func newMemorySink() *memorySink {
	return &memorySink{
		commits: make(map[int]int),
		aborts:  make(map[int]int),
		staged:  make(map[int][]model.Quotation),
		years:   make(map[int][]model.Quotation),
	}
}

func (s *memorySink) BeginQuotations(ctx context.Context, year int) error {
	s.staged[year] = []model.Quotation{}
	return nil
}

func (s *memorySink) AppendQuotations(ctx context.Context, year int, quotes []model.Quotation) error {
	s.staged[year] = append(s.staged[year], quotes...)
	return nil
}

func (s *memorySink) CommitQuotations(ctx context.Context, year int) error {
	s.commits[year]++
	s.years[year] = s.staged[year]
	delete(s.staged, year)
	return nil
}

func (s *memorySink) AbortQuotations(ctx context.Context, year int) error {
	s.aborts[year]++
	delete(s.staged, year)
	return nil
}

func TestExtractor_ExtractYears(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"quotes-2018.json": `{"quoteID":"2018-01-01-1","quotation":"climate change now","speaker":"A","qids":["Q1"],"numOccurrences":1}` + "\n",
		"quotes-2019.json": sampleCorpus,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	f, _ := NewFilter([]string{"climate change"})
	sink := newMemorySink()
	ex := NewExtractor(f, sink, dir, "quotes-{year}.json", nil)

	stats, err := ex.ExtractYears(context.Background(), []int{2018, 2019})
	if err != nil {
		t.Fatalf("ExtractYears failed: %v", err)
	}

	if len(sink.years[2018]) != 1 || len(sink.years[2019]) != 1 {
		t.Errorf("expected one match per year, got %d and %d", len(sink.years[2018]), len(sink.years[2019]))
	}
	if stats[2019].Lines != 6 {
		t.Errorf("expected 6 lines for 2019, got %d", stats[2019].Lines)
	}

	// Re-running replaces rather than appends
	if _, err := ex.ExtractYear(context.Background(), 2018); err != nil {
		t.Fatalf("ExtractYear failed: %v", err)
	}
	if len(sink.years[2018]) != 1 {
		t.Errorf("expected re-extraction to replace year 2018, got %d quotes", len(sink.years[2018]))
	}
	if sink.commits[2018] != 2 {
		t.Errorf("expected 2 commits for 2018, got %d", sink.commits[2018])
	}
}

func TestExtractor_MissingYearAborts(t *testing.T) {
	f, _ := NewFilter([]string{"climate"})
	sink := newMemorySink()
	ex := NewExtractor(f, sink, t.TempDir(), "quotes-{year}.json", nil)

	if _, err := ex.ExtractYears(context.Background(), []int{2017}); err == nil {
		t.Error("expected error when the corpus file is missing")
	}
	if len(sink.staged) != 0 || sink.commits[2017] != 0 {
		t.Errorf("expected nothing staged or committed for a missing file, got %+v", sink)
	}
}

// truncatedGzip returns a gzip stream of n matching lines cut off mid-stream
func truncatedGzip(t *testing.T, n int) []byte {
	t.Helper()
	var body strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&body, `{"quoteID":"2018-02-01-%06d","quotation":"climate change line %d","speaker":"B","qids":["Q2"],"numOccurrences":1}`+"\n", i, i)
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(body.String())); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	data := buf.Bytes()
	return data[:len(data)/2]
}

func TestExtractor_FailedRerunKeepsStoredYear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	st, err := store.Open(ctx, filepath.Join(t.TempDir(), "quotelens.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	plain := filepath.Join(dir, "quotes-2018.json")
	line := `{"quoteID":"2018-01-01-1","quotation":"climate change now","speaker":"A","qids":["Q1"],"numOccurrences":1}` + "\n"
	if err := os.WriteFile(plain, []byte(line), 0644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}

	f, _ := NewFilter([]string{"climate change"}, WithBatchSize(1))
	ex := NewExtractor(f, st, dir, "quotes-{year}.json", nil)
	if _, err := ex.ExtractYear(ctx, 2018); err != nil {
		t.Fatalf("ExtractYear failed: %v", err)
	}

	tests := []struct {
		name    string
		pattern string
		setup   func(t *testing.T)
	}{
		{
			name:    "missing file",
			pattern: "quotes-{year}.json",
			setup: func(t *testing.T) {
				if err := os.Remove(plain); err != nil {
					t.Fatalf("remove corpus: %v", err)
				}
			},
		},
		{
			name:    "stream cut off after stored batches",
			pattern: "quotes-{year}.json.gz",
			setup: func(t *testing.T) {
				data := truncatedGzip(t, 5000)
				if err := os.WriteFile(filepath.Join(dir, "quotes-2018.json.gz"), data, 0644); err != nil {
					t.Fatalf("write corpus: %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup(t)
			rerun := NewExtractor(f, st, dir, tt.pattern, nil)
			if _, err := rerun.ExtractYear(ctx, 2018); err == nil {
				t.Fatal("expected re-extraction to fail")
			}

			got, err := st.LoadQuotations(ctx, 2018)
			if err != nil {
				t.Fatalf("LoadQuotations: %v", err)
			}
			if len(got) != 1 || got[0].QuoteID != "2018-01-01-1" {
				t.Errorf("expected the earlier extraction to survive, got %d quotations", len(got))
			}
		})
	}
}
