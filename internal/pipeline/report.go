package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ppiankov/quotelens/internal/metrics"
	"github.com/ppiankov/quotelens/internal/model"
	"github.com/ppiankov/quotelens/internal/report"
	"github.com/ppiankov/quotelens/internal/resolve"
	"github.com/ppiankov/quotelens/internal/store"
	"github.com/ppiankov/quotelens/internal/text"
)

const ageBinWidth = 10

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Report renders every stored artifact of years into dir. Stages that have
// not run are skipped. Returns the written file paths.
func (p *Pipeline) Report(ctx context.Context, years []int) ([]string, error) {
	sections, err := p.Sections(ctx, years)
	if err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("nothing to report for %v: %w", years, store.ErrNotFound)
	}

	dir := p.config.Output.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var written []string
	for _, format := range p.config.Output.Formats {
		switch strings.ToLower(format) {
		case "csv", "json":
			for _, s := range sections {
				path := filepath.Join(dir, slug(s.Table.Title)+"."+format)
				if err := writeTable(path, format, s.Table); err != nil {
					return written, err
				}
				written = append(written, path)
			}
		case "html":
			path := filepath.Join(dir, "index.html")
			page := report.Page{Title: "Climate change quotations " + yearSpan(years), Sections: sections}
			if err := writeFile(path, func(f *os.File) error { return report.RenderHTML(f, page) }); err != nil {
				return written, err
			}
			written = append(written, path)
		default:
			return written, fmt.Errorf("unknown output format: %s (supported: csv, json, html)", format)
		}
	}

	p.log.WithField("files", len(written)).Info("report written")
	return written, nil
}

// Sections builds the report sections from the stored artifacts
func (p *Pipeline) Sections(ctx context.Context, years []int) ([]report.Section, error) {
	cfg := p.config.Output
	var sections []report.Section

	quotes, err := loadYears(ctx, years, p.store.LoadQuotations)
	if err != nil {
		return nil, err
	}
	for _, year := range years {
		qs, ok := quotes[year]
		if !ok {
			continue
		}
		sections = append(sections,
			report.Section{
				Table: report.TopSpeakersTable(fmt.Sprintf("Top speakers %d", year), metrics.TopSpeakers(qs, cfg.TopN)),
				Chart: "quotation_count",
			},
			report.Section{
				Table: report.QuotationsTable(fmt.Sprintf("Most repeated quotations %d", year), metrics.TopQuotations(qs, cfg.TopN)),
			},
		)
	}
	if words := wordFrequencies(quotes, years, cfg.Words); len(words) > 0 {
		sections = append(sections, report.Section{
			Table: report.WordTable("Most frequent words", words),
			Chart: "count",
		})
	}

	speakersByYear, err := loadYears(ctx, years, p.store.LoadSpeakers)
	if err != nil {
		return nil, err
	}
	if len(speakersByYear) > 0 {
		sections = append(sections, p.speakerSections(speakersByYear)...)
	}

	scoredByYear, err := loadYears(ctx, years, p.store.LoadScored)
	if err != nil {
		return nil, err
	}
	if len(scoredByYear) > 0 {
		sections = append(sections, p.scoredSections(scoredByYear, years)...)
	}

	return sections, nil
}

func (p *Pipeline) speakerSections(byYear map[int][]model.SpeakerSummary) []report.Section {
	cfg := p.config.Output
	all := resolve.SpeakersByYear(byYear)

	men, women := metrics.GenderSplit(all)
	genderNote := fmt.Sprintf("%d men, %d women", men, women)

	sections := []report.Section{
		{Table: report.SpeakersTable("Speakers", all)},
		{
			Note:  genderNote,
			Table: report.CountTable("Speakers by gender", "gender", metrics.TopCount(all, model.AttrGender, 0)),
			Chart: "count",
		},
		{
			Table: report.CountTable("Speakers by nationality", "nationality", metrics.TopCount(all, model.AttrNationality, 0)),
			Chart: "count",
		},
		{
			Table: report.CountTable("Speakers by occupation", "occupation", metrics.TopCount(all, model.AttrOccupation, 0)),
			Chart: "count",
		},
		{
			Table: report.CountTable("Speaker ages", "age", metrics.Histogram(metrics.Ages(all), ageBinWidth)),
			Chart: "count",
		},
	}

	if cfg.PartyCountry != "" {
		local := metrics.FilterByNationality(all, cfg.PartyCountry)
		if len(local) > 0 {
			sections = append(sections, report.Section{
				Note:  fmt.Sprintf("Parties holding at least %.0f%% of speakers", cfg.PartyThreshold*100),
				Table: report.CountTable("Parties "+cfg.PartyCountry, "political_party", metrics.TopCount(local, model.AttrParty, cfg.PartyThreshold)),
				Chart: "count",
			})
		}
	}
	return sections
}

func (p *Pipeline) scoredSections(byYear map[int][]model.ScoredQuotation, years []int) []report.Section {
	var all []model.ScoredQuotation
	var present []int
	for _, y := range years {
		if rows, ok := byYear[y]; ok {
			all = append(all, rows...)
			present = append(present, y)
		}
	}

	var sections []report.Section
	for _, y := range present {
		sections = append(sections,
			report.Section{
				Table: report.GroupTable(fmt.Sprintf("Sentiment by month %d", y), "month", metrics.MeanByMonth(byYear[y], metrics.Sentiment)),
				Chart: "mean",
			},
			report.Section{
				Table: report.GroupTable(fmt.Sprintf("Complexity by month %d", y), "month", metrics.MeanByMonth(byYear[y], metrics.Complexity)),
				Chart: "mean",
			},
		)
	}

	for _, m := range []metrics.Metric{metrics.Sentiment, metrics.Complexity} {
		name := titleCase(string(m))
		sections = append(sections,
			report.Section{Table: report.GroupTable(name+" by gender", "gender", metrics.MeanByGender(all, m)), Chart: "mean"},
			report.Section{Table: report.GroupTable(name+" by region", "region", metrics.MeanByRegion(all, m)), Chart: "mean"},
			report.Section{Table: report.GroupTable(name+" by age", "age", metrics.MeanByAge(all, m)), Chart: "mean"},
		)
	}

	sections = append(sections,
		report.Section{
			Note:  "Parties with the most quotations",
			Table: report.MeansTable("Speech by party", "political_party", metrics.TopGroups(all, metrics.ByParty, p.config.Output.TopN)),
			Chart: "sentiment",
		},
		report.Section{
			Table: report.MeansTable("Speech by gender", "gender", metrics.GenderSpeech(byYear, present)),
			Chart: "complexity",
		},
	)
	return sections
}

// loadYears loads one artifact kind per year, skipping years never stored
func loadYears[T any](ctx context.Context, years []int, load func(context.Context, int) ([]T, error)) (map[int][]T, error) {
	out := make(map[int][]T)
	for _, y := range years {
		rows, err := load(ctx, y)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load %d: %w", y, err)
		}
		out[y] = rows
	}
	return out, nil
}

func wordFrequencies(quotes map[int][]model.Quotation, years []int, limit int) []text.WordCount {
	if limit <= 0 {
		return nil
	}
	var texts []string
	for _, y := range years {
		for _, q := range quotes[y] {
			if q.Quotation != nil {
				texts = append(texts, *q.Quotation)
			}
		}
	}
	return text.WordFrequencies(texts, text.DefaultStopwords, limit)
}

func writeTable(path, format string, t model.Table) error {
	return writeFile(path, func(f *os.File) error {
		if format == "csv" {
			return report.WriteCSV(f, t)
		}
		return report.WriteJSON(f, t)
	})
}

func writeFile(path string, render func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func slug(title string) string {
	return strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(title), "_"), "_")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func yearSpan(years []int) string {
	switch len(years) {
	case 0:
		return ""
	case 1:
		return fmt.Sprint(years[0])
	default:
		return fmt.Sprintf("%d-%d", years[0], years[len(years)-1])
	}
}
