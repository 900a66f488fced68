// Package report turns aggregates into tables and renders them as CSV,
// JSON or a static HTML page.
package report

import (
	"github.com/ppiankov/quotelens/internal/metrics"
	"github.com/ppiankov/quotelens/internal/model"
	"github.com/ppiankov/quotelens/internal/text"
)

// SpeakersTable lists speaker summaries with every resolved attribute
func SpeakersTable(title string, speakers []model.SpeakerSummary) model.Table {
	t := model.Table{
		Title:   title,
		Columns: []string{"speaker", "quotation_count", "year", "gender", "age", "nationality", "political_party", "occupation"},
	}
	for _, s := range speakers {
		t.AddRow(s.Speaker, s.QuotationCount, s.Year, s.Gender, s.Age, s.Nationality, s.PoliticalParty, s.Occupation)
	}
	return t
}

// TopSpeakersTable lists the most quoted speakers
func TopSpeakersTable(title string, counts []metrics.SpeakerCount) model.Table {
	t := model.Table{Title: title, Columns: []string{"speaker", "quotation_count"}}
	for _, c := range counts {
		t.AddRow(c.Speaker, c.Count)
	}
	return t
}

// QuotationsTable lists quotations with their repetition counts
func QuotationsTable(title string, quotes []metrics.QuotationCount) model.Table {
	t := model.Table{Title: title, Columns: []string{"speaker", "quotation", "numOccurrences"}}
	for _, q := range quotes {
		t.AddRow(q.Speaker, q.Quotation, q.NumOccurrences)
	}
	return t
}

// GroupTable lists per-group means of one metric
func GroupTable(title, key string, groups []metrics.GroupValue) model.Table {
	t := model.Table{Title: title, Columns: []string{key, "mean", "count"}}
	for _, g := range groups {
		t.AddRow(g.Key, g.Mean, g.Count)
	}
	return t
}

// CountTable lists group sizes
func CountTable(title, key string, counts []metrics.Count) model.Table {
	t := model.Table{Title: title, Columns: []string{key, "count"}}
	for _, c := range counts {
		t.AddRow(c.Key, c.Count)
	}
	return t
}

// MeansTable lists complexity and sentiment side by side per group.
// The year column is included when any row carries a year.
func MeansTable(title, key string, rows []metrics.GroupMeans) model.Table {
	withYear := false
	for _, r := range rows {
		if r.Year != 0 {
			withYear = true
			break
		}
	}

	t := model.Table{Title: title, Columns: []string{key, "quotations", "complexity", "sentiment"}}
	if withYear {
		t.Columns = append([]string{"year"}, t.Columns...)
	}
	for _, r := range rows {
		if withYear {
			t.AddRow(r.Year, r.Key, r.Quotations, r.Complexity, r.Sentiment)
		} else {
			t.AddRow(r.Key, r.Quotations, r.Complexity, r.Sentiment)
		}
	}
	return t
}

// WordTable lists word-cloud frequencies
func WordTable(title string, words []text.WordCount) model.Table {
	t := model.Table{Title: title, Columns: []string{"word", "count"}}
	for _, w := range words {
		t.AddRow(w.Word, w.Count)
	}
	return t
}
