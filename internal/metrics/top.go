// Package metrics ranks, counts and averages resolved quotation data.
// Every function is pure and keeps a deterministic order.
package metrics

import (
	"sort"

	"github.com/ppiankov/quotelens/internal/model"
)

// SpeakerCount is a speaker with their number of quotations
type SpeakerCount struct {
	Speaker string `json:"speaker"`
	Count   int    `json:"quotation_count"`
}

// QuotationCount is a quotation with its repetition count
type QuotationCount struct {
	Speaker        string `json:"speaker"`
	Quotation      string `json:"quotation"`
	NumOccurrences int    `json:"numOccurrences"`
}

// TopSpeakers counts quotations per speaker, most quoted first. Ties keep
// the order in which speakers first appear. n <= 0 returns every speaker.
func TopSpeakers(quotes []model.Quotation, n int) []SpeakerCount {
	index := make(map[string]int)
	var counts []SpeakerCount
	for _, q := range quotes {
		i, ok := index[q.Speaker]
		if !ok {
			i = len(counts)
			index[q.Speaker] = i
			counts = append(counts, SpeakerCount{Speaker: q.Speaker})
		}
		counts[i].Count++
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	return truncate(counts, n)
}

// TopQuotations returns the most repeated quotations by numOccurrences.
// Ties keep input order. n <= 0 returns all.
func TopQuotations(quotes []model.Quotation, n int) []QuotationCount {
	out := make([]QuotationCount, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, QuotationCount{
			Speaker:        q.Speaker,
			Quotation:      q.Text(),
			NumOccurrences: q.NumOccurrences,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NumOccurrences > out[j].NumOccurrences
	})

	return truncate(out, n)
}

// QuotesBySpeaker returns one speaker's quotations, most repeated first
func QuotesBySpeaker(speaker string, quotes []model.Quotation) []QuotationCount {
	var mine []model.Quotation
	for _, q := range quotes {
		if q.Speaker == speaker {
			mine = append(mine, q)
		}
	}
	return TopQuotations(mine, 0)
}

func truncate[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}
