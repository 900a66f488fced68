package metrics

import (
	"strconv"

	"github.com/ppiankov/quotelens/internal/model"
)

// GroupMeans holds both text metrics for one group. A metric is nil when
// none of the group's quotations carry a value for it.
type GroupMeans struct {
	Year       int      `json:"year,omitempty"`
	Key        string   `json:"key"`
	Quotations int      `json:"quotations"`
	Complexity *float64 `json:"complexity"`
	Sentiment  *float64 `json:"sentiment"`
}

// GroupKey extracts a grouping key from a scored quotation
type GroupKey func(model.ScoredQuotation) *string

// ByParty groups scored quotations by political party
func ByParty(q model.ScoredQuotation) *string { return q.PoliticalParty }

// TopGroups averages complexity and sentiment for the n groups with the
// most quotations, largest first
func TopGroups(rows []model.ScoredQuotation, key GroupKey, n int) []GroupMeans {
	counts := make(map[string]int)
	for _, q := range rows {
		if k := key(q); k != nil {
			counts[*k]++
		}
	}
	top := truncate(sortedCounts(counts), n)

	wanted := make(map[string]bool, len(top))
	for _, c := range top {
		wanted[c.Key] = true
	}
	var data []model.ScoredQuotation
	for _, q := range rows {
		if k := key(q); k != nil && wanted[*k] {
			data = append(data, q)
		}
	}

	complexity := indexGroups(GroupMean[model.ScoredQuotation](data, key, Complexity.Value))
	sentiment := indexGroups(GroupMean[model.ScoredQuotation](data, key, Sentiment.Value))

	out := make([]GroupMeans, 0, len(top))
	for _, c := range top {
		out = append(out, GroupMeans{
			Key:        c.Key,
			Quotations: c.Count,
			Complexity: meanOf(complexity, c.Key),
			Sentiment:  meanOf(sentiment, c.Key),
		})
	}
	return out
}

// GenderSpeech averages both metrics for male and female speakers per year
func GenderSpeech(byYear map[int][]model.ScoredQuotation, years []int) []GroupMeans {
	var out []GroupMeans
	for _, year := range years {
		rows := byYear[year]
		complexity := indexGroups(MeanByGender(rows, Complexity))
		sentiment := indexGroups(MeanByGender(rows, Sentiment))
		for _, gender := range []string{"male", "female"} {
			c, okC := complexity[gender]
			s, okS := sentiment[gender]
			if !okC && !okS {
				continue
			}
			out = append(out, GroupMeans{
				Year:       year,
				Key:        gender,
				Quotations: max(c.Count, s.Count),
				Complexity: meanOf(complexity, gender),
				Sentiment:  meanOf(sentiment, gender),
			})
		}
	}
	return out
}

// meanOf returns the group's mean, or nil when the group had no values
func meanOf(groups map[string]GroupValue, key string) *float64 {
	g, ok := groups[key]
	if !ok {
		return nil
	}
	return model.FloatPtr(g.Mean)
}

func indexGroups(groups []GroupValue) map[string]GroupValue {
	m := make(map[string]GroupValue, len(groups))
	for _, g := range groups {
		m[g.Key] = g
	}
	return m
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
