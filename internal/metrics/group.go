package metrics

import (
	"math"
	"sort"
	"strconv"

	"github.com/ppiankov/quotelens/internal/model"
	"gonum.org/v1/gonum/stat"
)

// Metric selects a per-quotation score
type Metric string

const (
	Sentiment  Metric = "sentiment"
	Complexity Metric = "complexity"
)

// Value returns the metric of a scored quotation, nil when missing
func (m Metric) Value(q model.ScoredQuotation) *float64 {
	switch m {
	case Sentiment:
		return q.SentimentScore
	case Complexity:
		return q.Complexity
	default:
		return nil
	}
}

// GroupValue is the mean of a metric within one group
type GroupValue struct {
	Key   string  `json:"key"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// GroupMean averages value per key, rounded to 2 decimals. Rows whose key
// or value is nil are excluded before averaging. Groups come back in key
// order, numerically when both keys are integers.
func GroupMean[T any](rows []T, key func(T) *string, value func(T) *float64) []GroupValue {
	groups := make(map[string][]float64)
	for _, row := range rows {
		k := key(row)
		v := value(row)
		if k == nil || v == nil {
			continue
		}
		groups[*k] = append(groups[*k], *v)
	}

	out := make([]GroupValue, 0, len(groups))
	for k, values := range groups {
		out = append(out, GroupValue{
			Key:   k,
			Mean:  Round2(stat.Mean(values, nil)),
			Count: len(values),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return keyLess(out[i].Key, out[j].Key)
	})
	return out
}

func keyLess(a, b string) bool {
	ai, errA := strconv.Atoi(a)
	bi, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return ai < bi
	}
	return a < b
}

// MeanByMonth averages m per quote month
func MeanByMonth(rows []model.ScoredQuotation, m Metric) []GroupValue {
	return GroupMean(rows, func(q model.ScoredQuotation) *string {
		if q.Month == "" {
			return nil
		}
		return &q.Month
	}, m.Value)
}

// MeanByGender averages m per speaker gender
func MeanByGender(rows []model.ScoredQuotation, m Metric) []GroupValue {
	return GroupMean(rows, func(q model.ScoredQuotation) *string { return q.Gender }, m.Value)
}

// MeanByParty averages m per political party
func MeanByParty(rows []model.ScoredQuotation, m Metric) []GroupValue {
	return GroupMean(rows, func(q model.ScoredQuotation) *string { return q.PoliticalParty }, m.Value)
}

// MeanByRegion averages m per region
func MeanByRegion(rows []model.ScoredQuotation, m Metric) []GroupValue {
	return GroupMean(rows, func(q model.ScoredQuotation) *string { return q.Region }, m.Value)
}

// MeanByAge averages m per speaker age
func MeanByAge(rows []model.ScoredQuotation, m Metric) []GroupValue {
	return GroupMean(rows, func(q model.ScoredQuotation) *string {
		if q.Age == nil {
			return nil
		}
		s := strconv.Itoa(*q.Age)
		return &s
	}, m.Value)
}

// Round2 rounds to two decimal places
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
