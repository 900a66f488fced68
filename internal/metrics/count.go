package metrics

import (
	"sort"

	"github.com/ppiankov/quotelens/internal/model"
)

// OthersKey labels the bucket of groups too small to show on their own
const OthersKey = "Others"

// defaultTopGroups is how many groups TopCount shows for non-party attributes
const defaultTopGroups = 5

// Count is the number of speakers or quotations in a group
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// CountSpeakers counts speakers per resolved value of attr, largest first.
// Speakers without a value are not counted.
func CountSpeakers(speakers []model.SpeakerSummary, attr model.Attribute) []Count {
	counts := make(map[string]int)
	for _, s := range speakers {
		if v := s.Attribute(attr); v != nil {
			counts[*v]++
		}
	}
	return sortedCounts(counts)
}

// TopCount is the pie-chart view of an attribute. For political parties
// every party holding at least threshold of the speakers is kept; for other
// attributes the five largest groups are kept. The remainder is summed into
// a final Others entry.
func TopCount(speakers []model.SpeakerSummary, attr model.Attribute, threshold float64) []Count {
	counts := CountSpeakers(speakers, attr)

	total := 0
	for _, c := range counts {
		total += c.Count
	}

	var best []Count
	if attr == model.AttrParty {
		for _, c := range counts {
			if total > 0 && float64(c.Count)/float64(total) >= threshold {
				best = append(best, c)
			}
		}
	} else {
		best = truncate(counts, defaultTopGroups)
	}

	shown := 0
	for _, c := range best {
		shown += c.Count
	}

	out := append([]Count(nil), best...)
	return append(out, Count{Key: OthersKey, Count: total - shown})
}

// FilterByNationality keeps speakers of one nationality
func FilterByNationality(speakers []model.SpeakerSummary, nationality string) []model.SpeakerSummary {
	var out []model.SpeakerSummary
	for _, s := range speakers {
		if s.Nationality != nil && *s.Nationality == nationality {
			out = append(out, s)
		}
	}
	return out
}

// GenderSplit counts male and female speakers
func GenderSplit(speakers []model.SpeakerSummary) (men, women int) {
	for _, s := range speakers {
		if s.Gender == nil {
			continue
		}
		switch *s.Gender {
		case "male":
			men++
		case "female":
			women++
		}
	}
	return men, women
}

// Ages returns the resolved speaker ages, for histograms
func Ages(speakers []model.SpeakerSummary) []int {
	var ages []int
	for _, s := range speakers {
		if s.Age != nil {
			ages = append(ages, *s.Age)
		}
	}
	return ages
}

// Histogram buckets values into bins of width, keyed by bin start
func Histogram(values []int, width int) []Count {
	if width <= 0 {
		width = 1
	}
	bins := make(map[int]int)
	for _, v := range values {
		start := (v / width) * width
		if v < 0 && v%width != 0 {
			start -= width
		}
		bins[start]++
	}

	starts := make([]int, 0, len(bins))
	for s := range bins {
		starts = append(starts, s)
	}
	sort.Ints(starts)

	out := make([]Count, 0, len(starts))
	for _, s := range starts {
		out = append(out, Count{Key: itoa(s), Count: bins[s]})
	}
	return out
}

func sortedCounts(counts map[string]int) []Count {
	out := make([]Count, 0, len(counts))
	for k, n := range counts {
		out = append(out, Count{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}
