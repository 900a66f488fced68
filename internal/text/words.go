package text

import (
	"regexp"
	"sort"
	"strings"

	"github.com/kljensen/snowball"
)

var tokenPattern = regexp.MustCompile(`[a-z][a-z']+`)

// WordCount is a word-cloud entry
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// DefaultStopwords are common English words left out of word counts
var DefaultStopwords = toSet(strings.Fields(`
	a about above after again against all also am an and any are as at be
	because been before being below between both but by can could did do
	does doing down during each few for from further get had has have
	having he her here hers herself him himself his how however i if in
	into is it its itself just like me more most my myself no nor not now
	of off on once one only or other ought our ours ourselves out over own
	said same say says she should so some such than that the their theirs
	them themselves then there these they this those through to too under
	until up us very was we were what when where which while who whom why
	will with would you your yours yourself yourselves
`))

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// WordFrequencies counts words across texts for word clouds. Tokens are
// lower-cased and stopwords dropped; the rest are merged by English stem
// and labelled with their most frequent surface form. A nil stopwords set
// uses DefaultStopwords. limit <= 0 returns every word.
func WordFrequencies(texts []string, stopwords map[string]struct{}, limit int) []WordCount {
	if stopwords == nil {
		stopwords = DefaultStopwords
	}

	forms := make(map[string]map[string]int)
	for _, t := range texts {
		for _, token := range tokenPattern.FindAllString(strings.ToLower(t), -1) {
			token = strings.TrimSuffix(strings.TrimRight(token, "'"), "'s")
			if len(token) < 2 {
				continue
			}
			if _, stop := stopwords[token]; stop {
				continue
			}

			stem, err := snowball.Stem(token, "english", true)
			if err != nil || stem == "" {
				stem = token
			}
			if forms[stem] == nil {
				forms[stem] = make(map[string]int)
			}
			forms[stem][token]++
		}
	}

	out := make([]WordCount, 0, len(forms))
	for _, surface := range forms {
		out = append(out, WordCount{Word: dominant(surface), Count: sum(surface)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// dominant picks the most frequent form, then the shortest, then the
// alphabetically first
func dominant(forms map[string]int) string {
	best := ""
	for w, n := range forms {
		switch {
		case best == "":
			best = w
		case n > forms[best]:
			best = w
		case n == forms[best] && (len(w) < len(best) || len(w) == len(best) && w < best):
			best = w
		}
	}
	return best
}

func sum(forms map[string]int) int {
	total := 0
	for _, n := range forms {
		total += n
	}
	return total
}
