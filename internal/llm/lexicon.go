package llm

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/kljensen/snowball"
)

var (
	positiveWords = strings.Fields(`
		able achieve achievement advance agree ambitious benefit better boost
		breakthrough clean commit confident cooperate courage create effective
		efficient encourage enjoy excellent excited fair good great grow happy
		healthy help hope important improve incredible innovate inspire lead
		love opportunity optimistic positive progress promise protect proud
		renewable resilient restore safe save solution strong succeed success
		support sustainable thank together transform trust welcome win wonderful`)

	negativeWords = strings.Fields(`
		afraid alarm anger angry attack bad catastrophe catastrophic collapse
		concern crisis damage danger dangerous deadly death destroy destruction
		devastate disaster emergency fail failure fear fight flood hoax harm
		hurt kill lose loss pollute pollution poor problem risk sad scare
		severe shame suffer terrible threat threaten tragic unfair urgent victim
		wildfire worse worst worry wrong`)

	negations = map[string]bool{
		"not": true, "no": true, "never": true, "nothing": true,
		"without": true, "don't": true, "isn't": true, "won't": true,
		"can't": true, "cannot": true, "doesn't": true, "didn't": true,
	}

	lexiconToken = regexp.MustCompile(`[a-z]+(?:'[a-z]+)?`)
)

const negationWindow = 3

// LexiconClassifier is an offline classifier scoring quotations by
// stemmed positive and negative word hits. A negation flips the polarity
// of the next polar word within negationWindow tokens.
type LexiconClassifier struct {
	positive map[string]bool
	negative map[string]bool
}

// NewLexiconClassifier creates a classifier over the built-in word lists
func NewLexiconClassifier() *LexiconClassifier {
	return &LexiconClassifier{
		positive: stemSet(positiveWords),
		negative: stemSet(negativeWords),
	}
}

func stemSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[stem(w)] = true
	}
	return set
}

func stem(w string) string {
	s, err := snowball.Stem(w, "english", true)
	if err != nil || s == "" {
		return w
	}
	return s
}

// Name returns the provider name
func (c *LexiconClassifier) Name() string {
	return "lexicon"
}

// IsAvailable is always true, the word lists are built in
func (c *LexiconClassifier) IsAvailable(ctx context.Context) bool {
	return true
}

// Classify counts polar words. Confidence grows from 0.5 with the share of
// hits agreeing with the winning polarity. Ties are positive.
func (c *LexiconClassifier) Classify(ctx context.Context, text string) (Label, error) {
	if err := ctx.Err(); err != nil {
		return Label{}, err
	}

	var pos, neg float64
	negate := 0
	for _, token := range lexiconToken.FindAllString(strings.ToLower(text), -1) {
		if negations[token] {
			negate = negationWindow
			continue
		}

		polarity := 0
		if s := stem(token); c.positive[s] {
			polarity = 1
		} else if c.negative[s] {
			polarity = -1
		}
		if polarity == 0 {
			if negate > 0 {
				negate--
			}
			continue
		}
		if negate > 0 {
			polarity = -polarity
			negate = 0
		}

		switch polarity {
		case 1:
			pos++
		case -1:
			neg++
		}
	}

	label := Label{Value: Positive, Score: 0.5}
	if neg > pos {
		label.Value = Negative
	}
	if total := pos + neg; total > 0 {
		label.Score = 0.5 + 0.5*math.Abs(pos-neg)/total
	}
	label.Score = math.Round(label.Score*10000) / 10000
	return label, nil
}
