package text

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

var (
	sentenceEnd = regexp.MustCompile(`[.!?]+`)
	wordPattern = regexp.MustCompile(`[A-Za-z]+(?:['’][A-Za-z]+)*`)
)

// counts are the raw counts the readability formulas are built from
type counts struct {
	sentences     float64
	words         float64
	letters       float64
	syllables     float64
	polysyllables float64
}

func countText(s string) counts {
	words := wordPattern.FindAllString(s, -1)

	var c counts
	c.words = float64(len(words))
	for _, w := range words {
		for _, r := range w {
			if unicode.IsLetter(r) {
				c.letters++
			}
		}
		n := CountSyllables(w)
		c.syllables += float64(n)
		if n >= 3 {
			c.polysyllables++
		}
	}

	for _, part := range sentenceEnd.Split(s, -1) {
		if wordPattern.MatchString(part) {
			c.sentences++
		}
	}
	if c.sentences == 0 && c.words > 0 {
		c.sentences = 1
	}
	return c
}

// Complexity is a consensus grade level: the mean of the Flesch-Kincaid,
// Coleman-Liau, Automated Readability, Gunning Fog and SMOG grades,
// rounded to 2 decimals. Text without words scores 0.
func Complexity(s string) float64 {
	c := countText(s)
	if c.words == 0 {
		return 0
	}

	wps := c.words / c.sentences

	fleschKincaid := 0.39*wps + 11.8*(c.syllables/c.words) - 15.59
	colemanLiau := 0.0588*(c.letters/c.words*100) - 0.296*(c.sentences/c.words*100) - 15.8
	ari := 4.71*(c.letters/c.words) + 0.5*wps - 21.43
	fog := 0.4 * (wps + 100*(c.polysyllables/c.words))
	smog := 1.043*math.Sqrt(c.polysyllables*30/c.sentences) + 3.1291

	mean := (fleschKincaid + colemanLiau + ari + fog + smog) / 5
	return math.Round(mean*100) / 100
}

// CountSyllables estimates syllables by counting vowel groups, dropping a
// silent final e. Every word has at least one syllable.
func CountSyllables(word string) int {
	w := strings.ToLower(word)

	n := 0
	inVowel := false
	for _, r := range w {
		v := strings.ContainsRune("aeiouy", r)
		if v && !inVowel {
			n++
		}
		inVowel = v
	}

	if n > 1 && strings.HasSuffix(w, "e") && !strings.HasSuffix(w, "le") &&
		!strings.HasSuffix(w, "ee") {
		n--
	}
	if n < 1 {
		n = 1
	}
	return n
}
