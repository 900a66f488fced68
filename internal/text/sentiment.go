// Package text computes per-quotation text metrics: sentiment scores from
// classifier labels, readability grades, quote months and word counts.
package text

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnknownLabel means a classifier label is neither positive nor negative
var ErrUnknownLabel = errors.New("unknown sentiment label")

var labelPattern = regexp.MustCompile(`(?i)^\[?\s*([a-z]+)\s*\(\s*([0-9.eE+-]+)\s*\)\s*\]?$`)

// ParseSentimentLabel converts a label such as "POSITIVE (0.9987)" or
// "[NEGATIVE (0.7)]" into a signed score: positive labels keep their
// confidence, negative labels negate it.
func ParseSentimentLabel(label string) (float64, error) {
	m := labelPattern.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return 0, fmt.Errorf("parse label %q: %w", label, ErrUnknownLabel)
	}

	score, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return 0, fmt.Errorf("parse score %q: %w", m[2], err)
	}

	switch strings.ToUpper(m[1]) {
	case "POSITIVE":
		return score, nil
	case "NEGATIVE":
		return -score, nil
	default:
		return 0, fmt.Errorf("parse label %q: %w", label, ErrUnknownLabel)
	}
}

// MonthFromQuoteID returns characters 5-6 of a quote ID, the month of
// IDs shaped like "2019-05-...". Short IDs give "".
func MonthFromQuoteID(id string) string {
	if len(id) < 7 {
		return ""
	}
	return id[5:7]
}
