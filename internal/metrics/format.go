package metrics

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Abbreviate renders a large amount as 12K, 3M or 1.5B
func Abbreviate(x float64) string {
	thousands := math.Round(x / 1000)
	if thousands >= 1000*1000 {
		return strconv.FormatFloat(math.Round(thousands/(1000*1000)*10)/10, 'f', -1, 64) + "B"
	}

	value, prefix := humanize.ComputeSI(thousands * 1000)
	switch prefix {
	case "M":
		return fmt.Sprintf("%.0fM", value)
	case "k":
		return fmt.Sprintf("%.0fK", value)
	default:
		return fmt.Sprintf("%.0fK", thousands)
	}
}

// ParseAbbreviated converts "1.5K", "3M" or "2B" back to a number
func ParseAbbreviated(s string) (float64, error) {
	s = strings.TrimSpace(s)
	multiplier := 1.0
	switch {
	case strings.HasSuffix(s, "K"):
		multiplier = 1e3
	case strings.HasSuffix(s, "M"):
		multiplier = 1e6
	case strings.HasSuffix(s, "B"):
		multiplier = 1e9
	}
	if multiplier != 1 {
		s = s[:len(s)-1]
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return v * multiplier, nil
}
