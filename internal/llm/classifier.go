package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Sentiment label values
const (
	Positive = "POSITIVE"
	Negative = "NEGATIVE"
)

// ErrNoLabel means a classifier response did not contain a sentiment label
var ErrNoLabel = errors.New("no sentiment label in response")

// Classifier defines the interface for sentiment classifiers
type Classifier interface {
	// Name returns the provider name
	Name() string

	// Classify labels the sentiment of one quotation
	Classify(ctx context.Context, text string) (Label, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Label is a binary sentiment with the classifier's confidence
type Label struct {
	Value string  `json:"label"`
	Score float64 `json:"score"`
}

// String renders the label the way the scored tables store it,
// e.g. "POSITIVE (0.9987)"
func (l Label) String() string {
	return fmt.Sprintf("%s (%.4f)", l.Value, l.Score)
}

// Config holds classifier provider configuration
type Config struct {
	// Provider name: "lexicon", "openai", "anthropic", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns the offline lexicon classifier
func DefaultConfig() Config {
	return Config{
		Provider: "lexicon",
		Timeout:  30,
	}
}

const systemPrompt = "You are a sentiment classifier for news quotations. " +
	"You answer with JSON only."

// maxPromptChars bounds the quotation text sent to remote providers
const maxPromptChars = 4000

// BuildPrompt asks for a binary sentiment label of one quotation
func BuildPrompt(text string) string {
	text = cutRunes(text, maxPromptChars)
	return fmt.Sprintf(`Classify the sentiment of the following quotation as POSITIVE or NEGATIVE.
Reply with a single JSON object: {"label": "POSITIVE" or "NEGATIVE", "score": confidence between 0 and 1}.

Quotation:
%q`, text)
}

var labelPattern = regexp.MustCompile(`(?i)\b(positive|negative)\b[^0-9]{0,20}([01](?:\.[0-9]+)?)?`)

// ParseLabel extracts a label from a model response. JSON objects are
// preferred; otherwise the first POSITIVE/NEGATIVE word is taken with an
// optional score following it. A label without a score gets 1.
func ParseLabel(response string) (Label, error) {
	if l, ok := parseJSONLabel(response); ok {
		return l, nil
	}

	m := labelPattern.FindStringSubmatch(response)
	if m == nil {
		return Label{}, fmt.Errorf("parse %q: %w", truncate(response, 80), ErrNoLabel)
	}

	label := Label{Value: strings.ToUpper(m[1]), Score: 1}
	if m[2] != "" {
		score, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return Label{}, fmt.Errorf("parse score: %w", err)
		}
		label.Score = score
	}
	return label, validate(label)
}

func parseJSONLabel(response string) (Label, bool) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end <= start {
		return Label{}, false
	}

	var raw struct {
		Label string   `json:"label"`
		Score *float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(response[start:end+1]), &raw); err != nil {
		return Label{}, false
	}

	label := Label{Value: strings.ToUpper(strings.TrimSpace(raw.Label)), Score: 1}
	if raw.Score != nil {
		label.Score = *raw.Score
	}
	if validate(label) != nil {
		return Label{}, false
	}
	return label, true
}

func validate(l Label) error {
	if l.Value != Positive && l.Value != Negative {
		return fmt.Errorf("label %q: %w", l.Value, ErrNoLabel)
	}
	if l.Score < 0 || l.Score > 1 {
		return fmt.Errorf("score %v out of range [0,1]", l.Score)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return cutRunes(s, n) + "..."
}

// cutRunes shortens s to at most n bytes without splitting a UTF-8 sequence
func cutRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
