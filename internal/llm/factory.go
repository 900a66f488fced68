package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/quotelens/internal/model"
)

// NewClassifier creates a sentiment classifier based on configuration
func NewClassifier(config Config) (Classifier, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "lexicon", "":
		return NewLexiconClassifier(), nil

	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	default:
		return nil, fmt.Errorf("unknown classifier provider: %s (supported: lexicon, openai, anthropic, ollama)", config.Provider)
	}
}

// ConfigFromModel converts model.ClassifierConfig to llm.Config
func ConfigFromModel(modelConfig model.ClassifierConfig) Config {
	return Config{
		Provider:   modelConfig.Provider,
		Model:      modelConfig.Model,
		APIKey:     modelConfig.APIKey,
		BaseURL:    modelConfig.BaseURL,
		Timeout:    modelConfig.Timeout,
		HTTPProxy:  modelConfig.HTTPProxy,
		HTTPSProxy: modelConfig.HTTPSProxy,
		NoProxy:    modelConfig.NoProxy,
	}
}

// Remote reports whether a provider calls a network API
func Remote(provider string) bool {
	switch strings.ToLower(provider) {
	case "lexicon", "":
		return false
	default:
		return true
	}
}
