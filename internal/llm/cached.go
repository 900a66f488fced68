package llm

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ppiankov/quotelens/internal/cache"
)

// CachedClassifier memoizes labels of another classifier. Keys combine the
// provider, the model and the quotation text.
type CachedClassifier struct {
	inner Classifier
	cache cache.Cache
	model string
	ttl   time.Duration
}

// NewCachedClassifier wraps inner with c. A zero ttl uses the cache default.
func NewCachedClassifier(inner Classifier, c cache.Cache, model string, ttl time.Duration) *CachedClassifier {
	return &CachedClassifier{inner: inner, cache: c, model: model, ttl: ttl}
}

// Name returns the wrapped provider name
func (c *CachedClassifier) Name() string {
	return c.inner.Name()
}

// IsAvailable checks the wrapped provider
func (c *CachedClassifier) IsAvailable(ctx context.Context) bool {
	return c.inner.IsAvailable(ctx)
}

// Classify returns the cached label or classifies and stores it.
// Failed classifications are not cached.
func (c *CachedClassifier) Classify(ctx context.Context, text string) (Label, error) {
	key := cache.CacheKey(c.inner.Name(), c.model, text)

	if data, ok := c.cache.Get(key); ok {
		var label Label
		if err := json.Unmarshal(data, &label); err == nil {
			return label, nil
		}
	}

	label, err := c.inner.Classify(ctx, text)
	if err != nil {
		return Label{}, err
	}

	if data, err := json.Marshal(label); err == nil {
		_ = c.cache.Set(key, data, c.ttl)
	}
	return label, nil
}
