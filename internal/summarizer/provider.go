// Package summarizer turns meeting notes into a summary. The Gateway calls an
// AI Provider through the retry policy and a circuit breaker, and degrades to
// a deterministic extractive fallback whenever the provider is unavailable,
// so callers always receive a non-empty string.
package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/tbourn/go-notes-summarizer/internal/config"
)

// Provider is a text-generation backend.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// NewProvider builds the adapter selected by cfg.Provider. It returns
// ErrNotConfigured when the matching API key is empty; the caller should then
// run the Gateway without a provider.
func NewProvider(cfg config.AIConfig) (Provider, error) {
	key := strings.TrimSpace(cfg.APIKey())
	if key == "" {
		return nil, ErrNotConfigured
	}
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGemini(key), nil
	case config.ProviderClaude:
		return NewClaude(key), nil
	case config.ProviderOpenAI:
		return NewOpenAI(key), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}
