package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// ProviderConfig selects and configures a concrete generator backend.
type ProviderConfig struct {
	Provider     string
	OpenAIAPIKey string
	GeminiAPIKey string
	Model        string
	MaxTokens    int
	Logger       zerolog.Logger
}

// NewGenerator builds the generator named by the configuration. It returns
// (nil, nil) when the selected provider has no API key configured, which
// callers treat as fallback-only mode rather than an error.
func NewGenerator(ctx context.Context, cfg ProviderConfig) (TextGenerator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, nil
		}
		return NewOpenAIGenerator(OpenAIConfig{
			APIKey:    cfg.OpenAIAPIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			Logger:    cfg.Logger,
		})
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, nil
		}
		return NewGeminiGenerator(ctx, GeminiConfig{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.Model,
			Logger: cfg.Logger,
		})
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}
