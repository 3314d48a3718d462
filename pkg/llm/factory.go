package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/estimaware/estima-engine/pkg/apperrors"
	"github.com/estimaware/estima-engine/pkg/config"
)

// NewFromConfig creates the client selected by configuration.
// Returns apperrors.ErrAINotConfigured when no usable model is configured;
// callers surface that on AI-assisted operations without affecting the
// estimation core.
func NewFromConfig(cfg *config.AIConfig, logger *zap.Logger) (Client, error) {
	if !cfg.IsConfigured() {
		return nil, apperrors.ErrAINotConfigured
	}

	switch cfg.Provider {
	case "", "openai":
		return NewOpenAIClient(&OpenAIConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			APIKey:  cfg.APIKey,
		}, logger)
	case "anthropic":
		return NewAnthropicClient(&AnthropicConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			APIKey:  cfg.APIKey,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}
