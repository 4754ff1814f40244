package openrouter

import (
	"socialguard/internal/chatapi"

	"go.uber.org/zap"
)

const (
	BaseURL      = "https://openrouter.ai/api/v1"
	DefaultModel = "meta-llama/llama-3.2-3b-instruct:free"
)

// Config holds configuration for OpenRouter client.
type Config struct {
	APIKey    string
	ModelName string
	BaseURL   string
}

// NewClient creates a new OpenRouter client. OpenRouter attributes traffic
// through the HTTP-Referer and X-Title headers.
func NewClient(cfg Config, logger *zap.Logger) (*chatapi.Client, error) {
	if cfg.ModelName == "" {
		cfg.ModelName = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURL
	}

	return chatapi.NewClient(chatapi.Config{
		Provider:    "openrouter",
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		ModelName:   cfg.ModelName,
		Temperature: 0.1,
		MaxTokens:   16,
		Headers: map[string]string{
			"HTTP-Referer": "https://github.com/socialguard",
			"X-Title":      "SocialGuard",
		},
	}, logger)
}
