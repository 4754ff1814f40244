package groq

import (
	"socialguard/internal/chatapi"

	"go.uber.org/zap"
)

const (
	// BaseURL is Groq's OpenAI-compatible endpoint.
	BaseURL      = "https://api.groq.com/openai/v1"
	DefaultModel = "llama-3.3-70b-versatile"
)

// Config for Groq client
type Config struct {
	APIKey    string
	ModelName string
	BaseURL   string
}

// NewClient creates a new Groq client
func NewClient(cfg Config, logger *zap.Logger) (*chatapi.Client, error) {
	if cfg.ModelName == "" {
		cfg.ModelName = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURL
	}

	return chatapi.NewClient(chatapi.Config{
		Provider:    "groq",
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		ModelName:   cfg.ModelName,
		Temperature: 0.1,
		MaxTokens:   16,
	}, logger)
}
