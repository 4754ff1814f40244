package llm

import (
	"context"
	"errors"
	"fmt"

	"socialguard/internal/gemini"
	"socialguard/internal/groq"
	"socialguard/internal/openrouter"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ProviderType represents the type of LLM provider
type ProviderType string

const (
	ProviderGemini     ProviderType = "gemini"
	ProviderGroq       ProviderType = "groq"
	ProviderOpenRouter ProviderType = "openrouter"
)

// ErrThrottled reports that the local request budget could not be spent before
// the call deadline. The remote provider was never called.
var ErrThrottled = errors.New("local request budget wait aborted")

// DefaultRequestsPerMinute is a conservative free-tier limit.
const DefaultRequestsPerMinute = 8

// ProviderConfig holds configuration for a single provider instance
type ProviderConfig struct {
	Type              ProviderType `yaml:"type" validate:"required,oneof=gemini groq openrouter"`
	APIKey            string       `yaml:"api_key"`
	ModelName         string       `yaml:"model_name"`
	BaseURL           string       `yaml:"base_url"`
	RequestsPerMinute int          `yaml:"requests_per_minute" validate:"gte=0"`
}

// Provider is any text generation backend
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Close() error
	GetModelInfo() map[string]interface{}
}

// NewProvider builds the client for one configured provider.
func NewProvider(cfg ProviderConfig, logger *zap.Logger) (Provider, error) {
	switch cfg.Type {
	case ProviderGemini:
		return gemini.NewClient(gemini.Config{APIKey: cfg.APIKey, ModelName: cfg.ModelName}, logger)
	case ProviderGroq:
		return groq.NewClient(groq.Config{APIKey: cfg.APIKey, ModelName: cfg.ModelName, BaseURL: cfg.BaseURL}, logger)
	case ProviderOpenRouter:
		return openrouter.NewClient(openrouter.Config{APIKey: cfg.APIKey, ModelName: cfg.ModelName, BaseURL: cfg.BaseURL}, logger)
	default:
		return nil, fmt.Errorf("unknown provider type %q", cfg.Type)
	}
}

// RateLimitedProvider wraps a provider with a requests-per-minute limit
type RateLimitedProvider struct {
	provider Provider
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// NewRateLimitedProvider wraps a provider with rate limiting. The bucket
// starts full, so up to requestsPerMinute calls pass immediately.
func NewRateLimitedProvider(provider Provider, requestsPerMinute int, logger *zap.Logger) *RateLimitedProvider {
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestsPerMinute
	}
	return &RateLimitedProvider{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60), requestsPerMinute),
		logger:   logger,
	}
}

func (p *RateLimitedProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %w", ErrThrottled, err)
	}
	return p.provider.Generate(ctx, prompt)
}

func (p *RateLimitedProvider) Close() error {
	return p.provider.Close()
}

func (p *RateLimitedProvider) GetModelInfo() map[string]interface{} {
	info := p.provider.GetModelInfo()
	info["requests_per_minute"] = p.limiter.Burst()
	return info
}
