package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ErrAllProvidersFailed is returned when no provider could be initialised.
var ErrAllProvidersFailed = errors.New("no providers could be initialized")

// DefaultMaxFailures is the consecutive failure count that triggers a switch.
const DefaultMaxFailures = 3

// MultiProviderConfig holds configuration for multiple providers
type MultiProviderConfig struct {
	Providers   []ProviderConfig
	MaxFailures int
}

// MultiProviderClient rotates between providers. Each Generate makes exactly
// one attempt on the current provider; a provider that reaches MaxFailures
// consecutive failures, or reports a rate limit, is replaced for the next call.
type MultiProviderClient struct {
	providers    []Provider
	currentIndex int
	failureCount []int
	maxFailures  int
	mu           sync.RWMutex
	logger       *zap.Logger
}

// NewMultiProviderClient creates a new multi-provider client
func NewMultiProviderClient(cfg MultiProviderConfig, logger *zap.Logger) (*MultiProviderClient, error) {
	if len(cfg.Providers) == 0 {
		return nil, fmt.Errorf("at least one provider is required")
	}

	providers := make([]Provider, 0, len(cfg.Providers))
	for i, providerCfg := range cfg.Providers {
		provider, err := NewProvider(providerCfg, logger)
		if err != nil {
			logger.Error("Failed to create provider",
				zap.String("type", string(providerCfg.Type)),
				zap.Int("index", i),
				zap.Error(err))
			continue
		}

		providers = append(providers, NewRateLimitedProvider(provider, providerCfg.RequestsPerMinute, logger))

		logger.Info("Provider initialized",
			zap.String("type", string(providerCfg.Type)),
			zap.String("model", providerCfg.ModelName),
			zap.Int("index", i))
	}

	if len(providers) == 0 {
		return nil, ErrAllProvidersFailed
	}

	return NewMultiProviderClientFrom(providers, cfg.MaxFailures, logger), nil
}

// NewMultiProviderClientFrom rotates over already constructed providers.
func NewMultiProviderClientFrom(providers []Provider, maxFailures int, logger *zap.Logger) *MultiProviderClient {
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailures
	}
	return &MultiProviderClient{
		providers:    providers,
		failureCount: make([]int, len(providers)),
		maxFailures:  maxFailures,
		logger:       logger.Named("llm"),
	}
}

func (c *MultiProviderClient) current() (Provider, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.providers[c.currentIndex], c.currentIndex
}

// recordResult updates the failure count of index and switches away from it
// when needed. Only the provider that is still current can trigger a switch.
func (c *MultiProviderClient) recordResult(index int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err == nil {
		c.failureCount[index] = 0
		return
	}

	c.failureCount[index]++
	if index != c.currentIndex {
		return
	}
	if c.failureCount[index] < c.maxFailures && !IsRateLimitError(err) {
		return
	}

	c.failureCount[index] = 0
	c.currentIndex = (c.currentIndex + 1) % len(c.providers)
	c.logger.Info("Switching provider",
		zap.Int("from_index", index),
		zap.Int("to_index", c.currentIndex),
		zap.Int("total_providers", len(c.providers)),
		zap.Error(err))
}

// Generate makes one attempt on the current provider.
func (c *MultiProviderClient) Generate(ctx context.Context, prompt string) (string, error) {
	provider, index := c.current()

	c.logger.Debug("Generating", zap.Int("provider_index", index))
	result, err := provider.Generate(ctx, prompt)
	c.recordResult(index, err)
	if err != nil {
		return "", fmt.Errorf("provider %d: %w", index, err)
	}
	return result, nil
}

// IsRateLimitError reports whether err looks like a quota or rate limit error
// returned by a remote provider.
func IsRateLimitError(err error) bool {
	if err == nil || errors.Is(err, ErrThrottled) {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "rate limit")
}

// Close closes all providers
func (c *MultiProviderClient) Close() error {
	var errs []error
	for i, provider := range c.providers {
		if err := provider.Close(); err != nil {
			c.logger.Error("Failed to close provider", zap.Int("index", i), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// GetModelInfo returns information about the current provider
func (c *MultiProviderClient) GetModelInfo() map[string]interface{} {
	provider, index := c.current()
	info := provider.GetModelInfo()

	c.mu.RLock()
	defer c.mu.RUnlock()
	info["provider_index"] = index
	info["total_providers"] = len(c.providers)
	info["failure_count"] = c.failureCount[index]
	return info
}

// GetProvidersInfo returns information about all providers
func (c *MultiProviderClient) GetProvidersInfo() []map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	info := make([]map[string]interface{}, len(c.providers))
	for i, provider := range c.providers {
		providerInfo := provider.GetModelInfo()
		providerInfo["is_current"] = i == c.currentIndex
		providerInfo["failure_count"] = c.failureCount[i]
		info[i] = providerInfo
	}
	return info
}
