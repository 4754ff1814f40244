// Package chatapi is a client for OpenAI-compatible chat completion APIs.
// Providers such as Groq and OpenRouter configure it with their base URL.
package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrEmptyResponse is returned when the API answers without choices.
var ErrEmptyResponse = errors.New("empty response from chat API")

// Config for a chat completion client
type Config struct {
	Provider    string
	BaseURL     string
	APIKey      string
	ModelName   string
	Temperature float64
	MaxTokens   int
	Headers     map[string]string
	Timeout     time.Duration
}

// Client talks to one chat completion endpoint
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewClient validates cfg and creates a client
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", cfg.Provider)
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%s base URL is required", cfg.Provider)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%s model name is required", cfg.Provider)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	logger.Info("Chat API client initialized",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.ModelName))

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}, nil
}

// Close is a no-op; the HTTP client holds no resources that need release.
func (c *Client) Close() error {
	return nil
}

// Generate sends prompt as a single user message and returns the first
// choice's content. One attempt only.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model:       c.cfg.ModelName,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Stream:      false,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	for k, v := range c.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Chat API request failed", zap.String("provider", c.cfg.Provider), zap.Error(err))
		return "", fmt.Errorf("%s API request failed: %w", c.cfg.Provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Chat API error",
			zap.String("provider", c.cfg.Provider),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return "", fmt.Errorf("%s API returned status %d: %s", c.cfg.Provider, resp.StatusCode, string(body))
	}

	var apiResp chatResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("failed to parse %s response: %w", c.cfg.Provider, err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("%s API error: %s", c.cfg.Provider, apiResp.Error.Message)
	}
	if len(apiResp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	content := strings.TrimSpace(apiResp.Choices[0].Message.Content)
	c.logger.Debug("Chat API response received",
		zap.String("provider", c.cfg.Provider),
		zap.String("response", content))
	return content, nil
}

// GetModelInfo returns model information
func (c *Client) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"provider": c.cfg.Provider,
		"model":    c.cfg.ModelName,
	}
}
