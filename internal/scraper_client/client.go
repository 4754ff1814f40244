package scraper_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"socialguard/internal/models"

	"go.uber.org/zap"
)

// DefaultTimeout bounds one scrape; browser-driven scraping is slow.
const DefaultTimeout = 5 * time.Minute

// Client for the external comment scraper service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

type scrapeRequest struct {
	URL         string `json:"url"`
	MaxComments int    `json:"max_comments"`
}

// NewClient creates a new scraper API client.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// FetchComments asks the scraper for up to maxComments comments of the post
// at url. Comment text is returned as scraped.
func (c *Client) FetchComments(ctx context.Context, url string, maxComments int) (*models.ScrapeResult, error) {
	body, err := json.Marshal(scrapeRequest{URL: url, MaxComments: maxComments})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scrape request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/scrape", bytes.NewReader(body))
	if err != nil {
		c.logger.Error("Failed to create request to scraper", zap.Error(err))
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to make request to scraper", zap.Error(err))
		return nil, fmt.Errorf("failed to make request to scraper: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("Scraper returned non-OK status",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(msg)))
		return nil, fmt.Errorf("scraper returned status: %d", resp.StatusCode)
	}

	var result models.ScrapeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.logger.Error("Failed to decode scraper response", zap.Error(err))
		return nil, fmt.Errorf("failed to decode scraper response: %w", err)
	}

	if result.PostOwner == "" {
		result.PostOwner = "unknown"
	}
	if result.TotalComments == 0 {
		result.TotalComments = len(result.Comments)
	}

	c.logger.Info("Successfully fetched comments from scraper",
		zap.String("url", url),
		zap.String("post_owner", result.PostOwner),
		zap.Int("count", len(result.Comments)))
	return &result, nil
}
