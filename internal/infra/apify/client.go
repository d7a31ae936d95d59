package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vietddude/enricher/internal/core/domain"
)

const (
	defaultBaseURL = "https://api.apify.com"
	defaultActor   = "dev_fusion~linkedin-profile-scraper"

	// Scraping actors run synchronously for the whole batch, so the default
	// request budget is generous.
	defaultTimeoutSecs = 300
)

// Config holds Apify client configuration.
type Config struct {
	BaseURL     string `yaml:"base_url"`
	Token       string `yaml:"token"`
	Actor       string `yaml:"actor"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// Client calls an Apify scraping actor synchronously and returns its dataset
// items as fetched profiles.
type Client struct {
	baseURL    string
	token      string
	actor      string
	httpClient *http.Client
}

// NewClient creates a new Apify client.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	actor := cfg.Actor
	if actor == "" {
		actor = defaultActor
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if cfg.TimeoutSecs <= 0 {
		timeout = defaultTimeoutSecs * time.Second
	}

	return &Client{
		baseURL: baseURL,
		token:   cfg.Token,
		actor:   actor,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// FetchProfiles runs the actor for the given profile URLs and returns the
// profiles it scraped. The result may be shorter than the request and in any
// order; callers match results back by public identifier, never by position.
func (c *Client) FetchProfiles(
	ctx context.Context,
	urls []string,
) ([]domain.FetchedProfile, error) {
	reqBody := map[string]any{
		"profileUrls": urls,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf(
		"%s/v2/acts/%s/run-sync-get-dataset-items?token=%s",
		c.baseURL, c.actor, c.token,
	)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("actor call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("rate limited (429), retry after: %s", resp.Header.Get("Retry-After"))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}

	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	profiles := make([]domain.FetchedProfile, 0, len(items))
	for _, item := range items {
		var profile domain.FetchedProfile
		if err := json.Unmarshal(item, &profile); err != nil {
			return nil, fmt.Errorf("parse profile item: %w", err)
		}
		profile.Raw = item
		profiles = append(profiles, profile)
	}

	return profiles, nil
}
