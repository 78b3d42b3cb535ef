package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/selivandex/stockpulse/pkg/models"
)

const newsAPIURL = "https://newsapi.org/v2/everything"

// NewsAPIProvider fetches US stock headlines from NewsAPI, restricted to
// quality financial news domains
type NewsAPIProvider struct {
	apiKey string
	client *http.Client
}

// NewNewsAPIProvider creates a NewsAPI provider; disabled without an API key
func NewNewsAPIProvider(apiKey string, timeout time.Duration) *NewsAPIProvider {
	return &NewsAPIProvider{
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
	}
}

func (n *NewsAPIProvider) Name() string {
	return "newsapi"
}

func (n *NewsAPIProvider) Fetch(ctx context.Context, symbol string) ([]models.Headline, error) {
	if n.apiKey == "" {
		return nil, nil
	}

	queries := []string{
		symbol + " earnings",
		symbol + " stock news",
		symbol + " financial results",
	}

	var headlines []models.Headline
	var lastErr error

	for _, query := range queries {
		titles, err := n.search(ctx, query)
		if err != nil {
			lastErr = err
			continue
		}
		for _, title := range titles {
			headlines = append(headlines, models.Headline{Text: title, Source: n.Name()})
		}
	}

	if len(headlines) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return headlines, nil
}

func (n *NewsAPIProvider) search(ctx context.Context, query string) ([]string, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("apiKey", n.apiKey)
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", "3")
	params.Set("language", "en")
	params.Set("domains", "reuters.com,bloomberg.com,cnbc.com,marketwatch.com")

	req, err := http.NewRequestWithContext(ctx, "GET", newsAPIURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("HTTP error %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Articles []struct {
			Title string `json:"title"`
		} `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	titles := make([]string, 0, len(result.Articles))
	for _, a := range result.Articles {
		if a.Title != "" {
			titles = append(titles, a.Title)
		}
	}
	return titles, nil
}
