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

const alphaVantageURL = "https://www.alphavantage.co/query"

// AlphaVantageProvider fetches ticker news via the NEWS_SENTIMENT endpoint
type AlphaVantageProvider struct {
	apiKey string
	client *http.Client
}

// NewAlphaVantageProvider creates an Alpha Vantage news provider; disabled
// without an API key
func NewAlphaVantageProvider(apiKey string, timeout time.Duration) *AlphaVantageProvider {
	return &AlphaVantageProvider{
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
	}
}

func (a *AlphaVantageProvider) Name() string {
	return "alphavantage"
}

func (a *AlphaVantageProvider) Fetch(ctx context.Context, symbol string) ([]models.Headline, error) {
	if a.apiKey == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("function", "NEWS_SENTIMENT")
	params.Set("tickers", symbol)
	params.Set("apikey", a.apiKey)
	params.Set("limit", "5")

	req, err := http.NewRequestWithContext(ctx, "GET", alphaVantageURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("HTTP error %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Feed []struct {
			Title string `json:"title"`
		} `json:"feed"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	headlines := make([]models.Headline, 0, len(result.Feed))
	for _, item := range result.Feed {
		if item.Title != "" {
			headlines = append(headlines, models.Headline{Text: item.Title, Source: a.Name()})
		}
	}
	return headlines, nil
}
