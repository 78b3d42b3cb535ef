package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/selivandex/stockpulse/pkg/models"
)

const yahooSearchURL = "https://query1.finance.yahoo.com/v1/finance/search?q=%s&newsCount=8&quotesCount=0"

// YahooNewsProvider fetches recent headlines from the Yahoo Finance search
// endpoint; works for both Indian and US listings
type YahooNewsProvider struct {
	client *http.Client
}

// NewYahooNewsProvider creates a Yahoo Finance news provider
func NewYahooNewsProvider(timeout time.Duration) *YahooNewsProvider {
	return &YahooNewsProvider{
		client: &http.Client{Timeout: timeout},
	}
}

func (y *YahooNewsProvider) Name() string {
	return "yahoo-finance"
}

func (y *YahooNewsProvider) Fetch(ctx context.Context, symbol string) ([]models.Headline, error) {
	reqURL := fmt.Sprintf(yahooSearchURL, url.QueryEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("HTTP error %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		News []struct {
			Title string `json:"title"`
		} `json:"news"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var headlines []models.Headline
	for _, item := range result.News {
		title := strings.TrimSpace(item.Title)
		if len(title) >= 10 && len(title) <= 120 {
			headlines = append(headlines, models.Headline{Text: title, Source: y.Name()})
		}
	}
	return headlines, nil
}
