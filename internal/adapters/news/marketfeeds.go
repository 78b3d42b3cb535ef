package news

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/selivandex/stockpulse/internal/universe"
	"github.com/selivandex/stockpulse/pkg/models"
)

// Indian market-wide RSS feeds scanned for symbol mentions
var marketFeedURLs = []string{
	"https://economictimes.indiatimes.com/markets/rssfeeds/1977021501.cms",
	"https://www.moneycontrol.com/rss/business.xml",
}

const marketFeedItemCap = 20

// MarketFeedsProvider scans broad Indian market RSS feeds and keeps only the
// items that mention the symbol. Last link of the Indian chain: broad feeds
// rarely name a single stock, so most calls contribute nothing.
type MarketFeedsProvider struct {
	client *http.Client
	feeds  []string
}

// NewMarketFeedsProvider creates a provider over the default Indian feeds
func NewMarketFeedsProvider(timeout time.Duration) *MarketFeedsProvider {
	return &MarketFeedsProvider{
		client: &http.Client{Timeout: timeout},
		feeds:  marketFeedURLs,
	}
}

func (m *MarketFeedsProvider) Name() string {
	return "market-feeds"
}

// Fetch scans each feed and keeps items whose title mentions the base symbol
func (m *MarketFeedsProvider) Fetch(ctx context.Context, symbol string) ([]models.Headline, error) {
	base := strings.ToLower(universe.BaseSymbol(symbol))

	var headlines []models.Headline
	var lastErr error

	for _, feedURL := range m.feeds {
		titles, err := m.scan(ctx, feedURL)
		if err != nil {
			lastErr = err
			continue
		}
		for _, title := range titles {
			if strings.Contains(strings.ToLower(title), base) {
				headlines = append(headlines, models.Headline{Text: title, Source: m.Name()})
			}
		}
	}

	if len(headlines) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return headlines, nil
}

func (m *MarketFeedsProvider) scan(ctx context.Context, feedURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", feedURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("HTTP error %d: %s", resp.StatusCode, string(body))
	}

	var feed rssFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("failed to decode RSS: %w", err)
	}

	titles := make([]string, 0, marketFeedItemCap)
	for _, item := range feed.Channel.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		titles = append(titles, title)
		if len(titles) >= marketFeedItemCap {
			break
		}
	}
	return titles, nil
}
