package news

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/selivandex/stockpulse/internal/universe"
	"github.com/selivandex/stockpulse/pkg/models"
)

const googleNewsRSSURL = "https://news.google.com/rss/search?q=%s&hl=en&gl=IN&ceid=IN:en"

// GoogleNewsProvider scrapes the Google News RSS search feed. Primary source
// for Indian symbols; its looser query set doubles as the last-resort
// fallback pass for both markets.
type GoogleNewsProvider struct {
	client *http.Client
}

type rssFeed struct {
	Channel struct {
		Items []struct {
			Title string `xml:"title"`
		} `xml:"item"`
	} `xml:"channel"`
}

// NewGoogleNewsProvider creates a Google News RSS provider
func NewGoogleNewsProvider(timeout time.Duration) *GoogleNewsProvider {
	return &GoogleNewsProvider{
		client: &http.Client{Timeout: timeout},
	}
}

func (g *GoogleNewsProvider) Name() string {
	return "google-news"
}

// Fetch runs targeted earnings/announcement queries for the symbol
func (g *GoogleNewsProvider) Fetch(ctx context.Context, symbol string) ([]models.Headline, error) {
	base := universe.BaseSymbol(symbol)
	queries := []string{
		fmt.Sprintf("%q earnings profit revenue", base),
		fmt.Sprintf("%q stock news India", base),
		fmt.Sprintf("%q announcement results", base),
	}

	var headlines []models.Headline
	var lastErr error

	for _, query := range queries {
		titles, err := g.search(ctx, query, 3)
		if err != nil {
			lastErr = err
			continue
		}
		for _, title := range titles {
			if len(title) > 20 && len(title) < 120 {
				headlines = append(headlines, models.Headline{Text: title, Source: g.Name()})
			}
		}
	}

	if len(headlines) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return headlines, nil
}

// FallbackSearch is the looser second pass used when quality filtering
// rejected everything the primary chain produced
func (g *GoogleNewsProvider) FallbackSearch(ctx context.Context, symbol string) []models.Headline {
	base := universe.BaseSymbol(symbol)
	terms := []string{
		fmt.Sprintf("%s company news today", base),
		fmt.Sprintf("%s stock latest news", base),
		fmt.Sprintf("%s quarterly results", base),
	}

	var headlines []models.Headline
	for _, term := range terms {
		titles, err := g.search(ctx, term, 2)
		if err != nil {
			continue
		}
		for _, title := range titles {
			if len(title) >= 15 && len(title) <= 100 {
				headlines = append(headlines, models.Headline{Text: title, Source: g.Name()})
			}
		}
	}
	return headlines
}

func (g *GoogleNewsProvider) search(ctx context.Context, query string, limit int) ([]string, error) {
	reqURL := fmt.Sprintf(googleNewsRSSURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := g.client.Do(req)
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

	titles := make([]string, 0, limit)
	for _, item := range feed.Channel.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		titles = append(titles, title)
		if len(titles) >= limit {
			break
		}
	}
	return titles, nil
}
