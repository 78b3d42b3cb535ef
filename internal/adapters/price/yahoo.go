package price

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/stockpulse/pkg/logger"
	"github.com/selivandex/stockpulse/pkg/models"
)

const yahooChartURL = "https://query1.finance.yahoo.com/v8/finance/chart/%s?range=%s&interval=1d"

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// YahooProvider fetches daily OHLCV history from the Yahoo chart API.
// Yahoo rate-limits aggressively, so requests are spaced by a minimum
// interval and each fetch walks an escalating ladder of approaches before
// giving up: plain request, browser-header request, then shrinking fallback
// ranges.
type YahooProvider struct {
	client      *http.Client
	minInterval time.Duration
	maxRetries  int

	mu       sync.Mutex
	lastCall time.Time
	cache    map[string]cachedSeries
}

type cachedSeries struct {
	fetchedAt time.Time
	series    *models.PriceSeries
}

// NewYahooProvider creates a Yahoo history provider
func NewYahooProvider(timeout, minInterval time.Duration, maxRetries int) *YahooProvider {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &YahooProvider{
		client:      &http.Client{Timeout: timeout},
		minInterval: minInterval,
		maxRetries:  maxRetries,
		cache:       make(map[string]cachedSeries),
	}
}

// History implements HistoryProvider with retry, backoff and fallback ranges
func (y *YahooProvider) History(ctx context.Context, symbol string, rng Range) (*models.PriceSeries, error) {
	cacheKey := symbol + "/" + string(rng)
	if series := y.cached(cacheKey); series != nil {
		return series, nil
	}

	approaches := []func(context.Context, string) (*models.PriceSeries, error){
		func(ctx context.Context, sym string) (*models.PriceSeries, error) {
			return y.fetch(ctx, sym, rng, false)
		},
		func(ctx context.Context, sym string) (*models.PriceSeries, error) {
			return y.fetch(ctx, sym, rng, true)
		},
		func(ctx context.Context, sym string) (*models.PriceSeries, error) {
			return y.fetchFallbackRanges(ctx, sym, rng)
		},
	}
	if len(approaches) > y.maxRetries {
		approaches = approaches[:y.maxRetries]
	}

	var lastErr error
	for attempt, approach := range approaches {
		y.throttle()

		series, err := approach(ctx, symbol)
		if err == nil && series.Len() > 0 {
			y.store(cacheKey, series)
			return series, nil
		}
		if err == nil {
			err = ErrNoData
		}
		lastErr = err

		logger.Debug("price fetch attempt failed",
			zap.String("symbol", symbol),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)

		// Back off before the next approach
		if attempt < len(approaches)-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt+1) * 2 * time.Second):
			}
		}
	}

	return nil, fmt.Errorf("failed to fetch price data for %s: %w", symbol, lastErr)
}

// throttle enforces the minimum spacing between upstream calls
func (y *YahooProvider) throttle() {
	y.mu.Lock()
	wait := y.minInterval - time.Since(y.lastCall)
	y.lastCall = time.Now().Add(wait)
	y.mu.Unlock()

	if wait > 0 {
		time.Sleep(wait)
	}
}

func (y *YahooProvider) cached(key string) *models.PriceSeries {
	y.mu.Lock()
	defer y.mu.Unlock()
	if entry, ok := y.cache[key]; ok && time.Since(entry.fetchedAt) < 5*time.Minute {
		return entry.series
	}
	return nil
}

func (y *YahooProvider) store(key string, series *models.PriceSeries) {
	y.mu.Lock()
	y.cache[key] = cachedSeries{fetchedAt: time.Now(), series: series}
	y.mu.Unlock()
}

func (y *YahooProvider) fetch(ctx context.Context, symbol string, rng Range, browserHeaders bool) (*models.PriceSeries, error) {
	reqURL := fmt.Sprintf(yahooChartURL, url.PathEscape(symbol), rng)

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if browserHeaders {
		req.Header.Set("User-Agent", browserUserAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	}

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("rate limited (HTTP 429)")
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("HTTP error %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Chart struct {
			Result []struct {
				Timestamp  []int64 `json:"timestamp"`
				Indicators struct {
					Quote []struct {
						Open   []float64 `json:"open"`
						High   []float64 `json:"high"`
						Low    []float64 `json:"low"`
						Close  []float64 `json:"close"`
						Volume []float64 `json:"volume"`
					} `json:"quote"`
				} `json:"indicators"`
			} `json:"result"`
			Error *struct {
				Code        string `json:"code"`
				Description string `json:"description"`
			} `json:"error"`
		} `json:"chart"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error %s: %s", payload.Chart.Error.Code, payload.Chart.Error.Description)
	}
	if len(payload.Chart.Result) == 0 || len(payload.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, ErrNoData
	}

	result := payload.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	series := &models.PriceSeries{Symbol: symbol}
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == 0 {
			continue
		}
		series.Candles = append(series.Candles, models.Candle{
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      models.NewDecimal(at(quote.Open, i)),
			High:      models.NewDecimal(at(quote.High, i)),
			Low:       models.NewDecimal(at(quote.Low, i)),
			Close:     models.NewDecimal(quote.Close[i]),
			Volume:    models.NewDecimal(at(quote.Volume, i)),
		})
	}

	if series.Len() == 0 {
		return nil, ErrNoData
	}
	return series, nil
}

// fetchFallbackRanges walks shorter lookback windows until one answers
func (y *YahooProvider) fetchFallbackRanges(ctx context.Context, symbol string, rng Range) (*models.PriceSeries, error) {
	fallbacks := []Range{Range3Mo, Range1Mo, Range5D, Range1D}

	for _, fb := range fallbacks {
		if fb == rng {
			continue
		}
		series, err := y.fetch(ctx, symbol, fb, true)
		if err == nil && series.Len() > 0 {
			return series, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, ErrNoData
}

func at(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}
