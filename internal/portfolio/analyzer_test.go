package portfolio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/selivandex/stockpulse/internal/adapters/config"
	"github.com/selivandex/stockpulse/internal/adapters/price"
	"github.com/selivandex/stockpulse/internal/strategy"
	"github.com/selivandex/stockpulse/pkg/models"
)

type stubPrices struct {
	err     error
	perSym  map[string]error
	candles int
}

func (s *stubPrices) History(_ context.Context, symbol string, _ price.Range) (*models.PriceSeries, error) {
	if s.err != nil {
		return nil, s.err
	}
	if err, ok := s.perSym[symbol]; ok {
		return nil, err
	}

	n := s.candles
	if n == 0 {
		n = 120
	}
	candles := make([]models.Candle, n)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range candles {
		c := 100 + float64(i)*0.2
		candles[i] = models.Candle{
			Timestamp: base.AddDate(0, 0, i),
			Open:      models.NewDecimal(c),
			High:      models.NewDecimal(c * 1.01),
			Low:       models.NewDecimal(c * 0.99),
			Close:     models.NewDecimal(c),
			Volume:    models.NewDecimal(1000),
		}
	}
	return &models.PriceSeries{Symbol: symbol, Candles: candles}, nil
}

type stubNews struct {
	headlines []models.Headline
	records   []models.SentimentRecord
	score     float64
	panicMsg  string
}

func (s *stubNews) Headlines(_ context.Context, symbol string) []models.Headline {
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	if s.headlines == nil {
		return []models.Headline{models.NoNewsPlaceholder(symbol)}
	}
	return s.headlines
}

func (s *stubNews) Score(_ context.Context, _ []models.Headline) ([]models.SentimentRecord, float64) {
	return s.records, s.score
}

type stubMarket struct {
	ctx models.MarketContext
}

func (s *stubMarket) Context(_ context.Context, _ string) models.MarketContext {
	return s.ctx
}

type stubBacktester struct{}

func (s *stubBacktester) Run(_ *models.PriceSeries) models.BacktestMetrics {
	return models.BacktestMetrics{TotalTrades: 3, TotalReturn: 1.5}
}

func analysisConfig() config.AnalysisConfig {
	return config.AnalysisConfig{
		TechWeight:             0.6,
		SentimentWeight:        0.4,
		HighVolTechWeight:      0.7,
		HighVolSentimentWeight: 0.3,
		BearTechWeight:         0.5,
		BearSentimentWeight:    0.5,
		StrongThreshold:        30,
		SignalThreshold:        15,
		AccountSize:            10000,
		RiskPerTradePercent:    2.0,
		Workers:                3,
	}
}

func newTestAnalyzer(prices *stubPrices, news *stubNews) *Analyzer {
	return NewAnalyzer(
		prices,
		news,
		&stubMarket{ctx: models.DefaultMarketContext()},
		&stubBacktester{},
		strategy.NewEngine(analysisConfig()),
		3,
	)
}

func TestAnalyzeSymbol(t *testing.T) {
	ctx := context.Background()

	t.Run("full pipeline populates the result", func(t *testing.T) {
		analyzer := newTestAnalyzer(&stubPrices{}, &stubNews{})

		result := analyzer.AnalyzeSymbol(ctx, "AAPL")
		if result.Error != "" {
			t.Fatalf("unexpected error: %s", result.Error)
		}
		if result.Symbol != "AAPL" {
			t.Errorf("wrong symbol: %s", result.Symbol)
		}
		if result.Price <= 0 {
			t.Errorf("price not set: %f", result.Price)
		}
		if result.EntryPrice != result.Price {
			t.Errorf("entry price %f differs from price %f", result.EntryPrice, result.Price)
		}
		if result.Backtest.TotalTrades != 3 {
			t.Errorf("backtest metrics not carried: %+v", result.Backtest)
		}
		if len(result.Headlines) != 1 || !result.Headlines[0].Placeholder {
			t.Errorf("expected placeholder headline, got %+v", result.Headlines)
		}
		if result.Analysis == nil {
			t.Error("analysis must never be nil")
		}
	})

	t.Run("price failure degrades to error result", func(t *testing.T) {
		analyzer := newTestAnalyzer(&stubPrices{err: errors.New("rate limited")}, &stubNews{})

		result := analyzer.AnalyzeSymbol(ctx, "AAPL")
		if result.Error == "" {
			t.Fatal("expected error to be recorded")
		}
		if result.Signal != models.SignalHold {
			t.Errorf("expected HOLD, got %s", result.Signal)
		}
		if result.RiskScore != 100 {
			t.Errorf("expected risk 100, got %f", result.RiskScore)
		}
	})

	t.Run("headlines and records capped at five", func(t *testing.T) {
		var headlines []models.Headline
		var records []models.SentimentRecord
		for i := 0; i < 8; i++ {
			headlines = append(headlines, models.Headline{Text: "Company announces quarterly earnings growth", Source: "test"})
			records = append(records, models.SentimentRecord{Label: models.SentimentNeutral, Score: 0.5})
		}
		analyzer := newTestAnalyzer(&stubPrices{}, &stubNews{headlines: headlines, records: records})

		result := analyzer.AnalyzeSymbol(ctx, "AAPL")
		if len(result.Headlines) != 5 {
			t.Errorf("expected 5 headlines, got %d", len(result.Headlines))
		}
		if len(result.Analysis) != 5 {
			t.Errorf("expected 5 records, got %d", len(result.Analysis))
		}
	})
}

func TestAnalyze(t *testing.T) {
	ctx := context.Background()

	t.Run("batch survives per-symbol failure", func(t *testing.T) {
		prices := &stubPrices{perSym: map[string]error{"BAD": errors.New("no data")}}
		analyzer := newTestAnalyzer(prices, &stubNews{})

		results := analyzer.Analyze(ctx, []string{"AAPL", "BAD", "MSFT"})
		if len(results) != 3 {
			t.Fatalf("expected 3 results, got %d", len(results))
		}

		var failed *models.SignalResult
		for i := range results {
			if results[i].Symbol == "BAD" {
				failed = &results[i]
			}
		}
		if failed == nil {
			t.Fatal("failed symbol missing from batch")
		}
		if failed.Error == "" || failed.Signal != models.SignalHold {
			t.Errorf("failure not degraded: %+v", failed)
		}
	})

	t.Run("panic in a sub-analysis becomes an error result", func(t *testing.T) {
		analyzer := newTestAnalyzer(&stubPrices{}, &stubNews{panicMsg: "news provider exploded"})

		results := analyzer.Analyze(ctx, []string{"AAPL"})
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(results))
		}
		if results[0].Error == "" {
			t.Error("expected panic to be converted into an error result")
		}
	})

	t.Run("results sorted by confidence descending", func(t *testing.T) {
		analyzer := newTestAnalyzer(&stubPrices{}, &stubNews{})

		results := analyzer.Analyze(ctx, []string{"AAPL", "MSFT", "GOOGL", "AMZN"})
		for i := 1; i < len(results); i++ {
			if results[i].Confidence > results[i-1].Confidence {
				t.Errorf("results out of order at %d: %f > %f", i, results[i].Confidence, results[i-1].Confidence)
			}
		}
	})
}
