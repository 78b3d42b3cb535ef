package portfolio

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/selivandex/stockpulse/internal/adapters/price"
	"github.com/selivandex/stockpulse/internal/indicators"
	"github.com/selivandex/stockpulse/internal/strategy"
	"github.com/selivandex/stockpulse/pkg/logger"
	"github.com/selivandex/stockpulse/pkg/models"
)

// maxAttached caps headlines and sentiment records carried on a result
const maxAttached = 5

// NewsSource produces headlines for a symbol and scores them
type NewsSource interface {
	Headlines(ctx context.Context, symbol string) []models.Headline
	Score(ctx context.Context, headlines []models.Headline) ([]models.SentimentRecord, float64)
}

// ContextSource classifies the market regime behind a symbol
type ContextSource interface {
	Context(ctx context.Context, symbol string) models.MarketContext
}

// Backtester replays the simplified strategy over a price history
type Backtester interface {
	Run(series *models.PriceSeries) models.BacktestMetrics
}

// Analyzer evaluates every symbol of a universe with a bounded worker pool.
// Per-symbol failures degrade to an error-carrying HOLD result and never
// abort the batch.
type Analyzer struct {
	prices     price.HistoryProvider
	news       NewsSource
	market     ContextSource
	backtester Backtester
	fusion     *strategy.Engine
	calc       *indicators.Calculator
	workers    int
}

// NewAnalyzer creates a portfolio analyzer
func NewAnalyzer(
	prices price.HistoryProvider,
	news NewsSource,
	market ContextSource,
	backtester Backtester,
	fusion *strategy.Engine,
	workers int,
) *Analyzer {
	if workers < 1 {
		workers = 1
	}
	return &Analyzer{
		prices:     prices,
		news:       news,
		market:     market,
		backtester: backtester,
		fusion:     fusion,
		calc:       indicators.NewCalculator(),
		workers:    workers,
	}
}

// Analyze evaluates all symbols concurrently and returns results sorted by
// confidence descending. Equal confidences keep submission order.
func (a *Analyzer) Analyze(ctx context.Context, symbols []string) []models.SignalResult {
	logger.Info("starting portfolio analysis",
		zap.Int("symbols", len(symbols)),
		zap.Int("workers", a.workers),
	)

	results := make([]models.SignalResult, len(symbols))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < a.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = a.analyzeSafe(ctx, symbols[idx])
			}
		}()
	}

	for idx := range symbols {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})

	logger.Info("portfolio analysis complete", zap.Int("results", len(results)))
	return results
}

// analyzeSafe shields callers from a panicking symbol pipeline
func (a *Analyzer) analyzeSafe(ctx context.Context, symbol string) (result models.SignalResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("symbol analysis panicked",
				zap.String("symbol", symbol),
				zap.Any("panic", r),
			)
			result = models.ErrorResult(symbol, fmt.Errorf("analysis panicked: %v", r))
		}
	}()
	return a.analyze(ctx, symbol)
}

// AnalyzeSymbol runs the full pipeline for one symbol
func (a *Analyzer) AnalyzeSymbol(ctx context.Context, symbol string) models.SignalResult {
	return a.analyzeSafe(ctx, symbol)
}

// analyze performs the actual per-symbol work. The price history is
// fetched once and reused for indicators and the backtest; indicators, news,
// market context and backtest then run in parallel, and fusion waits for all
// four before combining.
func (a *Analyzer) analyze(ctx context.Context, symbol string) models.SignalResult {
	series, err := a.prices.History(ctx, symbol, price.Range1Y)
	if err != nil {
		logger.Warn("price history unavailable",
			zap.String("symbol", symbol),
			zap.Error(err),
		)
		return models.ErrorResult(symbol, fmt.Errorf("unable to fetch price data for %s: %w", symbol, err))
	}

	currentPrice := series.LastClose()

	var (
		wg        sync.WaitGroup
		panicked  atomic.Value
		technical models.TechnicalSignals
		headlines []models.Headline
		market    models.MarketContext
		backtest  models.BacktestMetrics
	)

	// A panicking sub-analysis is re-raised on this goroutine after the wait,
	// so the recover at the batch boundary sees it
	spawn := func(task func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					panicked.Store(r)
				}
			}()
			task()
		}()
	}

	spawn(func() { technical = a.calc.All(series) })
	spawn(func() { headlines = a.news.Headlines(ctx, symbol) })
	spawn(func() { market = a.market.Context(ctx, symbol) })
	spawn(func() { backtest = a.backtester.Run(series) })
	wg.Wait()

	if r := panicked.Load(); r != nil {
		panic(r)
	}

	records, sentiment := a.news.Score(ctx, headlines)

	technicalScore := a.fusion.TechnicalScore(technical)
	signal, confidence, _ := a.fusion.Combine(technicalScore, sentiment, market)
	riskScore := a.fusion.RiskScore(technical, market, signal)
	position := a.fusion.SizePosition(currentPrice, technical.Volatility, signal)

	return models.SignalResult{
		Symbol:           symbol,
		Price:            currentPrice,
		Signal:           signal,
		Confidence:       confidence,
		TechnicalScore:   technicalScore,
		SentimentScore:   sentiment * 100,
		RiskScore:        riskScore,
		EntryPrice:       currentPrice,
		StopLoss:         position.StopLoss,
		TakeProfit:       position.TakeProfit,
		PositionSize:     position.Shares,
		MarketContext:    market,
		TechnicalSignals: technical,
		Headlines:        capHeadlines(headlines),
		Analysis:         capRecords(records),
		Backtest:         backtest,
	}
}

func capHeadlines(headlines []models.Headline) []models.Headline {
	if len(headlines) > maxAttached {
		return headlines[:maxAttached]
	}
	return headlines
}

func capRecords(records []models.SentimentRecord) []models.SentimentRecord {
	if records == nil {
		return []models.SentimentRecord{}
	}
	if len(records) > maxAttached {
		return records[:maxAttached]
	}
	return records
}
