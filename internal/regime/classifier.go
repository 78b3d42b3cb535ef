package regime

import (
	"context"

	"go.uber.org/zap"

	"github.com/selivandex/stockpulse/internal/adapters/price"
	"github.com/selivandex/stockpulse/internal/indicators"
	"github.com/selivandex/stockpulse/internal/universe"
	"github.com/selivandex/stockpulse/pkg/logger"
	"github.com/selivandex/stockpulse/pkg/models"
)

// Benchmark indices used to classify the broad market each symbol trades in
const (
	indiaBenchmark = "^NSEI"
	usBenchmark    = "^GSPC"
)

// Volatility regime boundaries on annualized benchmark volatility
const (
	highVolThreshold = 0.25
	lowVolThreshold  = 0.15
)

const (
	trendFastWindow = 50
	trendSlowWindow = 200
)

// Classifier derives a coarse market regime from a benchmark index's history.
// Any fetch failure degrades to the neutral default context, never an error.
type Classifier struct {
	provider price.HistoryProvider
	calc     *indicators.Calculator
}

// NewClassifier creates a market regime classifier
func NewClassifier(provider price.HistoryProvider) *Classifier {
	return &Classifier{
		provider: provider,
		calc:     indicators.NewCalculator(),
	}
}

// Context classifies the market regime for the benchmark behind the given
// symbol. Indian listings map to the NIFTY 50, everything else to the S&P 500.
func (c *Classifier) Context(ctx context.Context, symbol string) models.MarketContext {
	benchmark := usBenchmark
	if universe.MarketOf(symbol) == models.MarketIndia {
		benchmark = indiaBenchmark
	}

	series, err := c.provider.History(ctx, benchmark, price.Range6Mo)
	if err != nil || series == nil || series.Len() == 0 {
		logger.Debug("benchmark history unavailable, using default context",
			zap.String("benchmark", benchmark),
			zap.Error(err),
		)
		return models.DefaultMarketContext()
	}

	closes := series.Closes()

	result := models.DefaultMarketContext()
	result.VolatilityRegime = volatilityRegime(c.calc.Volatility(closes))
	result.TrendDirection = trendDirection(c.calc, closes)
	return result
}

func volatilityRegime(vol float64) models.VolatilityRegime {
	switch {
	case vol > highVolThreshold:
		return models.VolatilityHigh
	case vol < lowVolThreshold:
		return models.VolatilityLow
	default:
		return models.VolatilityMedium
	}
}

// trendDirection compares the last close against the 50- and 200-period
// moving averages. With fewer than 200 bars the slow average falls back to
// the fast one, collapsing the comparison to price vs SMA50.
func trendDirection(calc *indicators.Calculator, closes []float64) models.TrendDirection {
	if len(closes) == 0 {
		return models.TrendSideways
	}

	current := closes[len(closes)-1]
	sma50 := calc.SMA(closes, trendFastWindow)
	sma200 := sma50
	if len(closes) >= trendSlowWindow {
		sma200 = calc.SMA(closes, trendSlowWindow)
	}

	switch {
	case current > sma50 && sma50 > sma200:
		return models.TrendBull
	case current < sma50 && sma50 < sma200:
		return models.TrendBear
	default:
		return models.TrendSideways
	}
}
