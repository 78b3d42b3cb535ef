package strategy

import (
	"math"

	"github.com/selivandex/stockpulse/pkg/models"
)

// RiskScore estimates how risky acting on the signal is, 0 to 100, higher is
// riskier. Additive components, each independently capped: volatility up to
// 30, technical extremes up to 25, market regime up to 25, liquidity up to
// 20, plus a penalty for trading against the benchmark trend.
func (e *Engine) RiskScore(s models.TechnicalSignals, market models.MarketContext, signal models.Signal) float64 {
	total := math.Min(s.Volatility*100, 30)

	if s.RSI > 80 || s.RSI < 20 {
		total += 10
	}
	if math.Abs(s.BBPosition-0.5) > 0.4 {
		total += 10
	}
	if s.VolumeRatio < 0.5 {
		total += 5
	}

	if market.VolatilityRegime == models.VolatilityHigh {
		total += 15
	}
	if market.TrendDirection == models.TrendBear {
		total += 10
	}

	total += math.Max(0, 20-s.VolumeRatio*10)

	if signal.IsSell() && market.TrendDirection == models.TrendBull {
		total += 10
	} else if signal.IsBuy() && market.TrendDirection == models.TrendBear {
		total += 5
	}

	return math.Min(total, 100)
}
