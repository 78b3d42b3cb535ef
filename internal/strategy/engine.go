package strategy

import (
	"math"

	"github.com/selivandex/stockpulse/internal/adapters/config"
	"github.com/selivandex/stockpulse/pkg/models"
)

// Engine fuses technical and sentiment scores, regime-adjusted, into the
// final signal category with a confidence estimate
type Engine struct {
	cfg config.AnalysisConfig
}

// NewEngine creates a signal fusion engine
func NewEngine(cfg config.AnalysisConfig) *Engine {
	return &Engine{cfg: cfg}
}

// TechnicalScore condenses the indicator set into one score in [-100,100].
// Component contributions: RSI up to +/-30, MACD gap up to +/-25, Bollinger
// position +/-20, volume ratio +15/-10, momentum up to +/-10.
func (e *Engine) TechnicalScore(s models.TechnicalSignals) float64 {
	score := 0.0

	if s.RSI < 30 {
		score += 30 - s.RSI
	} else if s.RSI > 70 {
		score -= s.RSI - 70
	}

	gap := (s.MACD - s.MACDSignal) * 100
	if gap > 0 {
		score += math.Min(25, gap)
	} else {
		score += math.Max(-25, gap)
	}

	if s.BBPosition < 0.2 {
		score += 20
	} else if s.BBPosition > 0.8 {
		score -= 20
	}

	if s.VolumeRatio > 1.5 {
		score += 15
	} else if s.VolumeRatio < 0.7 {
		score -= 10
	}

	score += math.Max(-10, math.Min(10, s.PriceMomentum/2))

	return math.Max(-100, math.Min(100, score))
}

// Combine fuses the technical score with the aggregate sentiment (unit
// fraction in [-1,1]) under regime-adjusted weights and maps the combined
// score onto a signal category plus confidence.
//
// HIGH benchmark volatility shifts trust toward technicals; otherwise a BEAR
// trend raises the sentiment weight. The checks mirror the calibrated
// production behavior: volatility wins when both apply.
func (e *Engine) Combine(technicalScore, sentiment float64, market models.MarketContext) (models.Signal, float64, float64) {
	techWeight := e.cfg.TechWeight
	sentWeight := e.cfg.SentimentWeight

	if market.VolatilityRegime == models.VolatilityHigh {
		techWeight = e.cfg.HighVolTechWeight
		sentWeight = e.cfg.HighVolSentimentWeight
	} else if market.TrendDirection == models.TrendBear {
		techWeight = e.cfg.BearTechWeight
		sentWeight = e.cfg.BearSentimentWeight
	}

	combined := technicalScore*techWeight + sentiment*100*sentWeight

	signal, confidence := e.classify(combined)
	return signal, confidence, combined
}

func (e *Engine) classify(combined float64) (models.Signal, float64) {
	abs := math.Abs(combined)

	switch {
	case combined > e.cfg.StrongThreshold:
		return models.SignalStrongBuy, math.Min(95, abs)
	case combined > e.cfg.SignalThreshold:
		return models.SignalBuy, math.Min(85, abs)
	case combined < -e.cfg.StrongThreshold:
		return models.SignalStrongSell, math.Min(95, abs)
	case combined < -e.cfg.SignalThreshold:
		return models.SignalSell, math.Min(85, abs)
	default:
		return models.SignalHold, math.Max(50, 100-abs)
	}
}
