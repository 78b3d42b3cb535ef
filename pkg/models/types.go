package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// NewDecimal creates decimal from float64
func NewDecimal(value float64) decimal.Decimal {
	return decimal.NewFromFloat(value)
}

// Market identifies one of the two supported symbol universes
type Market string

const (
	MarketIndia Market = "india"
	MarketUS    Market = "us"
)

// Signal represents the final trading signal category
type Signal string

const (
	SignalStrongBuy  Signal = "STRONG_BUY"
	SignalBuy        Signal = "BUY"
	SignalHold       Signal = "HOLD"
	SignalSell       Signal = "SELL"
	SignalStrongSell Signal = "STRONG_SELL"
)

// IsBuy reports whether the signal is on the long side
func (s Signal) IsBuy() bool {
	return s == SignalBuy || s == SignalStrongBuy
}

// IsSell reports whether the signal is on the short side
func (s Signal) IsSell() bool {
	return s == SignalSell || s == SignalStrongSell
}

// Rank orders signals from strong sell (-2) to strong buy (+2)
func (s Signal) Rank() int {
	switch s {
	case SignalStrongBuy:
		return 2
	case SignalBuy:
		return 1
	case SignalSell:
		return -1
	case SignalStrongSell:
		return -2
	default:
		return 0
	}
}

// VolatilityRegime classifies benchmark volatility
type VolatilityRegime string

const (
	VolatilityLow    VolatilityRegime = "LOW"
	VolatilityMedium VolatilityRegime = "MEDIUM"
	VolatilityHigh   VolatilityRegime = "HIGH"
)

// TrendDirection classifies benchmark trend
type TrendDirection string

const (
	TrendBull     TrendDirection = "BULL"
	TrendBear     TrendDirection = "BEAR"
	TrendSideways TrendDirection = "SIDEWAYS"
)

// Candle represents one OHLCV bar
type Candle struct {
	Timestamp time.Time       `json:"timestamp"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    decimal.Decimal `json:"volume"`
}

// PriceSeries is an immutable ordered-by-date price/volume history for one
// symbol. It is fetched once per analysis pass and is the source of truth for
// every derived indicator.
type PriceSeries struct {
	Symbol  string   `json:"symbol"`
	Candles []Candle `json:"candles"`
}

// Len returns the number of bars
func (p *PriceSeries) Len() int {
	return len(p.Candles)
}

// Closes extracts close prices as float64
func (p *PriceSeries) Closes() []float64 {
	out := make([]float64, len(p.Candles))
	for i, c := range p.Candles {
		out[i], _ = c.Close.Float64()
	}
	return out
}

// Highs extracts high prices as float64
func (p *PriceSeries) Highs() []float64 {
	out := make([]float64, len(p.Candles))
	for i, c := range p.Candles {
		out[i], _ = c.High.Float64()
	}
	return out
}

// Lows extracts low prices as float64
func (p *PriceSeries) Lows() []float64 {
	out := make([]float64, len(p.Candles))
	for i, c := range p.Candles {
		out[i], _ = c.Low.Float64()
	}
	return out
}

// Volumes extracts volumes as float64
func (p *PriceSeries) Volumes() []float64 {
	out := make([]float64, len(p.Candles))
	for i, c := range p.Candles {
		out[i], _ = c.Volume.Float64()
	}
	return out
}

// LastClose returns the most recent close price, 0 for an empty series
func (p *PriceSeries) LastClose() float64 {
	if len(p.Candles) == 0 {
		return 0
	}
	v, _ := p.Candles[len(p.Candles)-1].Close.Float64()
	return v
}

// Slice returns a sub-series over [from, to)
func (p *PriceSeries) Slice(from, to int) *PriceSeries {
	return &PriceSeries{Symbol: p.Symbol, Candles: p.Candles[from:to]}
}

// Tail returns the last n bars (the whole series when shorter)
func (p *PriceSeries) Tail(n int) *PriceSeries {
	if len(p.Candles) <= n {
		return p
	}
	return p.Slice(len(p.Candles)-n, len(p.Candles))
}

// TechnicalSignals carries every derived indicator for one symbol. All fields
// are always populated: each indicator has a documented fallback used when the
// history is too short for its window.
type TechnicalSignals struct {
	RSI             float64 `json:"rsi"`              // fallback 50.0
	MACD            float64 `json:"macd"`             // fallback 0.0
	MACDSignal      float64 `json:"macd_signal"`      // fallback 0.0
	BBPosition      float64 `json:"bb_position"`      // fallback 0.5
	VolumeRatio     float64 `json:"volume_ratio"`     // fallback 1.0
	PriceMomentum   float64 `json:"price_momentum"`   // percent, fallback 0.0
	Volatility      float64 `json:"volatility"`       // annualized, fallback 0.2
	SupportLevel    float64 `json:"support_level"`    // fallback 0.95 * price
	ResistanceLevel float64 `json:"resistance_level"` // fallback 1.05 * price
}

// DefaultTechnicalSignals returns the neutral indicator set used when no
// price history could be fetched at all
func DefaultTechnicalSignals() TechnicalSignals {
	return TechnicalSignals{
		RSI:             50.0,
		BBPosition:      0.5,
		VolumeRatio:     1.0,
		Volatility:      0.2,
		SupportLevel:    100.0,
		ResistanceLevel: 110.0,
	}
}

// MarketContext is the coarse market regime used to reweight signal fusion.
// SectorRotation and MarketSentiment are fixed placeholders: the classifier
// never computes them and always reports "GROWTH" / "NEUTRAL".
type MarketContext struct {
	VolatilityRegime VolatilityRegime `json:"volatility_regime"`
	TrendDirection   TrendDirection   `json:"trend_direction"`
	SectorRotation   string           `json:"sector_rotation"`
	MarketSentiment  string           `json:"market_sentiment"`
}

// DefaultMarketContext is the context used whenever benchmark data is
// unavailable
func DefaultMarketContext() MarketContext {
	return MarketContext{
		VolatilityRegime: VolatilityMedium,
		TrendDirection:   TrendSideways,
		SectorRotation:   "GROWTH",
		MarketSentiment:  "NEUTRAL",
	}
}
