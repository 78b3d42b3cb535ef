package models

import (
	"fmt"
	"math"
	"time"
)

// SentimentLabel is the classifier verdict for one headline
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "POSITIVE"
	SentimentNegative SentimentLabel = "NEGATIVE"
	SentimentNeutral  SentimentLabel = "NEUTRAL"
)

// Headline is one piece of news text plus its originating provider.
// Placeholder marks the synthetic "no news" entry that downstream scoring
// must treat as the absence of a sentiment signal, not as scoreable text.
type Headline struct {
	Text        string `json:"text"`
	Source      string `json:"source"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

// NoNewsPlaceholder builds the single headline returned when every news
// source and fallback came up empty
func NoNewsPlaceholder(symbol string) Headline {
	return Headline{
		Text:        fmt.Sprintf("No news available for %s", symbol),
		Source:      "none",
		Placeholder: true,
	}
}

// SentimentRecord is the scored form of one headline. NumericalScore is
// +Score for POSITIVE, -Score for NEGATIVE and 0 for NEUTRAL.
type SentimentRecord struct {
	Headline       string         `json:"headline"`
	Label          SentimentLabel `json:"label"`
	Score          float64        `json:"score"`
	NumericalScore float64        `json:"numerical_score"`
}

// BacktestMetrics summarizes a rolling-window strategy replay. Error is the
// explicit marker used instead of raising when history is too short or no
// trades were generated; all numeric fields are zero in that case.
type BacktestMetrics struct {
	TotalTrades  int     `json:"total_trades"`
	TotalReturn  float64 `json:"total_return"`
	WinRate      float64 `json:"win_rate"`
	AvgReturn    float64 `json:"avg_return"`
	MaxGain      float64 `json:"max_gain"`
	MaxLoss      float64 `json:"max_loss"`
	SharpeRatio  float64 `json:"sharpe_ratio"`
	SignalsCount int     `json:"signals_count"`
	Error        string  `json:"error,omitempty"`
}

// SignalResult is the complete analysis outcome for one symbol in one run.
// Built fresh per run, never mutated afterwards, wholly replaced by the next
// run for the same symbol.
type SignalResult struct {
	Symbol           string            `json:"symbol"`
	Price            float64           `json:"price"`
	Signal           Signal            `json:"signal"`
	Confidence       float64           `json:"confidence"`
	TechnicalScore   float64           `json:"technical_score"`
	SentimentScore   float64           `json:"sentiment_score"` // percentage scale
	RiskScore        float64           `json:"risk_score"`
	EntryPrice       float64           `json:"entry_price"`
	StopLoss         float64           `json:"stop_loss"`
	TakeProfit       float64           `json:"take_profit"`
	PositionSize     int               `json:"position_size"` // signed shares, negative = short
	MarketContext    MarketContext     `json:"market_context"`
	TechnicalSignals TechnicalSignals  `json:"technical_signals"`
	Headlines        []Headline        `json:"headlines"` // at most 5
	Analysis         []SentimentRecord `json:"analysis"`  // at most 5
	Backtest         BacktestMetrics   `json:"backtest_metrics"`
	Error            string            `json:"error,omitempty"`
}

// ErrorResult builds the neutral HOLD result recorded when a symbol's
// pipeline failed outright
func ErrorResult(symbol string, cause error) SignalResult {
	return SignalResult{
		Symbol:           symbol,
		Signal:           SignalHold,
		RiskScore:        100.0,
		MarketContext:    DefaultMarketContext(),
		TechnicalSignals: DefaultTechnicalSignals(),
		Headlines:        []Headline{{Text: fmt.Sprintf("Error processing %s", symbol), Source: "none", Placeholder: true}},
		Analysis:         []SentimentRecord{},
		Backtest:         BacktestMetrics{Error: cause.Error()},
		Error:            cause.Error(),
	}
}

// SignalSummary is the compact projection of a SignalResult kept in the
// live cache and served to readers
type SignalSummary struct {
	Symbol      string    `json:"symbol"`
	Price       float64   `json:"price"`
	Signal      Signal    `json:"signal"`
	Confidence  float64   `json:"confidence"`
	RSI         float64   `json:"rsi"`
	Change      float64   `json:"change"` // 20-period momentum, percent
	LastUpdated time.Time `json:"last_updated"`
}

// Summarize projects a full result into its cacheable summary
func (r *SignalResult) Summarize(at time.Time) SignalSummary {
	return SignalSummary{
		Symbol:      r.Symbol,
		Price:       round2(r.Price),
		Signal:      r.Signal,
		Confidence:  round1(r.Confidence),
		RSI:         round1(r.TechnicalSignals.RSI),
		Change:      round1(r.TechnicalSignals.PriceMomentum),
		LastUpdated: at,
	}
}

// CacheEntry holds the top buy and sell candidates for one market, each
// sorted by confidence descending. Replaced atomically by the refresher.
type CacheEntry struct {
	Buy  []SignalSummary `json:"buy"`
	Sell []SignalSummary `json:"sell"`
}

// CacheMetadata is the process-wide refresh bookkeeping. IsAnalyzing is true
// for the entire duration of exactly zero or one refresh cycle.
type CacheMetadata struct {
	LastUpdated   *time.Time `json:"last_updated"`
	IsAnalyzing   bool       `json:"is_analyzing"`
	Progress      int        `json:"progress"` // 0-100
	AnalysisCount int        `json:"analysis_count"`
	LastError     string     `json:"last_error,omitempty"`
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
