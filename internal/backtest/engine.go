package backtest

import (
	"math"

	"github.com/selivandex/stockpulse/internal/indicators"
	"github.com/selivandex/stockpulse/pkg/models"
)

const (
	lookbackBars = 50
	forwardBars  = 5
	maxBars      = 252

	buyRSI  = 35.0
	sellRSI = 65.0
)

// Error markers reported instead of metrics when a replay cannot run
const (
	errInsufficientData = "Insufficient data for backtesting"
	errNoTrades         = "No trades generated in backtest period"
)

// Engine replays a simplified RSI/MACD rule over trailing history. The replay
// is illustrative: 5-bar forward returns with no costs or slippage.
type Engine struct {
	calc *indicators.Calculator
}

// NewEngine creates a backtest engine
func NewEngine() *Engine {
	return &Engine{calc: indicators.NewCalculator()}
}

// Run walks a rolling 50-bar window over up to 252 bars, leaving the last 5
// bars for forward return measurement. At each step the rule is: RSI<35 with
// MACD above signal buys, RSI>65 with MACD below signal sells, anything else
// holds. Short histories and trade-free periods yield an error marker, never
// a failure.
func (e *Engine) Run(series *models.PriceSeries) models.BacktestMetrics {
	if series == nil || series.Len() < lookbackBars {
		return models.BacktestMetrics{Error: errInsufficientData}
	}

	hist := series.Tail(maxBars)
	closes := hist.Closes()

	var returns []float64
	signalsCount := 0

	for i := lookbackBars; i < hist.Len()-forwardBars; i++ {
		window := closes[i-lookbackBars : i]

		rsi := e.calc.RSI(window)
		macdLine, signalLine := e.calc.MACD(window)

		signal := models.SignalHold
		if rsi < buyRSI && macdLine > signalLine {
			signal = models.SignalBuy
		} else if rsi > sellRSI && macdLine < signalLine {
			signal = models.SignalSell
		}
		signalsCount++

		if signal == models.SignalHold || closes[i] == 0 {
			continue
		}

		forward := (closes[i+forwardBars]/closes[i] - 1) * 100
		if signal == models.SignalSell {
			forward = -forward
		}
		returns = append(returns, forward)
	}

	if len(returns) == 0 {
		return models.BacktestMetrics{Error: errNoTrades, SignalsCount: signalsCount}
	}

	return summarize(returns, signalsCount)
}

func summarize(returns []float64, signalsCount int) models.BacktestMetrics {
	total := 0.0
	wins := 0
	maxGain := returns[0]
	maxLoss := returns[0]
	for _, r := range returns {
		total += r
		if r > 0 {
			wins++
		}
		if r > maxGain {
			maxGain = r
		}
		if r < maxLoss {
			maxLoss = r
		}
	}

	n := float64(len(returns))
	avg := total / n

	variance := 0.0
	for _, r := range returns {
		variance += (r - avg) * (r - avg)
	}
	std := math.Sqrt(variance / n)

	sharpe := 0.0
	if std > 0 {
		sharpe = avg / std
	}

	return models.BacktestMetrics{
		TotalTrades:  len(returns),
		TotalReturn:  round2(total),
		WinRate:      round2(float64(wins) / n * 100),
		AvgReturn:    round2(avg),
		MaxGain:      round2(maxGain),
		MaxLoss:      round2(maxLoss),
		SharpeRatio:  round2(sharpe),
		SignalsCount: signalsCount,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
