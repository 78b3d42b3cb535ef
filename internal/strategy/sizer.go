package strategy

import (
	"math"

	"github.com/selivandex/stockpulse/pkg/models"
)

const tradingDays = 252

// Position holds the sized trade levels for one signal. Shares is negative
// for a short position and zero for HOLD.
type Position struct {
	Shares     int
	StopLoss   float64
	TakeProfit float64
}

// SizePosition computes stop, target and share count for a signal. The risk
// budget is a fixed percentage of the configured account size; the stop
// distance is twice the daily volatility of the price. Targets keep a 2:1
// reward-to-risk ratio.
func (e *Engine) SizePosition(price, volatility float64, signal models.Signal) Position {
	riskPerTrade := e.cfg.AccountSize * e.cfg.RiskPerTradePercent / 100

	dailyVol := volatility / math.Sqrt(tradingDays)
	stopDistance := price * dailyVol * 2

	shares := 0
	if stopDistance > 0 {
		shares = int(riskPerTrade / stopDistance)
	}

	switch {
	case signal.IsBuy():
		return Position{
			Shares:     shares,
			StopLoss:   price - stopDistance,
			TakeProfit: price + stopDistance*2,
		}
	case signal.IsSell():
		return Position{
			Shares:     -shares,
			StopLoss:   price + stopDistance,
			TakeProfit: price - stopDistance*2,
		}
	default:
		return Position{Shares: 0, StopLoss: price, TakeProfit: price}
	}
}
