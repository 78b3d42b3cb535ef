package indicators

import (
	"math"

	"github.com/cinar/indicator"

	"github.com/selivandex/stockpulse/pkg/models"
)

// Window defaults. Every indicator degrades to a documented fallback when the
// series is shorter than its window, so short histories never error.
const (
	rsiWindow        = 14
	macdSlow         = 26
	macdSignal       = 9
	bollingerWindow  = 20
	bollingerStdDevs = 2.0
	volumeWindow     = 20
	volatilityWindow = 30
	momentumWindow   = 20
	levelWindow      = 20
	tradingDays      = 252
)

// Calculator derives technical indicators from a price series. Stateless;
// the zero value is usable.
type Calculator struct{}

// NewCalculator creates new indicator calculator
func NewCalculator() *Calculator {
	return &Calculator{}
}

// All computes the full indicator set for a series, with every field
// populated (fallback values where history is insufficient)
func (c *Calculator) All(series *models.PriceSeries) models.TechnicalSignals {
	if series == nil || series.Len() == 0 {
		return models.DefaultTechnicalSignals()
	}

	closes := series.Closes()
	macdLine, signalLine := c.MACD(closes)
	bbPosition, _, _ := c.BollingerPosition(closes)
	support, resistance := c.SupportResistance(series)

	return models.TechnicalSignals{
		RSI:             c.RSI(closes),
		MACD:            macdLine,
		MACDSignal:      signalLine,
		BBPosition:      bbPosition,
		VolumeRatio:     c.VolumeRatio(series),
		PriceMomentum:   c.Momentum(closes),
		Volatility:      c.Volatility(closes),
		SupportLevel:    support,
		ResistanceLevel: resistance,
	}
}

// RSI computes the 14-period relative strength index from rolling average
// gains and losses. Returns the neutral 50.0 when history is shorter than
// window+1 bars or when both averages vanish (flat series).
func (c *Calculator) RSI(closes []float64) float64 {
	if len(closes) < rsiWindow+1 {
		return 50.0
	}

	gains := make([]float64, len(closes)-1)
	losses := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i-1] = delta
		} else {
			losses[i-1] = -delta
		}
	}

	avgGain := last(indicator.Sma(rsiWindow, gains))
	avgLoss := last(indicator.Sma(rsiWindow, losses))

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50.0
		}
		return 100.0
	}

	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}

// MACD returns the MACD line (EMA12 - EMA26) and its 9-period signal line.
// Both are 0.0 when fewer than slow+signal bars exist.
func (c *Calculator) MACD(closes []float64) (float64, float64) {
	if len(closes) < macdSlow+macdSignal {
		return 0.0, 0.0
	}

	macdLine, signalLine := indicator.Macd(closes)
	return last(macdLine), last(signalLine)
}

// BollingerPosition returns the price's normalized position between the
// 20-period mean +/- 2 stddev bands, plus the bands themselves. With
// insufficient history the position is 0.5 and both bands equal the price.
func (c *Calculator) BollingerPosition(closes []float64) (position, upper, lower float64) {
	price := lastOr(closes, 0)
	if len(closes) < bollingerWindow {
		return 0.5, price, price
	}

	mean := last(indicator.Sma(bollingerWindow, closes))
	std := last(indicator.Std(bollingerWindow, closes))
	upper = mean + bollingerStdDevs*std
	lower = mean - bollingerStdDevs*std

	if upper == lower {
		return 0.5, upper, lower
	}
	return (price - lower) / (upper - lower), upper, lower
}

// VolumeRatio compares the mean of the last 5 volumes against the 20-period
// rolling mean volume; 1.0 with fewer than 10 bars or a zero denominator
func (c *Calculator) VolumeRatio(series *models.PriceSeries) float64 {
	volumes := series.Volumes()
	if len(volumes) < 10 {
		return 1.0
	}

	recent := mean(volumes[len(volumes)-5:])
	avg := last(indicator.Sma(volumeWindow, volumes))
	if avg <= 0 {
		return 1.0
	}
	return recent / avg
}

// Volatility computes the annualized standard deviation of 30-period daily
// returns; 0.2 with insufficient history or a degenerate result
func (c *Calculator) Volatility(closes []float64) float64 {
	if len(closes) < volatilityWindow {
		return 0.2
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		returns = append(returns, closes[i]/closes[i-1]-1)
	}
	if len(returns) < volatilityWindow {
		return 0.2
	}

	vol := last(indicator.Std(volatilityWindow, returns)) * math.Sqrt(tradingDays)
	if math.IsNaN(vol) || math.IsInf(vol, 0) {
		return 0.2
	}
	return vol
}

// Momentum returns the percent close change over the trailing 20 periods,
// 0.0 with fewer than 20 bars
func (c *Calculator) Momentum(closes []float64) float64 {
	if len(closes) < momentumWindow {
		return 0.0
	}
	base := closes[len(closes)-momentumWindow]
	if base == 0 {
		return 0.0
	}
	return (closes[len(closes)-1]/base - 1) * 100
}

// SupportResistance returns the rolling 20-period low/high levels; with
// insufficient history support is 95% and resistance 105% of the last price
func (c *Calculator) SupportResistance(series *models.PriceSeries) (support, resistance float64) {
	price := series.LastClose()
	if series.Len() < levelWindow {
		return price * 0.95, price * 1.05
	}

	support = last(indicator.Min(levelWindow, series.Lows()))
	resistance = last(indicator.Max(levelWindow, series.Highs()))
	return support, resistance
}

// SMA returns the trailing simple moving average over period bars, falling
// back to the full-series mean when fewer bars exist
func (c *Calculator) SMA(closes []float64, period int) float64 {
	if len(closes) == 0 {
		return 0.0
	}
	if len(closes) < period {
		return mean(closes)
	}
	return last(indicator.Sma(period, closes))
}

func last(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
}

func lastOr(values []float64, fallback float64) float64 {
	if len(values) == 0 {
		return fallback
	}
	return values[len(values)-1]
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
