package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/selivandex/stockpulse/pkg/models"
)

// seriesFromCloses builds a daily series where high/low bracket the close and
// volume is constant
func seriesFromCloses(closes []float64) *models.PriceSeries {
	candles := make([]models.Candle, len(closes))
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		candles[i] = models.Candle{
			Timestamp: base.AddDate(0, 0, i),
			Open:      models.NewDecimal(c),
			High:      models.NewDecimal(c * 1.01),
			Low:       models.NewDecimal(c * 0.99),
			Close:     models.NewDecimal(c),
			Volume:    models.NewDecimal(1000),
		}
	}
	return &models.PriceSeries{Symbol: "TEST", Candles: candles}
}

func risingCloses(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func fallingCloses(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start - float64(i)*step
	}
	return out
}

func TestRSI(t *testing.T) {
	calc := NewCalculator()

	tests := []struct {
		name   string
		closes []float64
		check  func(t *testing.T, rsi float64)
	}{
		{
			name:   "short series returns neutral default",
			closes: risingCloses(10, 100, 1),
			check: func(t *testing.T, rsi float64) {
				if rsi != 50.0 {
					t.Errorf("expected 50.0, got %f", rsi)
				}
			},
		},
		{
			name:   "monotonic rise saturates at 100",
			closes: risingCloses(30, 100, 1),
			check: func(t *testing.T, rsi float64) {
				if rsi != 100.0 {
					t.Errorf("expected 100.0, got %f", rsi)
				}
			},
		},
		{
			name:   "monotonic fall approaches zero",
			closes: fallingCloses(30, 100, 1),
			check: func(t *testing.T, rsi float64) {
				if rsi != 0.0 {
					t.Errorf("expected 0.0, got %f", rsi)
				}
			},
		},
		{
			name: "flat series returns neutral",
			closes: func() []float64 {
				return risingCloses(30, 100, 0)
			}(),
			check: func(t *testing.T, rsi float64) {
				if rsi != 50.0 {
					t.Errorf("expected 50.0 for flat series, got %f", rsi)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rsi := calc.RSI(tt.closes)
			if rsi < 0 || rsi > 100 {
				t.Fatalf("RSI out of bounds: %f", rsi)
			}
			tt.check(t, rsi)
		})
	}
}

func TestMACD(t *testing.T) {
	calc := NewCalculator()

	t.Run("short series returns zeros", func(t *testing.T) {
		macd, signal := calc.MACD(risingCloses(20, 100, 1))
		if macd != 0.0 || signal != 0.0 {
			t.Errorf("expected zeros, got %f/%f", macd, signal)
		}
	})

	t.Run("rising series has positive MACD line", func(t *testing.T) {
		macd, _ := calc.MACD(risingCloses(60, 100, 1))
		if macd <= 0 {
			t.Errorf("expected positive MACD on uptrend, got %f", macd)
		}
	})

	t.Run("falling series has negative MACD line", func(t *testing.T) {
		macd, _ := calc.MACD(fallingCloses(60, 200, 1))
		if macd >= 0 {
			t.Errorf("expected negative MACD on downtrend, got %f", macd)
		}
	})
}

func TestBollingerPosition(t *testing.T) {
	calc := NewCalculator()

	t.Run("short series defaults to middle with bands at price", func(t *testing.T) {
		pos, upper, lower := calc.BollingerPosition(risingCloses(10, 100, 1))
		if pos != 0.5 {
			t.Errorf("expected 0.5, got %f", pos)
		}
		price := 109.0
		if upper != price || lower != price {
			t.Errorf("expected bands at price %f, got %f/%f", price, upper, lower)
		}
	})

	t.Run("flat series collapses bands to middle", func(t *testing.T) {
		pos, _, _ := calc.BollingerPosition(risingCloses(30, 100, 0))
		if pos != 0.5 {
			t.Errorf("expected 0.5 for flat bands, got %f", pos)
		}
	})

	t.Run("rising series sits in upper half", func(t *testing.T) {
		pos, upper, lower := calc.BollingerPosition(risingCloses(40, 100, 1))
		if upper <= lower {
			t.Fatalf("bands inverted: %f <= %f", upper, lower)
		}
		if pos <= 0.5 {
			t.Errorf("expected position above middle on uptrend, got %f", pos)
		}
	})
}

func TestVolumeRatio(t *testing.T) {
	calc := NewCalculator()

	t.Run("short series defaults to 1.0", func(t *testing.T) {
		series := seriesFromCloses(risingCloses(5, 100, 1))
		if got := calc.VolumeRatio(series); got != 1.0 {
			t.Errorf("expected 1.0, got %f", got)
		}
	})

	t.Run("constant volume is ratio 1.0", func(t *testing.T) {
		series := seriesFromCloses(risingCloses(40, 100, 1))
		got := calc.VolumeRatio(series)
		if math.Abs(got-1.0) > 1e-9 {
			t.Errorf("expected 1.0, got %f", got)
		}
	})
}

func TestVolatility(t *testing.T) {
	calc := NewCalculator()

	t.Run("short series defaults", func(t *testing.T) {
		if got := calc.Volatility(risingCloses(10, 100, 1)); got != 0.2 {
			t.Errorf("expected 0.2, got %f", got)
		}
	})

	t.Run("flat series has zero volatility", func(t *testing.T) {
		got := calc.Volatility(risingCloses(60, 100, 0))
		if got != 0.0 {
			t.Errorf("expected 0.0, got %f", got)
		}
	})

	t.Run("noisy series is positive", func(t *testing.T) {
		closes := make([]float64, 60)
		for i := range closes {
			closes[i] = 100 + float64(i%2)*5
		}
		got := calc.Volatility(closes)
		if got <= 0 {
			t.Errorf("expected positive volatility, got %f", got)
		}
	})
}

func TestMomentum(t *testing.T) {
	calc := NewCalculator()

	t.Run("short series returns zero", func(t *testing.T) {
		if got := calc.Momentum(risingCloses(10, 100, 1)); got != 0.0 {
			t.Errorf("expected 0.0, got %f", got)
		}
	})

	t.Run("20-bar change in percent", func(t *testing.T) {
		// 20 bars back the close is 100, last close is 119
		got := calc.Momentum(risingCloses(20, 100, 1))
		want := 19.0
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("expected %f, got %f", want, got)
		}
	})
}

func TestSupportResistance(t *testing.T) {
	calc := NewCalculator()

	t.Run("short series uses price fractions", func(t *testing.T) {
		series := seriesFromCloses(risingCloses(5, 100, 1))
		support, resistance := calc.SupportResistance(series)
		price := series.LastClose()
		if math.Abs(support-price*0.95) > 1e-9 || math.Abs(resistance-price*1.05) > 1e-9 {
			t.Errorf("unexpected levels: %f/%f for price %f", support, resistance, price)
		}
	})

	t.Run("levels bracket the recent closes", func(t *testing.T) {
		series := seriesFromCloses(risingCloses(40, 100, 1))
		support, resistance := calc.SupportResistance(series)
		price := series.LastClose()
		if support >= price {
			t.Errorf("support %f above price %f", support, price)
		}
		if resistance < price {
			t.Errorf("resistance %f below price %f", resistance, price)
		}
	})
}

func TestAll(t *testing.T) {
	calc := NewCalculator()

	t.Run("nil series returns defaults", func(t *testing.T) {
		got := calc.All(nil)
		want := models.DefaultTechnicalSignals()
		if got != want {
			t.Errorf("expected defaults, got %+v", got)
		}
	})

	t.Run("every field populated for a real series", func(t *testing.T) {
		series := seriesFromCloses(risingCloses(252, 100, 0.5))
		got := calc.All(series)

		if got.RSI < 0 || got.RSI > 100 {
			t.Errorf("RSI out of bounds: %f", got.RSI)
		}
		if got.SupportLevel <= 0 || got.ResistanceLevel <= 0 {
			t.Errorf("levels not populated: %f/%f", got.SupportLevel, got.ResistanceLevel)
		}
		if got.Volatility < 0 {
			t.Errorf("negative volatility: %f", got.Volatility)
		}
		if got.VolumeRatio <= 0 {
			t.Errorf("volume ratio not populated: %f", got.VolumeRatio)
		}
	})
}
