package price

import (
	"context"
	"errors"

	"github.com/selivandex/stockpulse/pkg/models"
)

// Range selects the lookback window for a history fetch
type Range string

const (
	Range1D  Range = "1d"
	Range5D  Range = "5d"
	Range1Mo Range = "1mo"
	Range3Mo Range = "3mo"
	Range6Mo Range = "6mo"
	Range1Y  Range = "1y"
)

// ErrNoData signals that the provider answered but had no history for the
// symbol. Distinct from transport errors: callers treat it as a terminal
// "no data" outcome rather than retrying.
var ErrNoData = errors.New("no price data available")

// HistoryProvider fetches an ordered OHLCV series for one symbol
type HistoryProvider interface {
	// History returns the daily series over the lookback range, or ErrNoData
	History(ctx context.Context, symbol string, rng Range) (*models.PriceSeries, error)
}
