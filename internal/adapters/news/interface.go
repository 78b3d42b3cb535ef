package news

import (
	"context"

	"go.uber.org/zap"

	"github.com/selivandex/stockpulse/pkg/logger"
	"github.com/selivandex/stockpulse/pkg/models"
)

// Provider fetches candidate headlines for one symbol from a single source
type Provider interface {
	// Name returns provider name for logging
	Name() string

	// Fetch returns raw headlines; zero results is a valid non-error outcome
	Fetch(ctx context.Context, symbol string) ([]models.Headline, error)
}

// Chain is an ordered list of providers tried in sequence. Headlines from
// every provider that succeeds are accumulated; a failing provider is logged
// and skipped, never aborts the chain.
type Chain []Provider

// Collect gathers headlines from all providers in order
func (c Chain) Collect(ctx context.Context, symbol string) []models.Headline {
	var all []models.Headline

	for _, p := range c {
		headlines, err := p.Fetch(ctx, symbol)
		if err != nil {
			logger.Debug("news provider failed",
				zap.String("provider", p.Name()),
				zap.String("symbol", symbol),
				zap.Error(err),
			)
			continue
		}
		all = append(all, headlines...)
	}

	return all
}
