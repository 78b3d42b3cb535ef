package classifier

import (
	"context"

	"github.com/selivandex/stockpulse/pkg/models"
)

// Prediction is one classifier verdict for a piece of text
type Prediction struct {
	Label models.SentimentLabel
	Score float64
}

// Client classifies headline text into a sentiment label with a probability.
// Implementations degrade to NEUTRAL on unavailability rather than blocking
// the caller.
type Client interface {
	Classify(ctx context.Context, text string) (Prediction, error)
}
