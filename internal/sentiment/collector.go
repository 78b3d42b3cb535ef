package sentiment

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/selivandex/stockpulse/internal/adapters/classifier"
	"github.com/selivandex/stockpulse/internal/adapters/news"
	"github.com/selivandex/stockpulse/internal/universe"
	"github.com/selivandex/stockpulse/pkg/logger"
	"github.com/selivandex/stockpulse/pkg/models"
)

// maxHeadlines caps how many quality-filtered headlines survive per symbol
const maxHeadlines = 10

const (
	minScorableLen = 10
	maxScorableLen = 200
)

// FallbackSearcher is the looser second search pass used when quality
// filtering rejected everything the primary chain produced
type FallbackSearcher interface {
	FallbackSearch(ctx context.Context, symbol string) []models.Headline
}

// Collector gathers headlines for a symbol from market-specific provider
// chains and scores them through an external classifier
type Collector struct {
	india      news.Chain
	us         news.Chain
	fallback   FallbackSearcher
	classifier classifier.Client
}

// NewCollector creates a sentiment collector with per-market provider chains
func NewCollector(india, us news.Chain, fallback FallbackSearcher, cls classifier.Client) *Collector {
	return &Collector{
		india:      india,
		us:         us,
		fallback:   fallback,
		classifier: cls,
	}
}

// Headlines returns up to maxHeadlines quality-filtered headlines for the
// symbol. When every source and the fallback pass come up empty it returns
// the single "no news" placeholder, never an empty slice.
func (c *Collector) Headlines(ctx context.Context, symbol string) []models.Headline {
	chain := c.us
	if universe.MarketOf(symbol) == models.MarketIndia {
		chain = c.india
	}

	headlines := news.FilterQuality(chain.Collect(ctx, symbol))

	if len(headlines) == 0 && c.fallback != nil {
		logger.Debug("quality filter left no headlines, trying fallback search",
			zap.String("symbol", symbol))
		headlines = c.fallback.FallbackSearch(ctx, symbol)
	}

	if len(headlines) == 0 {
		return []models.Headline{models.NoNewsPlaceholder(symbol)}
	}

	if len(headlines) > maxHeadlines {
		headlines = headlines[:maxHeadlines]
	}
	return headlines
}

// Score classifies each non-placeholder headline and aggregates the signed
// scores into one sentiment value in [-1,1]. Classifier failures synthesize
// a NEUTRAL record so headline count and record count stay aligned. With no
// scoreable headlines the aggregate is exactly 0.0.
func (c *Collector) Score(ctx context.Context, headlines []models.Headline) ([]models.SentimentRecord, float64) {
	actual := make([]models.Headline, 0, len(headlines))
	for _, h := range headlines {
		if !h.Placeholder {
			actual = append(actual, h)
		}
	}
	if len(actual) == 0 {
		return nil, 0.0
	}

	var records []models.SentimentRecord
	for _, h := range actual {
		text := strings.TrimSpace(h.Text)
		if len(text) < minScorableLen || len(text) > maxScorableLen {
			continue
		}

		pred, err := c.classifier.Classify(ctx, text)
		if err != nil {
			logger.Debug("classifier failed, recording neutral",
				zap.String("headline", text),
				zap.Error(err),
			)
			records = append(records, models.SentimentRecord{
				Headline:       h.Text,
				Label:          models.SentimentNeutral,
				Score:          0.5,
				NumericalScore: 0.0,
			})
			continue
		}

		records = append(records, models.SentimentRecord{
			Headline:       h.Text,
			Label:          pred.Label,
			Score:          pred.Score,
			NumericalScore: numericalScore(pred),
		})
	}

	return records, aggregate(records)
}

// numericalScore maps a label+probability onto [-1,1]
func numericalScore(p classifier.Prediction) float64 {
	switch p.Label {
	case models.SentimentPositive:
		return p.Score
	case models.SentimentNegative:
		return -p.Score
	default:
		return 0.0
	}
}

// aggregate computes the weighted average of numerical scores. Later entries
// in provider order carry a growing recency boost and each weight is scaled
// by the classifier's confidence.
func aggregate(records []models.SentimentRecord) float64 {
	if len(records) == 0 {
		return 0.0
	}

	var weightedSum, weightSum float64
	for i, r := range records {
		weight := (1.0 + float64(i)*0.1) * r.Score
		weightedSum += weight * r.NumericalScore
		weightSum += weight
	}
	if weightSum == 0 {
		return 0.0
	}
	return weightedSum / weightSum
}
