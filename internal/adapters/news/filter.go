package news

import (
	"strings"

	"github.com/selivandex/stockpulse/pkg/models"
)

// genericMarkers flag boilerplate quote/listing page titles that are not news
var genericMarkers = []string{
	"share price", "stock price", "live bse", "live nse", "bids offers",
	"buy/sell", "quotes", "finder", "homepage", "market investment",
	"portfolio", "tips", "forecast news", "stock/share market",
}

// financeKeywords mark genuine finance-news headlines; their presence
// overrides the length bounds
var financeKeywords = []string{
	"profit", "loss", "earnings", "revenue", "acquisition", "merger",
	"launch", "contract", "partnership", "growth", "decline", "surge",
	"beats", "misses", "announces", "reports", "plans", "expands",
	"investment", "dividend", "results", "outlook", "guidance",
}

// pageTitlePhrases are publisher boilerplate that only passes when real
// finance keywords also appear
var pageTitlePhrases = []string{
	"moneycontrol", "economic times", "business standard",
	"the economic times", "bse/nse", "ifsc code",
}

// FilterQuality drops generic page titles and low-quality content, keeping
// headlines that read like actual finance news
func FilterQuality(headlines []models.Headline) []models.Headline {
	if len(headlines) == 0 {
		return nil
	}

	var filtered []models.Headline
	for _, h := range headlines {
		text := strings.TrimSpace(h.Text)
		if len(text) < 10 || len(text) > 150 {
			continue
		}

		lower := strings.ToLower(text)

		genericCount := 0
		for _, marker := range genericMarkers {
			if strings.Contains(lower, marker) {
				genericCount++
			}
		}
		if genericCount > 2 {
			continue
		}

		hasKeyword := containsAny(lower, financeKeywords)

		if containsAny(lower, pageTitlePhrases) && !hasKeyword {
			continue
		}

		if hasKeyword {
			filtered = append(filtered, models.Headline{Text: text, Source: h.Source})
		} else if len(text) >= 20 && len(text) <= 100 && genericCount == 0 {
			filtered = append(filtered, models.Headline{Text: text, Source: h.Source})
		}
	}

	return filtered
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
