package universe

import (
	"testing"

	"github.com/selivandex/stockpulse/pkg/models"
)

func TestSymbols(t *testing.T) {
	if got := len(Symbols(models.MarketUS)); got != 50 {
		t.Errorf("expected 50 us symbols, got %d", got)
	}
	if got := len(Symbols(models.MarketIndia)); got != 50 {
		t.Errorf("expected 50 india symbols, got %d", got)
	}
	if got := Symbols("unknown"); got != nil {
		t.Errorf("expected nil for unknown market, got %v", got)
	}
}

func TestMarketOf(t *testing.T) {
	tests := []struct {
		symbol string
		want   models.Market
	}{
		{"RELIANCE.NS", models.MarketIndia},
		{"TATASTEEL.BO", models.MarketIndia},
		{"AAPL", models.MarketUS},
		{"BRK.B", models.MarketUS},
		{"^NSEI", models.MarketUS}, // indices have no exchange suffix
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			if got := MarketOf(tt.symbol); got != tt.want {
				t.Errorf("MarketOf(%s) = %s, want %s", tt.symbol, got, tt.want)
			}
		})
	}
}

func TestBaseSymbol(t *testing.T) {
	tests := []struct {
		symbol, want string
	}{
		{"RELIANCE.NS", "RELIANCE"},
		{"TATASTEEL.BO", "TATASTEEL"},
		{"AAPL", "AAPL"},
	}

	for _, tt := range tests {
		if got := BaseSymbol(tt.symbol); got != tt.want {
			t.Errorf("BaseSymbol(%s) = %s, want %s", tt.symbol, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		symbol, want string
	}{
		{"RELIANCE", "RELIANCE.NS"},
		{"reliance", "RELIANCE.NS"},
		{"RELIANCE.NS", "RELIANCE.NS"},
		{"AAPL", "AAPL"},
		{"aapl", "AAPL"},
		{"UNKNOWN", "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.symbol); got != tt.want {
			t.Errorf("Normalize(%s) = %s, want %s", tt.symbol, got, tt.want)
		}
	}
}

func TestIsValid(t *testing.T) {
	valid := []string{"AAPL", "aapl", "RELIANCE", "RELIANCE.NS", "wipro"}
	for _, s := range valid {
		if !IsValid(s) {
			t.Errorf("expected %s to be valid", s)
		}
	}

	invalid := []string{"", "NOPE", "RELIANCE.BO"}
	for _, s := range invalid {
		if IsValid(s) {
			t.Errorf("expected %s to be invalid", s)
		}
	}
}

func TestMarketsOrder(t *testing.T) {
	markets := Markets()
	if len(markets) != 2 || markets[0] != models.MarketIndia || markets[1] != models.MarketUS {
		t.Errorf("unexpected market order: %v", markets)
	}
}
