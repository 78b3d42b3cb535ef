package universe

import (
	"strings"

	"github.com/selivandex/stockpulse/pkg/models"
)

// USStocks is the top-50 US universe (S&P 50)
var USStocks = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA",
	"META", "TSLA", "BRK.B", "JPM", "V",
	"UNH", "XOM", "LLY", "AVGO", "JNJ",
	"MA", "PG", "HD", "MRK", "COST",
	"ABBV", "PEP", "CRM", "ADBE", "CVX",
	"WMT", "ACN", "MCD", "BAC", "AMD",
	"TMO", "CSCO", "LIN", "KO", "INTC",
	"NFLX", "ORCL", "ABT", "VZ", "NKE",
	"NEE", "DHR", "TXN", "PM", "QCOM",
	"UPS", "AMGN", "IBM", "LOW", "MS",
}

// IndiaStocks is the top-50 India universe (Nifty 50)
var IndiaStocks = []string{
	"ADANIENT.NS", "ADANIPORTS.NS", "APOLLOHOSP.NS", "ASIANPAINT.NS", "AXISBANK.NS",
	"BAJAJ-AUTO.NS", "BAJFINANCE.NS", "BAJAJFINSV.NS", "BPCL.NS", "BHARTIARTL.NS",
	"BRITANNIA.NS", "CIPLA.NS", "COALINDIA.NS", "DIVISLAB.NS", "DRREDDY.NS",
	"EICHERMOT.NS", "GRASIM.NS", "HCLTECH.NS", "HDFCBANK.NS", "HDFCLIFE.NS",
	"HEROMOTOCO.NS", "HINDALCO.NS", "HINDUNILVR.NS", "ICICIBANK.NS", "INDUSINDBK.NS",
	"INFY.NS", "ITC.NS", "JSWSTEEL.NS", "KOTAKBANK.NS", "LTIM.NS",
	"LT.NS", "M&M.NS", "MARUTI.NS", "NTPC.NS", "NESTLEIND.NS",
	"ONGC.NS", "POWERGRID.NS", "RELIANCE.NS", "SBILIFE.NS", "SBIN.NS",
	"SUNPHARMA.NS", "TATACONSUM.NS", "TATAMOTORS.NS", "TATASTEEL.NS", "TECHM.NS",
	"TITAN.NS", "TCS.NS", "ULTRACEMCO.NS", "UPL.NS", "WIPRO.NS",
}

// Symbols returns the universe for a market, nil for an unknown market
func Symbols(market models.Market) []string {
	switch market {
	case models.MarketUS:
		return USStocks
	case models.MarketIndia:
		return IndiaStocks
	default:
		return nil
	}
}

// Markets lists the supported markets in a fixed order
func Markets() []models.Market {
	return []models.Market{models.MarketIndia, models.MarketUS}
}

// MarketOf classifies a symbol by its exchange suffix
func MarketOf(symbol string) models.Market {
	if strings.HasSuffix(symbol, ".NS") || strings.HasSuffix(symbol, ".BO") {
		return models.MarketIndia
	}
	return models.MarketUS
}

// BaseSymbol strips the Indian exchange suffix
func BaseSymbol(symbol string) string {
	symbol = strings.TrimSuffix(symbol, ".NS")
	return strings.TrimSuffix(symbol, ".BO")
}

// Normalize resolves shorthand to the listed form (RELIANCE -> RELIANCE.NS);
// unknown symbols are returned uppercased as-is
func Normalize(symbol string) string {
	symbol = strings.ToUpper(symbol)
	if contains(IndiaStocks, symbol) || contains(USStocks, symbol) {
		return symbol
	}
	if contains(IndiaStocks, symbol+".NS") {
		return symbol + ".NS"
	}
	return symbol
}

// IsValid reports whether a (possibly shorthand) symbol belongs to a universe
func IsValid(symbol string) bool {
	symbol = strings.ToUpper(symbol)
	return contains(USStocks, symbol) ||
		contains(IndiaStocks, symbol) ||
		contains(IndiaStocks, symbol+".NS")
}

func contains(list []string, symbol string) bool {
	for _, s := range list {
		if s == symbol {
			return true
		}
	}
	return false
}
