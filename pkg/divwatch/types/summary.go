package types

import "github.com/shopspring/decimal"

// Trend compares the latest dividend against the trailing 12-month average.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
	TrendNone Trend = "none"
)

// AssetSummary is one row of the yield table. Invalid fields are unavailable
// and must be shown as placeholders, not as zero.
type AssetSummary struct {
	Ticker             string              `json:"ticker"`
	AveragePrice       decimal.NullDecimal `json:"average_price"`
	CurrentPrice       decimal.NullDecimal `json:"current_price"`
	Dividends12M       decimal.NullDecimal `json:"dividends_12m"`
	LatestDividend     decimal.NullDecimal `json:"latest_dividend"`
	Trend              Trend               `json:"dividend_trend"`
	AverageDividend12M decimal.NullDecimal `json:"average_dividend_12m"`
	DividendYield      decimal.NullDecimal `json:"dividend_yield"`
	YieldOnCost        decimal.NullDecimal `json:"yield_on_cost"`
}

// Placeholder is the row of a ticker with nothing computable.
func Placeholder(ticker string, avg decimal.NullDecimal) AssetSummary {
	return AssetSummary{Ticker: ticker, AveragePrice: avg, Trend: TrendNone}
}
