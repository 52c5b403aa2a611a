// Package metrics turns quote and dividend tables into per-asset yield rows.
package metrics

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/komsit37/divwatch/pkg/divwatch/date"
	"github.com/komsit37/divwatch/pkg/divwatch/types"
)

// WindowMonths is the trailing window dividend sums and means are taken over.
const WindowMonths = 12

var hundred = decimal.NewFromInt(100)

// Aggregator computes AssetSummary rows.
type Aggregator struct {
	today func() date.Date
	log   zerolog.Logger
	// beforeRow, when set, runs first inside each row's recover scope.
	beforeRow func(ticker string)
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithToday fixes the reference day of the trailing window.
func WithToday(today func() date.Date) Option { return func(a *Aggregator) { a.today = today } }

// New returns an Aggregator.
func New(log zerolog.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{today: date.Today, log: log.With().Str("component", "metrics").Logger()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Compute returns exactly one row per ticker, in ticker order. A ticker
// whose row cannot be computed gets a placeholder row; Compute itself never
// fails.
func (a *Aggregator) Compute(tickers []string, avg map[string]decimal.Decimal, quotes types.QuoteTable, dividends types.DividendTable) []types.AssetSummary {
	today := a.today()
	rows := make([]types.AssetSummary, 0, len(tickers))
	for _, t := range tickers {
		t = types.Symbol(t)
		rows = append(rows, a.row(t, costBasis(avg, t), quotes, dividends, today))
	}
	return rows
}

func costBasis(avg map[string]decimal.Decimal, ticker string) decimal.NullDecimal {
	v, ok := avg[ticker]
	return decimal.NullDecimal{Decimal: v, Valid: ok}
}

func (a *Aggregator) row(ticker string, avg decimal.NullDecimal, quotes types.QuoteTable, dividends types.DividendTable, today date.Date) (s types.AssetSummary) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error().Str("ticker", ticker).Interface("panic", r).Msg("recovered panic")
			s = types.Placeholder(ticker, avg)
		}
	}()
	if a.beforeRow != nil {
		a.beforeRow(ticker)
	}

	history := dividends.For(ticker)
	if len(history) == 0 {
		a.log.Warn().Str("ticker", ticker).Msg("no dividends for ticker")
		return types.Placeholder(ticker, avg)
	}

	s = types.AssetSummary{Ticker: ticker, AveragePrice: avg}

	from := today.AddMonths(-WindowMonths)
	sum, n := decimal.Zero, 0
	for _, d := range history {
		if !d.Date.Before(from) {
			sum = sum.Add(d.Amount)
			n++
		}
	}
	mean := decimal.Zero
	if n > 0 {
		mean = sum.Div(decimal.NewFromInt(int64(n)))
	}
	div12m := sum.Round(2)
	mean = mean.Round(2)
	s.Dividends12M = valid(div12m)
	s.AverageDividend12M = valid(mean)

	latest, _ := dividends.Latest(ticker)
	last := latest.Amount.Round(2)
	s.LatestDividend = valid(last)
	s.Trend = Classify(last, mean)

	if q, ok := quotes.Latest(ticker); ok {
		s.CurrentPrice = valid(q.Close)
		s.DividendYield = Yield(div12m, q.Close)
	} else {
		a.log.Warn().Str("ticker", ticker).Msg("no quotes for ticker")
	}
	if avg.Valid {
		s.YieldOnCost = Yield(div12m, avg.Decimal)
	}
	return s
}

// Classify compares the latest dividend with the window average. A zero
// average gives no trend.
func Classify(latest, average decimal.Decimal) types.Trend {
	if !average.IsPositive() {
		return types.TrendNone
	}
	switch latest.Cmp(average) {
	case 1:
		return types.TrendUp
	case -1:
		return types.TrendDown
	}
	return types.TrendFlat
}

// Yield is amount / base * 100 to cents, unavailable when base is zero.
func Yield(amount, base decimal.Decimal) decimal.NullDecimal {
	if base.IsZero() {
		return decimal.NullDecimal{}
	}
	return valid(amount.Div(base).Mul(hundred).Round(2))
}

func valid(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// Performance holds the two portfolio variation figures, in percent.
type Performance struct {
	// Real counts received proceeds as recovered capital.
	Real decimal.NullDecimal `json:"real"`
	// Share is the plain change of the position against what was invested.
	Share decimal.NullDecimal `json:"share"`
}

// ComputePerformance derives the variation figures from the gross balance,
// the amount invested and the proceeds received so far.
func ComputePerformance(gross, invested, proceeds decimal.Decimal) (Performance, error) {
	for name, v := range map[string]decimal.Decimal{"gross": gross, "invested": invested, "proceeds": proceeds} {
		if v.IsNegative() {
			return Performance{}, fmt.Errorf("%s must not be negative: %s", name, v)
		}
	}
	var p Performance
	if !gross.IsZero() {
		p.Real = valid(gross.Sub(invested.Sub(proceeds)).Div(gross).Mul(hundred).Round(2))
	}
	if !invested.IsZero() {
		p.Share = valid(gross.Sub(invested).Div(invested).Mul(hundred).Round(2))
	}
	return p, nil
}
