package metrics

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/divwatch/pkg/divwatch/date"
	"github.com/komsit37/divwatch/pkg/divwatch/types"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.NullDecimal, msgAndArgs ...any) {
	t.Helper()
	require.True(t, got.Valid, msgAndArgs...)
	assert.True(t, got.Decimal.Equal(dec(want)), "want %s, got %s", want, got.Decimal)
}

var today = date.New(2024, 6, 15)

func newAggregator() *Aggregator {
	return New(zerolog.Nop(), WithToday(func() date.Date { return today }))
}

func TestComputeScenario(t *testing.T) {
	quotes := types.NewTable([]types.QuoteRecord{
		{Date: date.New(2024, 6, 13), Ticker: "AAA", Close: dec("11.50")},
		{Date: date.New(2024, 6, 14), Ticker: "AAA", Close: dec("12.00")},
	})
	divs := types.NewTable([]types.DividendRecord{
		{Date: today.AddMonths(-6), Ticker: "AAA", Amount: dec("1.00")},
	})
	avg := map[string]decimal.Decimal{"AAA": dec("10.00")}

	rows := newAggregator().Compute([]string{"AAA", "BBB"}, avg, quotes, divs)
	require.Len(t, rows, 2)

	aaa := rows[0]
	assert.Equal(t, "AAA", aaa.Ticker)
	assertDec(t, "10.00", aaa.AveragePrice)
	assertDec(t, "12.00", aaa.CurrentPrice)
	assertDec(t, "1.00", aaa.Dividends12M)
	assertDec(t, "1.00", aaa.AverageDividend12M)
	assertDec(t, "1.00", aaa.LatestDividend)
	assert.Equal(t, types.TrendFlat, aaa.Trend)
	assertDec(t, "8.33", aaa.DividendYield)
	assertDec(t, "10.00", aaa.YieldOnCost)

	assert.Equal(t, types.Placeholder("BBB", decimal.NullDecimal{}), rows[1])
}

func TestComputeKeepsOneRowPerTicker(t *testing.T) {
	divs := types.NewTable([]types.DividendRecord{
		{Date: date.New(2024, 1, 10), Ticker: "CCC", Amount: dec("0.2")},
	})
	tickers := []string{"ZZZ", "CCC", "AAA", "CCC"}

	rows := newAggregator().Compute(tickers, nil, types.QuoteTable{}, divs)
	require.Len(t, rows, len(tickers))
	for i, r := range rows {
		assert.Equal(t, tickers[i], r.Ticker)
	}
	assert.True(t, rows[1].Dividends12M.Valid)
	assert.False(t, rows[1].CurrentPrice.Valid, "missing quotes leave the price unavailable")
	assert.False(t, rows[1].DividendYield.Valid)
	assert.False(t, rows[1].YieldOnCost.Valid, "no cost basis")
}

func TestComputeRecoversPerTicker(t *testing.T) {
	quotes := types.NewTable([]types.QuoteRecord{
		{Date: today, Ticker: "AAA", Close: dec("10")},
		{Date: today, Ticker: "BBB", Close: dec("20")},
	})
	divs := types.NewTable([]types.DividendRecord{
		{Date: today, Ticker: "AAA", Amount: dec("1")},
		{Date: today, Ticker: "BBB", Amount: dec("1")},
	})
	avg := map[string]decimal.Decimal{"AAA": dec("5")}
	a := newAggregator()
	a.beforeRow = func(ticker string) {
		if ticker == "AAA" {
			panic("corrupt row")
		}
	}

	rows := a.Compute([]string{"AAA", "BBB"}, avg, quotes, divs)
	require.Len(t, rows, 2)
	assert.Equal(t, types.Placeholder("AAA", decimal.NewNullDecimal(dec("5"))), rows[0])
	assert.False(t, rows[0].DividendYield.Valid)
	assert.Equal(t, "BBB", rows[1].Ticker)
	assertDec(t, "5", rows[1].DividendYield)
}

func TestComputeWindowBoundary(t *testing.T) {
	divs := types.NewTable([]types.DividendRecord{
		{Date: date.New(2023, 6, 14), Ticker: "AAA", Amount: dec("5")},
		{Date: date.New(2023, 6, 15), Ticker: "AAA", Amount: dec("1")},
		{Date: date.New(2024, 3, 1), Ticker: "AAA", Amount: dec("2")},
	})
	rows := newAggregator().Compute([]string{"AAA"}, nil, types.QuoteTable{}, divs)

	assertDec(t, "3", rows[0].Dividends12M, "lower bound is inclusive")
	assertDec(t, "1.5", rows[0].AverageDividend12M)
	assertDec(t, "2", rows[0].LatestDividend)
	assert.Equal(t, types.TrendUp, rows[0].Trend)
}

func TestComputeLatestOutsideWindow(t *testing.T) {
	quotes := types.NewTable([]types.QuoteRecord{{Date: today, Ticker: "AAA", Close: dec("20")}})
	divs := types.NewTable([]types.DividendRecord{
		{Date: date.New(2022, 1, 5), Ticker: "AAA", Amount: dec("0.456")},
	})
	rows := newAggregator().Compute([]string{"AAA"}, nil, quotes, divs)

	r := rows[0]
	assertDec(t, "0", r.Dividends12M, "empty window sums to zero")
	assertDec(t, "0", r.AverageDividend12M, "empty window mean is zero")
	assertDec(t, "0.46", r.LatestDividend)
	assert.Equal(t, types.TrendNone, r.Trend)
	assertDec(t, "0", r.DividendYield)
}

func TestYield(t *testing.T) {
	assertDec(t, "10.00", Yield(dec("10.00"), dec("100.00")))
	assertDec(t, "20.00", Yield(dec("10.00"), dec("50.00")))
	assert.False(t, Yield(dec("10.00"), decimal.Zero).Valid)
}

func TestComputeZeroPriceAndCost(t *testing.T) {
	quotes := types.NewTable([]types.QuoteRecord{{Date: today, Ticker: "AAA", Close: decimal.Zero}})
	divs := types.NewTable([]types.DividendRecord{{Date: today, Ticker: "AAA", Amount: dec("1")}})
	avg := map[string]decimal.Decimal{"AAA": decimal.Zero}

	r := newAggregator().Compute([]string{"AAA"}, avg, quotes, divs)[0]
	assert.True(t, r.CurrentPrice.Valid)
	assert.False(t, r.DividendYield.Valid)
	assert.True(t, r.AveragePrice.Valid)
	assert.False(t, r.YieldOnCost.Valid)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		latest, average string
		want            types.Trend
	}{
		{"1.00", "0.80", types.TrendUp},
		{"0.80", "0.80", types.TrendFlat},
		{"0.50", "0.80", types.TrendDown},
		{"0.50", "0", types.TrendNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(dec(tt.latest), dec(tt.average)), "%s vs %s", tt.latest, tt.average)
	}
}

func TestComputePerformance(t *testing.T) {
	p, err := ComputePerformance(dec("1200"), dec("1000"), dec("100"))
	require.NoError(t, err)
	assertDec(t, "25", p.Real)
	assertDec(t, "20", p.Share)

	p, err = ComputePerformance(decimal.Zero, decimal.Zero, dec("1"))
	require.NoError(t, err)
	assert.False(t, p.Real.Valid)
	assert.False(t, p.Share.Valid)

	p, err = ComputePerformance(dec("500"), decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	assertDec(t, "100", p.Real)
	assert.False(t, p.Share.Valid, "zero invested has no share variation")

	_, err = ComputePerformance(dec("-1"), dec("1"), dec("1"))
	assert.Error(t, err)
}
