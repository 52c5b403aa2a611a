package series

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/divwatch/pkg/divwatch/date"
	"github.com/komsit37/divwatch/pkg/divwatch/types"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func quotes() types.QuoteTable {
	return types.NewTable([]types.QuoteRecord{
		{Date: date.New(2024, 3, 1), Ticker: "AAA", Close: dec("10")},
		{Date: date.New(2024, 3, 4), Ticker: "AAA", Close: dec("11")},
		{Date: date.New(2024, 3, 5), Ticker: "AAA", Close: dec("9.9")},
		{Date: date.New(2024, 3, 4), Ticker: "BBB", Close: dec("1")},
	})
}

func TestPrices(t *testing.T) {
	avg := decimal.NullDecimal{Decimal: dec("8"), Valid: true}
	w, err := Prices(quotes(), "AAA", 2, avg)
	require.NoError(t, err)
	require.Len(t, w.Points, 2)

	assert.Equal(t, date.New(2024, 3, 4), w.Points[0].Date)
	assert.True(t, w.Points[0].Change.Decimal.Equal(dec("10")), "first point changes from the close before the window")
	assert.True(t, w.Points[1].Change.Decimal.Equal(dec("-10")))
	assert.True(t, w.VsAverage.Valid)
	assert.True(t, w.VsAverage.Decimal.Equal(dec("23.75")))
	assert.True(t, w.Last().Close.Equal(dec("9.9")))
}

func TestPricesUnavailable(t *testing.T) {
	_, err := Prices(quotes(), "AAA", 3, decimal.NullDecimal{})
	assert.ErrorIs(t, err, ErrUnavailable, "needs more quotes than days")

	_, err = Prices(quotes(), "ZZZ", 1, decimal.NullDecimal{})
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = Prices(quotes(), "AAA", 0, decimal.NullDecimal{})
	assert.ErrorIs(t, err, ErrRange)

	w, err := Prices(quotes(), "AAA", 1, decimal.NullDecimal{})
	require.NoError(t, err)
	assert.False(t, w.VsAverage.Valid, "no cost basis")
}

func TestDividends(t *testing.T) {
	today := date.New(2024, 6, 15)
	divs := types.NewTable([]types.DividendRecord{
		{Date: date.New(2024, 2, 14), Ticker: "AAA", Amount: dec("9")},
		{Date: date.New(2024, 2, 15), Ticker: "AAA", Amount: dec("0.404")},
		{Date: date.New(2024, 4, 15), Ticker: "AAA", Amount: dec("0.5")},
	})

	w, err := Dividends(divs, "AAA", 4, today)
	require.NoError(t, err)
	require.Len(t, w.Points, 2)
	assert.True(t, w.Points[0].Amount.Equal(dec("0.40")))
	assert.False(t, w.Points[0].Change.Valid)
	assert.True(t, w.Points[1].Change.Decimal.Equal(dec("25")))

	w, err = Dividends(divs, "AAA", 2, today)
	require.NoError(t, err)
	require.Len(t, w.Points, 1, "lower bound is inclusive")
	assert.False(t, w.Points[0].Change.Valid)

	w, err = Dividends(divs, "AAA", 2, date.New(2024, 12, 1))
	require.NoError(t, err)
	assert.Empty(t, w.Points)

	_, err = Dividends(divs, "ZZZ", 6, today)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestDividendsRange(t *testing.T) {
	for _, m := range []int{-1, 0, 1, 13} {
		_, err := Dividends(types.DividendTable{}, "AAA", m, date.New(2024, 1, 1))
		assert.ErrorIs(t, err, ErrRange, "months=%d", m)
	}
}
