package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/divwatch/pkg/divwatch/date"
)

func q(ticker, on, price string) QuoteRecord {
	return QuoteRecord{Date: date.MustParse(on), Ticker: ticker, Close: decimal.RequireFromString(price)}
}

func TestNewTableOrdersAndDedupes(t *testing.T) {
	tbl := NewTable([]QuoteRecord{
		q("BBB", "2024-01-03", "20"),
		q("AAA", "2024-01-02", "10"),
		q("BBB", "2024-01-01", "19"),
		q("AAA", "2024-01-02", "11"),
	})

	require.Equal(t, 3, tbl.Len())
	assert.Equal(t, []string{"BBB", "AAA"}, tbl.Tickers())

	bbb := tbl.For("BBB")
	require.Len(t, bbb, 2)
	assert.Equal(t, date.New(2024, 1, 1), bbb[0].Date)
	assert.Equal(t, date.New(2024, 1, 3), bbb[1].Date)

	aaa := tbl.For("AAA")
	require.Len(t, aaa, 1)
	assert.True(t, aaa[0].Close.Equal(decimal.NewFromInt(11)), "later duplicate wins")
}

func TestLatest(t *testing.T) {
	tbl := NewTable([]DividendRecord{
		{Date: date.New(2024, 5, 1), Ticker: "AAA", Amount: decimal.NewFromFloat(0.5)},
		{Date: date.New(2024, 9, 1), Ticker: "AAA", Amount: decimal.NewFromFloat(0.7)},
	})

	r, ok := tbl.Latest("AAA")
	require.True(t, ok)
	assert.Equal(t, date.New(2024, 9, 1), r.Date)

	_, ok = tbl.Latest("ZZZ")
	assert.False(t, ok)
	assert.Empty(t, tbl.For("ZZZ"))
}

func TestRowsIsACopy(t *testing.T) {
	tbl := NewTable([]QuoteRecord{q("AAA", "2024-01-02", "10")})
	rows := tbl.Rows()
	rows[0].Ticker = "XXX"
	assert.Equal(t, []string{"AAA"}, tbl.Tickers())
}

func TestTableJSON(t *testing.T) {
	var empty QuoteTable
	b, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))

	tbl := NewTable([]QuoteRecord{q("AAA", "2024-01-02", "10.5")})
	b, err = json.Marshal(tbl)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"date":"2024-01-02","ticker":"AAA","price":"10.5"}]`, string(b))

	var back QuoteTable
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, tbl.Rows(), back.Rows())
}

func TestPortfolioTickersAndPrices(t *testing.T) {
	p := Portfolio{Assets: []Asset{
		{Sym: "AAA", AvgPrice: decimal.NewNullDecimal(decimal.NewFromInt(10))},
		{Sym: "BBB"},
		{Sym: "AAA"},
		{Sym: ""},
	}}
	assert.Equal(t, []string{"AAA", "BBB"}, p.Tickers())
	prices := p.AveragePrices()
	assert.Len(t, prices, 1)
	assert.True(t, prices["AAA"].Equal(decimal.NewFromInt(10)))
}

func TestMergePortfolios(t *testing.T) {
	ten := decimal.NewNullDecimal(decimal.NewFromInt(10))
	five := decimal.NewNullDecimal(decimal.NewFromInt(5))
	m := Merge("all", []Portfolio{
		{Name: "a", Currency: "BRL", Assets: []Asset{{Sym: "AAA"}, {Sym: "BBB", AvgPrice: ten}}},
		{Name: "b", Currency: "USD", Assets: []Asset{{Sym: "BBB", AvgPrice: five}, {Sym: "AAA", AvgPrice: five}, {Sym: "CCC"}}},
	})
	assert.Equal(t, "all", m.Name)
	assert.Equal(t, "BRL", m.Currency)
	assert.Equal(t, []string{"AAA", "BBB", "CCC"}, m.Tickers())
	prices := m.AveragePrices()
	assert.True(t, prices["AAA"].Equal(decimal.NewFromInt(5)), "missing cost basis filled in")
	assert.True(t, prices["BBB"].Equal(decimal.NewFromInt(10)), "first cost basis wins")
}
