package types

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSymbols(t *testing.T) {
	assert.Equal(t, "ITSA4.SA", Symbol(" itsa4.sa\t"))
	assert.Equal(t, []string{"AAA", "BBB"}, Symbols([]string{"aaa", " ", "BBB", "Aaa", "bbb "}))
	assert.Empty(t, Symbols(nil))
}

func TestCanonicalPortfolio(t *testing.T) {
	ten := decimal.NewNullDecimal(decimal.NewFromInt(10))
	p := Portfolio{Name: "main", Assets: []Asset{{Sym: "aaa", AvgPrice: ten}, {Sym: " bbb "}, {Sym: "AAA"}}}

	c := p.Canonical()
	assert.Equal(t, "AAA", c.Assets[0].Sym)
	assert.Equal(t, "BBB", c.Assets[1].Sym)
	assert.Equal(t, "aaa", p.Assets[0].Sym, "original untouched")

	assert.Equal(t, []string{"AAA", "BBB"}, p.Tickers())
	prices := p.AveragePrices()
	assert.Len(t, prices, 1)
	assert.True(t, prices["AAA"].Equal(decimal.NewFromInt(10)))

	m := Merge("all", []Portfolio{p, {Assets: []Asset{{Sym: "Bbb", AvgPrice: ten}}}})
	assert.Len(t, m.Assets, 2)
	assert.True(t, m.AveragePrices()["BBB"].Equal(decimal.NewFromInt(10)))
}
