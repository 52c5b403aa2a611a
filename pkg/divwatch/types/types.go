package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Symbol is the canonical spelling of a ticker: trimmed and upper case.
// Portfolios, tables and cache keys all use it.
func Symbol(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// Symbols canonicalizes tickers in order, dropping blanks and repeats.
func Symbols(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = Symbol(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// Portfolio is a named, ordered list of assets with their optional cost basis.
type Portfolio struct {
	Name     string
	Currency string
	Assets   []Asset
}

// Asset is a ticker entry and arbitrary extra fields from the portfolio file.
type Asset struct {
	Sym      string
	Name     string
	AvgPrice decimal.NullDecimal
	Fields   map[string]any
}

// Canonical returns a copy of p whose asset symbols are spelled by Symbol.
func (p Portfolio) Canonical() Portfolio {
	assets := make([]Asset, len(p.Assets))
	for i, a := range p.Assets {
		a.Sym = Symbol(a.Sym)
		assets[i] = a
	}
	p.Assets = assets
	return p
}

// Tickers returns the canonical asset symbols in portfolio order, without
// duplicates.
func (p Portfolio) Tickers() []string {
	syms := make([]string, len(p.Assets))
	for i, a := range p.Assets {
		syms[i] = a.Sym
	}
	return Symbols(syms)
}

// AveragePrices maps each ticker with a configured cost basis to it.
// Tickers without one are absent from the map.
func (p Portfolio) AveragePrices() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(p.Assets))
	for _, a := range p.Assets {
		if sym := Symbol(a.Sym); sym != "" && a.AvgPrice.Valid {
			out[sym] = a.AvgPrice.Decimal
		}
	}
	return out
}

// Quote is the live market snapshot used for display-only columns.
type Quote struct {
	Price  string
	ChgFmt string
	ChgRaw float64
	Name   string
}

// Merge combines portfolios into one, keeping asset order. The first
// portfolio that names a ticker decides its name and cost basis; a later
// portfolio may only fill in a missing cost basis.
func Merge(name string, ps []Portfolio) Portfolio {
	out := Portfolio{Name: name}
	idx := map[string]int{}
	for _, p := range ps {
		if out.Currency == "" {
			out.Currency = p.Currency
		}
		for _, a := range p.Canonical().Assets {
			if i, ok := idx[a.Sym]; ok {
				if !out.Assets[i].AvgPrice.Valid {
					out.Assets[i].AvgPrice = a.AvgPrice
				}
				continue
			}
			idx[a.Sym] = len(out.Assets)
			out.Assets = append(out.Assets, a)
		}
	}
	return out
}
