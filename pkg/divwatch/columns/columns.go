package columns

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/komsit37/divwatch/pkg/divwatch/types"
)

// Row is everything a column may draw from for one ticker.
type Row struct {
	Summary types.AssetSummary
	Asset   types.Asset
	// Quote is the live market quote; nil when enrichment is off or failed.
	Quote *types.Quote
}

// Kind tells the renderer how to format a value.
type Kind int

const (
	Text Kind = iota
	Money
	Percent
	Trend
)

// Value is a resolved cell: Num for numeric kinds, Str otherwise.
type Value struct {
	Str string
	Num decimal.NullDecimal
	// Sign is the direction used for coloring: -1, 0 or 1.
	Sign int
}

// Def describes one column.
type Def struct {
	Key    string
	Header string
	Kind   Kind
	// Live columns need the enrichment quote.
	Live    bool
	resolve func(Row) Value
}

// Registry maps column keys to definitions.
var Registry = map[string]Def{}

func register(d Def) { Registry[d.Key] = d }

func num(d decimal.NullDecimal) Value { return Value{Num: d} }

func init() {
	register(Def{Key: "ticker", Header: "Ticker", resolve: func(r Row) Value { return Value{Str: r.Summary.Ticker} }})
	// name: prefer the portfolio name; fall back to the quote name
	register(Def{Key: "name", Header: "Name", resolve: func(r Row) Value {
		if r.Asset.Name != "" {
			return Value{Str: r.Asset.Name}
		}
		if r.Quote != nil {
			return Value{Str: r.Quote.Name}
		}
		return Value{}
	}})
	register(Def{Key: "avg", Header: "Avg Price", Kind: Money, resolve: func(r Row) Value { return num(r.Summary.AveragePrice) }})
	register(Def{Key: "price", Header: "Price", Kind: Money, resolve: func(r Row) Value { return num(r.Summary.CurrentPrice) }})
	register(Def{Key: "div12m", Header: "Div 12M", Kind: Money, resolve: func(r Row) Value { return num(r.Summary.Dividends12M) }})
	register(Def{Key: "last_div", Header: "Last Div", Kind: Money, resolve: func(r Row) Value {
		v := num(r.Summary.LatestDividend)
		v.Sign = trendSign(r.Summary.Trend)
		return v
	}})
	register(Def{Key: "trend", Header: "Trend", Kind: Trend, resolve: func(r Row) Value {
		return Value{Str: string(r.Summary.Trend), Sign: trendSign(r.Summary.Trend)}
	}})
	register(Def{Key: "avg_div12m", Header: "Avg Div 12M", Kind: Money, resolve: func(r Row) Value { return num(r.Summary.AverageDividend12M) }})
	register(Def{Key: "dy", Header: "DY %", Kind: Percent, resolve: func(r Row) Value { return num(r.Summary.DividendYield) }})
	register(Def{Key: "yoc", Header: "YOC %", Kind: Percent, resolve: func(r Row) Value { return num(r.Summary.YieldOnCost) }})
	// live price as formatted by the provider
	register(Def{Key: "live", Header: "Live", Live: true, resolve: func(r Row) Value {
		if r.Quote == nil {
			return Value{}
		}
		return Value{Str: r.Quote.Price, Sign: sign(r.Quote.ChgRaw)}
	}})
	register(Def{Key: "chg%", Header: "Chg %", Live: true, resolve: func(r Row) Value {
		if r.Quote == nil {
			return Value{}
		}
		return Value{Str: r.Quote.ChgFmt, Sign: sign(r.Quote.ChgRaw)}
	}})
}

func trendSign(t types.Trend) int {
	switch t {
	case types.TrendUp:
		return 1
	case types.TrendDown:
		return -1
	}
	return 0
}

func sign(f float64) int {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	}
	return 0
}

// DefaultColumns is used when no columns or sets are requested.
var DefaultColumns = []string{"ticker", "avg", "price", "div12m", "last_div", "trend", "avg_div12m", "dy", "yoc"}

// Compute determines the final column order: explicit columns first (deduped,
// in the order given), then the expanded sets; DefaultColumns when both are
// empty.
func Compute(explicit []string, sets []string) ([]string, error) {
	fromSets, err := ExpandSets(sets)
	if err != nil {
		return nil, err
	}
	out := appendUnique(appendUnique(nil, explicit...), fromSets...)
	if len(out) == 0 {
		return slices.Clone(DefaultColumns), nil
	}
	return out, nil
}

// NeedsQuotes reports whether any column needs live quotes.
func NeedsQuotes(cols []string) bool {
	for _, c := range cols {
		if Registry[c].Live {
			return true
		}
	}
	return false
}

// Lookup returns the definition of col. Unknown columns become text columns
// reading the asset's extra portfolio fields.
func Lookup(col string) Def {
	if d, ok := Registry[col]; ok {
		return d
	}
	return Def{Key: col, Header: col, resolve: func(r Row) Value {
		if v, ok := r.Asset.Fields[col]; ok && v != nil {
			return Value{Str: fmt.Sprint(v)}
		}
		return Value{}
	}}
}

// Resolve computes the cell of col for r.
func Resolve(col string, r Row) Value { return Lookup(col).resolve(r) }
