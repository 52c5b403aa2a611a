package render

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/komsit37/divwatch/pkg/divwatch/columns"
	"github.com/komsit37/divwatch/pkg/divwatch/types"
)

// Placeholder is shown for unavailable values.
const Placeholder = "-"

// Money formats amount in currency, e.g. "R$ 12,00" for BRL. Unknown
// currencies fall back to the code followed by the amount; no currency
// gives the bare amount.
func Money(amount decimal.Decimal, currency string) string {
	if currency == "" {
		return amount.StringFixed(2)
	}
	cur := money.GetCurrency(currency)
	if cur == nil {
		return currency + " " + amount.StringFixed(2)
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), currency).Display()
}

// Percent formats a percentage with two decimals.
func Percent(d decimal.Decimal) string { return d.StringFixed(2) + "%" }

// TrendMark is the arrow shown for a dividend trend.
func TrendMark(t types.Trend) string {
	switch t {
	case types.TrendUp:
		return "▲"
	case types.TrendDown:
		return "▼"
	case types.TrendFlat:
		return "-"
	}
	return ""
}

// Format renders a resolved cell as text.
func Format(def columns.Def, v columns.Value, currency string) string {
	switch def.Kind {
	case columns.Money:
		if !v.Num.Valid {
			return Placeholder
		}
		return Money(v.Num.Decimal, currency)
	case columns.Percent:
		if !v.Num.Valid {
			return Placeholder
		}
		return Percent(v.Num.Decimal)
	case columns.Trend:
		return TrendMark(types.Trend(v.Str))
	}
	return v.Str
}
