package types

import (
	"encoding/json"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/komsit37/divwatch/pkg/divwatch/date"
)

// QuoteRecord is the close price of a ticker on a given day.
type QuoteRecord struct {
	Date   date.Date       `json:"date"`
	Ticker string          `json:"ticker"`
	Close  decimal.Decimal `json:"price"`
}

// DividendRecord is a dividend paid by a ticker on a given day.
type DividendRecord struct {
	Date   date.Date       `json:"date"`
	Ticker string          `json:"ticker"`
	Amount decimal.Decimal `json:"amount"`
}

type recordKey struct {
	ticker string
	on     date.Date
}

func (r QuoteRecord) key() recordKey    { return recordKey{r.Ticker, r.Date} }
func (r DividendRecord) key() recordKey { return recordKey{r.Ticker, r.Date} }

type keyed interface{ key() recordKey }

// Table is an immutable, ordered set of records for several tickers.
// Rows are unique per (ticker, date), grouped by ticker in first-seen order,
// and chronological within a ticker.
type Table[R keyed] struct {
	rows []R
}

// QuoteTable holds close prices for all loaded tickers.
type QuoteTable = Table[QuoteRecord]

// DividendTable holds dividend events for all loaded tickers.
type DividendTable = Table[DividendRecord]

// NewTable builds a table from rows. When two rows share a (ticker, date),
// the later one wins.
func NewTable[R keyed](rows []R) Table[R] {
	if len(rows) == 0 {
		return Table[R]{}
	}
	order := map[string]int{}
	index := map[recordKey]int{}
	out := make([]R, 0, len(rows))
	for _, r := range rows {
		k := r.key()
		if _, ok := order[k.ticker]; !ok {
			order[k.ticker] = len(order)
		}
		if i, ok := index[k]; ok {
			out[i] = r
			continue
		}
		index[k] = len(out)
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].key(), out[j].key()
		if a.ticker != b.ticker {
			return order[a.ticker] < order[b.ticker]
		}
		return a.on.Before(b.on)
	})
	return Table[R]{rows: out}
}

// Len is the number of rows.
func (t Table[R]) Len() int { return len(t.rows) }

// IsEmpty reports whether the table has no rows.
func (t Table[R]) IsEmpty() bool { return len(t.rows) == 0 }

// Rows returns a copy of all rows.
func (t Table[R]) Rows() []R { return append([]R(nil), t.rows...) }

// Tickers lists the tickers present, in table order.
func (t Table[R]) Tickers() []string {
	var out []string
	for i, r := range t.rows {
		if i == 0 || r.key().ticker != t.rows[i-1].key().ticker {
			out = append(out, r.key().ticker)
		}
	}
	return out
}

// For returns the rows of one ticker, oldest first. The result is a copy.
func (t Table[R]) For(ticker string) []R {
	var out []R
	for _, r := range t.rows {
		if r.key().ticker == ticker {
			out = append(out, r)
		}
	}
	return out
}

// Latest returns the most recent row of a ticker.
func (t Table[R]) Latest(ticker string) (R, bool) {
	var (
		best  R
		found bool
	)
	for _, r := range t.rows {
		k := r.key()
		if k.ticker != ticker {
			continue
		}
		if !found || k.on.After(best.key().on) {
			best, found = r, true
		}
	}
	return best, found
}

func (t Table[R]) MarshalJSON() ([]byte, error) {
	if t.rows == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.rows)
}

func (t *Table[R]) UnmarshalJSON(b []byte) error {
	var rows []R
	if err := json.Unmarshal(b, &rows); err != nil {
		return err
	}
	*t = NewTable(rows)
	return nil
}
