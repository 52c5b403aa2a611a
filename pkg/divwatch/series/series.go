// Package series cuts per-ticker chart windows out of the loaded tables.
package series

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/komsit37/divwatch/pkg/divwatch/date"
	"github.com/komsit37/divwatch/pkg/divwatch/types"
)

var (
	// ErrRange is returned for a window size outside its allowed bounds.
	ErrRange = errors.New("window out of range")
	// ErrUnavailable means the ticker has too little history for the window.
	ErrUnavailable = errors.New("not enough data")
)

const (
	MinDividendMonths = 2
	MaxDividendMonths = 12
)

var hundred = decimal.NewFromInt(100)

// PricePoint is one close with its change from the previous close, in percent.
type PricePoint struct {
	Date   date.Date           `json:"date"`
	Close  decimal.Decimal     `json:"close"`
	Change decimal.NullDecimal `json:"change_pct"`
}

// PriceWindow is the last Days closes of a ticker.
type PriceWindow struct {
	Ticker       string              `json:"ticker"`
	Days         int                 `json:"days"`
	Points       []PricePoint        `json:"points"`
	AveragePrice decimal.NullDecimal `json:"average_price"`
	// VsAverage is the last close against the average price, in percent.
	VsAverage decimal.NullDecimal `json:"vs_average_pct"`
}

// Last is the most recent point.
func (w PriceWindow) Last() PricePoint { return w.Points[len(w.Points)-1] }

// Prices returns the last days closes of ticker. The ticker needs more than
// days quotes so the first point has a change too.
func Prices(quotes types.QuoteTable, ticker string, days int, avg decimal.NullDecimal) (PriceWindow, error) {
	if days < 1 {
		return PriceWindow{}, fmt.Errorf("%w: days must be at least 1, got %d", ErrRange, days)
	}
	recs := quotes.For(ticker)
	if len(recs) <= days {
		return PriceWindow{}, fmt.Errorf("%w: %s has %d quotes, need more than %d", ErrUnavailable, ticker, len(recs), days)
	}
	recs = recs[len(recs)-days-1:]

	w := PriceWindow{Ticker: ticker, Days: days, AveragePrice: avg, Points: make([]PricePoint, 0, days)}
	for i := 1; i < len(recs); i++ {
		w.Points = append(w.Points, PricePoint{
			Date:   recs[i].Date,
			Close:  recs[i].Close,
			Change: change(recs[i-1].Close, recs[i].Close),
		})
	}
	if avg.Valid {
		w.VsAverage = change(avg.Decimal, w.Last().Close)
	}
	return w, nil
}

// DividendPoint is one payment with its change from the previous payment in
// the window, in percent.
type DividendPoint struct {
	Date   date.Date           `json:"date"`
	Amount decimal.Decimal     `json:"amount"`
	Change decimal.NullDecimal `json:"change_pct"`
}

// DividendWindow is the payments of a ticker over the last Months months.
type DividendWindow struct {
	Ticker string          `json:"ticker"`
	Months int             `json:"months"`
	Points []DividendPoint `json:"points"`
}

// Dividends returns the payments of ticker dated on or after today minus
// months. Amounts are rounded to cents; the first point has no change.
func Dividends(divs types.DividendTable, ticker string, months int, today date.Date) (DividendWindow, error) {
	if months < MinDividendMonths || months > MaxDividendMonths {
		return DividendWindow{}, fmt.Errorf("%w: months must be between %d and %d, got %d",
			ErrRange, MinDividendMonths, MaxDividendMonths, months)
	}
	recs := divs.For(ticker)
	if len(recs) == 0 {
		return DividendWindow{}, fmt.Errorf("%w: %s has no dividends", ErrUnavailable, ticker)
	}

	from := today.AddMonths(-months)
	w := DividendWindow{Ticker: ticker, Months: months, Points: []DividendPoint{}}
	var prev decimal.NullDecimal
	for _, r := range recs {
		if r.Date.Before(from) {
			continue
		}
		amt := r.Amount.Round(2)
		p := DividendPoint{Date: r.Date, Amount: amt}
		if prev.Valid {
			p.Change = change(prev.Decimal, amt)
		}
		w.Points = append(w.Points, p)
		prev = decimal.NullDecimal{Decimal: amt, Valid: true}
	}
	return w, nil
}

func change(from, to decimal.Decimal) decimal.NullDecimal {
	if from.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: to.Sub(from).Div(from).Mul(hundred).Round(2), Valid: true}
}
