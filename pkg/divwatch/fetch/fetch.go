package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/komsit37/divwatch/pkg/divwatch/date"
	"github.com/komsit37/divwatch/pkg/divwatch/types"
)

// Fetcher retrieves one ticker's time series from a remote provider.
// Errors are per ticker; callers decide whether to go on with the batch.
type Fetcher interface {
	Quotes(ctx context.Context, ticker string, rng Range, interval string) ([]types.QuoteRecord, error)
	Dividends(ctx context.Context, ticker string, rng Range) ([]types.DividendRecord, error)
}

// Range is a time window [From, To].
type Range struct {
	From time.Time
	To   time.Time
}

// LastDays is the window of the days before now.
func LastDays(now time.Time, days int) Range {
	return Range{From: now.AddDate(0, 0, -days), To: now}
}

// Key identifies the range by calendar day, so ranges computed at different
// times of the same day share a key.
func (r Range) Key() string {
	return date.Of(r.From).String() + ".." + date.Of(r.To).String()
}

// TickerError is a recoverable failure for a single ticker.
type TickerError struct {
	Ticker     string
	Op         string // "quotes" or "dividends"
	StatusCode int    // HTTP status, 0 when the request never got a response
	Err        error
}

func (e *TickerError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s %s: HTTP %d: %v", e.Op, e.Ticker, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s %s: %v", e.Op, e.Ticker, e.Err)
}

func (e *TickerError) Unwrap() error { return e.Err }

// Result is the outcome of fetching one ticker: its records or why it failed.
type Result[T any] struct {
	Ticker  string
	Records []T
	Err     error
}

// OK reports whether the fetch succeeded.
func (r Result[T]) OK() bool { return r.Err == nil }
