package fetch

import (
	"context"

	"github.com/komsit37/divwatch/pkg/divwatch/types"
)

// QuotesBatch fetches quotes for each ticker in turn. A failing ticker gets a
// Result with Err set; the others are unaffected.
func QuotesBatch(ctx context.Context, f Fetcher, tickers []string, rng Range, interval string) []Result[types.QuoteRecord] {
	out := make([]Result[types.QuoteRecord], 0, len(tickers))
	for _, t := range tickers {
		if err := ctx.Err(); err != nil {
			out = append(out, Result[types.QuoteRecord]{Ticker: t, Err: &TickerError{Ticker: t, Op: "quotes", Err: err}})
			continue
		}
		recs, err := f.Quotes(ctx, t, rng, interval)
		out = append(out, Result[types.QuoteRecord]{Ticker: t, Records: recs, Err: err})
	}
	return out
}

// DividendsBatch is QuotesBatch for dividend events.
func DividendsBatch(ctx context.Context, f Fetcher, tickers []string, rng Range) []Result[types.DividendRecord] {
	out := make([]Result[types.DividendRecord], 0, len(tickers))
	for _, t := range tickers {
		if err := ctx.Err(); err != nil {
			out = append(out, Result[types.DividendRecord]{Ticker: t, Err: &TickerError{Ticker: t, Op: "dividends", Err: err}})
			continue
		}
		recs, err := f.Dividends(ctx, t, rng)
		out = append(out, Result[types.DividendRecord]{Ticker: t, Records: recs, Err: err})
	}
	return out
}

// Collect concatenates the records of successful results and counts the
// failures.
func Collect[T any](results []Result[T]) (records []T, failed int) {
	for _, r := range results {
		if !r.OK() {
			failed++
			continue
		}
		records = append(records, r.Records...)
	}
	return records, failed
}
