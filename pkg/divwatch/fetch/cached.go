package fetch

import (
	"context"
	"time"

	"github.com/komsit37/divwatch/pkg/divwatch/cache"
	"github.com/komsit37/divwatch/pkg/divwatch/types"
)

// Cached decorates a Fetcher with a per-ticker quote cache and a
// per-(ticker, range) dividend cache. Only successful fetches are stored.
type Cached struct {
	next      Fetcher
	quotes    *cache.TTL[[]types.QuoteRecord]
	dividends *cache.TTL[[]types.DividendRecord]
}

// NewCached wraps next. Options apply to both namespaces; their names are
// set here.
func NewCached(next Fetcher, ttl time.Duration, opts ...cache.Option) *Cached {
	qopts := append(append([]cache.Option(nil), opts...), cache.WithName("quotes"))
	dopts := append(append([]cache.Option(nil), opts...), cache.WithName("dividends"))
	return &Cached{
		next:      next,
		quotes:    cache.New[[]types.QuoteRecord](ttl, qopts...),
		dividends: cache.New[[]types.DividendRecord](ttl, dopts...),
	}
}

func quoteKey(ticker string, rng Range, interval string) string {
	return ticker + "|" + rng.Key() + "|" + interval
}

func dividendKey(ticker string, rng Range) string {
	return ticker + "|" + rng.Key()
}

func (c *Cached) Quotes(ctx context.Context, ticker string, rng Range, interval string) ([]types.QuoteRecord, error) {
	k := quoteKey(ticker, rng, interval)
	if v, ok := c.quotes.Get(k); ok {
		return v, nil
	}
	return c.fetchQuotes(ctx, k, ticker, rng, interval)
}

func (c *Cached) Dividends(ctx context.Context, ticker string, rng Range) ([]types.DividendRecord, error) {
	k := dividendKey(ticker, rng)
	if v, ok := c.dividends.Get(k); ok {
		return v, nil
	}
	return c.fetchDividends(ctx, k, ticker, rng)
}

func (c *Cached) fetchQuotes(ctx context.Context, k, ticker string, rng Range, interval string) ([]types.QuoteRecord, error) {
	v, err := c.next.Quotes(ctx, ticker, rng, interval)
	if err != nil {
		return nil, err
	}
	c.quotes.Put(k, v)
	return v, nil
}

func (c *Cached) fetchDividends(ctx context.Context, k, ticker string, rng Range) ([]types.DividendRecord, error) {
	v, err := c.next.Dividends(ctx, ticker, rng)
	if err != nil {
		return nil, err
	}
	c.dividends.Put(k, v)
	return v, nil
}

// Bypass returns a Fetcher that always goes to the provider but still
// refreshes the cache with what it gets.
func (c *Cached) Bypass() Fetcher { return writeThrough{c} }

type writeThrough struct{ c *Cached }

func (w writeThrough) Quotes(ctx context.Context, ticker string, rng Range, interval string) ([]types.QuoteRecord, error) {
	return w.c.fetchQuotes(ctx, quoteKey(ticker, rng, interval), ticker, rng, interval)
}

func (w writeThrough) Dividends(ctx context.Context, ticker string, rng Range) ([]types.DividendRecord, error) {
	return w.c.fetchDividends(ctx, dividendKey(ticker, rng), ticker, rng)
}
