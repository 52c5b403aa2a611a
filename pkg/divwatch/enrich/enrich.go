// Package enrich adds live display data (name, last price, day change) to
// summary rows. None of it feeds the yield math.
package enrich

import (
	"context"
	"fmt"
	"time"

	yfgo "github.com/komsit37/yf-go"
	"github.com/rs/zerolog"

	"github.com/komsit37/divwatch/pkg/divwatch/cache"
	"github.com/komsit37/divwatch/pkg/divwatch/types"
)

// QuoteService fetches the live quote for a symbol.
type QuoteService interface {
	Get(ctx context.Context, sym string) (types.Quote, error)
}

// YFService implements QuoteService using yf-go.
type YFService struct {
	client  *yfgo.Client
	timeout time.Duration
}

func NewYFService(timeout time.Duration) *YFService {
	return &YFService{client: yfgo.NewClient(), timeout: timeout}
}

func (s *YFService) Get(ctx context.Context, sym string) (types.Quote, error) {
	if sym == "" {
		return types.Quote{}, nil
	}
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	res, err := s.client.QuoteSummaryTyped(cctx, sym, []yfgo.QuoteSummaryModule{yfgo.ModulePrice})
	if err != nil {
		return types.Quote{}, err
	}
	if res.Price == nil {
		return types.Quote{}, fmt.Errorf("no price for %s", sym)
	}

	var q types.Quote
	p := res.Price.RegularMarketPrice
	if p.Fmt != "" {
		q.Price = p.Fmt
	} else if p.Raw != nil {
		q.Price = fmt.Sprintf("%.2f", *p.Raw)
	}
	cp := res.Price.RegularMarketChangePercent
	q.ChgFmt = cp.Fmt
	if cp.Raw != nil {
		q.ChgRaw = *cp.Raw
		if q.ChgFmt == "" {
			q.ChgFmt = fmt.Sprintf("%.2f%%", q.ChgRaw)
		}
	}
	if res.Price.ShortName != "" {
		q.Name = res.Price.ShortName
	} else {
		q.Name = res.Price.LongName
	}
	return q, nil
}

// CacheService decorates a QuoteService with a TTL+LRU cache.
type CacheService struct {
	next  QuoteService
	cache *cache.TTL[types.Quote]
}

func NewCacheService(next QuoteService, ttl time.Duration, size int, opts ...cache.Option) *CacheService {
	opts = append(opts, cache.WithName("enrich"), cache.WithSize(size))
	return &CacheService{next: next, cache: cache.New[types.Quote](ttl, opts...)}
}

func (c *CacheService) Get(ctx context.Context, sym string) (types.Quote, error) {
	if sym == "" {
		return types.Quote{}, nil
	}
	if q, ok := c.cache.Get(sym); ok {
		return q, nil
	}
	q, err := c.next.Get(ctx, sym)
	if err != nil {
		return q, err
	}
	c.cache.Put(sym, q)
	return q, nil
}

// Quotes looks up every symbol in turn. Failed lookups are logged and left
// out of the result; enrichment is best effort.
func Quotes(ctx context.Context, svc QuoteService, syms []string, log zerolog.Logger) map[string]types.Quote {
	out := make(map[string]types.Quote, len(syms))
	for _, s := range syms {
		if ctx.Err() != nil {
			break
		}
		q, err := svc.Get(ctx, s)
		if err != nil {
			log.Debug().Err(err).Str("ticker", s).Msg("enrich failed")
			continue
		}
		out[s] = q
	}
	return out
}
