// Package loader assembles the quote and dividend tables for a ticker set,
// falling back from the in-memory cache to the remote provider to the local
// snapshot.
package loader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/komsit37/divwatch/pkg/divwatch/cache"
	"github.com/komsit37/divwatch/pkg/divwatch/fetch"
	"github.com/komsit37/divwatch/pkg/divwatch/snapshot"
	"github.com/komsit37/divwatch/pkg/divwatch/types"
)

// ErrBatchFetch means the remote provider gave nothing usable for the whole
// ticker set.
var ErrBatchFetch = errors.New("remote batch fetch failed")

// Origin says where a Dataset's tables came from.
type Origin string

const (
	OriginRemote   Origin = "remote"
	OriginSnapshot Origin = "snapshot"
	// OriginNone marks a load that found no data anywhere.
	OriginNone Origin = "none"
)

// Dataset is the result of a load. Total failure is a Dataset with
// Origin == OriginNone, empty tables and Err set.
type Dataset struct {
	Quotes    types.QuoteTable
	Dividends types.DividendTable
	Origin    Origin
	// Cached is set when the tables were served from the cache without I/O.
	Cached   bool
	LoadedAt time.Time
	Err      error
}

// Available reports whether the dataset has anything to display.
func (d Dataset) Available() bool { return d.Origin != OriginNone }

// Observer is told about every load and every ticker the provider failed on.
type Observer interface {
	Loaded(d Dataset)
	TickerFailed(op string)
}

// Config holds the load windows and the snapshot location.
type Config struct {
	QuoteDays       int
	DividendDays    int
	Interval        string
	TTL             time.Duration
	Snapshot        snapshot.Paths
	RefreshSnapshot bool
}

// DefaultConfig returns the windows used by the dashboard.
func DefaultConfig() Config {
	return Config{QuoteDays: 520, DividendDays: 365, Interval: "1d", TTL: cache.DefaultTTL}
}

// Option configures a Loader.
type Option func(*Loader)

// WithClock replaces time.Now for both the loader and its cache.
func WithClock(now func() time.Time) Option { return func(l *Loader) { l.now = now } }

// WithObserver reports loads and per-ticker failures.
func WithObserver(obs Observer) Option { return func(l *Loader) { l.obs = obs } }

// WithCacheObserver reports combined cache hits and misses.
func WithCacheObserver(obs cache.Observer) Option {
	return func(l *Loader) { l.cacheObs = obs }
}

// bypasser is implemented by fetchers that keep their own cache.
type bypasser interface {
	Bypass() fetch.Fetcher
}

// Loader runs the fallback chain. It is safe for concurrent use; the only
// shared state is its cache.
type Loader struct {
	fetcher  fetch.Fetcher
	cfg      Config
	cache    *cache.TTL[Dataset]
	now      func() time.Time
	obs      Observer
	cacheObs cache.Observer
	log      zerolog.Logger
}

// New returns a Loader over f.
func New(f fetch.Fetcher, cfg Config, log zerolog.Logger, opts ...Option) *Loader {
	def := DefaultConfig()
	if cfg.QuoteDays <= 0 {
		cfg.QuoteDays = def.QuoteDays
	}
	if cfg.DividendDays <= 0 {
		cfg.DividendDays = def.DividendDays
	}
	if cfg.Interval == "" {
		cfg.Interval = def.Interval
	}
	l := &Loader{
		fetcher: f,
		cfg:     cfg,
		now:     time.Now,
		log:     log.With().Str("component", "loader").Logger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	copts := []cache.Option{cache.WithName("load"), cache.WithClock(l.now)}
	if l.cacheObs != nil {
		copts = append(copts, cache.WithObserver(l.cacheObs))
	}
	l.cache = cache.New[Dataset](cfg.TTL, copts...)
	return l
}

// Fingerprint is the cache key of a ticker set: order, case and duplicates
// do not matter.
func Fingerprint(tickers []string) string {
	norm := types.Symbols(tickers)
	sort.Strings(norm)
	sum := sha256.Sum256([]byte(strings.Join(norm, ",")))
	return hex.EncodeToString(sum[:])
}

// Load returns the tables for tickers. It never panics and never returns an
// error: a load that found nothing is a Dataset with Origin == OriginNone.
func (l *Loader) Load(ctx context.Context, tickers []string, useCache bool) (ds Dataset) {
	defer func() {
		if r := recover(); r != nil {
			ds = Dataset{Origin: OriginNone, LoadedAt: l.now(), Err: fmt.Errorf("load: %v", r)}
			l.log.Error().Interface("panic", r).Msg("recovered panic")
		}
	}()
	tickers = types.Symbols(tickers)
	key := Fingerprint(tickers)
	log := l.log.With().Str("fingerprint", key[:12]).Int("tickers", len(tickers)).Logger()

	if useCache {
		hit, st := l.cache.Lookup(key)
		switch st {
		case cache.Hit:
			log.Info().Str("origin", string(hit.Origin)).Msg("cache hit")
			hit.Cached = true
			l.observe(hit)
			return hit
		case cache.Expired:
			log.Info().Msg("cache expired")
		}
	}

	var remoteErr error
	ds, remoteErr = l.remote(ctx, tickers, useCache, log)
	if remoteErr == nil {
		l.cache.Put(key, ds)
		l.refreshSnapshot(ds, log)
		l.observe(ds)
		return ds
	}

	log.Warn().Err(remoteErr).Msg("remote batch failed, falling back to snapshot")
	quotes, divs, snapErr := snapshot.Read(l.cfg.Snapshot)
	if snapErr == nil {
		ds = Dataset{Quotes: quotes, Dividends: divs, Origin: OriginSnapshot, LoadedAt: l.now()}
		log.Info().Int("quotes", quotes.Len()).Int("dividends", divs.Len()).Msg("snapshot loaded")
		l.cache.Put(key, ds)
		l.observe(ds)
		return ds
	}

	ds = Dataset{Origin: OriginNone, LoadedAt: l.now(), Err: errors.Join(remoteErr, snapErr)}
	log.Error().Err(ds.Err).Msg("no data available")
	l.observe(ds)
	return ds
}

func (l *Loader) remote(ctx context.Context, tickers []string, useCache bool, log zerolog.Logger) (Dataset, error) {
	if len(tickers) == 0 {
		return Dataset{}, fmt.Errorf("%w: no tickers", ErrBatchFetch)
	}
	f := l.fetcher
	if b, ok := f.(bypasser); ok && !useCache {
		f = b.Bypass()
	}

	now := l.now()
	log.Info().Msg("fetching remote")
	qres := fetch.QuotesBatch(ctx, f, tickers, fetch.LastDays(now, l.cfg.QuoteDays), l.cfg.Interval)
	quotes, failed := fetch.Collect(qres)
	l.countFailures("quotes", failed)
	if len(quotes) == 0 {
		return Dataset{}, batchErr("no quotes for any ticker", joinErrs(qres))
	}

	dres := fetch.DividendsBatch(ctx, f, tickers, fetch.LastDays(now, l.cfg.DividendDays))
	divs, failed := fetch.Collect(dres)
	l.countFailures("dividends", failed)
	if failed == len(tickers) {
		return Dataset{}, batchErr("dividends failed for every ticker", joinErrs(dres))
	}

	log.Info().Int("quotes", len(quotes)).Int("dividends", len(divs)).Msg("remote loaded")
	return Dataset{
		Quotes:    types.NewTable(quotes),
		Dividends: types.NewTable(divs),
		Origin:    OriginRemote,
		LoadedAt:  now,
	}, nil
}

func (l *Loader) refreshSnapshot(ds Dataset, log zerolog.Logger) {
	if !l.cfg.RefreshSnapshot || l.cfg.Snapshot.IsZero() {
		return
	}
	if err := snapshot.Write(l.cfg.Snapshot, ds.Quotes, ds.Dividends); err != nil {
		log.Warn().Err(err).Msg("snapshot refresh failed")
		return
	}
	log.Debug().Str("path", l.cfg.Snapshot.Quotes).Msg("snapshot refreshed")
}

// Invalidate drops the cached dataset for tickers.
func (l *Loader) Invalidate(tickers []string) { l.cache.Delete(Fingerprint(tickers)) }

func (l *Loader) observe(ds Dataset) {
	if l.obs != nil {
		l.obs.Loaded(ds)
	}
}

func (l *Loader) countFailures(op string, n int) {
	if l.obs == nil {
		return
	}
	for i := 0; i < n; i++ {
		l.obs.TickerFailed(op)
	}
}

func joinErrs[T any](results []fetch.Result[T]) error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errors.Join(errs...)
}

func batchErr(msg string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrBatchFetch, msg)
	}
	return fmt.Errorf("%w: %s: %w", ErrBatchFetch, msg, cause)
}
