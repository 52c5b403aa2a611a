package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/komsit37/divwatch/pkg/divwatch/types"
)

const (
	DefaultBaseURL   = "https://query2.finance.yahoo.com/v8/finance/chart/"
	DefaultUserAgent = "Mozilla/5.0"
	DefaultTimeout   = 15 * time.Second
	DefaultDelay     = 1500 * time.Millisecond
	DefaultMaxBody   = 8 << 20
)

// Config tunes the chart client. Zero fields take the defaults above, except
// Delay: zero disables pacing.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// Delay is the minimum spacing between two requests to the provider.
	Delay time.Duration
	// Location is the wall clock used to turn timestamps into dates.
	Location *time.Location
	// MaxBody caps the bytes read from one response.
	MaxBody int64
	Client  *http.Client
}

// YahooChart fetches close prices and dividend events from the chart endpoint.
// Calls are paced so consecutive requests are at least Delay apart.
type YahooChart struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewYahooChart returns a chart client.
func NewYahooChart(cfg Config, log zerolog.Logger) *YahooChart {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.MaxBody <= 0 {
		cfg.MaxBody = DefaultMaxBody
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.Delay), 1)
		// Start empty so the first request waits a full Delay as well.
		limiter.Allow()
	}
	return &YahooChart{
		cfg:     cfg,
		client:  client,
		limiter: limiter,
		log:     log.With().Str("component", "fetch").Logger(),
	}
}

// Quotes fetches daily (or interval) closes for ticker.
func (c *YahooChart) Quotes(ctx context.Context, ticker string, rng Range, interval string) ([]types.QuoteRecord, error) {
	if interval == "" {
		interval = "1d"
	}
	body, err := c.chart(ctx, ticker, rng, interval, "history")
	if err != nil {
		return nil, c.fail("quotes", ticker, err)
	}
	p, err := Resolve(body, ticker, false)
	if err != nil {
		return nil, c.fail("quotes", ticker, err)
	}
	recs, err := DecodeQuotes(p, ticker, c.cfg.Location)
	if err != nil {
		return nil, c.fail("quotes", ticker, err)
	}
	c.log.Debug().Str("ticker", ticker).Str("shape", shapeName(p)).Int("count", len(recs)).Msg("fetched quotes")
	return recs, nil
}

// Dividends fetches dividend events for ticker. A ticker that never paid in
// the range yields no records and no error.
func (c *YahooChart) Dividends(ctx context.Context, ticker string, rng Range) ([]types.DividendRecord, error) {
	body, err := c.chart(ctx, ticker, rng, "1d", "div")
	if err != nil {
		return nil, c.fail("dividends", ticker, err)
	}
	p, err := Resolve(body, ticker, true)
	if err != nil {
		return nil, c.fail("dividends", ticker, err)
	}
	recs, err := DecodeDividends(p, ticker, c.cfg.Location)
	if err != nil {
		return nil, c.fail("dividends", ticker, err)
	}
	if _, ok := p.(NoDividendsPayload); ok {
		c.log.Info().Str("ticker", ticker).Msg("no dividends found")
	}
	return recs, nil
}

// ErrBodyTooLarge is wrapped when a response exceeds Config.MaxBody.
var ErrBodyTooLarge = errors.New("response body too large")

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string { return http.StatusText(e.code) + ": " + e.body }

func (c *YahooChart) chart(ctx context.Context, ticker string, rng Range, interval, events string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	params := url.Values{}
	params.Set("period1", strconv.FormatInt(rng.From.Unix(), 10))
	params.Set("period2", strconv.FormatInt(rng.To.Unix(), 10))
	params.Set("interval", interval)
	params.Set("events", events)
	reqURL := c.cfg.BaseURL + url.PathEscape(ticker) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.log.Debug().Str("ticker", ticker).Str("events", events).Msg("requesting chart")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > c.cfg.MaxBody {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrBodyTooLarge, c.cfg.MaxBody)
	}
	if resp.StatusCode != http.StatusOK {
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, &statusError{code: resp.StatusCode, body: snippet}
	}
	return body, nil
}

func (c *YahooChart) fail(op, ticker string, err error) error {
	te := &TickerError{Ticker: ticker, Op: op, Err: err}
	var se *statusError
	if errors.As(err, &se) {
		te.StatusCode = se.code
	}
	c.log.Warn().Err(err).Str("ticker", ticker).Str("op", op).Int("status", te.StatusCode).Msg("fetch failed")
	return te
}

func shapeName(p Payload) string {
	switch p.(type) {
	case FlatPayload:
		return "flat"
	case LayeredPayload:
		return "layered"
	case NoDividendsPayload:
		return "no-dividends"
	}
	return "unknown"
}
