package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/komsit37/divwatch/pkg/divwatch/date"
	"github.com/komsit37/divwatch/pkg/divwatch/loader"
	"github.com/komsit37/divwatch/pkg/divwatch/pipeline"
	"github.com/komsit37/divwatch/pkg/divwatch/series"
	"github.com/komsit37/divwatch/pkg/divwatch/types"
)

const (
	defaultDays   = 30
	defaultMonths = series.MaxDividendMonths
)

// Handler serves the dashboard API for one (merged) portfolio.
type Handler struct {
	runner    *pipeline.Runner
	portfolio types.Portfolio
	today     func() date.Date
	log       zerolog.Logger
}

type HandlerOption func(*Handler)

// WithToday fixes the reference day of dividend windows.
func WithToday(today func() date.Date) HandlerOption { return func(h *Handler) { h.today = today } }

func NewHandler(runner *pipeline.Runner, portfolio types.Portfolio, log zerolog.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		runner:    runner,
		portfolio: portfolio.Canonical(),
		today:     date.Today,
		log:       log.With().Str("handler", "dashboard").Logger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type summaryResponse struct {
	Origin   string               `json:"origin"`
	Cached   bool                 `json:"cached"`
	LoadedAt time.Time            `json:"loaded_at"`
	Currency string               `json:"currency,omitempty"`
	Error    string               `json:"error,omitempty"`
	Rows     []types.AssetSummary `json:"rows"`
}

// HandleSummary handles GET /api/summary. fresh=1 skips the cache.
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	fresh, _ := strconv.ParseBool(r.URL.Query().Get("fresh"))
	res := h.runner.Summarize(r.Context(), []types.Portfolio{h.portfolio}, !fresh)

	resp := summaryResponse{
		Origin:   string(res.Dataset.Origin),
		Cached:   res.Dataset.Cached,
		LoadedAt: res.Dataset.LoadedAt,
		Currency: h.portfolio.Currency,
		Rows:     []types.AssetSummary{},
	}
	if res.Dataset.Err != nil {
		resp.Error = res.Dataset.Err.Error()
	}
	if len(res.Summaries) > 0 {
		resp.Rows = res.Summaries[0]
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// HandleRefresh handles POST /api/refresh
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ds := h.runner.Loader.Load(r.Context(), h.portfolio.Tickers(), false)
	resp := map[string]any{
		"origin":    ds.Origin,
		"loaded_at": ds.LoadedAt,
	}
	if ds.Err != nil {
		resp["error"] = ds.Err.Error()
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// HandleQuotes handles GET /api/quotes/{ticker}?days=N
func (h *Handler) HandleQuotes(w http.ResponseWriter, r *http.Request) {
	ticker := types.Symbol(chi.URLParam(r, "ticker"))
	days, ok := h.intParam(w, r, "days", defaultDays)
	if !ok {
		return
	}
	ds, ok := h.dataset(w, r)
	if !ok {
		return
	}
	win, err := series.Prices(ds.Quotes, ticker, days, h.averagePrice(ticker))
	if err != nil {
		h.writeSeriesError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, win)
}

// HandleDividends handles GET /api/dividends/{ticker}?months=M
func (h *Handler) HandleDividends(w http.ResponseWriter, r *http.Request) {
	ticker := types.Symbol(chi.URLParam(r, "ticker"))
	months, ok := h.intParam(w, r, "months", defaultMonths)
	if !ok {
		return
	}
	ds, ok := h.dataset(w, r)
	if !ok {
		return
	}
	win, err := series.Dividends(ds.Dividends, ticker, months, h.today())
	if err != nil {
		h.writeSeriesError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, win)
}

func (h *Handler) dataset(w http.ResponseWriter, r *http.Request) (loader.Dataset, bool) {
	ds := h.runner.Loader.Load(r.Context(), h.portfolio.Tickers(), true)
	if !ds.Available() {
		h.writeError(w, http.StatusServiceUnavailable, "no data available")
		return ds, false
	}
	return ds, true
}

func (h *Handler) averagePrice(ticker string) decimal.NullDecimal {
	if p, ok := h.portfolio.AveragePrices()[ticker]; ok {
		return decimal.NewNullDecimal(p)
	}
	return decimal.NullDecimal{}
}

func (h *Handler) intParam(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, name+" must be an integer")
		return 0, false
	}
	return n, true
}

func (h *Handler) writeSeriesError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, series.ErrRange):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, series.ErrUnavailable):
		h.writeError(w, http.StatusNotFound, err.Error())
	default:
		h.log.Error().Err(err).Msg("Failed to compute series")
		h.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
