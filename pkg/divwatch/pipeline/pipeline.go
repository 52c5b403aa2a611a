package pipeline

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog"

	"github.com/komsit37/divwatch/pkg/divwatch/columns"
	"github.com/komsit37/divwatch/pkg/divwatch/enrich"
	"github.com/komsit37/divwatch/pkg/divwatch/filter"
	"github.com/komsit37/divwatch/pkg/divwatch/loader"
	"github.com/komsit37/divwatch/pkg/divwatch/metrics"
	"github.com/komsit37/divwatch/pkg/divwatch/render"
	"github.com/komsit37/divwatch/pkg/divwatch/source"
	"github.com/komsit37/divwatch/pkg/divwatch/types"
)

// ErrNoTickers is returned when the filters leave nothing to load.
var ErrNoTickers = errors.New("no tickers selected")

// DataLoader is the part of loader.Loader the pipeline uses.
type DataLoader interface {
	Load(ctx context.Context, tickers []string, useCache bool) loader.Dataset
}

type Runner struct {
	Source     source.Source
	Loader     DataLoader
	Aggregator *metrics.Aggregator
	// Quotes is optional; live columns stay empty without it.
	Quotes   enrich.QuoteService
	Renderer render.Renderer
	Writer   io.Writer
	// Currency is used for portfolios that do not name one.
	Currency string
	Log      zerolog.Logger
}

type ExecuteOptions struct {
	Columns []string
	Sets    []string
	// Lists selects portfolios by name, Tickers selects assets.
	Lists   filter.Filter
	Tickers filter.Filter
	// Merge renders all selected portfolios as one table.
	Merge       bool
	NoCache     bool
	Color       bool
	PrettyJSON  bool
	MaxColWidth int
}

// Result is a computed summary: one row set per portfolio.
type Result struct {
	Dataset    loader.Dataset
	Portfolios []types.Portfolio
	Summaries  [][]types.AssetSummary
}

// Select loads portfolios from spec and applies the list and ticker filters.
func (r *Runner) Select(ctx context.Context, spec any, opts ExecuteOptions) ([]types.Portfolio, error) {
	ps, err := r.Source.Load(ctx, spec)
	if err != nil {
		return nil, err
	}
	if opts.Lists != nil {
		ps = filter.Portfolios(opts.Lists, ps)
	}
	if opts.Tickers != nil {
		ps = filter.Assets(opts.Tickers, ps)
	}
	if opts.Merge && len(ps) > 1 {
		ps = []types.Portfolio{types.Merge("", ps)}
	}
	for i := range ps {
		if ps[i].Currency == "" {
			ps[i].Currency = r.Currency
		}
	}
	if len(types.Merge("", ps).Tickers()) == 0 {
		return nil, ErrNoTickers
	}
	return ps, nil
}

// Summarize loads the tables for every ticker of ps in one go and computes
// each portfolio's rows. Nothing is computed when no data could be loaded.
func (r *Runner) Summarize(ctx context.Context, ps []types.Portfolio, useCache bool) Result {
	tickers := types.Merge("", ps).Tickers()
	res := Result{Dataset: r.Loader.Load(ctx, tickers, useCache), Portfolios: ps}
	if !res.Dataset.Available() {
		return res
	}
	for _, p := range ps {
		res.Summaries = append(res.Summaries,
			r.Aggregator.Compute(p.Tickers(), p.AveragePrices(), res.Dataset.Quotes, res.Dataset.Dividends))
	}
	return res
}

// Report shapes a Result for rendering with the given columns.
func (r *Runner) Report(ctx context.Context, res Result, cols []string) render.Report {
	rep := render.Report{
		Origin: string(res.Dataset.Origin),
		Cached: res.Dataset.Cached,
		Err:    res.Dataset.Err,
	}
	var quotes map[string]types.Quote
	if r.Quotes != nil && columns.NeedsQuotes(cols) {
		quotes = enrich.Quotes(ctx, r.Quotes, types.Merge("", res.Portfolios).Tickers(), r.Log)
	}
	for i, p := range res.Portfolios {
		if i >= len(res.Summaries) {
			break
		}
		assets := make(map[string]types.Asset, len(p.Assets))
		for _, a := range p.Assets {
			assets[types.Symbol(a.Sym)] = a
		}
		sec := render.Section{Name: p.Name, Currency: p.Currency, Columns: cols}
		for _, s := range res.Summaries[i] {
			row := columns.Row{Summary: s, Asset: assets[s.Ticker]}
			if q, ok := quotes[s.Ticker]; ok {
				row.Quote = &q
			}
			sec.Rows = append(sec.Rows, row)
		}
		rep.Sections = append(rep.Sections, sec)
	}
	return rep
}

func (r *Runner) Execute(ctx context.Context, spec any, opts ExecuteOptions) error {
	cols, err := columns.Compute(opts.Columns, opts.Sets)
	if err != nil {
		return err
	}
	ps, err := r.Select(ctx, spec, opts)
	if err != nil {
		return err
	}
	res := r.Summarize(ctx, ps, !opts.NoCache)
	return r.Renderer.Render(r.Writer, r.Report(ctx, res, cols), render.RenderOptions{
		Color:       opts.Color,
		PrettyJSON:  opts.PrettyJSON,
		MaxColWidth: opts.MaxColWidth,
	})
}
