package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/komsit37/divwatch/pkg/divwatch/date"
	"github.com/komsit37/divwatch/pkg/divwatch/loader"
	"github.com/komsit37/divwatch/pkg/divwatch/render"
	"github.com/komsit37/divwatch/pkg/divwatch/series"
	"github.com/komsit37/divwatch/pkg/divwatch/types"
)

func newQuotesCmd(load loadFunc) *cobra.Command {
	var (
		days    int
		asJSON  bool
		noCache bool
	)
	cmd := &cobra.Command{
		Use:   "quotes <ticker>",
		Short: "Show the last N closes of a ticker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			a := newApp(cfg, nil)
			ticker := types.Symbol(args[0])
			ds, err := a.loadOne(cmd.Context(), ticker, !noCache)
			if err != nil {
				return err
			}
			win, err := series.Prices(ds.Quotes, ticker, days, a.averagePrice(cmd.Context(), ticker))
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), win)
			}
			rows := make([]table.Row, 0, len(win.Points))
			for _, p := range win.Points {
				rows = append(rows, table.Row{p.Date, render.Money(p.Close, cfg.Currency), pct(p.Change)})
			}
			caption := "source: " + string(ds.Origin)
			if win.VsAverage.Valid {
				caption += fmt.Sprintf(" | vs average %s: %s",
					render.Money(win.AveragePrice.Decimal, cfg.Currency), render.Percent(win.VsAverage.Decimal))
			}
			printTable(cmd.OutOrStdout(), table.Row{"DATE", "CLOSE", "CHG%"}, rows, caption)
			return nil
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", 30, "number of trading days")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "skip the cache")
	return cmd
}

func newDividendsCmd(load loadFunc) *cobra.Command {
	var (
		months  int
		asJSON  bool
		noCache bool
	)
	cmd := &cobra.Command{
		Use:   "dividends <ticker>",
		Short: "Show the dividends of a ticker over the last months",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			a := newApp(cfg, nil)
			ticker := types.Symbol(args[0])
			ds, err := a.loadOne(cmd.Context(), ticker, !noCache)
			if err != nil {
				return err
			}
			win, err := series.Dividends(ds.Dividends, ticker, months, date.Today())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), win)
			}
			rows := make([]table.Row, 0, len(win.Points))
			for _, p := range win.Points {
				rows = append(rows, table.Row{p.Date, render.Money(p.Amount, cfg.Currency), pct(p.Change)})
			}
			printTable(cmd.OutOrStdout(), table.Row{"DATE", "AMOUNT", "CHG%"}, rows, "source: "+string(ds.Origin))
			return nil
		},
	}
	cmd.Flags().IntVarP(&months, "months", "m", series.MaxDividendMonths,
		fmt.Sprintf("window in months (%d to %d)", series.MinDividendMonths, series.MaxDividendMonths))
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "skip the cache")
	return cmd
}

// loadOne loads the tables of a single ticker and fails when nothing came back.
func (a *app) loadOne(ctx context.Context, ticker string, useCache bool) (loader.Dataset, error) {
	ds := a.loader.Load(ctx, []string{ticker}, useCache)
	if !ds.Available() {
		return ds, fmt.Errorf("no data available for %s: %w", ticker, ds.Err)
	}
	return ds, nil
}

// averagePrice looks the ticker up in the configured portfolio. A missing or
// broken portfolio only means there is no cost basis to compare against.
func (a *app) averagePrice(ctx context.Context, ticker string) decimal.NullDecimal {
	ps, err := a.runner.Source.Load(ctx, a.cfg.Portfolio)
	if err != nil {
		a.log.Debug().Err(err).Msg("no portfolio for average price")
		return decimal.NullDecimal{}
	}
	if avg, ok := types.Merge("", ps).AveragePrices()[ticker]; ok {
		return decimal.NewNullDecimal(avg)
	}
	return decimal.NullDecimal{}
}

func pct(d decimal.NullDecimal) string {
	if !d.Valid {
		return render.Placeholder
	}
	return render.Percent(d.Decimal)
}

func printTable(w io.Writer, hdr table.Row, rows []table.Row, caption string) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateRows = false
	tw.Style().Options.SeparateColumns = false
	tw.AppendHeader(hdr)
	tw.AppendRows(rows)
	cfgs := make([]table.ColumnConfig, 0, len(hdr)-1)
	for i := 2; i <= len(hdr); i++ {
		cfgs = append(cfgs, table.ColumnConfig{Number: i, Align: text.AlignRight, AlignHeader: text.AlignRight})
	}
	tw.SetColumnConfigs(cfgs)
	if caption != "" {
		tw.SetCaption("%s", caption)
	}
	tw.Render()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
