package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/komsit37/divwatch/pkg/divwatch/config"
	"github.com/komsit37/divwatch/pkg/divwatch/filter"
	"github.com/komsit37/divwatch/pkg/divwatch/pipeline"
	"github.com/komsit37/divwatch/pkg/divwatch/render"
	"github.com/komsit37/divwatch/pkg/divwatch/types"
)

type loadFunc func() (config.Config, error)

func newSummaryCmd(load loadFunc) *cobra.Command {
	var (
		format  string
		cols    []string
		sets    []string
		only    string
		list    string
		merge   bool
		noCache bool
		color   string
		pretty  bool
	)
	cmd := &cobra.Command{
		Use:   "summary [portfolio.yaml|dir]",
		Short: "Show dividend yield and yield on cost per asset",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			a := newApp(cfg, nil)

			r, err := rendererFor(format)
			if err != nil {
				return err
			}
			a.runner.Renderer = r

			width, tty := terminalSize(os.Stdout)
			opts := pipeline.ExecuteOptions{
				Columns:     cols,
				Sets:        sets,
				Merge:       merge,
				NoCache:     noCache,
				Color:       useColor(color, tty),
				PrettyJSON:  pretty,
				MaxColWidth: maxColWidth(width),
			}
			if opts.Lists, err = parseFilter(list); err != nil {
				return err
			}
			if opts.Tickers, err = parseFilter(only); err != nil {
				return err
			}
			return a.runner.Execute(cmd.Context(), a.portfolioSpec(args), opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&format, "format", "f", "table", "output format: table, json, syms")
	f.StringSliceVarP(&cols, "columns", "c", nil, "columns to show, e.g. ticker,dy,yoc or a portfolio field")
	f.StringSliceVarP(&sets, "sets", "s", nil, "column sets: summary, yield, dividends, market")
	f.StringVar(&only, "only", "", "ticker filter: substring, glob, /regex/, a,b,c; prefix ! to negate")
	f.StringVar(&list, "list", "", "portfolio name filter, same syntax as --only")
	f.BoolVar(&merge, "merge", false, "show all portfolios as one table")
	f.BoolVar(&noCache, "no-cache", false, "skip the cache and fetch fresh data")
	f.StringVar(&color, "color", "auto", "colorize output: auto, always, never")
	f.BoolVar(&pretty, "pretty", false, "indent JSON output")
	return cmd
}

func newSymsCmd(load loadFunc) *cobra.Command {
	var only, list string
	cmd := &cobra.Command{
		Use:   "syms [portfolio.yaml|dir]",
		Short: "Print the portfolio tickers comma-separated",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			a := newApp(cfg, nil)
			var opts pipeline.ExecuteOptions
			if opts.Lists, err = parseFilter(list); err != nil {
				return err
			}
			if opts.Tickers, err = parseFilter(only); err != nil {
				return err
			}
			ps, err := a.runner.Select(cmd.Context(), a.portfolioSpec(args), opts)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(types.Merge("", ps).Tickers(), ","))
			return err
		},
	}
	cmd.Flags().StringVar(&only, "only", "", "ticker filter")
	cmd.Flags().StringVar(&list, "list", "", "portfolio name filter")
	return cmd
}

func rendererFor(format string) (render.Renderer, error) {
	switch strings.ToLower(format) {
	case "", "table":
		return render.NewTableRenderer(), nil
	case "json":
		return render.NewJSONRenderer(), nil
	case "syms":
		return render.NewSymsRenderer(), nil
	}
	return nil, fmt.Errorf("unknown format %q (want table, json or syms)", format)
}

func parseFilter(expr string) (filter.Filter, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil
	}
	return filter.Parse(expr)
}

// maxColWidth splits the terminal between a handful of wide columns.
func maxColWidth(termWidth int) int {
	if termWidth <= 0 {
		return 0
	}
	return max(termWidth/4, 12)
}
