package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/komsit37/divwatch/pkg/divwatch/loader"
	"github.com/komsit37/divwatch/pkg/divwatch/snapshot"
	"github.com/komsit37/divwatch/pkg/divwatch/types"
)

func newSnapshotCmd(load loadFunc) *cobra.Command {
	var quotesPath, dividendsPath string
	cmd := &cobra.Command{
		Use:   "snapshot [portfolio.yaml|dir]",
		Short: "Fetch fresh data and save it as the offline fallback (.csv or .xlsx)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			paths := cfg.Snapshot.Paths
			if quotesPath != "" {
				paths.Quotes = quotesPath
			}
			if dividendsPath != "" {
				paths.Dividends = dividendsPath
			}
			if paths.IsZero() {
				return fmt.Errorf("no snapshot path: set --quotes or snapshot.quotes")
			}

			a := newApp(cfg, nil)
			ps, err := a.runner.Source.Load(cmd.Context(), a.portfolioSpec(args))
			if err != nil {
				return err
			}
			ds := a.loader.Load(cmd.Context(), types.Merge("", ps).Tickers(), false)
			switch {
			case ds.Err != nil:
				return fmt.Errorf("fetch for snapshot: %w", ds.Err)
			case ds.Origin != loader.OriginRemote:
				return fmt.Errorf("remote unavailable, refusing to rewrite the snapshot from %s data", ds.Origin)
			}
			if err := snapshot.Write(paths, ds.Quotes, ds.Dividends); err != nil {
				return err
			}
			a.log.Info().
				Str("quotes", paths.Quotes).
				Str("dividends", paths.Dividends).
				Int("quote_rows", ds.Quotes.Len()).
				Int("dividend_rows", ds.Dividends.Len()).
				Msg("snapshot written")
			return nil
		},
	}
	cmd.Flags().StringVar(&quotesPath, "quotes", "", "quotes file (default snapshot.quotes)")
	cmd.Flags().StringVar(&dividendsPath, "dividends", "", "dividends file (default snapshot.dividends)")
	return cmd
}
