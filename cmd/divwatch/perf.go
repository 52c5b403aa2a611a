package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/komsit37/divwatch/pkg/divwatch/metrics"
)

func newPerfCmd() *cobra.Command {
	var (
		gross, invested, proceeds string
		asJSON                    bool
	)
	cmd := &cobra.Command{
		Use:   "perf",
		Short: "Compute real and share variation of the portfolio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := map[string]decimal.Decimal{}
			for name, s := range map[string]string{"gross": gross, "invested": invested, "proceeds": proceeds} {
				d, err := decimal.NewFromString(s)
				if err != nil {
					return fmt.Errorf("--%s: %w", name, err)
				}
				in[name] = d
			}
			p, err := metrics.ComputePerformance(in["gross"], in["invested"], in["proceeds"])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), p)
			}
			printTable(cmd.OutOrStdout(), table.Row{"METRIC", "VALUE"}, []table.Row{
				{"real variation", pct(p.Real)},
				{"share variation", pct(p.Share)},
			}, "")
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&gross, "gross", "0", "current gross balance")
	f.StringVar(&invested, "invested", "0", "total amount invested")
	f.StringVar(&proceeds, "proceeds", "0", "total proceeds received")
	f.BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
