package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/komsit37/divwatch/pkg/divwatch/server"
	"github.com/komsit37/divwatch/pkg/divwatch/types"
)

func newServeCmd(v *viper.Viper, load loadFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [portfolio.yaml|dir]",
		Short: "Serve the dashboard API and metrics over HTTP",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			m := server.NewMetrics()
			a := newApp(cfg, m)
			ps, err := a.runner.Source.Load(cmd.Context(), a.portfolioSpec(args))
			if err != nil {
				return err
			}
			p := types.Merge("all", ps)
			if p.Currency == "" {
				p.Currency = cfg.Currency
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			h := server.NewHandler(a.runner, p, a.log)
			return server.New(cfg.Serve.Addr, h, m, a.log).Run(ctx)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default serve.addr, :8080)")
	_ = v.BindPFlag("serve.addr", cmd.Flags().Lookup("addr"))
	return cmd
}
