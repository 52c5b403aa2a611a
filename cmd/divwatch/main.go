package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/komsit37/divwatch/pkg/divwatch/cache"
	"github.com/komsit37/divwatch/pkg/divwatch/config"
	"github.com/komsit37/divwatch/pkg/divwatch/enrich"
	"github.com/komsit37/divwatch/pkg/divwatch/fetch"
	"github.com/komsit37/divwatch/pkg/divwatch/loader"
	"github.com/komsit37/divwatch/pkg/divwatch/logger"
	"github.com/komsit37/divwatch/pkg/divwatch/metrics"
	"github.com/komsit37/divwatch/pkg/divwatch/pipeline"
	"github.com/komsit37/divwatch/pkg/divwatch/server"
	"github.com/komsit37/divwatch/pkg/divwatch/source"
)

func main() {
	v := config.New()
	rootCmd := newRootCmd(v)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:          "divwatch [portfolio.yaml|dir]",
		Short:        "Dividend yield dashboard for a stock portfolio",
		SilenceUsage: true,
	}
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default divwatch.yaml in . or ~/.config/divwatch)")
	pf.String("portfolio", "", "portfolio YAML file or directory")
	pf.String("currency", "", "currency for portfolios that do not set one")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.Bool("log-pretty", false, "human-readable logs")
	for key, flag := range map[string]string{
		"portfolio":  "portfolio",
		"currency":   "currency",
		"log.level":  "log-level",
		"log.pretty": "log-pretty",
	} {
		_ = v.BindPFlag(key, pf.Lookup(flag))
	}

	load := func() (config.Config, error) { return config.Load(v, configFile) }

	summary := newSummaryCmd(load)
	// The bare command behaves like "summary".
	rootCmd.Args = summary.Args
	rootCmd.RunE = summary.RunE
	rootCmd.Flags().AddFlagSet(summary.Flags())

	rootCmd.AddCommand(
		summary,
		newSymsCmd(load),
		newQuotesCmd(load),
		newDividendsCmd(load),
		newPerfCmd(),
		newSnapshotCmd(load),
		newServeCmd(v, load),
	)
	return rootCmd
}

// app is the wired object graph shared by the commands.
type app struct {
	cfg    config.Config
	log    zerolog.Logger
	loader *loader.Loader
	runner *pipeline.Runner
}

// newApp builds the fetch -> cache -> loader -> pipeline chain from cfg.
// m is only set when serving; it observes every cache and load.
func newApp(cfg config.Config, m *server.Metrics) *app {
	log := logger.New(cfg.Logger())

	var cacheOpts []cache.Option
	var loaderOpts []loader.Option
	if m != nil {
		cacheOpts = append(cacheOpts, cache.WithObserver(m))
		loaderOpts = append(loaderOpts, loader.WithObserver(m), loader.WithCacheObserver(m))
	}

	chart := fetch.NewYahooChart(cfg.Fetch(), log)
	fetcher := fetch.NewCached(chart, cfg.Cache.TTL, cacheOpts...)
	ld := loader.New(fetcher, cfg.Loader(), log, loaderOpts...)

	quotes := enrich.NewCacheService(enrich.NewYFService(cfg.Enrich.Timeout), cfg.Cache.TTL, cfg.Enrich.Size, cacheOpts...)

	return &app{
		cfg:    cfg,
		log:    log,
		loader: ld,
		runner: &pipeline.Runner{
			Source:     source.YAMLSource{},
			Loader:     ld,
			Aggregator: metrics.New(log),
			Quotes:     quotes,
			Writer:     os.Stdout,
			Currency:   cfg.Currency,
			Log:        log,
		},
	}
}

// portfolioSpec prefers a positional argument over the configured path.
func (a *app) portfolioSpec(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return a.cfg.Portfolio
}
