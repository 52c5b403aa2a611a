// Package config resolves settings from defaults, an optional config file,
// a .env file, DIVWATCH_* environment variables and bound CLI flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/komsit37/divwatch/pkg/divwatch/cache"
	"github.com/komsit37/divwatch/pkg/divwatch/fetch"
	"github.com/komsit37/divwatch/pkg/divwatch/loader"
	"github.com/komsit37/divwatch/pkg/divwatch/logger"
	"github.com/komsit37/divwatch/pkg/divwatch/snapshot"
)

const EnvPrefix = "DIVWATCH"

type Config struct {
	Portfolio string         `mapstructure:"portfolio"`
	Currency  string         `mapstructure:"currency"`
	Log       LogConfig      `mapstructure:"log"`
	Provider  ProviderConfig `mapstructure:"provider"`
	Cache     CacheConfig    `mapstructure:"cache"`
	Snapshot  SnapshotConfig `mapstructure:"snapshot"`
	Serve     ServeConfig    `mapstructure:"serve"`
	Enrich    EnrichConfig   `mapstructure:"enrich"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type ProviderConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	UserAgent    string        `mapstructure:"user_agent"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Delay        time.Duration `mapstructure:"delay"`
	QuoteDays    int           `mapstructure:"quote_days"`
	DividendDays int           `mapstructure:"dividend_days"`
	Interval     string        `mapstructure:"interval"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type SnapshotConfig struct {
	snapshot.Paths `mapstructure:",squash"`
	Refresh        bool `mapstructure:"refresh"`
}

type ServeConfig struct {
	Addr string `mapstructure:"addr"`
}

type EnrichConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Size    int           `mapstructure:"size"`
}

// New returns a viper instance with every key defaulted and the
// environment wired in.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("portfolio", "portfolio.yaml")
	v.SetDefault("currency", "BRL")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("provider.base_url", fetch.DefaultBaseURL)
	v.SetDefault("provider.user_agent", fetch.DefaultUserAgent)
	v.SetDefault("provider.timeout", fetch.DefaultTimeout)
	v.SetDefault("provider.delay", fetch.DefaultDelay)
	v.SetDefault("provider.quote_days", 520)
	v.SetDefault("provider.dividend_days", 365)
	v.SetDefault("provider.interval", "1d")
	v.SetDefault("cache.ttl", cache.DefaultTTL)
	v.SetDefault("snapshot.quotes", "")
	v.SetDefault("snapshot.dividends", "")
	v.SetDefault("snapshot.refresh", false)
	v.SetDefault("serve.addr", ":8080")
	v.SetDefault("enrich.timeout", 5*time.Second)
	v.SetDefault("enrich.size", 512)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads .env (if present), then the config file, and decodes the
// result. With an empty file, divwatch.yaml is looked up in the working
// directory and $HOME/.config/divwatch; not finding one is fine.
func Load(v *viper.Viper, file string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("divwatch")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "divwatch"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.Cache.TTL < 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must not be negative"))
	}
	if c.Provider.Delay < 0 {
		errs = append(errs, fmt.Errorf("provider.delay must not be negative"))
	}
	if c.Provider.QuoteDays <= 0 || c.Provider.DividendDays <= 0 {
		errs = append(errs, fmt.Errorf("provider.quote_days and provider.dividend_days must be positive"))
	}
	return errors.Join(errs...)
}

func (c Config) Logger() logger.Config {
	return logger.Config{Level: c.Log.Level, Pretty: c.Log.Pretty}
}

func (c Config) Fetch() fetch.Config {
	return fetch.Config{
		BaseURL:   c.Provider.BaseURL,
		UserAgent: c.Provider.UserAgent,
		Timeout:   c.Provider.Timeout,
		Delay:     c.Provider.Delay,
	}
}

func (c Config) Loader() loader.Config {
	return loader.Config{
		QuoteDays:       c.Provider.QuoteDays,
		DividendDays:    c.Provider.DividendDays,
		Interval:        c.Provider.Interval,
		TTL:             c.Cache.TTL,
		Snapshot:        c.Snapshot.Paths,
		RefreshSnapshot: c.Snapshot.Refresh,
	}
}
