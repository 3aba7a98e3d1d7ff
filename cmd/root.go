// Package cmd implements the realtyai CLI commands.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/realtyai/internal/config"
	"github.com/theirongolddev/realtyai/internal/logging"
	"github.com/theirongolddev/realtyai/internal/region"
	"github.com/theirongolddev/realtyai/internal/source"
	"github.com/theirongolddev/realtyai/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagAPIURL  string
	flagSource  string
	flagNoCache bool
	flagQuiet   bool
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "realtyai",
	Short: "Regional home price forecasts and property price estimates",
	Long: "Forecast home values for US regions, compare regions side by side, " +
		"and estimate Indian property prices from a prediction service.",
	SilenceUsage: true,
	RunE:         runTUI,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Config file (default "+config.ConfigPath()+")")
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "Prediction service URL (overrides REALTYAI_API_URL)")
	rootCmd.PersistentFlags().StringVarP(&flagSource, "source", "s", "", "Data source: http or synthetic (overrides REALTYAI_SOURCE)")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip the local store: no region cache or prediction history")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log requests and retries at debug level")
}

func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.ConfigPath()
}

// loadConfig reads the config file and layers flags on top. Flags outrank
// the environment, which outranks the file.
func loadConfig() (config.Config, error) {
	cfg, err := config.LoadFile(configPath())
	if err != nil {
		return cfg, err
	}
	if flagAPIURL != "" {
		if err := os.Setenv("REALTYAI_API_URL", flagAPIURL); err != nil {
			return cfg, err
		}
	}
	if flagSource != "" {
		if err := os.Setenv("REALTYAI_SOURCE", flagSource); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*logrus.Logger, error) {
	level := cfg.Log.Level
	switch {
	case flagVerbose:
		level = "debug"
	case flagQuiet:
		level = "error"
	}
	return logging.New(level, cfg.Log.Format, os.Stderr)
}

// runtime bundles what every data command needs.
type runtime struct {
	cfg   config.Config
	log   *logrus.Logger
	src   source.Source
	store *store.Cache
}

// bootstrap loads config, logging and the data source. The local store is
// optional: when it cannot be opened commands run without history.
func bootstrap() (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	src, err := source.New(cfg, log)
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, log: log, src: src}
	if !flagNoCache {
		st, err := store.Open(config.DBPath())
		if err != nil {
			log.WithError(err).Warn("local store unavailable, continuing without history")
		} else {
			rt.store = st
		}
	}
	return rt, nil
}

func (rt *runtime) Close() {
	if rt.store != nil {
		_ = rt.store.Close()
	}
}

// regionCache returns the store as a region cache, or nil when disabled.
func (rt *runtime) regionCache() region.Cache {
	if rt.store == nil {
		return nil
	}
	return rt.store
}

func progressf(format string, args ...any) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

func requestTimeout(rt *runtime) time.Duration {
	if d := rt.cfg.API.Timeout.Duration; d > 0 {
		return 4 * d
	}
	return 2 * time.Minute
}
