package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/realtyai/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := configPath()
	fmt.Printf("  Config file: %s\n", path)
	if _, err := os.Stat(path); err == nil {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [API]")
	fmt.Printf("    Base URL:        %s%s\n", config.GetAPIURL(cfg), envNote("REALTYAI_API_URL"))
	fmt.Printf("    Timeout:         %s\n", cfg.API.Timeout)
	if cfg.API.RequestsPerSecond > 0 {
		fmt.Printf("    Rate limit:      %g/s (burst %d)\n", cfg.API.RequestsPerSecond, cfg.API.Burst)
	} else {
		fmt.Println("    Rate limit:      off")
	}
	fmt.Println()

	fmt.Println("  [Source]")
	fmt.Printf("    Kind:            %s%s\n", config.GetSourceKind(cfg), envNote("REALTYAI_SOURCE"))
	fmt.Printf("    Region cache:    %s\n", cfg.Source.RegionsTTL)
	fmt.Println()

	fmt.Println("  [Forecast]")
	fmt.Printf("    Default horizon: %d months\n", cfg.Forecast.DefaultHorizon)
	fmt.Printf("    Default mode:    %s\n", cfg.Forecast.DefaultMode)
	fmt.Printf("    Trend cutoffs:   above %+g%% rising, below %+g%% falling\n",
		cfg.Forecast.TrendPositivePct, cfg.Forecast.TrendNegativePct)
	fmt.Printf("    Concurrency:     %d\n", cfg.Forecast.MaxConcurrency)
	fmt.Printf("    Smoothing:       %d months\n", cfg.Forecast.SmoothingWindow)
	fmt.Println()

	fmt.Println("  [Predict]")
	fmt.Printf("    Price / sq ft:   ₹%g\n", cfg.Predict.DefaultPricePerSqft)
	fmt.Printf("    ₹ per $:         %g\n", cfg.Predict.USDToINR)
	fmt.Printf("    History size:    %d\n", cfg.Predict.HistoryLimit)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Printf("  Local store: %s\n", config.DBPath())
	fmt.Println("  Run `realtyai setup` to reconfigure.")
	return nil
}

func envNote(name string) string {
	if os.Getenv(name) != "" {
		return fmt.Sprintf("  (from %s)", name)
	}
	return ""
}
