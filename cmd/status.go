package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/realtyai/internal/api"
	"github.com/theirongolddev/realtyai/internal/cli"
	"github.com/theirongolddev/realtyai/internal/config"
	"github.com/theirongolddev/realtyai/internal/forecast"
	"github.com/theirongolddev/realtyai/internal/source"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check that the data source answers",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type probe struct {
	name    string
	elapsed time.Duration
	detail  string
	err     error
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	src, err := source.New(cfg, log)
	if err != nil {
		return err
	}

	progressf("  Probing %s...\n", src.Name())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var probes []probe
	run := func(name string, fn func() (string, error)) {
		start := time.Now()
		detail, err := fn()
		probes = append(probes, probe{name: name, elapsed: time.Since(start), detail: detail, err: err})
	}

	var first string
	run("available_regions", func() (string, error) {
		names, err := src.Regions(ctx)
		if err != nil {
			return "", err
		}
		if len(names) == 0 {
			return "", errors.New("empty catalog")
		}
		first = names[0]
		return fmt.Sprintf("%d regions", len(names)), nil
	})
	if first != "" {
		run("forecast", func() (string, error) {
			raw, err := src.Forecast(ctx, first, forecast.MinHorizon)
			if err != nil {
				return "", err
			}
			s, err := forecast.Normalize(raw)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s: %d points", first, len(s)), nil
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("SERVICE STATUS"))
	fmt.Println()

	fmt.Printf("  Source: %s\n", src.Name())
	if src.Kind() == source.KindHTTP {
		fmt.Printf("  URL:    %s\n", config.GetAPIURL(cfg))
	}
	fmt.Println()

	rows := make([][]string, 0, len(probes))
	var failed error
	for _, p := range probes {
		state := cli.PositiveStyle.Render("ok")
		detail := p.detail
		if p.err != nil {
			state = cli.NegativeStyle.Render("failed")
			detail = describeError(p.err)
			failed = p.err
		}
		rows = append(rows, []string{p.name, state, fmt.Sprintf("%dms", p.elapsed.Milliseconds()), detail})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Endpoint", "State", "Latency", "Detail"},
		Rows:    rows,
	}))

	if failed != nil {
		return errors.New("data source is not healthy")
	}
	return nil
}

func describeError(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out"
	}
	return err.Error()
}
