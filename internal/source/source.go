// Package source provides the interchangeable data sources behind the
// dashboard: the live prediction service and a synthetic generator.
package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/realtyai/internal/api"
	"github.com/theirongolddev/realtyai/internal/config"
	"github.com/theirongolddev/realtyai/internal/forecast"
)

const (
	KindHTTP      = "http"
	KindSynthetic = "synthetic"
)

// Source is everything the dashboard reads from a prediction backend.
type Source interface {
	// Kind is KindHTTP or KindSynthetic. Name adds detail for display.
	Kind() string
	Name() string
	Regions(ctx context.Context) ([]string, error)
	Forecast(ctx context.Context, region string, horizon int) (forecast.RawResponse, error)
	RegionStatistics(ctx context.Context, region string) (forecast.RegionStatistics, error)
	PredictPrice(ctx context.Context, req api.PriceRequest) (api.PriceResponse, error)
}

// New selects a source from config.
func New(cfg config.Config, log logrus.FieldLogger) (Source, error) {
	kind := config.GetSourceKind(cfg)
	switch strings.ToLower(kind) {
	case "", KindHTTP:
		client, err := api.NewClient(api.Options{
			BaseURL:           config.GetAPIURL(cfg),
			Timeout:           cfg.API.Timeout.Duration,
			RequestsPerSecond: cfg.API.RequestsPerSecond,
			Burst:             cfg.API.Burst,
			Logger:            log,
		})
		if err != nil {
			return nil, err
		}
		return NewHTTP(client), nil
	case KindSynthetic:
		return NewSynthetic(cfg.Source.Seed), nil
	}
	return nil, fmt.Errorf("unknown data source %q (want %s or %s)", kind, KindHTTP, KindSynthetic)
}
