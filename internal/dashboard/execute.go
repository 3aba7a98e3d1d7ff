package dashboard

import (
	"context"

	"github.com/theirongolddev/realtyai/internal/forecast"
)

// Backend is the part of a data source a submission needs.
type Backend interface {
	forecast.Fetcher
	forecast.StatisticsFetcher
}

// Execute runs a submission to completion. Per-region failures are kept in the
// outcome; Execute itself never fails.
func Execute(ctx context.Context, b Backend, sub Submission, opts forecast.RunOptions) *Outcome {
	out := &Outcome{Mode: sub.Mode}
	if sub.Mode == forecast.ModeStatistics {
		out.Statistics = forecast.LookupStatistics(ctx, b, sub.Regions, opts.Concurrency)
		return out
	}
	out.Forecasts = forecast.Run(ctx, b, sub.Requests, opts)
	out.Forecasts.Mode = sub.Mode
	return out
}
