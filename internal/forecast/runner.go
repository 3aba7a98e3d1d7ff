package forecast

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Fetcher retrieves the raw forecast for one region.
type Fetcher interface {
	Forecast(ctx context.Context, region string, horizon int) (RawResponse, error)
}

// StatisticsFetcher retrieves descriptive statistics for one region.
type StatisticsFetcher interface {
	RegionStatistics(ctx context.Context, region string) (RegionStatistics, error)
}

// RegionResult is the outcome for one requested region. Exactly one of Series
// and Err is meaningful.
type RegionResult struct {
	Region string
	Series Series
	Err    error
}

// OK reports whether the region produced a series.
func (r RegionResult) OK() bool { return r.Err == nil }

// Result is everything produced by one forecast run.
type Result struct {
	Mode    Mode
	Horizon int
	Regions []RegionResult
}

// Succeeded returns the regions that produced a series, in request order.
func (r *Result) Succeeded() []RegionSeries {
	var out []RegionSeries
	for _, rr := range r.Regions {
		if rr.OK() {
			out = append(out, RegionSeries{Region: rr.Region, Series: rr.Series})
		}
	}
	return out
}

// Failed returns the regions that failed, in request order.
func (r *Result) Failed() []RegionResult {
	var out []RegionResult
	for _, rr := range r.Regions {
		if !rr.OK() {
			out = append(out, rr)
		}
	}
	return out
}

// Axis aligns the successful regions on one time axis.
func (r *Result) Axis() Axis {
	return MergeAxis(r.Succeeded())
}

// RunOptions tunes a forecast run.
type RunOptions struct {
	// Concurrency bounds in-flight requests; <= 0 means one per region.
	Concurrency int
	// OnProgress is called after each region finishes. It may be called from
	// multiple goroutines, but never concurrently.
	OnProgress func(done, total int, region string)
	Logger     logrus.FieldLogger
}

// Run fetches and normalizes every request concurrently. A failing region is
// recorded in its RegionResult and never cancels the others. Results keep the
// request order regardless of completion order.
func Run(ctx context.Context, f Fetcher, reqs []Request, opts RunOptions) *Result {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	results := make([]RegionResult, len(reqs))
	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}

	for i, req := range reqs {
		g.Go(func() error {
			rr := RegionResult{Region: req.Region}
			raw, err := f.Forecast(gctx, req.Region, req.Horizon)
			if err == nil {
				rr.Series, err = Normalize(raw)
			}
			if err != nil {
				rr.Err = fmt.Errorf("%s: %w", req.Region, err)
				log.WithError(err).WithField("region", req.Region).Warn("forecast failed")
			}
			results[i] = rr

			mu.Lock()
			done++
			if opts.OnProgress != nil {
				opts.OnProgress(done, len(reqs), req.Region)
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	res := &Result{Regions: results}
	if len(reqs) > 0 {
		res.Horizon = reqs[0].Horizon
	}
	return res
}

// StatisticsResult is the statistics lookup outcome for one region.
type StatisticsResult struct {
	Region string
	Stats  RegionStatistics
	Err    error
}

// LookupStatistics fetches statistics for every region concurrently,
// preserving the input order.
func LookupStatistics(ctx context.Context, f StatisticsFetcher, regions []string, concurrency int) []StatisticsResult {
	out := make([]StatisticsResult, len(regions))
	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, region := range regions {
		g.Go(func() error {
			st, err := f.RegionStatistics(gctx, region)
			if err != nil {
				err = fmt.Errorf("%s: %w", region, err)
			}
			out[i] = StatisticsResult{Region: region, Stats: st, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
