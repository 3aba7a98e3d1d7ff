package source

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"math/rand"
	"slices"
	"time"

	"github.com/theirongolddev/realtyai/internal/api"
	"github.com/theirongolddev/realtyai/internal/forecast"
	"github.com/theirongolddev/realtyai/internal/predict"
	"github.com/theirongolddev/realtyai/internal/region"
)

// ErrRegionNotFound is returned for regions outside the synthetic catalog. The
// text matches the live service's 404 detail.
var ErrRegionNotFound = errors.New("Region not found") //nolint:staticcheck

const (
	defaultHistoryMonths = 24
	periodLayout         = "2006-01-02"
)

// Synthetic generates placeholder forecasts with a seeded random walk. The
// same seed, region and clock always produce the same series.
type Synthetic struct {
	Seed          int64
	HistoryMonths int
	Catalog       []string
	Now           func() time.Time
}

// NewSynthetic returns a generator over the built-in state catalog.
func NewSynthetic(seed int64) *Synthetic {
	return &Synthetic{
		Seed:          seed,
		HistoryMonths: defaultHistoryMonths,
		Catalog:       region.DefaultStates,
		Now:           time.Now,
	}
}

func (s *Synthetic) Kind() string { return KindSynthetic }

func (s *Synthetic) Name() string { return KindSynthetic }

func (s *Synthetic) Regions(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(s.Catalog), nil
}

func (s *Synthetic) Forecast(ctx context.Context, name string, horizon int) (forecast.RawResponse, error) {
	if err := ctx.Err(); err != nil {
		return forecast.RawResponse{}, err
	}
	if !slices.Contains(s.Catalog, name) {
		return forecast.RawResponse{}, ErrRegionNotFound
	}
	if err := forecast.ValidateHorizon(horizon); err != nil {
		return forecast.RawResponse{}, err
	}

	hist := s.history()
	rng := s.rng(name)
	values := walk(rng, hist+horizon)
	anchor := monthEnd(s.Now(), 0)

	raw := forecast.RawResponse{
		Historical:     make([]forecast.RawPoint, hist),
		Forecast:       make([]forecast.RawPoint, horizon),
		TrainedThrough: anchor.Format(periodLayout),
	}
	for i := 0; i < hist; i++ {
		raw.Historical[i] = forecast.RawPoint{
			Period: monthEnd(anchor, i-hist+1).Format(periodLayout),
			Value:  values[i],
		}
	}
	for i := 0; i < horizon; i++ {
		v := values[hist+i]
		spread := v*0.1 + rng.Float64()*20000
		lower := math.Max(0, v-spread)
		upper := v + spread
		raw.Forecast[i] = forecast.RawPoint{
			Period: monthEnd(anchor, i+1).Format(periodLayout),
			Value:  v,
			Lower:  &lower,
			Upper:  &upper,
		}
	}
	return raw, nil
}

// RegionStatistics describes the region's synthetic history.
func (s *Synthetic) RegionStatistics(ctx context.Context, name string) (forecast.RegionStatistics, error) {
	if err := ctx.Err(); err != nil {
		return forecast.RegionStatistics{}, err
	}
	if !slices.Contains(s.Catalog, name) {
		return forecast.RegionStatistics{}, ErrRegionNotFound
	}

	hist := s.history()
	values := walk(s.rng(name), hist)
	anchor := monthEnd(s.Now(), 0)

	st := forecast.RegionStatistics{
		Region:       name,
		TotalRecords: hist,
		DateRange:    monthEnd(anchor, 1-hist).Format(periodLayout) + " to " + anchor.Format(periodLayout),
		Min:          math.Inf(1),
		Max:          math.Inf(-1),
	}
	latest := values[len(values)-1]
	st.Latest = &latest

	var sum float64
	for _, v := range values {
		sum += v
		st.Min = math.Min(st.Min, v)
		st.Max = math.Max(st.Max, v)
	}
	st.Mean = sum / float64(len(values))
	var sq float64
	for _, v := range values {
		sq += (v - st.Mean) * (v - st.Mean)
	}
	if len(values) > 1 {
		st.Std = math.Sqrt(sq / float64(len(values)-1))
	}
	return st, nil
}

// PredictPrice estimates a price from area and rate with small adjustments for
// rooms and amenities. The result is in lakhs.
func (s *Synthetic) PredictPrice(ctx context.Context, req api.PriceRequest) (api.PriceResponse, error) {
	if err := ctx.Err(); err != nil {
		return api.PriceResponse{}, err
	}
	lakhs := req.TotalArea * req.PricePerSqft / 100_000
	lakhs *= 1 + 0.05*float64(req.BHK-predict.DefaultBHK)
	lakhs *= 1 + 0.02*float64(max(req.Bathroom-1, 0))
	if req.Balcony {
		lakhs *= 1.03
	}
	lakhs = math.Round(math.Max(lakhs, 0)*100) / 100

	price := predict.PriceFromLakhs(lakhs)
	return api.PriceResponse{
		PredictedPrice:       lakhs,
		PredictedPriceCrores: price.Crores().InexactFloat64(),
	}, nil
}

func (s *Synthetic) history() int {
	if s.HistoryMonths > 0 {
		return s.HistoryMonths
	}
	return defaultHistoryMonths
}

func (s *Synthetic) rng(name string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return rand.New(rand.NewSource(s.Seed ^ int64(h.Sum64())))
}

// walk produces n monthly values: a drifting walk with seasonality and noise,
// floored at 50,000.
func walk(rng *rand.Rand, n int) []float64 {
	const (
		volatility = 0.02
		floor      = 50_000
	)
	base := 200_000 + rng.Float64()*300_000
	drift := (rng.Float64() - 0.5) * 0.01

	out := make([]float64, n)
	v := base
	for i := range out {
		v *= 1 + drift + (rng.Float64()-0.5)*volatility
		seasonal := math.Sin(float64(i)*math.Pi/6) * 5_000
		noise := (rng.Float64() - 0.5) * 10_000
		out[i] = math.Max(floor, v+seasonal+noise)
	}
	return out
}

// monthEnd returns the last day of the month offset months after t's month.
func monthEnd(t time.Time, offset int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, offset+1, -1)
}
