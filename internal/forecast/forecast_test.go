package forecast

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }

func monthly(start string, values ...float64) []RawPoint {
	t, err := time.Parse("2006-01-02", start)
	if err != nil {
		panic(err)
	}
	out := make([]RawPoint, len(values))
	for i, v := range values {
		out[i] = RawPoint{Period: t.AddDate(0, i, 0).Format("2006-01-02"), Value: v}
	}
	return out
}

func withBounds(pts []RawPoint, spread float64) []RawPoint {
	for i := range pts {
		pts[i].Lower = fp(pts[i].Value - spread)
		pts[i].Upper = fp(pts[i].Value + spread)
	}
	return pts
}

func TestBuildRequests(t *testing.T) {
	t.Run("empty selection issues nothing", func(t *testing.T) {
		reqs, err := BuildRequests(nil, 12, ModeComparison)
		assert.Nil(t, reqs)
		require.ErrorIs(t, err, ErrNoRegions)
		assert.True(t, IsValidation(err))
		assert.Equal(t, "Please select at least one region", err.Error())
	})

	t.Run("single mode uses the first region", func(t *testing.T) {
		reqs, err := BuildRequests([]string{"Texas", "Ohio"}, 6, ModeSingle)
		require.NoError(t, err)
		assert.Equal(t, []Request{{Region: "Texas", Horizon: 6}}, reqs)
	})

	t.Run("comparison mode keeps selection order", func(t *testing.T) {
		reqs, err := BuildRequests([]string{"Ohio", "Texas", "Maine"}, 36, ModeComparison)
		require.NoError(t, err)
		require.Len(t, reqs, 3)
		assert.Equal(t, "Ohio", reqs[0].Region)
		assert.Equal(t, "Maine", reqs[2].Region)
	})

	t.Run("statistics mode issues no forecasts", func(t *testing.T) {
		reqs, err := BuildRequests([]string{"Ohio"}, 12, ModeStatistics)
		require.NoError(t, err)
		assert.Empty(t, reqs)
	})

	for _, h := range []int{0, -1, 37} {
		_, err := BuildRequests([]string{"Ohio"}, h, ModeSingle)
		assert.True(t, IsValidation(err), "horizon %d", h)
	}
}

func TestParseModeAndNext(t *testing.T) {
	m, err := ParseMode(" Comparison ")
	require.NoError(t, err)
	assert.Equal(t, ModeComparison, m)
	_, err = ParseMode("bogus")
	assert.Error(t, err)

	assert.Equal(t, ModeComparison, ModeSingle.Next())
	assert.Equal(t, ModeSingle, ModeStatistics.Next())
}

func TestNormalize(t *testing.T) {
	raw := RawResponse{
		Historical: monthly("2023-01-31", 100, 110),
		Forecast:   withBounds(monthly("2023-03-31", 120, 130), 5),
	}
	s, err := Normalize(raw)
	require.NoError(t, err)
	require.Len(t, s, 4)

	assert.True(t, s[0].IsHistorical())
	assert.False(t, s[0].IsForecast())
	assert.Nil(t, s[1].Lower)
	assert.True(t, s[2].IsForecast())
	require.True(t, s[3].HasBounds())
	assert.Equal(t, 125.0, *s[3].Lower)

	assert.Len(t, s.Historical(), 2)
	assert.Len(t, s.Forecast(), 2)
	assert.Equal(t, s, append(append(Series{}, s.Historical()...), s.Forecast()...))
}

func TestNormalizeRejectsDisorder(t *testing.T) {
	raw := RawResponse{
		Historical: monthly("2023-01-31", 100, 110),
		Forecast:   monthly("2023-01-31", 120),
	}
	_, err := Normalize(raw)
	assert.ErrorIs(t, err, ErrUnordered)

	_, err = Normalize(RawResponse{Historical: []RawPoint{{Period: "yesterday"}}})
	assert.Error(t, err)
}

func TestParsePeriodLayouts(t *testing.T) {
	for _, s := range []string{"2024-01-31", "2024-01-31T00:00:00", "2024-01-31 00:00:00", "2024-01-31T00:00:00Z"} {
		got, err := ParsePeriod(s)
		require.NoError(t, err, s)
		assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), got, s)
	}
}

func TestMergeAxis(t *testing.T) {
	a, err := Normalize(RawResponse{
		Historical: monthly("2023-01-31", 1, 2),
		Forecast:   monthly("2023-03-31", 3),
	})
	require.NoError(t, err)
	b, err := Normalize(RawResponse{
		Historical: monthly("2023-02-28", 20),
		Forecast:   monthly("2023-03-31", 30, 40),
	})
	require.NoError(t, err)

	axis := MergeAxis([]RegionSeries{{Region: "A", Series: a}, {Region: "B", Series: b}})
	assert.Equal(t, []string{"A", "B"}, axis.Regions)
	require.Len(t, axis.Rows, 5)

	for i := 1; i < len(axis.Rows); i++ {
		assert.True(t, axis.Rows[i].At.After(axis.Rows[i-1].At))
	}

	// Jan: A historical only; B missing, not zero.
	assert.Equal(t, Value{V: 1, Valid: true}, axis.Rows[0].Historical[0])
	assert.False(t, axis.Rows[0].Historical[1].Valid)
	assert.False(t, axis.Rows[0].Forecast[1].Valid)

	// Mar: both forecast.
	assert.Equal(t, 3.0, axis.Rows[2].Forecast[0].V)
	assert.Equal(t, 30.0, axis.Rows[2].Forecast[1].V)
	assert.False(t, axis.Rows[2].Historical[0].Valid)

	col, ok := axis.Column("B")
	require.True(t, ok)
	assert.False(t, col[0].Valid)
	assert.Equal(t, 40.0, col[4].V)

	_, ok = axis.Column("C")
	assert.False(t, ok)
}

func TestSummarize(t *testing.T) {
	s, err := Normalize(RawResponse{
		Historical: monthly("2023-01-31", 999, 1),
		Forecast:   monthly("2023-03-31", 200, 180, 260, 220),
	})
	require.NoError(t, err)

	sum, ok := Summarize(s)
	require.True(t, ok)
	assert.Equal(t, 200.0, sum.StartValue)
	assert.Equal(t, 220.0, sum.EndValue)
	assert.Equal(t, 20.0, sum.TotalChange)
	require.NotNil(t, sum.PercentChange)
	assert.InDelta(t, 10.0, *sum.PercentChange, 1e-9)
	assert.Equal(t, 260.0, sum.MaxValue)
	assert.Equal(t, 180.0, sum.MinValue)
	assert.Equal(t, 4, sum.PeriodCount)
	assert.Equal(t, 2023, sum.StartAt.Year())
}

func TestSummarizeEdgeCases(t *testing.T) {
	_, ok := Summarize(Series{})
	assert.False(t, ok)

	histOnly, err := Normalize(RawResponse{Historical: monthly("2023-01-31", 1, 2)})
	require.NoError(t, err)
	_, ok = Summarize(histOnly)
	assert.False(t, ok)

	zero, err := Normalize(RawResponse{Forecast: monthly("2023-01-31", 0, 50)})
	require.NoError(t, err)
	sum, ok := Summarize(zero)
	require.True(t, ok)
	assert.Nil(t, sum.PercentChange)
	assert.Equal(t, 50.0, sum.TotalChange)
	assert.Equal(t, TrendUndefined, Classify(sum.PercentChange, DefaultThresholds))

	one, err := Normalize(RawResponse{Forecast: monthly("2023-01-31", 7)})
	require.NoError(t, err)
	sum, ok = Summarize(one)
	require.True(t, ok)
	assert.Equal(t, 1, sum.PeriodCount)
	assert.Equal(t, 0.0, sum.TotalChange)
	assert.Equal(t, 0.0, *sum.PercentChange)
}

func TestSummarizeTwelveMonthHorizon(t *testing.T) {
	reqs, err := BuildRequests([]string{"California"}, 12, ModeSingle)
	require.NoError(t, err)
	require.Equal(t, []Request{{Region: "California", Horizon: 12}}, reqs)

	values := make([]float64, reqs[0].Horizon)
	for i := range values {
		values[i] = 700000 + float64(i)*1500
	}
	s, err := Normalize(RawResponse{
		Historical: monthly("2023-01-31", 680000, 690000),
		Forecast:   withBounds(monthly("2023-03-31", values...), 20000),
	})
	require.NoError(t, err)

	sum, ok := Summarize(s)
	require.True(t, ok)
	assert.Equal(t, 12, sum.PeriodCount)
	assert.Equal(t, 700000.0, sum.StartValue)
	assert.Equal(t, 716500.0, sum.EndValue)
}

func TestPercentChangeFollowsTotalChange(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   int
	}{
		{"rising", []float64{100, 90, 130}, 1},
		{"falling", []float64{250, 300, 200}, -1},
		{"flat", []float64{80, 120, 80}, 0},
		{"negative start rising", []float64{-50, -20}, 1},
		{"small drop", []float64{1000, 999.5}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Normalize(RawResponse{Forecast: monthly("2024-01-31", tt.values...)})
			require.NoError(t, err)
			sum, ok := Summarize(s)
			require.True(t, ok)
			require.NotNil(t, sum.PercentChange)
			assert.Equal(t, tt.want, sign(sum.TotalChange))
			assert.Equal(t, sign(sum.TotalChange), sign(*sum.PercentChange))
		})
	}
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func TestClassify(t *testing.T) {
	tests := []struct {
		pct  float64
		want Trend
	}{
		{5.01, TrendPositive},
		{5, TrendNeutral},
		{0, TrendNeutral},
		{-5, TrendNeutral},
		{-5.01, TrendNegative},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(fp(tt.pct), DefaultThresholds), "pct=%v", tt.pct)
	}

	custom := Thresholds{Positive: 2, Negative: -1}
	assert.Equal(t, TrendPositive, Classify(fp(3), custom))
	assert.Equal(t, TrendNegative, Classify(fp(-1.5), custom))
}

func TestDescribe(t *testing.T) {
	in := Describe("Texas", Summary{PercentChange: fp(12.34)}, DefaultThresholds)
	assert.Equal(t, TrendPositive, in.Trend)
	assert.Equal(t, "Positive Trend", in.Headline)
	assert.Contains(t, in.Detail, "12.3% expected increase")

	in = Describe("Ohio", Summary{PercentChange: fp(-8)}, DefaultThresholds)
	assert.Equal(t, "Declining Trend", in.Headline)
	assert.Contains(t, in.Detail, "8.0% expected decrease")

	in = Describe("Ohio", Summary{}, DefaultThresholds)
	assert.Equal(t, TrendUndefined, in.Trend)
}

type fakeFetcher struct {
	fail  map[string]error
	calls atomic.Int32
}

func (f *fakeFetcher) Forecast(_ context.Context, region string, horizon int) (RawResponse, error) {
	f.calls.Add(1)
	if err := f.fail[region]; err != nil {
		return RawResponse{}, err
	}
	fc := make([]float64, horizon)
	for i := range fc {
		fc[i] = float64(100 + i)
	}
	return RawResponse{
		Historical: monthly("2023-01-31", 90, 95),
		Forecast:   withBounds(monthly("2023-03-31", fc...), 1),
	}, nil
}

func (f *fakeFetcher) RegionStatistics(_ context.Context, region string) (RegionStatistics, error) {
	if err := f.fail[region]; err != nil {
		return RegionStatistics{}, err
	}
	return RegionStatistics{Region: region, TotalRecords: 10}, nil
}

func TestRunPartialFailure(t *testing.T) {
	boom := errors.New("Region not found")
	f := &fakeFetcher{fail: map[string]error{"Atlantis": boom}}
	reqs, err := BuildRequests([]string{"Texas", "Atlantis", "Ohio"}, 3, ModeComparison)
	require.NoError(t, err)

	var progress []int
	res := Run(context.Background(), f, reqs, RunOptions{
		Concurrency: 2,
		OnProgress:  func(done, total int, _ string) { progress = append(progress, done) },
	})

	assert.EqualValues(t, 3, f.calls.Load())
	require.Len(t, res.Regions, 3)
	assert.Equal(t, "Texas", res.Regions[0].Region)
	assert.Equal(t, "Atlantis", res.Regions[1].Region)
	assert.ErrorIs(t, res.Regions[1].Err, boom)
	assert.Contains(t, res.Regions[1].Err.Error(), "Atlantis")

	ok := res.Succeeded()
	require.Len(t, ok, 2)
	assert.Equal(t, "Ohio", ok[1].Region)
	assert.Len(t, ok[0].Series.Forecast(), 3)
	assert.Len(t, res.Failed(), 1)
	assert.Equal(t, []int{1, 2, 3}, progress)
	assert.Equal(t, 3, res.Horizon)

	axis := res.Axis()
	assert.Equal(t, []string{"Texas", "Ohio"}, axis.Regions)
}

func TestLookupStatistics(t *testing.T) {
	f := &fakeFetcher{fail: map[string]error{"B": errors.New("nope")}}
	out := LookupStatistics(context.Background(), f, []string{"A", "B", "C"}, 0)
	require.Len(t, out, 3)
	assert.NoError(t, out[0].Err)
	assert.Equal(t, 10, out[2].Stats.TotalRecords)
	assert.Error(t, out[1].Err)
}

func TestTrailingAverage(t *testing.T) {
	s, err := Normalize(RawResponse{
		Historical: monthly("2023-01-31", 1, 2, 3, 4),
		Forecast:   monthly("2023-05-31", 100),
	})
	require.NoError(t, err)

	avg := TrailingAverage(s, 2)
	require.Len(t, avg, 4)
	assert.False(t, avg[0].Valid)
	assert.InDelta(t, 1.5, avg[1].V, 1e-9)
	assert.InDelta(t, 3.5, avg[3].V, 1e-9)

	assert.Nil(t, TrailingAverage(s, 5))
}
