package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/realtyai/internal/api"
	"github.com/theirongolddev/realtyai/internal/config"
	"github.com/theirongolddev/realtyai/internal/forecast"
)

func fixedSynthetic() *Synthetic {
	s := NewSynthetic(42)
	s.Now = func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestSyntheticForecastShape(t *testing.T) {
	s := fixedSynthetic()
	raw, err := s.Forecast(context.Background(), "Texas", 12)
	require.NoError(t, err)
	require.Len(t, raw.Historical, defaultHistoryMonths)
	require.Len(t, raw.Forecast, 12)
	assert.Equal(t, "2024-06-30", raw.Historical[len(raw.Historical)-1].Period)
	assert.Equal(t, "2024-07-31", raw.Forecast[0].Period)
	assert.Equal(t, "2025-06-30", raw.Forecast[11].Period)

	for _, p := range raw.Forecast {
		require.NotNil(t, p.Lower)
		require.NotNil(t, p.Upper)
		assert.GreaterOrEqual(t, *p.Lower, 0.0)
		assert.LessOrEqual(t, *p.Lower, p.Value)
		assert.GreaterOrEqual(t, *p.Upper, p.Value)
	}
	for _, p := range raw.Historical {
		assert.Nil(t, p.Lower)
		assert.GreaterOrEqual(t, p.Value, 50_000.0)
	}

	series, err := forecast.Normalize(raw)
	require.NoError(t, err)
	assert.Len(t, series.Forecast(), 12)
}

func TestSyntheticDeterministic(t *testing.T) {
	a, err := fixedSynthetic().Forecast(context.Background(), "Ohio", 6)
	require.NoError(t, err)
	b, err := fixedSynthetic().Forecast(context.Background(), "Ohio", 6)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := fixedSynthetic().Forecast(context.Background(), "Utah", 6)
	require.NoError(t, err)
	assert.NotEqual(t, a.Historical[0].Value, c.Historical[0].Value)
}

func TestSyntheticStatisticsMatchHistory(t *testing.T) {
	s := fixedSynthetic()
	raw, err := s.Forecast(context.Background(), "Maine", 3)
	require.NoError(t, err)
	st, err := s.RegionStatistics(context.Background(), "Maine")
	require.NoError(t, err)

	assert.Equal(t, defaultHistoryMonths, st.TotalRecords)
	assert.Equal(t, "2022-07-31 to 2024-06-30", st.DateRange)
	require.NotNil(t, st.Latest)
	assert.Equal(t, raw.Historical[len(raw.Historical)-1].Value, *st.Latest)
	assert.LessOrEqual(t, st.Min, st.Mean)
	assert.GreaterOrEqual(t, st.Max, st.Mean)
	assert.Greater(t, st.Std, 0.0)
}

func TestSyntheticUnknownRegion(t *testing.T) {
	s := fixedSynthetic()
	_, err := s.Forecast(context.Background(), "Atlantis", 12)
	assert.ErrorIs(t, err, ErrRegionNotFound)
	_, err = s.RegionStatistics(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, ErrRegionNotFound)

	_, err = s.Forecast(context.Background(), "Texas", 0)
	assert.True(t, forecast.IsValidation(err))
}

func TestSyntheticPredictPrice(t *testing.T) {
	s := fixedSynthetic()
	resp, err := s.PredictPrice(context.Background(), api.PriceRequest{
		TotalArea: 1000, PricePerSqft: 5000, BHK: 2, Bathroom: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 50.0, resp.PredictedPrice)
	assert.Equal(t, 0.5, resp.PredictedPriceCrores)
}

func TestHTTPSourceMapsColumns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/forecast":
			_, _ = w.Write([]byte(`{"historical":[{"Month":"2024-01-31","Historical Price":10}],
				"forecast":[{"Month":"2024-02-29","Forecasted Price":11,"Lower Bound":9,"Upper Bound":13}]}`))
		case "/region_statistics":
			_, _ = w.Write([]byte(`{"total_records":5,"date_range":"2020-01-31 to 2020-05-31","latest_zhvi":null,"zhvi_mean":3}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client, err := api.NewClient(api.Options{BaseURL: srv.URL})
	require.NoError(t, err)
	h := NewHTTP(client)

	raw, err := h.Forecast(context.Background(), "Texas", 1)
	require.NoError(t, err)
	require.Len(t, raw.Forecast, 1)
	assert.Equal(t, 11.0, raw.Forecast[0].Value)
	assert.Equal(t, 13.0, *raw.Forecast[0].Upper)
	assert.Equal(t, "2024-01-31", raw.Historical[0].Period)

	st, err := h.RegionStatistics(context.Background(), "Texas")
	require.NoError(t, err)
	assert.Equal(t, "Texas", st.Region)
	assert.Nil(t, st.Latest)
	assert.Equal(t, 3.0, st.Mean)

	_, err = h.Regions(context.Background())
	assert.EqualError(t, err, "Error: 404")
}

func TestNewSelectsSource(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Source.Kind = KindSynthetic
	src, err := New(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, KindSynthetic, src.Name())

	cfg.Source.Kind = KindHTTP
	src, err = New(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &HTTP{}, src)

	cfg.Source.Kind = "carrier-pigeon"
	_, err = New(cfg, nil)
	assert.Error(t, err)
}
