package source

import (
	"context"

	"github.com/theirongolddev/realtyai/internal/api"
	"github.com/theirongolddev/realtyai/internal/forecast"
)

// HTTP reads from the live prediction service.
type HTTP struct {
	client *api.Client
}

// NewHTTP wraps an API client.
func NewHTTP(c *api.Client) *HTTP { return &HTTP{client: c} }

func (h *HTTP) Kind() string { return KindHTTP }

func (h *HTTP) Name() string { return KindHTTP + " " + h.client.BaseURL() }

func (h *HTTP) Regions(ctx context.Context) ([]string, error) {
	return h.client.AvailableRegions(ctx)
}

// Forecast maps the service's column names onto the source-neutral shape.
func (h *HTTP) Forecast(ctx context.Context, region string, horizon int) (forecast.RawResponse, error) {
	resp, err := h.client.Forecast(ctx, api.ForecastRequest{Region: region, Horizon: horizon})
	if err != nil {
		return forecast.RawResponse{}, err
	}

	raw := forecast.RawResponse{
		Historical:     make([]forecast.RawPoint, len(resp.Historical)),
		Forecast:       make([]forecast.RawPoint, len(resp.Forecast)),
		TrainedThrough: resp.LastTrainingDate,
	}
	for i, r := range resp.Historical {
		raw.Historical[i] = forecast.RawPoint{Period: r.Month, Value: r.Price}
	}
	for i, r := range resp.Forecast {
		raw.Forecast[i] = forecast.RawPoint{
			Period: r.Month,
			Value:  r.Price,
			Lower:  r.LowerBound,
			Upper:  r.UpperBound,
		}
	}
	return raw, nil
}

func (h *HTTP) RegionStatistics(ctx context.Context, region string) (forecast.RegionStatistics, error) {
	resp, err := h.client.RegionStatistics(ctx, region)
	if err != nil {
		return forecast.RegionStatistics{}, err
	}
	st := forecast.RegionStatistics{
		Region:       resp.Region,
		TotalRecords: resp.TotalRecords,
		DateRange:    resp.DateRange,
		Latest:       resp.LatestZHVI,
		Mean:         resp.Mean,
		Std:          resp.Std,
		Min:          resp.Min,
		Max:          resp.Max,
	}
	if st.Region == "" {
		st.Region = region
	}
	return st, nil
}

func (h *HTTP) PredictPrice(ctx context.Context, req api.PriceRequest) (api.PriceResponse, error) {
	resp, err := h.client.PredictPrice(ctx, req)
	if err != nil {
		return api.PriceResponse{}, err
	}
	return *resp, nil
}
