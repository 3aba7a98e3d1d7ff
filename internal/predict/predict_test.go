package predict

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/realtyai/internal/api"
)

func TestExtractBHK(t *testing.T) {
	tests := map[string]int{
		"3 BHK Flat for sale in Baner": 3,
		"2bhk apartment":               2,
		"Spacious 10 Bhk Villa":        10,
		"Independent House, no rooms":  0,
		"":                             0,
	}
	for title, want := range tests {
		assert.Equal(t, want, ExtractBHK(title), title)
	}
}

func TestExtractPropertyType(t *testing.T) {
	assert.Equal(t, IndependentHouse, ExtractPropertyType("4 BHK Independent House"))
	assert.Equal(t, Flat, ExtractPropertyType("2 BHK FLAT"))
	assert.Equal(t, Villa, ExtractPropertyType("Luxury villa"))
	assert.Equal(t, Other, ExtractPropertyType("Plot"))
}

func TestExtractCity(t *testing.T) {
	assert.Equal(t, "Pune", ExtractCity("Baner, Pune"))
	assert.Equal(t, "Mumbai", ExtractCity("Mumbai"))
	assert.Equal(t, UnknownCity, ExtractCity("Baner, "))
	assert.Equal(t, UnknownCity, ExtractCity(""))
}

func TestFormRequest(t *testing.T) {
	f := Form{Title: "Flat near metro", Location: " Wakad, Pune ", TotalArea: 950, Baths: 2, Balcony: true}
	req, err := f.Request(0)
	require.NoError(t, err)
	assert.Equal(t, DefaultBHK, req.BHK)
	assert.Equal(t, "Pune", req.City)
	assert.Equal(t, "Wakad, Pune", req.Location)
	assert.Equal(t, float64(DefaultPricePerSqft), req.PricePerSqft)
	assert.True(t, req.Balcony)

	req, err = f.Request(7200)
	require.NoError(t, err)
	assert.Equal(t, 7200.0, req.PricePerSqft)

	f.PricePerSqft = 6100
	f.Title = "3 BHK Flat"
	req, err = f.Request(7200)
	require.NoError(t, err)
	assert.Equal(t, 6100.0, req.PricePerSqft)
	assert.Equal(t, 3, req.BHK)
}

func TestFormValidate(t *testing.T) {
	ok := Form{Title: "x", Location: "y", TotalArea: 100, Baths: 1}
	require.NoError(t, ok.Validate())

	tests := []struct {
		mutate func(*Form)
		field  string
	}{
		{func(f *Form) { f.Title = " " }, "title"},
		{func(f *Form) { f.Location = "" }, "location"},
		{func(f *Form) { f.TotalArea = 99 }, "area"},
		{func(f *Form) { f.TotalArea = 10001 }, "area"},
		{func(f *Form) { f.Baths = 0 }, "baths"},
		{func(f *Form) { f.Baths = 11 }, "baths"},
		{func(f *Form) { f.PricePerSqft = -1 }, "price_per_sqft"},
	}
	for _, tt := range tests {
		f := ok
		tt.mutate(&f)
		_, err := f.Request(0)
		var fe *FieldError
		require.True(t, errors.As(err, &fe), tt.field)
		assert.Equal(t, tt.field, fe.Field)
	}
}

func TestPriceConversions(t *testing.T) {
	p := PriceFromLakhs(85.5)
	assert.True(t, p.Crores().Equal(decimal.RequireFromString("0.855")))
	assert.True(t, p.Rupees().Equal(decimal.NewFromInt(8_550_000)))
	assert.True(t, p.USD(80).Equal(decimal.RequireFromString("106875")))
	assert.True(t, p.USD(0).Equal(p.USD(DefaultUSDToINR)))
}

func TestFormatINR(t *testing.T) {
	assert.Equal(t, "₹85.50 L", FormatINR(PriceFromLakhs(85.5).Rupees()))
	assert.Equal(t, "₹1.25 Cr", FormatINR(PriceFromLakhs(125).Rupees()))
	assert.Equal(t, "₹1,250.00 Cr", FormatINR(PriceFromLakhs(125000).Rupees()))
	assert.Equal(t, "₹99,999", FormatINR(decimal.NewFromInt(99_999)))
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$106,875", FormatUSD(decimal.NewFromInt(106_875)))
	assert.Equal(t, "$2.50 M", FormatUSD(decimal.NewFromInt(2_500_000)))
	assert.Equal(t, "$1.20 Bn", FormatUSD(decimal.NewFromInt(1_200_000_000)))
}

type stubPredictor struct {
	got   *api.PriceRequest
	resp  api.PriceResponse
	err   error
	calls int
}

func (s *stubPredictor) PredictPrice(_ context.Context, req api.PriceRequest) (api.PriceResponse, error) {
	s.calls++
	s.got = &req
	return s.resp, s.err
}

func TestEstimate(t *testing.T) {
	p := &stubPredictor{resp: api.PriceResponse{PredictedPrice: 85.5}}
	form := Form{Title: "3 BHK Flat", Location: "Baner, Pune", TotalArea: 1200, Baths: 2, Balcony: true}

	got, err := Estimate(t.Context(), p, form, 6000)
	require.NoError(t, err)
	require.NotNil(t, p.got)
	assert.Equal(t, 3, p.got.BHK)
	assert.Equal(t, 6000.0, p.got.PricePerSqft)
	assert.Equal(t, "Pune", got.City)
	assert.Equal(t, string(Flat), got.PropertyType)
	assert.Equal(t, 85.5, got.PriceLakhs)
	assert.InDelta(t, 0.855, got.PriceCrores, 1e-9)
}

func TestEstimateInvalidFormSendsNothing(t *testing.T) {
	p := &stubPredictor{}
	_, err := Estimate(t.Context(), p, Form{Location: "Pune", TotalArea: 1000, Baths: 1}, 0)
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "title", fe.Field)
	assert.Zero(t, p.calls)
}

func TestEstimatePassesServiceError(t *testing.T) {
	p := &stubPredictor{err: &api.APIError{StatusCode: 500, Detail: "model not loaded"}}
	_, err := Estimate(t.Context(), p, Form{Title: "Flat", Location: "Pune", TotalArea: 1000, Baths: 1}, 0)
	require.Error(t, err)
	assert.Equal(t, "model not loaded", err.Error())
}
