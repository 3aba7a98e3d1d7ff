package predict

import (
	"context"

	"github.com/theirongolddev/realtyai/internal/api"
	"github.com/theirongolddev/realtyai/internal/model"
)

// Predictor prices a property.
type Predictor interface {
	PredictPrice(ctx context.Context, req api.PriceRequest) (api.PriceResponse, error)
}

// Estimate validates f, asks p for a price and returns the record to keep in
// history. Nothing is sent when the form is invalid.
func Estimate(ctx context.Context, p Predictor, f Form, defaultPPSF float64) (model.Prediction, error) {
	req, err := f.Request(defaultPPSF)
	if err != nil {
		return model.Prediction{}, err
	}
	resp, err := p.PredictPrice(ctx, req)
	if err != nil {
		return model.Prediction{}, err
	}

	crores := resp.PredictedPriceCrores
	if crores == 0 && resp.PredictedPrice != 0 {
		crores, _ = PriceFromLakhs(resp.PredictedPrice).Crores().Float64()
	}

	return model.Prediction{
		Title:        f.Title,
		PropertyType: string(ExtractPropertyType(f.Title)),
		Location:     req.Location,
		City:         req.City,
		BHK:          req.BHK,
		TotalArea:    req.TotalArea,
		PricePerSqft: req.PricePerSqft,
		Bathroom:     req.Bathroom,
		Balcony:      req.Balcony,
		PriceLakhs:   resp.PredictedPrice,
		PriceCrores:  crores,
	}, nil
}
