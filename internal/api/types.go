package api

// RegionsResponse is the body of GET /available_regions.
type RegionsResponse struct {
	Regions []string `json:"regions"`
}

// ForecastRequest is the body of POST /forecast.
type ForecastRequest struct {
	Region  string `json:"region"`
	Horizon int    `json:"horizon"`
}

// HistoricalRecord is one observed month.
type HistoricalRecord struct {
	Month string  `json:"Month"`
	Price float64 `json:"Historical Price"`
}

// ForecastRecord is one predicted month with its confidence band.
type ForecastRecord struct {
	Month      string   `json:"Month"`
	Price      float64  `json:"Forecasted Price"`
	LowerBound *float64 `json:"Lower Bound,omitempty"`
	UpperBound *float64 `json:"Upper Bound,omitempty"`
}

// ForecastResponse is the body of a successful POST /forecast.
type ForecastResponse struct {
	Historical       []HistoricalRecord `json:"historical"`
	Forecast         []ForecastRecord   `json:"forecast"`
	LastTrainingDate string             `json:"last_training_date,omitempty"`
}

// PriceRequest is the body of POST /predict_price. Field names follow the
// model's training columns.
type PriceRequest struct {
	Location     string  `json:"Location"`
	City         string  `json:"City"`
	BHK          int     `json:"BHK"`
	TotalArea    float64 `json:"Total_Area"`
	PricePerSqft float64 `json:"Price_per_SQFT"`
	Bathroom     int     `json:"Bathroom"`
	Balcony      bool    `json:"Balcony"`
}

// PriceResponse is the body of a successful POST /predict_price. The price is
// in lakhs of rupees.
type PriceResponse struct {
	PropertyData         *PriceRequest `json:"property_data,omitempty"`
	PredictedPrice       float64       `json:"predicted_price"`
	PredictedPriceCrores float64       `json:"predicted_price_crores"`
}

// StatisticsRequest is the body of POST /region_statistics.
type StatisticsRequest struct {
	Region string `json:"region"`
}

// StatisticsResponse is the body of a successful POST /region_statistics.
type StatisticsResponse struct {
	Region       string   `json:"region"`
	TotalRecords int      `json:"total_records"`
	DateRange    string   `json:"date_range"`
	LatestZHVI   *float64 `json:"latest_zhvi"`
	Mean         float64  `json:"zhvi_mean"`
	Std          float64  `json:"zhvi_std"`
	Min          float64  `json:"zhvi_min"`
	Max          float64  `json:"zhvi_max"`
}

// errorBody is the error payload the service returns on non-2xx responses.
type errorBody struct {
	Detail any `json:"detail"`
}
