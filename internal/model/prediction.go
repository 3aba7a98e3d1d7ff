// Package model defines domain types shared by the store, CLI and TUI.
package model

import "time"

// Prediction is one completed price prediction as kept in local history.
type Prediction struct {
	ID           string
	CreatedAt    time.Time
	Source       string
	Title        string
	PropertyType string
	Location     string
	City         string
	BHK          int
	TotalArea    float64
	PricePerSqft float64
	Bathroom     int
	Balcony      bool
	// PriceLakhs is the model output; PriceCrores is the same value in crores.
	PriceLakhs  float64
	PriceCrores float64
}

// PredictionStats summarizes the prediction history.
type PredictionStats struct {
	Count     int
	MinLakhs  float64
	MaxLakhs  float64
	MeanLakhs float64
	Cities    int
	Latest    time.Time
}
