// Package predict turns a property listing into a price prediction request and
// formats the predicted price.
package predict

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/theirongolddev/realtyai/internal/api"
)

const (
	DefaultBHK          = 2
	DefaultPricePerSqft = 5000
	UnknownCity         = "Unknown"

	MinArea  = 100
	MaxArea  = 10000
	MinBaths = 1
	MaxBaths = 10
)

var bhkPattern = regexp.MustCompile(`(?i)(\d+)\s*BHK`)

// ExtractBHK returns the bedroom count named in a listing title such as
// "3 BHK Flat", or 0 when the title does not name one.
func ExtractBHK(title string) int {
	m := bhkPattern.FindStringSubmatch(title)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// PropertyType is the coarse kind of listing.
type PropertyType string

const (
	IndependentHouse PropertyType = "Independent House"
	Flat             PropertyType = "Flat"
	Villa            PropertyType = "Villa"
	Other            PropertyType = "Other"
)

// ExtractPropertyType classifies a listing by keywords in its title.
func ExtractPropertyType(title string) PropertyType {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "independent house"):
		return IndependentHouse
	case strings.Contains(t, "flat"):
		return Flat
	case strings.Contains(t, "villa"):
		return Villa
	}
	return Other
}

// ExtractCity returns the last comma-separated part of a location.
func ExtractCity(location string) string {
	parts := strings.Split(location, ",")
	city := strings.TrimSpace(parts[len(parts)-1])
	if city == "" {
		return UnknownCity
	}
	return city
}

// FieldError reports an invalid form field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Message }

// Form is what the user enters to get a price prediction.
type Form struct {
	Title     string
	Location  string
	TotalArea float64
	Baths     int
	Balcony   bool
	// PricePerSqft overrides the configured default when > 0.
	PricePerSqft float64
}

// Validate checks required fields and ranges.
func (f Form) Validate() error {
	switch {
	case strings.TrimSpace(f.Title) == "":
		return &FieldError{Field: "title", Message: "property title is required"}
	case strings.TrimSpace(f.Location) == "":
		return &FieldError{Field: "location", Message: "location is required"}
	case f.TotalArea < MinArea || f.TotalArea > MaxArea:
		return &FieldError{Field: "area", Message: fmt.Sprintf("total area must be between %d and %d sq ft", MinArea, MaxArea)}
	case f.Baths < MinBaths || f.Baths > MaxBaths:
		return &FieldError{Field: "baths", Message: fmt.Sprintf("bathrooms must be between %d and %d", MinBaths, MaxBaths)}
	case f.PricePerSqft < 0:
		return &FieldError{Field: "price_per_sqft", Message: "price per sq ft cannot be negative"}
	}
	return nil
}

// Request validates the form and builds the service payload. defaultPPSF is
// used when the form does not set a price per square foot.
func (f Form) Request(defaultPPSF float64) (api.PriceRequest, error) {
	if err := f.Validate(); err != nil {
		return api.PriceRequest{}, err
	}
	bhk := ExtractBHK(f.Title)
	if bhk == 0 {
		bhk = DefaultBHK
	}
	ppsf := f.PricePerSqft
	if ppsf <= 0 {
		ppsf = defaultPPSF
	}
	if ppsf <= 0 {
		ppsf = DefaultPricePerSqft
	}
	return api.PriceRequest{
		Location:     strings.TrimSpace(f.Location),
		City:         ExtractCity(f.Location),
		BHK:          bhk,
		TotalArea:    f.TotalArea,
		PricePerSqft: ppsf,
		Bathroom:     f.Baths,
		Balcony:      f.Balcony,
	}, nil
}
