// Package forecast builds forecast requests, normalizes the responses into
// ordered series, and derives summary statistics from them.
package forecast

import "time"

// PointKind marks which partition of a series a point belongs to.
type PointKind uint8

const (
	Historical PointKind = iota + 1
	Forecasted
)

func (k PointKind) String() string {
	switch k {
	case Historical:
		return "historical"
	case Forecasted:
		return "forecast"
	default:
		return "unknown"
	}
}

// Point is one period of a normalized series. Bounds are only ever set on
// forecast points.
type Point struct {
	At    time.Time
	Label string
	Value float64
	Lower *float64
	Upper *float64
	Kind  PointKind
}

func (p Point) IsHistorical() bool { return p.Kind == Historical }
func (p Point) IsForecast() bool   { return p.Kind == Forecasted }

// HasBounds reports whether both confidence bounds are present.
func (p Point) HasBounds() bool { return p.Lower != nil && p.Upper != nil }

// Series is the historical prefix followed by the forecast suffix.
type Series []Point

// Historical returns the historical prefix.
func (s Series) Historical() Series {
	return s[:s.forecastStart()]
}

// Forecast returns the forecast suffix, starting at the first forecast point.
func (s Series) Forecast() Series {
	return s[s.forecastStart():]
}

// forecastStart returns the index of the first forecast point, or len(s).
func (s Series) forecastStart() int {
	for i, p := range s {
		if p.IsForecast() {
			return i
		}
	}
	return len(s)
}

// Values returns the point values in order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// RegionSeries tags a series with the region it was requested for.
type RegionSeries struct {
	Region string
	Series Series
}

// RawPoint is a source-neutral record before normalization. Each data source
// maps its own field names into this shape.
type RawPoint struct {
	Period string
	Value  float64
	Lower  *float64
	Upper  *float64
}

// RawResponse is what a data source returns for one region.
type RawResponse struct {
	Historical []RawPoint
	Forecast   []RawPoint
	// TrainedThrough is the last date the model saw, when the source reports it.
	TrainedThrough string
}

// RegionStatistics is descriptive data for one region, passed through for
// display only.
type RegionStatistics struct {
	Region       string
	TotalRecords int
	DateRange    string
	Latest       *float64
	Mean         float64
	Std          float64
	Min          float64
	Max          float64
}
