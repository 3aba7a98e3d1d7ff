package forecast

import (
	"fmt"
	"math"
	"time"
)

// Summary describes the forecast suffix of one series.
type Summary struct {
	StartValue  float64
	EndValue    float64
	TotalChange float64
	// PercentChange is nil when StartValue is zero.
	PercentChange *float64
	MaxValue      float64
	MinValue      float64
	PeriodCount   int
	StartAt       time.Time
	EndAt         time.Time
}

// Summarize computes summary statistics over the forecast suffix. ok is false
// when the series has no forecast points.
func Summarize(s Series) (sum Summary, ok bool) {
	fc := s.Forecast()
	if len(fc) == 0 {
		return Summary{}, false
	}

	first, last := fc[0], fc[len(fc)-1]
	sum = Summary{
		StartValue:  first.Value,
		EndValue:    last.Value,
		TotalChange: last.Value - first.Value,
		MaxValue:    math.Inf(-1),
		MinValue:    math.Inf(1),
		PeriodCount: len(fc),
		StartAt:     first.At,
		EndAt:       last.At,
	}
	if first.Value != 0 {
		// Divide by the magnitude so the sign always follows TotalChange.
		pct := sum.TotalChange / math.Abs(first.Value) * 100
		sum.PercentChange = &pct
	}
	for _, p := range fc {
		sum.MaxValue = math.Max(sum.MaxValue, p.Value)
		sum.MinValue = math.Min(sum.MinValue, p.Value)
	}
	return sum, true
}

// Thresholds are the percent-change cutoffs used to classify a trend.
type Thresholds struct {
	Positive float64
	Negative float64
}

// DefaultThresholds classifies changes beyond ±5% as a trend.
var DefaultThresholds = Thresholds{Positive: 5, Negative: -5}

// Trend is a coarse classification of a forecast's percent change.
type Trend int

const (
	TrendUndefined Trend = iota
	TrendNeutral
	TrendPositive
	TrendNegative
)

func (t Trend) String() string {
	switch t {
	case TrendPositive:
		return "positive"
	case TrendNegative:
		return "negative"
	case TrendNeutral:
		return "neutral"
	}
	return "undefined"
}

// Classify buckets a percent change against th. Bounds are exclusive.
func Classify(pct *float64, th Thresholds) Trend {
	switch {
	case pct == nil:
		return TrendUndefined
	case *pct > th.Positive:
		return TrendPositive
	case *pct < th.Negative:
		return TrendNegative
	default:
		return TrendNeutral
	}
}

// Insight is a one-line narrative for a region's forecast.
type Insight struct {
	Trend    Trend
	Headline string
	Detail   string
}

// Describe produces the narrative shown under the summary of a region.
func Describe(region string, sum Summary, th Thresholds) Insight {
	trend := Classify(sum.PercentChange, th)
	in := Insight{Trend: trend}
	switch trend {
	case TrendPositive:
		in.Headline = "Positive Trend"
		in.Detail = fmt.Sprintf("%s shows strong growth potential with %.1f%% expected increase over the forecast period.",
			region, *sum.PercentChange)
	case TrendNegative:
		in.Headline = "Declining Trend"
		in.Detail = fmt.Sprintf("%s shows a declining trend with %.1f%% expected decrease. Consider market conditions carefully.",
			region, math.Abs(*sum.PercentChange))
	case TrendNeutral:
		in.Headline = "Stable Market"
		in.Detail = fmt.Sprintf("%s shows relatively stable values with %.1f%% expected change.",
			region, *sum.PercentChange)
	default:
		in.Headline = "No Baseline"
		in.Detail = fmt.Sprintf("%s starts the forecast at zero, so a percent change cannot be computed.", region)
	}
	return in
}
