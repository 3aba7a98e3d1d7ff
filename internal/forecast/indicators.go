package forecast

import (
	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
)

// TrailingAverage returns the simple moving average of the historical values
// over window periods, aligned to the historical points it ends on. The first
// window-1 entries are invalid. Returns nil when there is not enough history.
func TrailingAverage(s Series, window int) []Value {
	hist := s.Historical()
	if window < 1 || len(hist) < window {
		return nil
	}

	sma := trend.NewSmaWithPeriod[float64](window)
	avg := helper.ChanToSlice(sma.Compute(helper.SliceToChan(hist.Values())))

	out := make([]Value, len(hist))
	offset := len(hist) - len(avg)
	for i, v := range avg {
		out[offset+i] = Value{V: v, Valid: true}
	}
	return out
}
