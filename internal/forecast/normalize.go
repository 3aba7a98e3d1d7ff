package forecast

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnordered is returned when a response's periods are not strictly ascending
// or the forecast does not start after the history ends.
var ErrUnordered = errors.New("forecast: periods out of order")

// periodLayouts are the timestamp formats accepted from data sources.
var periodLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
}

// ParsePeriod parses a period label as emitted by the prediction service.
func ParsePeriod(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range periodLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("forecast: unrecognized period %q", s)
}

// Normalize merges the two partitions of a raw response into one series:
// historical points first, then forecast points, each in source order.
// Historical points never carry bounds.
func Normalize(raw RawResponse) (Series, error) {
	out := make(Series, 0, len(raw.Historical)+len(raw.Forecast))

	for _, rp := range raw.Historical {
		t, err := ParsePeriod(rp.Period)
		if err != nil {
			return nil, err
		}
		out = append(out, Point{At: t, Label: rp.Period, Value: rp.Value, Kind: Historical})
	}
	for _, rp := range raw.Forecast {
		t, err := ParsePeriod(rp.Period)
		if err != nil {
			return nil, err
		}
		out = append(out, Point{
			At:    t,
			Label: rp.Period,
			Value: rp.Value,
			Lower: rp.Lower,
			Upper: rp.Upper,
			Kind:  Forecasted,
		})
	}

	for i := 1; i < len(out); i++ {
		if !out[i].At.After(out[i-1].At) {
			return nil, fmt.Errorf("%w: %s does not follow %s", ErrUnordered, out[i].Label, out[i-1].Label)
		}
	}
	return out, nil
}
