package forecast

import (
	"errors"
	"fmt"
	"strings"
)

// Horizon limits, in periods.
const (
	MinHorizon     = 1
	MaxHorizon     = 36
	DefaultHorizon = 12
)

// Mode selects how the selected regions are analyzed.
type Mode string

const (
	ModeSingle     Mode = "single"
	ModeComparison Mode = "comparison"
	ModeStatistics Mode = "statistics"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeSingle, ModeComparison, ModeStatistics}

// ParseMode accepts a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeSingle:
		return ModeSingle, nil
	case ModeComparison:
		return ModeComparison, nil
	case ModeStatistics:
		return ModeStatistics, nil
	}
	return "", fmt.Errorf("unknown analysis mode %q (want single, comparison or statistics)", s)
}

// Next returns the mode after m, wrapping around.
func (m Mode) Next() Mode {
	for i, mode := range Modes {
		if mode == m {
			return Modes[(i+1)%len(Modes)]
		}
	}
	return ModeSingle
}

// Label is the human-readable name of the mode.
func (m Mode) Label() string {
	switch m {
	case ModeSingle:
		return "Single Region"
	case ModeComparison:
		return "Multi-Region Comparison"
	case ModeStatistics:
		return "Region Statistics"
	}
	return string(m)
}

// Request asks for a forecast of one region.
type Request struct {
	Region  string `json:"region"`
	Horizon int    `json:"horizon"`
}

// ValidationError is returned before any request is issued.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ErrNoRegions is returned when a forecast is requested with an empty selection.
var ErrNoRegions = &ValidationError{Field: "regions", Message: "Please select at least one region"}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidateHorizon checks that horizon lies within [MinHorizon, MaxHorizon].
func ValidateHorizon(horizon int) error {
	if horizon < MinHorizon || horizon > MaxHorizon {
		return &ValidationError{
			Field:   "horizon",
			Message: fmt.Sprintf("Forecast horizon must be between %d and %d months", MinHorizon, MaxHorizon),
		}
	}
	return nil
}

// BuildRequests turns the current selection into forecast requests.
// Single mode forecasts only the first selected region, comparison mode every
// selected region in order, and statistics mode issues no forecast requests.
func BuildRequests(regions []string, horizon int, mode Mode) ([]Request, error) {
	if len(regions) == 0 {
		return nil, ErrNoRegions
	}
	if err := ValidateHorizon(horizon); err != nil {
		return nil, err
	}

	switch mode {
	case ModeSingle:
		return []Request{{Region: regions[0], Horizon: horizon}}, nil
	case ModeComparison:
		reqs := make([]Request, len(regions))
		for i, r := range regions {
			reqs[i] = Request{Region: r, Horizon: horizon}
		}
		return reqs, nil
	case ModeStatistics:
		return nil, nil
	}
	return nil, &ValidationError{Field: "mode", Message: fmt.Sprintf("unknown analysis mode %q", mode)}
}
