// Package dashboard holds the forecasting view state shared by the CLI and
// the TUI.
package dashboard

import (
	"errors"
	"strings"

	"github.com/theirongolddev/realtyai/internal/forecast"
	"github.com/theirongolddev/realtyai/internal/region"
)

// ErrBusy is returned when a forecast is submitted while one is in flight.
var ErrBusy = errors.New("a forecast is already running")

// Outcome is what one submission produced. It is replaced wholesale on every
// completed submission and never mutated afterward.
type Outcome struct {
	Mode       forecast.Mode
	Forecasts  *forecast.Result
	Statistics []forecast.StatisticsResult
}

// Stats returns the statistics for region, if that lookup succeeded.
func (o *Outcome) Stats(region string) (forecast.RegionStatistics, bool) {
	if o == nil {
		return forecast.RegionStatistics{}, false
	}
	for _, st := range o.Statistics {
		if st.Region == region && st.Err == nil {
			return st.Stats, true
		}
	}
	return forecast.RegionStatistics{}, false
}

// State is the user-editable forecast form plus the last outcome.
type State struct {
	Selection region.Selection
	Horizon   int
	Mode      forecast.Mode
	// Focus is the region shown in the statistics detail card. It is chosen
	// independently of the comparison set.
	Focus string

	loading bool
	err     error
	outcome *Outcome
	// seq identifies the in-flight submission so a late completion from an
	// older one is ignored.
	seq int
}

// New returns a state with the given defaults.
func New(horizon int, mode forecast.Mode) *State {
	if horizon == 0 {
		horizon = forecast.DefaultHorizon
	}
	if mode == "" {
		mode = forecast.ModeSingle
	}
	return &State{Horizon: horizon, Mode: mode}
}

func (s *State) Loading() bool     { return s.loading }
func (s *State) Err() error        { return s.err }
func (s *State) Outcome() *Outcome { return s.outcome }

// Submission is a validated request to run.
type Submission struct {
	Seq      int
	Mode     forecast.Mode
	Requests []forecast.Request
	// Regions are the regions whose statistics should be looked up.
	Regions []string
}

// Submit validates the form and, when valid, enters the loading state and
// clears the previous error and outcome. Validation failures are recorded in
// Err and leave loading unset.
func (s *State) Submit() (Submission, error) {
	if s.loading {
		return Submission{}, ErrBusy
	}
	regions := s.Selection.Regions()
	reqs, err := forecast.BuildRequests(regions, s.Horizon, s.Mode)
	if err != nil {
		s.err = err
		return Submission{}, err
	}

	s.seq++
	s.loading = true
	s.err = nil
	s.outcome = nil

	sub := Submission{Seq: s.seq, Mode: s.Mode, Requests: reqs}
	if s.Mode == forecast.ModeStatistics {
		sub.Regions = regions
	}
	if !s.Selection.Contains(s.Focus) {
		s.Focus = s.Selection.First()
	}
	return sub, nil
}

// Complete stores the outcome of submission seq. An outcome where every region
// failed is recorded as an error instead. Stale completions are ignored.
func (s *State) Complete(seq int, out *Outcome) {
	if seq != s.seq || !s.loading {
		return
	}
	s.loading = false
	s.outcome = out
	if err := allFailed(out); err != nil {
		s.err = err
	}
}

// Fail records a failure of submission seq.
func (s *State) Fail(seq int, err error) {
	if seq != s.seq || !s.loading {
		return
	}
	s.loading = false
	s.err = err
}

// AddRegion appends a region to the selection. In single mode it replaces the
// selection instead.
func (s *State) AddRegion(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	if s.Mode == forecast.ModeSingle {
		if s.Selection.First() == name {
			return false
		}
		s.Selection.SetSingle(name)
		s.Focus = name
		return true
	}
	ok := s.Selection.Add(name)
	if ok && s.Focus == "" {
		s.Focus = s.Selection.First()
	}
	return ok
}

// RemoveRegion drops a region, moving the focus if it pointed at it.
func (s *State) RemoveRegion(name string) bool {
	if !s.Selection.Remove(name) {
		return false
	}
	if s.Focus == name {
		s.Focus = s.Selection.First()
	}
	return true
}

// SetFocus picks the statistics detail region. It must be selected.
func (s *State) SetFocus(name string) bool {
	if !s.Selection.Contains(name) {
		return false
	}
	s.Focus = name
	return true
}

// CycleFocus moves the focus to the next selected region.
func (s *State) CycleFocus() {
	regions := s.Selection.Regions()
	if len(regions) == 0 {
		s.Focus = ""
		return
	}
	for i, r := range regions {
		if r == s.Focus {
			s.Focus = regions[(i+1)%len(regions)]
			return
		}
	}
	s.Focus = regions[0]
}

// SetHorizon clamps and stores the horizon.
func (s *State) SetHorizon(h int) {
	s.Horizon = min(max(h, forecast.MinHorizon), forecast.MaxHorizon)
}

// SetMode changes the analysis mode. Switching to single mode keeps only the
// first selected region.
func (s *State) SetMode(m forecast.Mode) {
	s.Mode = m
	if m == forecast.ModeSingle && s.Selection.Len() > 1 {
		s.Selection.SetSingle(s.Selection.First())
		s.Focus = s.Selection.First()
	}
}

// allFailed returns the first error when an outcome has no usable region.
func allFailed(out *Outcome) error {
	if out == nil {
		return nil
	}
	if out.Forecasts != nil && len(out.Forecasts.Regions) > 0 && len(out.Forecasts.Succeeded()) == 0 {
		return out.Forecasts.Regions[0].Err
	}
	if len(out.Statistics) > 0 {
		for _, st := range out.Statistics {
			if st.Err == nil {
				return nil
			}
		}
		return out.Statistics[0].Err
	}
	return nil
}
