package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/realtyai/internal/forecast"
)

func TestSubmitValidation(t *testing.T) {
	s := New(12, forecast.ModeComparison)
	_, err := s.Submit()
	require.ErrorIs(t, err, forecast.ErrNoRegions)
	assert.False(t, s.Loading())
	assert.Equal(t, forecast.ErrNoRegions, s.Err())
}

func TestSubmitLifecycle(t *testing.T) {
	s := New(6, forecast.ModeComparison)
	s.AddRegion("Texas")
	s.AddRegion("Ohio")

	sub, err := s.Submit()
	require.NoError(t, err)
	assert.True(t, s.Loading())
	assert.Len(t, sub.Requests, 2)
	assert.Nil(t, s.Outcome())

	_, err = s.Submit()
	assert.ErrorIs(t, err, ErrBusy)

	res := &forecast.Result{Regions: []forecast.RegionResult{
		{Region: "Texas", Series: forecast.Series{}},
		{Region: "Ohio", Err: errors.New("Ohio: boom")},
	}}
	s.Complete(sub.Seq, &Outcome{Mode: sub.Mode, Forecasts: res})
	assert.False(t, s.Loading())
	assert.NoError(t, s.Err())
	assert.Same(t, res, s.Outcome().Forecasts)

	// next submit clears the previous outcome
	sub2, err := s.Submit()
	require.NoError(t, err)
	assert.Nil(t, s.Outcome())

	// a late completion from the first run is ignored
	s.Complete(sub.Seq, &Outcome{})
	assert.True(t, s.Loading())

	s.Fail(sub2.Seq, errors.New("down"))
	assert.EqualError(t, s.Err(), "down")
	assert.False(t, s.Loading())
}

func TestCompleteAllFailedSurfacesError(t *testing.T) {
	s := New(6, forecast.ModeSingle)
	s.AddRegion("Atlantis")
	sub, err := s.Submit()
	require.NoError(t, err)

	s.Complete(sub.Seq, &Outcome{Forecasts: &forecast.Result{Regions: []forecast.RegionResult{
		{Region: "Atlantis", Err: errors.New("Region not found")},
	}}})
	assert.EqualError(t, s.Err(), "Region not found")
}

func TestStatisticsSubmission(t *testing.T) {
	s := New(6, forecast.ModeStatistics)
	s.AddRegion("Texas")
	s.AddRegion("Ohio")
	assert.Equal(t, "Texas", s.Focus)

	require.True(t, s.SetFocus("Ohio"))
	assert.False(t, s.SetFocus("Utah"))

	sub, err := s.Submit()
	require.NoError(t, err)
	assert.Empty(t, sub.Requests)
	assert.Equal(t, []string{"Texas", "Ohio"}, sub.Regions)
	// focus survives submission
	assert.Equal(t, "Ohio", s.Focus)

	s.Complete(sub.Seq, &Outcome{Statistics: []forecast.StatisticsResult{
		{Region: "Texas", Stats: forecast.RegionStatistics{Region: "Texas", Mean: 1}},
		{Region: "Ohio", Stats: forecast.RegionStatistics{Region: "Ohio", Mean: 2}},
	}})
	st, ok := s.Outcome().Stats(s.Focus)
	require.True(t, ok)
	assert.Equal(t, 2.0, st.Mean)
}

func TestRegionEditing(t *testing.T) {
	s := New(12, forecast.ModeComparison)
	for _, r := range []string{"A", "B", "C", "D"} {
		s.AddRegion(r)
	}
	s.SetFocus("B")
	require.True(t, s.RemoveRegion("B"))
	assert.Equal(t, []string{"A", "C", "D"}, s.Selection.Regions())
	assert.Equal(t, "A", s.Focus)

	s.CycleFocus()
	assert.Equal(t, "C", s.Focus)

	s.SetMode(forecast.ModeSingle)
	assert.Equal(t, []string{"A"}, s.Selection.Regions())

	s.AddRegion("Z")
	assert.Equal(t, []string{"Z"}, s.Selection.Regions())

	s.SetHorizon(99)
	assert.Equal(t, forecast.MaxHorizon, s.Horizon)
	s.SetHorizon(-3)
	assert.Equal(t, forecast.MinHorizon, s.Horizon)
}

func TestSingleModeAddRegion(t *testing.T) {
	s := New(12, forecast.ModeSingle)
	require.True(t, s.AddRegion("California"))
	assert.False(t, s.AddRegion("California"))
	require.True(t, s.AddRegion("Texas"))
	assert.Equal(t, []string{"Texas"}, s.Selection.Regions())

	assert.False(t, s.AddRegion(""))
	assert.False(t, s.AddRegion("   "))
	assert.Equal(t, []string{"Texas"}, s.Selection.Regions())
	assert.Equal(t, "Texas", s.Focus)

	c := New(12, forecast.ModeComparison)
	assert.True(t, c.AddRegion(" Oregon "))
	assert.False(t, c.AddRegion(""))
	assert.Equal(t, []string{"Oregon"}, c.Selection.Regions())
}

type stubBackend struct{}

func (stubBackend) Forecast(_ context.Context, region string, horizon int) (forecast.RawResponse, error) {
	if region == "Atlantis" {
		return forecast.RawResponse{}, errors.New("Region not found")
	}
	return forecast.RawResponse{Forecast: []forecast.RawPoint{{Period: "2024-01-31", Value: 1}}}, nil
}

func (stubBackend) RegionStatistics(_ context.Context, region string) (forecast.RegionStatistics, error) {
	return forecast.RegionStatistics{Region: region}, nil
}

func TestExecute(t *testing.T) {
	s := New(1, forecast.ModeComparison)
	s.AddRegion("Texas")
	s.AddRegion("Atlantis")
	sub, err := s.Submit()
	require.NoError(t, err)

	out := Execute(context.Background(), stubBackend{}, sub, forecast.RunOptions{})
	require.NotNil(t, out.Forecasts)
	assert.Equal(t, forecast.ModeComparison, out.Forecasts.Mode)
	assert.Len(t, out.Forecasts.Succeeded(), 1)
	assert.Len(t, out.Forecasts.Failed(), 1)

	s.Complete(sub.Seq, out)
	assert.NoError(t, s.Err())

	s.SetMode(forecast.ModeStatistics)
	sub, err = s.Submit()
	require.NoError(t, err)
	out = Execute(context.Background(), stubBackend{}, sub, forecast.RunOptions{})
	assert.Nil(t, out.Forecasts)
	assert.Len(t, out.Statistics, 2)
}
