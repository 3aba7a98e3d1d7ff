package tui

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/theirongolddev/realtyai/internal/config"
	"github.com/theirongolddev/realtyai/internal/forecast"
	"github.com/theirongolddev/realtyai/internal/source"
	"github.com/theirongolddev/realtyai/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues holds the first-run wizard answers.
type SetupValues struct {
	SourceKind string
	APIURL     string
	Horizon    string
	Mode       string
	Theme      string
}

// SetupValuesFrom seeds the wizard with the current configuration.
func SetupValuesFrom(cfg config.Config) *SetupValues {
	return &SetupValues{
		SourceKind: config.GetSourceKind(cfg),
		APIURL:     config.GetAPIURL(cfg),
		Horizon:    strconv.Itoa(cfg.Forecast.DefaultHorizon),
		Mode:       cfg.Forecast.DefaultMode,
		Theme:      cfg.Appearance.Theme,
	}
}

// Apply copies the answers into cfg.
func (v SetupValues) Apply(cfg *config.Config) error {
	h, err := strconv.Atoi(strings.TrimSpace(v.Horizon))
	if err != nil {
		return fmt.Errorf("horizon: %w", err)
	}
	if err := forecast.ValidateHorizon(h); err != nil {
		return err
	}
	cfg.Source.Kind = v.SourceKind
	if v.SourceKind == source.KindHTTP {
		cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(v.APIURL), "/")
	}
	cfg.Forecast.DefaultHorizon = h
	cfg.Forecast.DefaultMode = v.Mode
	cfg.Appearance.Theme = v.Theme
	return nil
}

func validateURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("enter an http(s) URL such as http://127.0.0.1:8000")
	}
	return nil
}

// NewSetupForm builds the first-run wizard bound to v.
func NewSetupForm(v *SetupValues) *huh.Form {
	themes := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themes = append(themes, huh.NewOption(t.Name, t.Name))
	}
	modes := make([]huh.Option[string], 0, len(forecast.Modes))
	for _, m := range forecast.Modes {
		modes = append(modes, huh.NewOption(m.Label(), string(m)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to realtyai").
				Description("Forecast regional home prices and estimate property values.\nYou can change any of this later with `realtyai setup` or on the Settings tab."),
			huh.NewSelect[string]().
				Title("Data source").
				Options(
					huh.NewOption("Prediction service (HTTP)", source.KindHTTP),
					huh.NewOption("Synthetic demo data", source.KindSynthetic),
				).
				Value(&v.SourceKind),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Service URL").
				Description("Base URL of the forecasting and price service.").
				Value(&v.APIURL).
				Validate(validateURL),
		).WithHideFunc(func() bool { return v.SourceKind != source.KindHTTP }),
		huh.NewGroup(
			huh.NewInput().
				Title("Default horizon (months)").
				Value(&v.Horizon).
				Validate(func(s string) error {
					h, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil {
						return fmt.Errorf("enter a whole number of months")
					}
					return forecast.ValidateHorizon(h)
				}),
			huh.NewSelect[string]().
				Title("Default view").
				Options(modes...).
				Value(&v.Mode),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(&v.Theme),
		),
	).WithShowHelp(true)
}

// applySetup stores the wizard answers and applies what can change live.
// A new source or URL takes effect on the next start.
func (a *App) applySetup() {
	if err := a.setupVals.Apply(&a.cfg); err != nil {
		a.log.WithError(err).Warn("setup answers rejected")
		return
	}
	theme.SetActive(a.cfg.Appearance.Theme)
	a.fc.view.SetHorizon(a.cfg.Forecast.DefaultHorizon)
	if m, err := forecast.ParseMode(a.cfg.Forecast.DefaultMode); err == nil {
		a.fc.view.SetMode(m)
	}
	if err := a.saveConfig(a.cfg); err != nil {
		a.log.WithError(err).Warn("saving config")
	}
}
