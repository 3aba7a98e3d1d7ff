package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/realtyai/internal/config"
	"github.com/theirongolddev/realtyai/internal/forecast"
	"github.com/theirongolddev/realtyai/internal/source"
	"github.com/theirongolddev/realtyai/internal/tui/components"
	"github.com/theirongolddev/realtyai/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsFieldSource = iota
	settingsFieldAPIURL
	settingsFieldTheme
	settingsFieldHorizon
	settingsFieldMode
	settingsFieldTrendUp
	settingsFieldTrendDown
	settingsFieldPPSF
	settingsFieldUSDRate
	settingsFieldHistoryLimit
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" message briefly
	saveErr error // non-nil if last save failed
	restart bool  // a saved change applies on the next start
}

type settingsField struct {
	label       string
	value       string
	placeholder string
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50
	return ti
}

func (a App) settingsFields() []settingsField {
	cfg := a.cfg
	return []settingsField{
		settingsFieldSource:       {"Data Source", config.GetSourceKind(cfg), source.KindHTTP + " or " + source.KindSynthetic},
		settingsFieldAPIURL:       {"Service URL", config.GetAPIURL(cfg), "http://127.0.0.1:8000"},
		settingsFieldTheme:        {"Theme", cfg.Appearance.Theme, strings.Join(theme.Names(), ", ")},
		settingsFieldHorizon:      {"Default Horizon", strconv.Itoa(cfg.Forecast.DefaultHorizon), "1 to 36 months"},
		settingsFieldMode:         {"Default Mode", cfg.Forecast.DefaultMode, "single, comparison or statistics"},
		settingsFieldTrendUp:      {"Rising Above %", formatFloat(cfg.Forecast.TrendPositivePct), "5"},
		settingsFieldTrendDown:    {"Falling Below %", formatFloat(cfg.Forecast.TrendNegativePct), "-5"},
		settingsFieldPPSF:         {"Price / Sq Ft (₹)", formatFloat(cfg.Predict.DefaultPricePerSqft), "5000"},
		settingsFieldUSDRate:      {"₹ per US Dollar", formatFloat(cfg.Predict.USDToINR), "80"},
		settingsFieldHistoryLimit: {"History Size", strconv.Itoa(cfg.Predict.HistoryLimit), "20"},
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (a App) updateSettingsKeys(key string) (App, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.settings.cursor = min(a.settings.cursor+1, settingsFieldCount-1)
		return a, nil, true
	case "k", "up":
		a.settings.cursor = max(a.settings.cursor-1, 0)
		return a, nil, true
	case "enter":
		f := a.settingsFields()[a.settings.cursor]
		ti := newSettingsInput()
		ti.Placeholder = f.placeholder
		ti.SetValue(f.value)
		ti.Focus()
		a.settings.input = ti
		a.settings.editing = true
		a.settings.saved = false
		return a, textinput.Blink, true
	}
	return a, nil, false
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// applySetting parses val into the field at idx of cfg. It reports whether
// the change only takes effect after a restart.
func applySetting(cfg *config.Config, idx int, val string) (restart bool, err error) {
	parseFloat := func() (float64, error) {
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", val)
		}
		return v, nil
	}
	parseInt := func() (int, error) {
		v, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("%q is not a whole number", val)
		}
		return v, nil
	}

	switch idx {
	case settingsFieldSource:
		if val != source.KindHTTP && val != source.KindSynthetic {
			return false, fmt.Errorf("unknown data source %q", val)
		}
		cfg.Source.Kind = val
		return true, nil
	case settingsFieldAPIURL:
		if err := validateURL(val); err != nil {
			return false, err
		}
		cfg.API.BaseURL = strings.TrimRight(val, "/")
		return true, nil
	case settingsFieldTheme:
		if !theme.Valid(val) {
			return false, fmt.Errorf("unknown theme %q", val)
		}
		cfg.Appearance.Theme = val
	case settingsFieldHorizon:
		h, err := parseInt()
		if err != nil {
			return false, err
		}
		cfg.Forecast.DefaultHorizon = h
	case settingsFieldMode:
		m, err := forecast.ParseMode(val)
		if err != nil {
			return false, err
		}
		cfg.Forecast.DefaultMode = string(m)
	case settingsFieldTrendUp:
		v, err := parseFloat()
		if err != nil {
			return false, err
		}
		cfg.Forecast.TrendPositivePct = v
	case settingsFieldTrendDown:
		v, err := parseFloat()
		if err != nil {
			return false, err
		}
		cfg.Forecast.TrendNegativePct = v
	case settingsFieldPPSF:
		v, err := parseFloat()
		if err != nil || v <= 0 {
			return false, fmt.Errorf("price per sq ft must be a positive number")
		}
		cfg.Predict.DefaultPricePerSqft = v
	case settingsFieldUSDRate:
		v, err := parseFloat()
		if err != nil || v <= 0 {
			return false, fmt.Errorf("exchange rate must be a positive number")
		}
		cfg.Predict.USDToINR = v
	case settingsFieldHistoryLimit:
		v, err := parseInt()
		if err != nil || v < 1 {
			return false, fmt.Errorf("history size must be at least 1")
		}
		cfg.Predict.HistoryLimit = v
	}
	return false, cfg.Validate()
}

func (a *App) settingsSave() {
	cfg := a.cfg
	restart, err := applySetting(&cfg, a.settings.cursor, strings.TrimSpace(a.settings.input.Value()))
	if err != nil {
		a.settings.saveErr = err
		return
	}
	if err := a.saveConfig(cfg); err != nil {
		a.settings.saveErr = err
		return
	}
	a.settings.saveErr = nil
	a.settings.restart = a.settings.restart || restart
	a.cfg = cfg

	theme.SetActive(cfg.Appearance.Theme)
	a.thresholds = forecast.Thresholds{
		Positive: cfg.Forecast.TrendPositivePct,
		Negative: cfg.Forecast.TrendNegativePct,
	}
	switch a.settings.cursor {
	case settingsFieldHorizon:
		a.fc.view.SetHorizon(cfg.Forecast.DefaultHorizon)
	case settingsFieldMode:
		if m, err := forecast.ParseMode(cfg.Forecast.DefaultMode); err == nil {
			a.fc.view.SetMode(m)
		}
	}
}

func (a App) saveConfig(cfg config.Config) error {
	if a.opts.ConfigPath != "" {
		return config.SaveFile(a.opts.ConfigPath, cfg)
	}
	return config.Save(cfg)
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	innerW := components.CardInnerWidth(cw)

	var formBody strings.Builder
	for i, f := range a.settingsFields() {
		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", f.label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-18s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			formBody.WriteString(marker + label + value)
			if pad := innerW - lipgloss.Width(marker) - lipgloss.Width(label) - lipgloss.Width(value); pad > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")))
			formBody.WriteString(valueStyle.Render(f.value))
		}
		formBody.WriteString("\n")
	}

	switch {
	case a.settings.saveErr != nil:
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render(fmt.Sprintf("Not saved: %s", a.settings.saveErr)))
	case a.settings.saved:
		formBody.WriteString("\n")
		formBody.WriteString(greenStyle.Render("Saved!"))
	}
	if a.settings.restart {
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render("Data source changes apply the next time realtyai starts."))
	}

	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	configPath := a.opts.ConfigPath
	if configPath == "" {
		configPath = config.ConfigPath()
	}
	storePath := "(disabled)"
	if a.store != nil {
		storePath = config.DBPath()
	}

	var infoBody strings.Builder
	infoBody.WriteString(labelStyle.Render("Active source:   ") + valueStyle.Render(a.sourceLabel()) + "\n")
	infoBody.WriteString(labelStyle.Render("Regions loaded:  ") + valueStyle.Render(strconv.Itoa(a.catalog.Len())) + "\n")
	infoBody.WriteString(labelStyle.Render("Config file:     ") + valueStyle.Render(truncStr(configPath, innerW-17)) + "\n")
	infoBody.WriteString(labelStyle.Render("Local store:     ") + valueStyle.Render(truncStr(storePath, innerW-17)))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", infoBody.String(), cw))

	return b.String()
}
