package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/realtyai/internal/config"
	"github.com/theirongolddev/realtyai/internal/forecast"
	"github.com/theirongolddev/realtyai/internal/model"
	"github.com/theirongolddev/realtyai/internal/source"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func newTestApp(t *testing.T, regions ...string) App {
	t.Helper()
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	syn := source.NewSynthetic(7)
	syn.Now = func() time.Time { return time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC) }

	a := NewApp(Options{
		Config:     config.DefaultConfig(),
		Source:     syn,
		Logger:     logger,
		Regions:    regions,
		ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
	})
	a.width, a.height = 120, 40
	a.loaded = true
	return a
}

func TestSubmitWithoutRegionsSendsNothing(t *testing.T) {
	a := newTestApp(t)

	a, cmd, handled := a.updateForecastKeys("enter")
	if !handled {
		t.Fatal("enter was not handled on the forecast tab")
	}
	if cmd != nil {
		t.Fatal("expected no command for an empty selection")
	}
	if a.fc.view.Loading() {
		t.Fatal("view entered loading without regions")
	}
	if err := a.fc.view.Err(); err == nil || err.Error() != "Please select at least one region" {
		t.Fatalf("Err() = %v", err)
	}
}

func TestForecastRunCompletes(t *testing.T) {
	a := newTestApp(t, "California")

	sub, err := a.fc.view.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	cmd := runForecastCmd(a.src, sub, forecast.RunOptions{Concurrency: 2}, a.runSub)

	msg := cmd()
	for {
		if _, ok := msg.(FetchProgressMsg); !ok {
			break
		}
		msg = waitForRunMsg(a.runSub)()
	}
	done, ok := msg.(ForecastDoneMsg)
	if !ok {
		t.Fatalf("final message is %T, want ForecastDoneMsg", msg)
	}

	m, _ := a.Update(done)
	a = m.(App)
	if a.fc.view.Loading() {
		t.Fatal("still loading after completion")
	}
	out := a.fc.view.Outcome()
	if out == nil || out.Forecasts == nil {
		t.Fatal("no outcome recorded")
	}
	if got := len(out.Forecasts.Succeeded()); got != 1 {
		t.Fatalf("succeeded regions = %d, want 1", got)
	}

	view := a.renderForecastTab(a.contentWidth(), 60)
	if !strings.Contains(view, "California") {
		t.Error("forecast tab does not mention the region")
	}
}

func TestTabKeysSwitchTabs(t *testing.T) {
	a := newTestApp(t)

	for key, want := range map[string]int{"p": tabPredict, "h": tabHistory, "x": tabSettings, "f": tabForecast} {
		m, _ := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
		a = m.(App)
		if a.activeTab != want {
			t.Fatalf("key %q -> tab %d, want %d", key, a.activeTab, want)
		}
	}
}

func TestPredictValuesForm(t *testing.T) {
	v := PredictValues{
		Title:    "3 BHK Flat for sale in Baner",
		Location: "Baner, Pune",
		Area:     " 1200 ",
		Baths:    "2",
		Balcony:  true,
	}
	f, err := v.Form()
	if err != nil {
		t.Fatalf("Form: %v", err)
	}
	if f.TotalArea != 1200 || f.Baths != 2 || f.PricePerSqft != 0 || !f.Balcony {
		t.Errorf("unexpected form %+v", f)
	}

	v.Area = "large"
	if _, err := v.Form(); err == nil {
		t.Error("expected an error for a non-numeric area")
	}

	v.Area = "50"
	if _, err := v.Form(); err == nil {
		t.Error("expected an error for an area below the minimum")
	}
}

func TestPredictCmdWithoutStore(t *testing.T) {
	a := newTestApp(t)
	f, err := PredictValues{
		Title:    "2 BHK Flat",
		Location: "Andheri, Mumbai",
		Area:     "900",
		Baths:    "2",
	}.Form()
	if err != nil {
		t.Fatalf("Form: %v", err)
	}

	msg := predictCmd(a.src, nil, f, a.cfg.Predict.DefaultPricePerSqft)()
	done, ok := msg.(predictionDoneMsg)
	if !ok {
		t.Fatalf("got %T, want predictionDoneMsg", msg)
	}
	if done.Err != nil {
		t.Fatalf("prediction failed: %v", done.Err)
	}
	if done.Pred.Source != source.KindSynthetic || done.Pred.City != "Mumbai" || done.Pred.BHK != 2 {
		t.Errorf("unexpected prediction %+v", done.Pred)
	}

	m, _ := a.handlePrediction(done)
	a = m.(App)
	if a.pred.result == nil || a.pred.pending {
		t.Fatal("prediction not recorded")
	}
	if !strings.Contains(a.renderPredictTab(a.contentWidth()), "Mumbai") {
		t.Error("predict tab does not show the result")
	}
}

func TestHistoryCursorClamps(t *testing.T) {
	h := historyState{items: make([]model.Prediction, 3)}
	h.move(10)
	if h.cursor != 2 {
		t.Fatalf("cursor = %d, want 2", h.cursor)
	}
	h.move(-10)
	if h.cursor != 0 {
		t.Fatalf("cursor = %d, want 0", h.cursor)
	}
	h.items = nil
	h.cursor = 4
	h.clamp()
	if h.cursor != 0 {
		t.Fatalf("cursor = %d after clearing, want 0", h.cursor)
	}
}

func TestLoadHistoryWithoutStore(t *testing.T) {
	msg := loadHistoryCmd(nil, 10)().(historyLoadedMsg)
	if !msg.Disabled || msg.Err != nil {
		t.Fatalf("unexpected message %+v", msg)
	}
}

func TestApplySetting(t *testing.T) {
	cfg := config.DefaultConfig()

	restart, err := applySetting(&cfg, settingsFieldHorizon, "24")
	if err != nil || restart {
		t.Fatalf("horizon: restart=%v err=%v", restart, err)
	}
	if cfg.Forecast.DefaultHorizon != 24 {
		t.Errorf("horizon = %d", cfg.Forecast.DefaultHorizon)
	}

	if _, err := applySetting(&cfg, settingsFieldHorizon, "37"); err == nil {
		t.Error("expected horizon 37 to be rejected")
	}

	restart, err = applySetting(&cfg, settingsFieldSource, source.KindSynthetic)
	if err != nil || !restart {
		t.Fatalf("source: restart=%v err=%v", restart, err)
	}

	if _, err := applySetting(&cfg, settingsFieldSource, "ftp"); err == nil {
		t.Error("expected an unknown source to be rejected")
	}
	if _, err := applySetting(&cfg, settingsFieldTheme, "neon"); err == nil {
		t.Error("expected an unknown theme to be rejected")
	}
	if _, err := applySetting(&cfg, settingsFieldTrendDown, "9"); err == nil {
		t.Error("expected a negative threshold above the positive one to be rejected")
	}
}

func TestSettingsSaveWritesConfig(t *testing.T) {
	a := newTestApp(t)
	a.settings.cursor = settingsFieldMode
	a.settings.input.SetValue("comparison")
	a.settingsSave()

	if a.settings.saveErr != nil {
		t.Fatalf("save failed: %v", a.settings.saveErr)
	}
	if a.fc.view.Mode != forecast.ModeComparison {
		t.Errorf("view mode = %q, want comparison", a.fc.view.Mode)
	}
	saved, err := config.LoadFile(a.opts.ConfigPath)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if saved.Forecast.DefaultMode != "comparison" {
		t.Errorf("saved mode = %q", saved.Forecast.DefaultMode)
	}
}

func TestSetupValuesApply(t *testing.T) {
	cfg := config.DefaultConfig()
	v := SetupValuesFrom(cfg)
	v.SourceKind = source.KindHTTP
	v.APIURL = "http://example.test:8000/"
	v.Horizon = "6"
	v.Mode = string(forecast.ModeStatistics)
	v.Theme = "tokyo-night"

	if err := v.Apply(&cfg); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if cfg.API.BaseURL != "http://example.test:8000" || cfg.Forecast.DefaultHorizon != 6 ||
		cfg.Forecast.DefaultMode != "statistics" || cfg.Appearance.Theme != "tokyo-night" {
		t.Errorf("unexpected config %+v", cfg)
	}

	v.Horizon = "0"
	if err := v.Apply(&cfg); err == nil {
		t.Error("expected horizon 0 to be rejected")
	}
}

func TestInitialRegionsKeepFirstInSingleMode(t *testing.T) {
	a := newTestApp(t, "California", "Texas")
	if a.fc.view.Mode != forecast.ModeSingle {
		t.Fatalf("default mode = %v, want single", a.fc.view.Mode)
	}
	got := a.fc.view.Selection.Regions()
	if len(got) != 1 || got[0] != "California" {
		t.Errorf("selection = %v, want [California]", got)
	}
	if a.fc.view.Focus != "California" {
		t.Errorf("focus = %q, want California", a.fc.view.Focus)
	}
}

func TestSourceTargetShowsHTTPURL(t *testing.T) {
	cfg := config.DefaultConfig()
	src, err := source.New(cfg, nil)
	if err != nil {
		t.Fatalf("source.New: %v", err)
	}
	a := NewApp(Options{Config: cfg, Source: src, ConfigPath: filepath.Join(t.TempDir(), "config.toml")})
	if got := a.sourceTarget(); got != config.GetAPIURL(cfg) {
		t.Errorf("sourceTarget = %q, want %q", got, config.GetAPIURL(cfg))
	}

	if got := newTestApp(t).sourceTarget(); got != "" {
		t.Errorf("synthetic sourceTarget = %q, want empty", got)
	}
}
