// Package tui provides the interactive Bubble Tea dashboard for realtyai.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/realtyai/internal/config"
	"github.com/theirongolddev/realtyai/internal/dashboard"
	"github.com/theirongolddev/realtyai/internal/forecast"
	"github.com/theirongolddev/realtyai/internal/region"
	"github.com/theirongolddev/realtyai/internal/source"
	"github.com/theirongolddev/realtyai/internal/store"
	"github.com/theirongolddev/realtyai/internal/tui/components"
	"github.com/theirongolddev/realtyai/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

// Options wires the dashboard to its collaborators.
type Options struct {
	Config config.Config
	Source source.Source
	// Store keeps prediction history and the region cache. Nil disables both.
	Store  *store.Cache
	Logger logrus.FieldLogger
	// Regions are preselected on the forecast tab.
	Regions []string
	// NeedSetup shows the first-run form before the dashboard.
	NeedSetup bool
	// ConfigPath is where settings are saved. Empty means the default path.
	ConfigPath string
}

// CatalogLoadedMsg is sent when the region catalog has been fetched.
type CatalogLoadedMsg struct {
	Result region.LoadResult
	Err    error
}

// FetchProgressMsg reports per-region forecast progress.
type FetchProgressMsg struct {
	Done   int
	Total  int
	Region string
}

// ForecastDoneMsg carries the outcome of one submission.
type ForecastDoneMsg struct {
	Seq     int
	Outcome *dashboard.Outcome
	Elapsed time.Duration
}

// App is the root Bubble Tea model.
type App struct {
	opts       Options
	cfg        config.Config
	src        source.Source
	store      *store.Cache
	log        logrus.FieldLogger
	thresholds forecast.Thresholds

	// Region catalog
	catalog      region.Catalog
	catalogStale bool
	loaded       bool
	loadErr      error

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Per-tab state
	fc       forecastState
	pred     predictState
	hist     historyState
	settings settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues
	needSetup bool

	// Forecast runs stream FetchProgressMsg and a final ForecastDoneMsg here.
	spinner spinner.Model
	runSub  chan tea.Msg
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	minContentHeight = 5 // minimum content area height

	tabForecast = 0
	tabPredict  = 1
	tabHistory  = 2
	tabSettings = 3
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	cfg := opts.Config
	mode, err := forecast.ParseMode(cfg.Forecast.DefaultMode)
	if err != nil {
		mode = forecast.ModeSingle
	}
	// Collect every region first so single mode keeps the first one.
	view := dashboard.New(cfg.Forecast.DefaultHorizon, forecast.ModeComparison)
	for _, r := range opts.Regions {
		view.AddRegion(r)
	}
	view.SetMode(mode)

	return App{
		opts:  opts,
		cfg:   cfg,
		src:   opts.Source,
		store: opts.Store,
		log:   log,
		thresholds: forecast.Thresholds{
			Positive: cfg.Forecast.TrendPositivePct,
			Negative: cfg.Forecast.TrendNegativePct,
		},
		needSetup: opts.NeedSetup,
		fc:        newForecastState(view),
		pred:      newPredictState(),
		settings:  settingsState{input: newSettingsInput()},
		spinner:   sp,
		runSub:    make(chan tea.Msg, 1),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadCatalogCmd(a.src, a.store, a.cfg.Source.RegionsTTL.Duration),
		loadHistoryCmd(a.store, a.cfg.Predict.HistoryLimit),
		a.spinner.Tick,
	)
}

// busy reports whether anything is in flight that needs the spinner.
func (a App) busy() bool {
	return !a.loaded || a.fc.view.Loading() || a.pred.pending
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		if a.pred.form != nil {
			a.pred.form = a.pred.form.WithWidth(components.CardInnerWidth(a.contentWidth()))
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == tabHistory {
				a.hist.move(-1)
			}
		case tea.MouseButtonWheelDown:
			if a.activeTab == tabHistory {
				a.hist.move(1)
			}
		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		key := msg.String()

		if key == "ctrl+c" {
			return a, tea.Quit
		}

		if a.setupForm != nil {
			return a.updateSetupForm(msg)
		}

		// Modal inputs own the keyboard while active.
		switch {
		case a.activeTab == tabForecast && a.fc.adding:
			return a.updateRegionInput(msg)
		case a.activeTab == tabPredict && a.pred.form != nil:
			return a.updatePredictForm(msg)
		case a.activeTab == tabSettings && a.settings.editing:
			return a.updateSettingsInput(msg)
		}

		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		if !a.loaded {
			if key == "q" {
				return a, tea.Quit
			}
			return a, nil
		}

		var (
			handled bool
			cmd     tea.Cmd
		)
		switch a.activeTab {
		case tabForecast:
			a, cmd, handled = a.updateForecastKeys(key)
		case tabPredict:
			a, cmd, handled = a.updatePredictKeys(key)
		case tabHistory:
			a, cmd, handled = a.updateHistoryKeys(key)
		case tabSettings:
			a, cmd, handled = a.updateSettingsKeys(key)
		}
		if handled {
			return a, cmd
		}

		if key == "q" {
			return a, tea.Quit
		}

		switch key {
		case "left":
			a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		case "right":
			a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		default:
			if len(key) == 1 {
				if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
					a.activeTab = idx
				}
			}
		}
		return a, nil

	case CatalogLoadedMsg:
		a.loaded = true
		a.loadErr = msg.Err
		if msg.Err == nil {
			a.catalog = msg.Result.Catalog
			a.catalogStale = msg.Result.Stale
			if msg.Result.Stale {
				a.log.WithError(msg.Result.FetchErr).Warn("serving regions from an expired cache")
			}
		}
		if a.needSetup {
			a.setupVals = SetupValuesFrom(a.cfg)
			a.setupForm = NewSetupForm(a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case FetchProgressMsg:
		a.fc.progress = msg
		return a, waitForRunMsg(a.runSub)

	case ForecastDoneMsg:
		a.fc.view.Complete(msg.Seq, msg.Outcome)
		a.fc.elapsed = msg.Elapsed
		a.fc.scroll = 0
		return a, nil

	case predictionDoneMsg:
		return a.handlePrediction(msg)

	case historyLoadedMsg:
		a.hist.items = msg.Items
		a.hist.stats = msg.Stats
		a.hist.err = msg.Err
		a.hist.disabled = msg.Disabled
		a.hist.clamp()
		return a, nil

	case spinner.TickMsg:
		if a.busy() {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages to embedded forms (cursor blinks, etc.)
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.pred.form != nil {
		return a.updatePredictForm(msg)
	}
	if a.fc.adding {
		var cmd tea.Cmd
		a.fc.input, cmd = a.fc.input.Update(msg)
		return a, cmd
	}

	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.applySetup()
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}

	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if !a.loaded {
		return a.viewLoading()
	}

	if a.setupForm != nil {
		return a.setupForm.View()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  realtyai needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	subtitleStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ realtyai"))
	b.WriteString(subtitleStyle.Render(" · Real Estate Forecasts"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(" Loading regions from " + a.sourceLabel() + "..."))

	card := cardStyle.Render(b.String())

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"f p h x", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Navigate lists"},
		}},
		{"Forecast", []struct{ key, desc string }{
			{"a /", "Add a region"},
			{"d", "Remove selected region"},
			{"m", "Cycle analysis mode"},
			{"+ -", "Horizon ±1 month"},
			{"] [", "Horizon ±6 months"},
			{"Tab", "Cycle statistics focus"},
			{"Enter", "Run forecast"},
			{"J K", "Scroll results"},
		}},
		{"Predict / History", []struct{ key, desc string }{
			{"Enter n", "New prediction"},
			{"D", "Delete history entry"},
			{"r", "Reload history"},
		}},
		{"General", []struct{ key, desc string }{
			{"Esc", "Back / Cancel"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	card := cardStyle.Render(b.String())

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)

	statusBar := components.RenderStatusBar(w, components.StatusInfo{
		Source:  a.sourceLabel(),
		Target:  a.sourceTarget(),
		Regions: a.catalog.Len(),
		Stale:   a.catalogStale,
		Busy:    a.fc.view.Loading() || a.pred.pending,
		Hint:    a.tabHint(),
	})

	headerH := lipgloss.Height(header)
	statusH := lipgloss.Height(statusBar)
	contentH := max(h-headerH-statusH, minContentHeight)

	var content string
	switch a.activeTab {
	case tabForecast:
		content = a.renderForecastTab(cw, contentH)
	case tabPredict:
		content = a.renderPredictTab(cw)
	case tabHistory:
		content = a.renderHistoryTab(cw, contentH)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)

	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) tabHint() string {
	switch {
	case a.activeTab == tabForecast && a.fc.adding:
		return "[↑↓]choose  [Enter]add  [Esc]done"
	case a.activeTab == tabForecast:
		return "[a]dd  [d]rop  [m]ode  [+/-]horizon  [Enter]run"
	case a.activeTab == tabPredict && a.pred.form != nil:
		return "[Esc]cancel"
	case a.activeTab == tabPredict:
		return "[Enter]new prediction"
	case a.activeTab == tabHistory:
		return "[j/k]move  [D]elete  [r]eload"
	}
	return ""
}

func (a App) sourceLabel() string {
	if a.src == nil {
		return "no source"
	}
	return a.src.Name()
}

func (a App) sourceTarget() string {
	if a.src != nil && a.src.Kind() == source.KindHTTP {
		return config.GetAPIURL(a.cfg)
	}
	return ""
}

// ─── Commands ───────────────────────────────────────────────────

// loadCatalogCmd fetches the region catalog once, through the store cache
// when one is configured.
func loadCatalogCmd(src source.Source, st *store.Cache, ttl time.Duration) tea.Cmd {
	return func() tea.Msg {
		if src == nil {
			return CatalogLoadedMsg{Err: fmt.Errorf("no data source configured")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		var cache region.Cache
		if st != nil {
			cache = st
		}
		res, err := region.Load(ctx, src, cache, ttl)
		return CatalogLoadedMsg{Result: res, Err: err}
	}
}

// runForecastCmd executes a submission in a background goroutine. It streams
// FetchProgressMsg updates and a final ForecastDoneMsg through sub.
func runForecastCmd(b dashboard.Backend, s dashboard.Submission, opts forecast.RunOptions, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()

			// Non-blocking send so workers aren't stalled. A skipped update
			// is superseded by the next one.
			opts.OnProgress = func(done, total int, region string) {
				select {
				case sub <- FetchProgressMsg{Done: done, Total: total, Region: region}:
				default:
				}
			}

			out := dashboard.Execute(context.Background(), b, s, opts)
			sub <- ForecastDoneMsg{Seq: s.Seq, Outcome: out, Elapsed: time.Since(start)}
		}()

		return <-sub
	}
}

// waitForRunMsg blocks until the next message arrives from the run goroutine.
func waitForRunMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
