package tui

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/theirongolddev/realtyai/internal/cli"
	"github.com/theirongolddev/realtyai/internal/dashboard"
	"github.com/theirongolddev/realtyai/internal/forecast"
	"github.com/theirongolddev/realtyai/internal/tui/components"
	"github.com/theirongolddev/realtyai/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxSuggestions = 6

// forecastState tracks the forecast tab state.
type forecastState struct {
	view *dashboard.State

	// Region picker
	input   textinput.Model
	adding  bool
	suggest int // cursor in the suggestion list
	cursor  int // cursor in the selected regions

	scroll   int // lines scrolled in the results pane
	progress FetchProgressMsg
	elapsed  time.Duration
}

func newForecastState(view *dashboard.State) forecastState {
	ti := textinput.New()
	ti.Placeholder = "type to search regions"
	ti.CharLimit = 64
	ti.Width = 40
	return forecastState{view: view, input: ti}
}

// suggestions are the catalog regions matching the picker input.
func (a App) suggestions() []string {
	return a.fc.view.Selection.Filter(a.catalog, a.fc.input.Value())
}

func (a App) updateForecastKeys(key string) (App, tea.Cmd, bool) {
	v := a.fc.view
	switch key {
	case "a", "/":
		a.fc.adding = true
		a.fc.suggest = 0
		a.fc.input.SetValue("")
		return a, a.fc.input.Focus(), true
	case "d", "delete", "backspace":
		regions := v.Selection.Regions()
		if a.fc.cursor < len(regions) {
			v.RemoveRegion(regions[a.fc.cursor])
		}
		a.clampRegionCursor()
		return a, nil, true
	case "j", "down":
		a.fc.cursor++
		a.clampRegionCursor()
		return a, nil, true
	case "k", "up":
		a.fc.cursor--
		a.clampRegionCursor()
		return a, nil, true
	case "m":
		v.SetMode(v.Mode.Next())
		a.clampRegionCursor()
		return a, nil, true
	case "+", "=":
		v.SetHorizon(v.Horizon + 1)
		return a, nil, true
	case "-", "_":
		v.SetHorizon(v.Horizon - 1)
		return a, nil, true
	case "]":
		v.SetHorizon(v.Horizon + 6)
		return a, nil, true
	case "[":
		v.SetHorizon(v.Horizon - 6)
		return a, nil, true
	case "tab":
		v.CycleFocus()
		return a, nil, true
	case "J":
		a.fc.scroll++
		return a, nil, true
	case "K":
		a.fc.scroll = max(a.fc.scroll-1, 0)
		return a, nil, true
	case "enter", "r":
		return a.submitForecast()
	}
	return a, nil, false
}

func (a *App) clampRegionCursor() {
	a.fc.cursor = min(max(a.fc.cursor, 0), max(a.fc.view.Selection.Len()-1, 0))
}

// submitForecast validates the form and starts the run. A validation failure
// is recorded in the view state and issues no requests.
func (a App) submitForecast() (App, tea.Cmd, bool) {
	sub, err := a.fc.view.Submit()
	if err != nil {
		return a, nil, true
	}
	if a.src == nil {
		a.fc.view.Fail(sub.Seq, errors.New("no data source configured"))
		return a, nil, true
	}

	total := len(sub.Requests)
	if sub.Mode == forecast.ModeStatistics {
		total = len(sub.Regions)
	}
	a.fc.progress = FetchProgressMsg{Total: total}
	a.fc.scroll = 0

	opts := forecast.RunOptions{
		Concurrency: a.cfg.Forecast.MaxConcurrency,
		Logger:      a.log,
	}
	return a, tea.Batch(runForecastCmd(a.src, sub, opts, a.runSub), a.spinner.Tick), true
}

// updateRegionInput handles keys while the region picker is open.
func (a App) updateRegionInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.fc.adding = false
		a.fc.input.Blur()
		return a, nil
	case "up", "ctrl+p":
		a.fc.suggest = max(a.fc.suggest-1, 0)
		return a, nil
	case "down", "ctrl+n", "tab":
		a.fc.suggest = min(a.fc.suggest+1, max(min(len(a.suggestions()), maxSuggestions)-1, 0))
		return a, nil
	case "enter":
		name := ""
		sugg := a.suggestions()
		typed := strings.TrimSpace(a.fc.input.Value())
		switch {
		case a.fc.suggest < len(sugg):
			name = sugg[a.fc.suggest]
		case a.catalog.Len() == 0 && typed != "":
			// Without a catalog any name is accepted; the service decides.
			name = typed
		}
		if name != "" {
			a.fc.view.AddRegion(name)
			a.fc.cursor = a.fc.view.Selection.Len() - 1
		}
		a.fc.input.SetValue("")
		a.fc.suggest = 0
		if a.fc.view.Mode == forecast.ModeSingle {
			a.fc.adding = false
			a.fc.input.Blur()
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.fc.input, cmd = a.fc.input.Update(msg)
	a.fc.suggest = 0
	return a, cmd
}

// ─── Rendering ──────────────────────────────────────────────────

func (a App) renderForecastTab(cw, h int) string {
	t := theme.Active
	v := a.fc.view

	var b strings.Builder
	b.WriteString(a.renderForecastControls(cw))
	b.WriteString("\n")

	if a.loadErr != nil {
		b.WriteString(components.AccentCard("Regions unavailable", a.loadErr.Error(), t.Orange, cw))
		b.WriteString("\n")
	}

	switch {
	case v.Loading():
		b.WriteString(a.renderRunProgress(cw))
	case v.Err() != nil:
		b.WriteString(components.AccentCard("Error", v.Err().Error(), t.Red, cw))
		if out := v.Outcome(); out != nil {
			b.WriteString("\n")
			b.WriteString(a.renderOutcome(out, cw))
		}
	case v.Outcome() != nil:
		results := a.renderOutcome(v.Outcome(), cw)
		controlsH := lipgloss.Height(b.String())
		b.WriteString(scrollLines(results, a.fc.scroll, max(h-controlsH, 1)))
	default:
		muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		b.WriteString(components.ContentCard("", muted.Render("Add regions with [a], then press Enter to run the forecast."), cw))
	}

	return b.String()
}

func (a App) renderForecastControls(cw int) string {
	t := theme.Active
	v := a.fc.view

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	activeStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)
	focusStyle := lipgloss.NewStyle().Foreground(t.Yellow).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	var body strings.Builder

	body.WriteString(labelStyle.Render(fmt.Sprintf("%-10s", "Mode")))
	for i, m := range forecast.Modes {
		if i > 0 {
			body.WriteString(space.Render("  "))
		}
		if m == v.Mode {
			body.WriteString(activeStyle.Render("● " + m.Label()))
		} else {
			body.WriteString(dimStyle.Render("○ " + m.Label()))
		}
	}
	body.WriteString("\n")

	body.WriteString(labelStyle.Render(fmt.Sprintf("%-10s", "Horizon")))
	if v.Mode == forecast.ModeStatistics {
		body.WriteString(dimStyle.Render("not used for statistics"))
	} else {
		body.WriteString(valueStyle.Render(fmt.Sprintf("%2d months ", v.Horizon)))
		body.WriteString(components.ProgressBar(float64(v.Horizon)/float64(forecast.MaxHorizon), 24))
	}
	body.WriteString("\n")

	body.WriteString(labelStyle.Render(fmt.Sprintf("%-10s", "Regions")))
	regions := v.Selection.Regions()
	if len(regions) == 0 {
		body.WriteString(dimStyle.Render("none selected"))
		body.WriteString("\n")
	}
	for i, r := range regions {
		if i > 0 {
			body.WriteString(space.Render(strings.Repeat(" ", 10)))
		}
		name := r
		if v.Mode == forecast.ModeStatistics && r == v.Focus {
			name += focusStyle.Render(" ◆")
		}
		if i == a.fc.cursor && !a.fc.adding {
			body.WriteString(markerStyle.Render("▸ ") + selStyle.Render(name))
		} else {
			body.WriteString(space.Render("  ") + valueStyle.Render(name))
		}
		body.WriteString("\n")
	}

	if a.fc.adding {
		body.WriteString("\n")
		body.WriteString(labelStyle.Render(fmt.Sprintf("%-10s", "Add")))
		body.WriteString(a.fc.input.View())
		body.WriteString("\n")
		sugg := a.suggestions()
		for i, s := range sugg[:min(len(sugg), maxSuggestions)] {
			body.WriteString(space.Render(strings.Repeat(" ", 10)))
			if i == a.fc.suggest {
				body.WriteString(markerStyle.Render("▸ ") + selStyle.Render(s))
			} else {
				body.WriteString(space.Render("  ") + dimStyle.Render(s))
			}
			body.WriteString("\n")
		}
		if extra := len(sugg) - maxSuggestions; extra > 0 {
			body.WriteString(space.Render(strings.Repeat(" ", 12)))
			body.WriteString(dimStyle.Render(fmt.Sprintf("… %d more", extra)))
			body.WriteString("\n")
		}
		if len(sugg) == 0 && a.catalog.Len() > 0 {
			body.WriteString(space.Render(strings.Repeat(" ", 12)))
			body.WriteString(dimStyle.Render("no matching regions"))
			body.WriteString("\n")
		}
	}

	return components.ContentCard("Forecast", strings.TrimRight(body.String(), "\n"), cw)
}

func (a App) renderRunProgress(cw int) string {
	p := a.fc.progress
	barW := max(min(cw-40, 40), 10)
	line := a.spinner.View() + " " + components.FetchProgress("Fetching", p.Done, p.Total, p.Region, barW)
	return components.ContentCard("Running", line, cw)
}

func (a App) renderOutcome(out *dashboard.Outcome, cw int) string {
	switch out.Mode {
	case forecast.ModeStatistics:
		return a.renderStatistics(out, cw)
	case forecast.ModeComparison:
		return a.renderComparison(out.Forecasts, cw)
	default:
		return a.renderSingle(out.Forecasts, cw)
	}
}

func (a App) renderSingle(res *forecast.Result, cw int) string {
	t := theme.Active
	if res == nil || len(res.Regions) == 0 {
		return ""
	}
	rr := res.Regions[0]
	if rr.Err != nil {
		return components.AccentCard("Error", rr.Err.Error(), t.Red, cw)
	}

	var b strings.Builder
	sum, ok := forecast.Summarize(rr.Series)
	if ok {
		insight := forecast.Describe(rr.Region, sum, a.thresholds)
		color := trendColor(insight.Trend)
		b.WriteString(components.MetricCardRow([]components.Metric{
			{Label: "Starting Value", Value: cli.FormatPrice(sum.StartValue), Delta: cli.FormatMonth(sum.StartAt)},
			{Label: "Forecast End", Value: cli.FormatPrice(sum.EndValue), Delta: cli.FormatMonth(sum.EndAt)},
			{Label: "Change", Value: cli.FormatPercent(sum.PercentChange), Delta: cli.FormatSignedPrice(sum.TotalChange), DeltaColor: color},
			{Label: "Forecast Range", Value: cli.FormatCompactPrice(sum.MinValue) + " to " + cli.FormatCompactPrice(sum.MaxValue),
				Delta: fmt.Sprintf("%d periods", sum.PeriodCount)},
		}, cw))
		b.WriteString("\n")
		b.WriteString(components.AccentCard(insight.Headline, insight.Detail, color, cw))
		b.WriteString("\n")
	}

	chartH := 12
	if a.isCompactLayout() {
		chartH = 8
	}
	chart := seriesChart(rr.Series, a.cfg.Forecast.SmoothingWindow, components.CardInnerWidth(cw), chartH)
	b.WriteString(components.ContentCard(rr.Region+" · Historical and Forecast", chart, cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Forecast Detail", forecastRows(rr.Series, components.CardInnerWidth(cw)), cw))
	return b.String()
}

// seriesChart plots one region: history, forecast, bounds and the trailing
// average of the history.
func seriesChart(s forecast.Series, window, width, height int) string {
	t := theme.Active
	n := len(s)
	hist := nanSlice(n)
	fc := nanSlice(n)
	lower := nanSlice(n)
	upper := nanSlice(n)
	labels := make([]string, n)
	for i, p := range s {
		labels[i] = cli.FormatAxisDate(p.At)
		if p.IsForecast() {
			fc[i] = p.Value
			if p.HasBounds() {
				lower[i], upper[i] = *p.Lower, *p.Upper
			}
		} else {
			hist[i] = p.Value
		}
	}

	series := []components.LineSeries{
		{Name: "Historical", Values: hist, Color: t.Historical},
		{Name: "Forecast", Values: fc, Color: t.Forecast},
	}
	// Historical points are a prefix, so the averages line up with it.
	if avg := forecast.TrailingAverage(s, window); avg != nil {
		vals := nanSlice(n)
		for i, v := range avg {
			if v.Valid {
				vals[i] = v.V
			}
		}
		series = append([]components.LineSeries{{
			Name:   fmt.Sprintf("%d-period avg", window),
			Values: vals,
			Color:  t.TextDim,
		}}, series...)
	}

	return components.LineChart(series, &components.Band{
		Name:  "Bounds",
		Lower: lower,
		Upper: upper,
		Color: t.Band,
	}, labels, width, height)
}

func forecastRows(s forecast.Series, width int) string {
	t := theme.Active
	head := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	cell := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	fc := s.Forecast()
	if len(fc) == 0 {
		return dim.Render("No forecast points.")
	}

	colW := max((width-10)/3, 12)
	var b strings.Builder
	b.WriteString(head.Render(fmt.Sprintf("%-10s%*s%*s%*s", "Month", colW, "Forecast", colW, "Lower", colW, "Upper")))
	for _, p := range fc {
		lo, hi := "-", "-"
		if p.HasBounds() {
			lo, hi = cli.FormatPrice(*p.Lower), cli.FormatPrice(*p.Upper)
		}
		b.WriteString("\n")
		b.WriteString(cell.Render(fmt.Sprintf("%-10s%*s", cli.FormatMonth(p.At), colW, cli.FormatPrice(p.Value))))
		b.WriteString(dim.Render(fmt.Sprintf("%*s%*s", colW, lo, colW, hi)))
	}
	return b.String()
}

func (a App) renderComparison(res *forecast.Result, cw int) string {
	t := theme.Active
	if res == nil {
		return ""
	}

	var b strings.Builder
	axis := res.Axis()
	if len(axis.Regions) > 0 {
		series := make([]components.LineSeries, len(axis.Regions))
		for i, r := range axis.Regions {
			col, _ := axis.Column(r)
			vals := make([]float64, len(col))
			for k, v := range col {
				vals[k] = math.NaN()
				if v.Valid {
					vals[k] = v.V
				}
			}
			series[i] = components.LineSeries{Name: r, Values: vals, Color: t.SeriesColor(i)}
		}
		labels := make([]string, len(axis.Rows))
		for i, row := range axis.Rows {
			labels[i] = cli.FormatAxisDate(row.At)
		}
		chartH := 12
		if a.isCompactLayout() {
			chartH = 8
		}
		chart := components.LineChart(series, nil, labels, components.CardInnerWidth(cw), chartH)
		b.WriteString(components.ContentCard("Regional Comparison", chart, cw))
		b.WriteString("\n")
	}

	head := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	cell := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var rows strings.Builder
	var bars []components.Bar
	nameW := 12
	for _, rs := range res.Succeeded() {
		nameW = max(nameW, lipgloss.Width(rs.Region)+2)
	}
	rows.WriteString(head.Render(fmt.Sprintf("%-*s%14s%14s%10s  %s", nameW, "Region", "Start", "End", "Change", "Trend")))
	for _, rs := range res.Succeeded() {
		sum, ok := forecast.Summarize(rs.Series)
		if !ok {
			continue
		}
		tr := forecast.Classify(sum.PercentChange, a.thresholds)
		color := trendColor(tr)
		rows.WriteString("\n")
		rows.WriteString(cell.Render(fmt.Sprintf("%-*s%14s%14s", nameW, rs.Region,
			cli.FormatPrice(sum.StartValue), cli.FormatPrice(sum.EndValue))))
		rows.WriteString(lipgloss.NewStyle().Foreground(color).Background(t.Surface).
			Render(fmt.Sprintf("%10s  %s", cli.FormatPercent(sum.PercentChange), tr)))

		pct := 0.0
		if sum.PercentChange != nil {
			pct = *sum.PercentChange
		}
		bars = append(bars, components.Bar{Label: rs.Region, Value: pct, Text: cli.FormatPercent(sum.PercentChange), Color: color})
	}

	inner := components.CardInnerWidth(cw)
	if a.isCompactLayout() || len(bars) == 0 {
		b.WriteString(components.ContentCard("Summary", rows.String(), cw))
	} else {
		widths := components.LayoutRow(cw, 2)
		b.WriteString(components.CardRow([]string{
			components.ContentCard("Summary", rows.String(), widths[0]),
			components.ContentCard("Forecast Change", components.HBarChart(bars, components.CardInnerWidth(widths[1])), widths[1]),
		}))
	}

	if failed := res.Failed(); len(failed) > 0 {
		var errs strings.Builder
		for i, f := range failed {
			if i > 0 {
				errs.WriteString("\n")
			}
			errs.WriteString(truncStr(f.Err.Error(), inner))
		}
		b.WriteString("\n")
		b.WriteString(components.AccentCard(fmt.Sprintf("%d region(s) failed", len(failed)), errs.String(), t.Orange, cw))
	}
	return b.String()
}

func (a App) renderStatistics(out *dashboard.Outcome, cw int) string {
	t := theme.Active
	head := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	cell := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	nameW := 12
	for _, st := range out.Statistics {
		nameW = max(nameW, lipgloss.Width(st.Region)+2)
	}

	var rows strings.Builder
	rows.WriteString(head.Render(fmt.Sprintf("%-*s%9s%12s%12s%12s", nameW, "Region", "Records", "Latest", "Mean", "Std Dev")))
	for _, st := range out.Statistics {
		rows.WriteString("\n")
		if st.Err != nil {
			rows.WriteString(cell.Render(fmt.Sprintf("%-*s", nameW, st.Region)))
			rows.WriteString(warn.Render(truncStr(st.Err.Error(), max(components.CardInnerWidth(cw)-nameW, 10))))
			continue
		}
		s := st.Stats
		rows.WriteString(cell.Render(fmt.Sprintf("%-*s%9s%12s%12s%12s", nameW, st.Region,
			cli.FormatNumber(int64(s.TotalRecords)), latest(s.Latest),
			cli.FormatCompactPrice(s.Mean), cli.FormatCompactPrice(s.Std))))
	}

	var b strings.Builder
	b.WriteString(components.ContentCard("Region Statistics", rows.String(), cw))

	focus := a.fc.view.Focus
	if s, ok := out.Stats(focus); ok {
		b.WriteString("\n")
		b.WriteString(components.MetricCardRow([]components.Metric{
			{Label: "Latest Value", Value: latest(s.Latest), Delta: s.Region},
			{Label: "Average", Value: cli.FormatPrice(s.Mean), Delta: "σ " + cli.FormatCompactPrice(s.Std)},
			{Label: "Low / High", Value: cli.FormatCompactPrice(s.Min) + " / " + cli.FormatCompactPrice(s.Max)},
			{Label: "Records", Value: cli.FormatNumber(int64(s.TotalRecords)), Delta: s.DateRange},
		}, cw))
		b.WriteString("\n")
		b.WriteString(dim.Render("  [Tab] cycles the region shown above"))
	}
	return b.String()
}

func latest(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return cli.FormatPrice(*v)
}

func trendColor(tr forecast.Trend) lipgloss.Color {
	t := theme.Active
	switch tr {
	case forecast.TrendPositive:
		return t.Green
	case forecast.TrendNegative:
		return t.Red
	case forecast.TrendNeutral:
		return t.Blue
	}
	return t.TextMuted
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// scrollLines drops the first offset lines of s and keeps at most limit.
func scrollLines(s string, offset, limit int) string {
	lines := strings.Split(s, "\n")
	offset = min(offset, max(len(lines)-limit, 0))
	lines = lines[offset:]
	if len(lines) > limit {
		lines = lines[:limit]
	}
	return strings.Join(lines, "\n")
}
