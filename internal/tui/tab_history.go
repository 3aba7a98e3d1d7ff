package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/realtyai/internal/cli"
	"github.com/theirongolddev/realtyai/internal/model"
	"github.com/theirongolddev/realtyai/internal/store"
	"github.com/theirongolddev/realtyai/internal/tui/components"
	"github.com/theirongolddev/realtyai/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// historyState tracks the prediction history tab.
type historyState struct {
	items    []model.Prediction
	stats    model.PredictionStats
	err      error
	cursor   int
	disabled bool
}

type historyLoadedMsg struct {
	Items    []model.Prediction
	Stats    model.PredictionStats
	Err      error
	Disabled bool
}

func (h *historyState) move(delta int) {
	h.cursor += delta
	h.clamp()
}

func (h *historyState) clamp() {
	h.cursor = min(max(h.cursor, 0), max(len(h.items)-1, 0))
}

func (h historyState) selected() (model.Prediction, bool) {
	if h.cursor < len(h.items) {
		return h.items[h.cursor], true
	}
	return model.Prediction{}, false
}

func loadHistoryCmd(st *store.Cache, limit int) tea.Cmd {
	return func() tea.Msg {
		if st == nil {
			return historyLoadedMsg{Disabled: true}
		}
		items, err := st.RecentPredictions(limit)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		stats, err := st.PredictionStats()
		return historyLoadedMsg{Items: items, Stats: stats, Err: err}
	}
}

func deletePredictionCmd(st *store.Cache, id string, limit int) tea.Cmd {
	return func() tea.Msg {
		if err := st.DeletePrediction(id); err != nil {
			return historyLoadedMsg{Err: err}
		}
		return loadHistoryCmd(st, limit)()
	}
}

func (a App) updateHistoryKeys(key string) (App, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.hist.move(1)
		return a, nil, true
	case "k", "up":
		a.hist.move(-1)
		return a, nil, true
	case "g":
		a.hist.cursor = 0
		return a, nil, true
	case "G":
		a.hist.cursor = len(a.hist.items) - 1
		a.hist.clamp()
		return a, nil, true
	case "r":
		return a, loadHistoryCmd(a.store, a.cfg.Predict.HistoryLimit), true
	case "D":
		if p, ok := a.hist.selected(); ok && a.store != nil {
			return a, deletePredictionCmd(a.store, p.ID, a.cfg.Predict.HistoryLimit), true
		}
		return a, nil, true
	}
	return a, nil, false
}

func (a App) renderHistoryTab(cw, h int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	if a.hist.disabled || a.store == nil {
		return components.ContentCard("History", muted.Render("History is off: the local store could not be opened."), cw)
	}
	if a.hist.err != nil {
		return components.AccentCard("History", a.hist.err.Error(), t.Red, cw)
	}
	if len(a.hist.items) == 0 {
		return components.ContentCard("History", muted.Render("No predictions yet. Price a property on the Predict tab."), cw)
	}

	st := a.hist.stats
	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Predictions", Value: cli.FormatNumber(int64(st.Count)), Delta: "last " + cli.FormatAgo(st.Latest)},
		{Label: "Average", Value: fmt.Sprintf("₹%.2f L", st.MeanLakhs)},
		{Label: "Range", Value: fmt.Sprintf("₹%.1f to %.1f L", st.MinLakhs, st.MaxLakhs)},
		{Label: "Cities", Value: cli.FormatNumber(int64(st.Cities))},
	}, cw))
	b.WriteString("\n")

	inner := components.CardInnerWidth(cw)
	head := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	row := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	sel := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)

	titleW := max(inner-62, 12)
	format := fmt.Sprintf("%%-16s%%-%ds%%-14s%%5s%%10s%%14s", titleW)

	// Leave room for the stats row and the detail card.
	visible := max(h-lipgloss.Height(b.String())-14, 3)
	start := 0
	if a.hist.cursor >= visible {
		start = a.hist.cursor - visible + 1
	}
	end := min(start+visible, len(a.hist.items))

	var list strings.Builder
	list.WriteString(head.Render(fmt.Sprintf(format, "When", "Title", "City", "BHK", "Area", "Price")))
	for i := start; i < end; i++ {
		p := a.hist.items[i]
		line := fmt.Sprintf(format,
			truncStr(cli.FormatAgo(p.CreatedAt), 15),
			truncStr(p.Title, titleW-1),
			truncStr(p.City, 13),
			fmt.Sprint(p.BHK),
			fmt.Sprintf("%.0f", p.TotalArea),
			fmt.Sprintf("₹%.2f L", p.PriceLakhs))
		list.WriteString("\n")
		if i == a.hist.cursor {
			list.WriteString(sel.Render(padRightTo(line, inner)))
		} else {
			list.WriteString(row.Render(line))
		}
	}
	b.WriteString(components.ContentCard(fmt.Sprintf("Recent Predictions (%d)", len(a.hist.items)), list.String(), cw))

	if p, ok := a.hist.selected(); ok {
		b.WriteString("\n")
		b.WriteString(renderPredictionCards(p, a.cfg.Predict.USDToINR, cw))
	}
	return b.String()
}

func padRightTo(s string, w int) string {
	if gap := w - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
