package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/realtyai/internal/model"
	"github.com/theirongolddev/realtyai/internal/predict"
	"github.com/theirongolddev/realtyai/internal/source"
	"github.com/theirongolddev/realtyai/internal/store"
	"github.com/theirongolddev/realtyai/internal/tui/components"
	"github.com/theirongolddev/realtyai/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// PredictValues holds the raw text of the prediction form.
type PredictValues struct {
	Title        string
	Location     string
	Area         string
	Baths        string
	Balcony      bool
	PricePerSqft string
}

// Form parses the raw values. Blank price per square foot means the default.
func (v PredictValues) Form() (predict.Form, error) {
	area, err := strconv.ParseFloat(strings.TrimSpace(v.Area), 64)
	if err != nil {
		return predict.Form{}, &predict.FieldError{Field: "area", Message: "total area must be a number"}
	}
	baths, err := strconv.Atoi(strings.TrimSpace(v.Baths))
	if err != nil {
		return predict.Form{}, &predict.FieldError{Field: "baths", Message: "bathrooms must be a whole number"}
	}
	var ppsf float64
	if s := strings.TrimSpace(v.PricePerSqft); s != "" {
		if ppsf, err = strconv.ParseFloat(s, 64); err != nil {
			return predict.Form{}, &predict.FieldError{Field: "price_per_sqft", Message: "price per sq ft must be a number"}
		}
	}
	f := predict.Form{
		Title:        v.Title,
		Location:     v.Location,
		TotalArea:    area,
		Baths:        baths,
		Balcony:      v.Balcony,
		PricePerSqft: ppsf,
	}
	return f, f.Validate()
}

// NewPredictForm builds the property form bound to vals.
func NewPredictForm(vals *PredictValues, defaultPPSF float64) *huh.Form {
	if vals.Baths == "" {
		vals.Baths = "2"
	}
	required := func(what string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s is required", what)
			}
			return nil
		}
	}
	intRange := func(lo, hi int, what string) func(string) error {
		return func(s string) error {
			n, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil || n < lo || n > hi {
				return fmt.Errorf("%s must be between %d and %d", what, lo, hi)
			}
			return nil
		}
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Property title").
				Description("e.g. 3 BHK Flat for sale in Baner. BHK and type are read from it.").
				Value(&vals.Title).
				Validate(required("property title")),
			huh.NewInput().
				Title("Location").
				Description("Locality, City").
				Placeholder("Baner, Pune").
				Value(&vals.Location).
				Validate(required("location")),
			huh.NewInput().
				Title("Total area (sq ft)").
				Placeholder("1200").
				Value(&vals.Area).
				Validate(intRange(predict.MinArea, predict.MaxArea, "total area")),
			huh.NewInput().
				Title("Bathrooms").
				Value(&vals.Baths).
				Validate(intRange(predict.MinBaths, predict.MaxBaths, "bathrooms")),
			huh.NewConfirm().
				Title("Balcony").
				Affirmative("Yes").
				Negative("No").
				Value(&vals.Balcony),
			huh.NewInput().
				Title("Price per sq ft (₹)").
				Description(fmt.Sprintf("Leave blank for the default of %.0f.", defaultPPSF)).
				Value(&vals.PricePerSqft),
		),
	).WithShowHelp(true)
}

// predictState tracks the predict tab state.
type predictState struct {
	form    *huh.Form
	vals    *PredictValues // pointer so form bindings survive model copies
	pending bool
	result  *model.Prediction
	err     error
	saveErr error
}

func newPredictState() predictState {
	return predictState{vals: &PredictValues{}}
}

type predictionDoneMsg struct {
	Pred    model.Prediction
	Err     error
	SaveErr error
}

func (a App) updatePredictKeys(key string) (App, tea.Cmd, bool) {
	switch key {
	case "enter", "n":
		if a.pred.pending {
			return a, nil, true
		}
		// Keep the previous entries so a tweak is one edit away.
		a.pred.form = NewPredictForm(a.pred.vals, a.cfg.Predict.DefaultPricePerSqft).
			WithWidth(components.CardInnerWidth(a.contentWidth()))
		return a, a.pred.form.Init(), true
	}
	return a, nil, false
}

func (a App) updatePredictForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		a.pred.form = nil
		return a, nil
	}

	form, cmd := a.pred.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.pred.form = f
	}

	switch a.pred.form.State {
	case huh.StateCompleted:
		a.pred.form = nil
		f, err := a.pred.vals.Form()
		if err != nil {
			a.pred.err = err
			return a, nil
		}
		a.pred.pending = true
		a.pred.err = nil
		return a, tea.Batch(predictCmd(a.src, a.store, f, a.cfg.Predict.DefaultPricePerSqft), a.spinner.Tick)
	case huh.StateAborted:
		a.pred.form = nil
		return a, nil
	}
	return a, cmd
}

func (a App) handlePrediction(msg predictionDoneMsg) (tea.Model, tea.Cmd) {
	a.pred.pending = false
	a.pred.err = msg.Err
	a.pred.saveErr = msg.SaveErr
	if msg.Err != nil {
		return a, nil
	}
	p := msg.Pred
	a.pred.result = &p
	if msg.SaveErr != nil {
		a.log.WithError(msg.SaveErr).Warn("prediction not saved to history")
		return a, nil
	}
	return a, loadHistoryCmd(a.store, a.cfg.Predict.HistoryLimit)
}

// predictCmd prices the property and records it in history.
func predictCmd(src source.Source, st *store.Cache, f predict.Form, defaultPPSF float64) tea.Cmd {
	return func() tea.Msg {
		if src == nil {
			return predictionDoneMsg{Err: fmt.Errorf("no data source configured")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		p, err := predict.Estimate(ctx, src, f, defaultPPSF)
		if err != nil {
			return predictionDoneMsg{Err: err}
		}
		p.Source = src.Name()
		if st == nil {
			return predictionDoneMsg{Pred: p}
		}
		saved, err := st.SavePrediction(p)
		return predictionDoneMsg{Pred: saved, SaveErr: err}
	}
}

func (a App) renderPredictTab(cw int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	if a.pred.form != nil {
		return components.AccentCard("New Prediction", a.pred.form.View(), t.BorderAccent, cw)
	}

	var b strings.Builder
	switch {
	case a.pred.pending:
		b.WriteString(components.ContentCard("Estimating", a.spinner.View()+muted.Render(" Asking "+a.sourceLabel()+" for a price..."), cw))
		b.WriteString("\n")
	case a.pred.err != nil:
		b.WriteString(components.AccentCard("Error", a.pred.err.Error(), t.Red, cw))
		b.WriteString("\n")
	}

	if p := a.pred.result; p != nil {
		b.WriteString(renderPredictionCards(*p, a.cfg.Predict.USDToINR, cw))
		b.WriteString("\n")
		if a.pred.saveErr != nil {
			b.WriteString(components.AccentCard("History", "Not saved: "+a.pred.saveErr.Error(), t.Orange, cw))
			b.WriteString("\n")
		}
	}

	b.WriteString(components.ContentCard("", muted.Render("Press Enter to price a property."), cw))
	return b.String()
}

// renderPredictionCards shows a predicted price in lakhs, crores and dollars
// with the property it was computed for.
func renderPredictionCards(p model.Prediction, usdRate float64, cw int) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	price := predict.PriceFromLakhs(p.PriceLakhs)

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Predicted Price", Value: predict.FormatINR(price.Rupees()),
			Delta: fmt.Sprintf("%s lakhs", price.Lakhs().StringFixed(2)), DeltaColor: t.Green},
		{Label: "In Crores", Value: "₹" + price.Crores().StringFixed(2) + " Cr"},
		{Label: "In US Dollars", Value: predict.FormatUSD(price.USD(usdRate)),
			Delta: fmt.Sprintf("at ₹%.2f/$", usdRate)},
	}, cw))
	b.WriteString("\n")

	balcony := "No"
	if p.Balcony {
		balcony = "Yes"
	}
	rows := []struct{ k, v string }{
		{"Title", p.Title},
		{"Type", p.PropertyType},
		{"Location", p.Location},
		{"City", p.City},
		{"BHK", strconv.Itoa(p.BHK)},
		{"Area", fmt.Sprintf("%.0f sq ft", p.TotalArea)},
		{"Price / sq ft", fmt.Sprintf("₹%.0f", p.PricePerSqft)},
		{"Bathrooms", strconv.Itoa(p.Bathroom)},
		{"Balcony", balcony},
	}
	var details strings.Builder
	for i, r := range rows {
		if i > 0 {
			details.WriteString("\n")
		}
		details.WriteString(label.Render(fmt.Sprintf("%-15s", r.k)))
		details.WriteString(value.Render(truncStr(r.v, components.CardInnerWidth(cw)-15)))
	}
	b.WriteString(components.ContentCard("Property", details.String(), cw))
	return b.String()
}
