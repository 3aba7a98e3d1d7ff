package cmd

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/theirongolddev/realtyai/internal/cli"
	"github.com/theirongolddev/realtyai/internal/dashboard"
	"github.com/theirongolddev/realtyai/internal/forecast"

	"github.com/spf13/cobra"
)

var (
	flagHorizon     int
	flagMode        string
	flagHistoryRows int
	flagAllRows     bool
)

var forecastCmd = &cobra.Command{
	Use:   "forecast REGION [REGION...]",
	Short: "Forecast home values for one or more regions",
	Long: "Forecast home values. Single mode forecasts the first region; comparison mode " +
		"aligns every region on one time axis; statistics mode shows descriptive statistics.",
	Example: "  realtyai forecast California\n" +
		"  realtyai forecast Texas Florida Ohio --mode comparison --horizon 24",
	RunE: runForecast,
}

var statsCmd = &cobra.Command{
	Use:   "stats REGION [REGION...]",
	Short: "Show descriptive statistics for regions",
	RunE: func(cmd *cobra.Command, args []string) error {
		flagMode = string(forecast.ModeStatistics)
		return runForecast(cmd, args)
	},
}

func init() {
	forecastCmd.Flags().IntVarP(&flagHorizon, "horizon", "H", 0, "Months to forecast, 1 to 36 (default from config)")
	forecastCmd.Flags().StringVarP(&flagMode, "mode", "m", "", "single, comparison or statistics (default from config)")
	forecastCmd.Flags().IntVar(&flagHistoryRows, "history", 6, "Historical months to print before the forecast")
	forecastCmd.Flags().BoolVar(&flagAllRows, "all", false, "Print the full history")
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(statsCmd)
}

func runForecast(_ *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.Close()

	modeName := flagMode
	if modeName == "" {
		modeName = rt.cfg.Forecast.DefaultMode
	}
	mode, err := forecast.ParseMode(modeName)
	if err != nil {
		return err
	}
	horizon := flagHorizon
	if horizon == 0 {
		horizon = rt.cfg.Forecast.DefaultHorizon
	}

	// Comparison takes every region; single mode keeps only the first.
	view := dashboard.New(horizon, forecast.ModeComparison)
	for _, r := range args {
		view.AddRegion(strings.TrimSpace(r))
	}
	if mode == forecast.ModeSingle && view.Selection.Len() > 1 {
		progressf("  Single mode forecasts %s only; use --mode comparison for all regions\n", view.Selection.First())
	}
	view.SetMode(mode)

	sub, err := view.Submit()
	if err != nil {
		return err
	}

	total := len(sub.Requests)
	if mode == forecast.ModeStatistics {
		total = len(sub.Regions)
	}
	progressf("  Fetching %d region(s) from %s...\n", total, rt.src.Name())

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout(rt))
	defer cancel()

	out := dashboard.Execute(ctx, rt.src, sub, forecast.RunOptions{
		Concurrency: rt.cfg.Forecast.MaxConcurrency,
		Logger:      rt.log,
		OnProgress: func(done, total int, _ string) {
			progressf("\r  %s", cli.RenderProgressBar(done, total, 30))
		},
	})
	if total > 0 && mode != forecast.ModeStatistics {
		progressf("\n")
	}
	view.Complete(sub.Seq, out)

	th := forecast.Thresholds{
		Positive: rt.cfg.Forecast.TrendPositivePct,
		Negative: rt.cfg.Forecast.TrendNegativePct,
	}

	switch mode {
	case forecast.ModeStatistics:
		printStatistics(out.Statistics)
	case forecast.ModeComparison:
		printComparison(out.Forecasts, th)
	default:
		printSingle(out.Forecasts, th, rt.cfg.Forecast.SmoothingWindow)
	}
	printFailures(out)

	return view.Err()
}

func printSingle(res *forecast.Result, th forecast.Thresholds, window int) {
	ok := res.Succeeded()
	if len(ok) == 0 {
		return
	}
	rs := ok[0]

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("%s  %d-month forecast", strings.ToUpper(rs.Region), res.Horizon)))
	fmt.Println()

	if sum, ok := forecast.Summarize(rs.Series); ok {
		insight := forecast.Describe(rs.Region, sum, th)
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Metric", "Value"},
			Rows: [][]string{
				{"Period", cli.FormatPeriod(sum.StartAt, sum.EndAt, sum.PeriodCount)},
				{"Start Value", cli.FormatPrice(sum.StartValue)},
				{"End Value", cli.FormatPrice(sum.EndValue)},
				{"Total Change", cli.FormatSignedPrice(sum.TotalChange)},
				{"Change", trendStyled(insight.Trend, cli.FormatPercent(sum.PercentChange))},
				{"---"},
				{"High", cli.FormatPrice(sum.MaxValue)},
				{"Low", cli.FormatPrice(sum.MinValue)},
			},
		}))
		fmt.Println()
		fmt.Printf("  %s: %s\n", trendStyled(insight.Trend, insight.Headline), insight.Detail)
	}

	hist := rs.Series.Historical().Values()
	if len(hist) > 0 {
		fmt.Printf("  History   %s\n", cli.RenderSparkline(hist))
	}
	if avg := forecast.TrailingAverage(rs.Series, window); len(avg) > 0 && window > 1 {
		vals := make([]float64, len(avg))
		for i, v := range avg {
			vals[i] = nanIfInvalid(v)
		}
		fmt.Printf("  %d-mo avg  %s\n", window, cli.RenderSparkline(vals))
	}
	fmt.Println()

	fmt.Print(cli.RenderTable(seriesTable(rs.Series)))
}

// seriesTable lays out a series in the columns the service returns.
func seriesTable(s forecast.Series) cli.Table {
	hist, fc := s.Historical(), s.Forecast()
	if !flagAllRows && flagHistoryRows >= 0 && len(hist) > flagHistoryRows {
		hist = hist[len(hist)-flagHistoryRows:]
	}

	rows := make([][]string, 0, len(hist)+len(fc)+1)
	for _, p := range hist {
		rows = append(rows, []string{cli.FormatMonth(p.At), cli.FormatPrice(p.Value), "", "", ""})
	}
	if len(hist) > 0 && len(fc) > 0 {
		rows = append(rows, []string{"---"})
	}
	for _, p := range fc {
		row := []string{cli.FormatMonth(p.At), "", cli.FormatPrice(p.Value), "", ""}
		if p.HasBounds() {
			row[3] = cli.FormatPrice(*p.Lower)
			row[4] = cli.FormatPrice(*p.Upper)
		}
		rows = append(rows, row)
	}
	return cli.Table{
		Headers: []string{"Month", "Historical Price", "Forecasted Price", "Lower Bound", "Upper Bound"},
		Rows:    rows,
	}
}

func printComparison(res *forecast.Result, th forecast.Thresholds) {
	ok := res.Succeeded()
	if len(ok) == 0 {
		return
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("REGION COMPARISON  %d regions, %d months", len(ok), res.Horizon)))
	fmt.Println()

	summary := make([][]string, 0, len(ok))
	for _, rs := range ok {
		sum, has := forecast.Summarize(rs.Series)
		if !has {
			summary = append(summary, []string{rs.Region, "-", "-", "-", "no forecast"})
			continue
		}
		trend := forecast.Classify(sum.PercentChange, th)
		summary = append(summary, []string{
			rs.Region,
			cli.FormatCompactPrice(sum.StartValue),
			cli.FormatCompactPrice(sum.EndValue),
			trendStyled(trend, cli.FormatPercent(sum.PercentChange)),
			trendStyled(trend, trend.String()),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Forecast Summary",
		Headers: []string{"Region", "Start", "End", "Change", "Trend"},
		Rows:    summary,
	}))
	fmt.Println()

	axis := res.Axis()
	rows := axis.Rows
	if !flagAllRows && flagHistoryRows >= 0 {
		// Keep the tail of the history before the first forecast row.
		first := len(rows)
		for i, r := range rows {
			if anyValid(r.Forecast) {
				first = i
				break
			}
		}
		if start := first - flagHistoryRows; start > 0 {
			rows = rows[start:]
		}
	}

	headers := append([]string{"Month"}, axis.Regions...)
	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		row := make([]string, 0, len(headers))
		row = append(row, cli.FormatMonth(r.At))
		for i := range axis.Regions {
			switch {
			case r.Forecast[i].Valid:
				row = append(row, cli.FormatCompactPrice(r.Forecast[i].V)+"*")
			case r.Historical[i].Valid:
				row = append(row, cli.FormatCompactPrice(r.Historical[i].V))
			default:
				row = append(row, "-")
			}
		}
		table = append(table, row)
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Values (* forecast)",
		Headers: headers,
		Rows:    table,
	}))
}

func printStatistics(results []forecast.StatisticsResult) {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		st := r.Stats
		latest := "n/a"
		if st.Latest != nil {
			latest = cli.FormatPrice(*st.Latest)
		}
		rows = append(rows, []string{
			r.Region,
			cli.FormatNumber(int64(st.TotalRecords)),
			st.DateRange,
			latest,
			cli.FormatPrice(st.Mean),
			cli.FormatPrice(st.Std),
			cli.FormatPrice(st.Min),
			cli.FormatPrice(st.Max),
		})
	}
	if len(rows) == 0 {
		return
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("REGION STATISTICS"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Region", "Records", "Date Range", "Latest", "Mean", "Std Dev", "Min", "Max"},
		Rows:    rows,
	}))

	if len(rows) < 2 {
		return
	}
	peak, labelW := 0.0, 0
	for _, r := range results {
		if r.Err == nil {
			peak = math.Max(peak, r.Stats.Mean)
			labelW = max(labelW, len(r.Region))
		}
	}
	fmt.Println()
	fmt.Println("  Mean value")
	for _, r := range results {
		if r.Err == nil {
			fmt.Println(cli.RenderHorizontalBar(r.Region, r.Stats.Mean, peak, 40, labelW))
		}
	}
}

// printFailures lists the regions that failed. The rest of the output is
// still useful, so these are warnings.
func printFailures(out *dashboard.Outcome) {
	var failed []error
	if out.Forecasts != nil {
		for _, rr := range out.Forecasts.Failed() {
			failed = append(failed, fmt.Errorf("%s: %w", rr.Region, rr.Err))
		}
	}
	for _, sr := range out.Statistics {
		if sr.Err != nil {
			failed = append(failed, sr.Err)
		}
	}
	if len(failed) == 0 {
		return
	}
	fmt.Fprintln(os.Stderr)
	for _, err := range failed {
		fmt.Fprintf(os.Stderr, "  %s %s\n", cli.WarnStyle.Render("failed"), err)
	}
	progressf("  %d region(s) could not be loaded\n", len(failed))
}

func trendStyled(tr forecast.Trend, s string) string {
	switch tr {
	case forecast.TrendPositive:
		return cli.PositiveStyle.Render(s)
	case forecast.TrendNegative:
		return cli.NegativeStyle.Render(s)
	case forecast.TrendNeutral:
		return cli.NeutralStyle.Render(s)
	}
	return cli.MutedStyle.Render(s)
}

func nanIfInvalid(v forecast.Value) float64 {
	if v.Valid {
		return v.V
	}
	return math.NaN()
}

func anyValid(vals []forecast.Value) bool {
	for _, v := range vals {
		if v.Valid {
			return true
		}
	}
	return false
}
