package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/realtyai/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline renders a unicode sparkline scaled between the min and max of
// values. NaN values render as gaps.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi, ok := valueRange(values)
	if !ok {
		return ""
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	style := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	var buf strings.Builder
	buf.Grow(len(values) * 4) // UTF-8 block chars are up to 3 bytes
	for _, v := range values {
		if math.IsNaN(v) {
			buf.WriteRune(' ')
			continue
		}
		idx := int((v - lo) / span * float64(len(blocks)-1))
		idx = min(max(idx, 0), len(blocks)-1)
		buf.WriteRune(blocks[idx]) //nolint:gosec // bounds checked above
	}

	return style.Render(buf.String())
}

// LineSeries is one plotted line. NaN values are gaps.
type LineSeries struct {
	Name   string
	Values []float64
	Color  lipgloss.Color
}

// Band is a shaded interval drawn beneath the lines. NaN on either side
// leaves the column unshaded.
type Band struct {
	Name  string
	Lower []float64
	Upper []float64
	Color lipgloss.Color
}

type plotCell struct {
	r     rune
	color lipgloss.Color
}

// LineChart plots series that share one x axis. labels name the x positions
// and are thinned to fit. When there are more points than columns the
// series are sampled evenly.
func LineChart(series []LineSeries, band *Band, labels []string, width, height int) string {
	n := 0
	for _, s := range series {
		n = max(n, len(s.Values))
	}
	if n == 0 {
		return ""
	}

	all := make([]float64, 0, n*(len(series)+2))
	for _, s := range series {
		all = append(all, s.Values...)
	}
	if band != nil {
		all = append(all, band.Lower...)
		all = append(all, band.Upper...)
	}
	lo, hi, ok := valueRange(all)
	if !ok {
		return ""
	}
	if hi == lo {
		lo, hi = lo-1, hi+1
	}

	t := theme.Active
	height = max(height, 3)

	yLabelW := max(len(formatChartLabel(hi)), len(formatChartLabel(lo)), 4) + 1
	cols := max(width-yLabelW-1, 5)

	// colIndex maps each column to a point index, or -1 for an empty column.
	// Wide series are sampled; short ones are spread across the width.
	colIndex := make([]int, cols)
	if n >= cols {
		for c := range colIndex {
			colIndex[c] = c * (n - 1) / max(cols-1, 1)
		}
	} else {
		for c := range colIndex {
			colIndex[c] = -1
		}
		for i := range n {
			colIndex[i*(cols-1)/max(n-1, 1)] = i
		}
	}

	rowOf := func(v float64) int {
		r := int(math.Round((v - lo) / (hi - lo) * float64(height-1)))
		return min(max(r, 0), height-1)
	}

	grid := make([][]plotCell, height)
	for r := range grid {
		grid[r] = make([]plotCell, cols)
	}

	if band != nil {
		for c, i := range colIndex {
			l, u := at(band.Lower, i), at(band.Upper, i)
			if math.IsNaN(l) || math.IsNaN(u) {
				continue
			}
			for r := rowOf(l); r <= rowOf(u); r++ {
				grid[r][c] = plotCell{'░', band.Color}
			}
		}
	}
	for _, s := range series {
		for c, i := range colIndex {
			v := at(s.Values, i)
			if math.IsNaN(v) {
				continue
			}
			grid[rowOf(v)][c] = plotCell{'●', s.Color}
		}
	}

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)

	yLabels := map[int]string{
		height - 1: formatChartLabel(hi),
		0:          formatChartLabel(lo),
	}
	if height >= 5 {
		yLabels[(height-1)/2] = formatChartLabel(lo + (hi-lo)*float64((height-1)/2)/float64(height-1))
	}

	var b strings.Builder
	for r := height - 1; r >= 0; r-- {
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, yLabels[r])))
		b.WriteString(axisStyle.Render("│"))

		// Group runs of the same color to keep the escape sequences short.
		row := grid[r]
		for c := 0; c < cols; {
			run := c
			for run < cols && row[run].color == row[c].color && (row[run].r == 0) == (row[c].r == 0) {
				run++
			}
			var seg strings.Builder
			for k := c; k < run; k++ {
				if row[k].r == 0 {
					seg.WriteRune(' ')
				} else {
					seg.WriteRune(row[k].r)
				}
			}
			if row[c].r == 0 {
				b.WriteString(blank.Render(seg.String()))
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(row[c].color).Background(t.Surface).Render(seg.String()))
			}
			c = run
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(strings.Repeat(" ", yLabelW)))
	b.WriteString(axisStyle.Render("└"))
	b.WriteString(axisStyle.Render(strings.Repeat("─", cols)))

	if len(labels) == n {
		b.WriteString("\n")
		b.WriteString(blank.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(axisStyle.Render(placeLabels(labels, colIndex)))
	}

	if legend := chartLegend(series, band); legend != "" {
		b.WriteString("\n")
		b.WriteString(blank.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(legend)
	}

	return b.String()
}

// placeLabels lays x labels under their columns without overlap. The last
// point is always labeled when it fits.
func placeLabels(labels []string, colIndex []int) string {
	cols := len(colIndex)
	buf := []byte(strings.Repeat(" ", cols))

	lastCol := -1
	for c := cols - 1; c >= 0; c-- {
		if colIndex[c] >= 0 {
			lastCol = c
			break
		}
	}
	if lastCol < 0 {
		return ""
	}

	limit := cols
	if lbl := labels[colIndex[lastCol]]; len(lbl) <= cols {
		pos := min(lastCol, cols-len(lbl))
		copy(buf[pos:], lbl)
		limit = pos - 1
	}

	end := -1
	for c, i := range colIndex {
		if i < 0 || c <= end || c == lastCol {
			continue
		}
		lbl := labels[i]
		if c+len(lbl) > limit {
			break
		}
		copy(buf[c:], lbl)
		end = c + len(lbl)
	}
	return strings.TrimRight(string(buf), " ")
}

func chartLegend(series []LineSeries, band *Band) string {
	t := theme.Active
	text := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var parts []string
	for _, s := range series {
		if s.Name == "" {
			continue
		}
		dot := lipgloss.NewStyle().Foreground(s.Color).Background(t.Surface).Render("●")
		parts = append(parts, dot+text.Render(" "+s.Name))
	}
	if band != nil && band.Name != "" {
		shade := lipgloss.NewStyle().Foreground(band.Color).Background(t.Surface).Render("░")
		parts = append(parts, shade+text.Render(" "+band.Name))
	}
	return strings.Join(parts, text.Render("   "))
}

// Bar is one row of a horizontal bar chart.
type Bar struct {
	Label string
	Value float64
	// Text is shown after the bar; empty formats Value.
	Text  string
	Color lipgloss.Color
}

// HBarChart renders labeled horizontal bars scaled to the largest magnitude.
// Negative values draw the same way as positive ones; their color and text
// carry the sign.
func HBarChart(bars []Bar, width int) string {
	if len(bars) == 0 {
		return ""
	}
	t := theme.Active

	labelW, textW := 0, 0
	peak := 0.0
	texts := make([]string, len(bars))
	for i, bar := range bars {
		texts[i] = bar.Text
		if texts[i] == "" {
			texts[i] = formatChartLabel(bar.Value)
		}
		labelW = max(labelW, lipgloss.Width(bar.Label))
		textW = max(textW, lipgloss.Width(texts[i]))
		peak = math.Max(peak, math.Abs(bar.Value))
	}
	if peak == 0 {
		peak = 1
	}
	barSpace := max(width-labelW-textW-3, 4)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)

	lines := make([]string, 0, len(bars))
	for i, bar := range bars {
		n := int(math.Round(math.Abs(bar.Value) / peak * float64(barSpace)))
		color := bar.Color
		if color == "" {
			color = t.Accent
		}
		barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
		line := labelStyle.Render(fmt.Sprintf("%-*s", labelW, bar.Label)) +
			blank.Render(" ") +
			barStyle.Render(strings.Repeat("█", n)) +
			blank.Render(strings.Repeat(" ", barSpace-n+1)) +
			barStyle.Render(fmt.Sprintf("%*s", textW, texts[i]))
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func at(vals []float64, i int) float64 {
	if i >= 0 && i < len(vals) {
		return vals[i]
	}
	return math.NaN()
}

func valueRange(vals []float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		ok = true
	}
	return lo, hi, ok
}

func formatChartLabel(v float64) string {
	if v < 0 {
		return "-" + formatChartLabel(-v)
	}
	switch {
	case v >= 1e9:
		if v == math.Trunc(v/1e9)*1e9 {
			return fmt.Sprintf("%.0fB", v/1e9)
		}
		return fmt.Sprintf("%.1fB", v/1e9)
	case v >= 1e6:
		if v == math.Trunc(v/1e6)*1e6 {
			return fmt.Sprintf("%.0fM", v/1e6)
		}
		return fmt.Sprintf("%.2fM", v/1e6)
	case v >= 1e3:
		if v == math.Trunc(v/1e3)*1e3 {
			return fmt.Sprintf("%.0fk", v/1e3)
		}
		return fmt.Sprintf("%.1fk", v/1e3)
	case v >= 1:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
