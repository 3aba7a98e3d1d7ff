package components

import (
	"strings"

	"github.com/theirongolddev/realtyai/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// StatusInfo is what the bottom bar reports.
type StatusInfo struct {
	Source  string // "http" or "synthetic"
	Target  string // service URL, empty for synthetic data
	Regions int
	// Stale marks a region catalog served from an expired cache entry.
	Stale bool
	Busy  bool
	Hint  string
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.SurfaceHover).
		Width(width)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceHover)
	warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.SurfaceHover)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.SurfaceHover)

	left := muted.Render(" [?]help  [q]uit")
	if info.Hint != "" {
		left += muted.Render("  " + info.Hint)
	}

	var right strings.Builder
	if info.Busy {
		right.WriteString(accent.Render("working… "))
	}
	if info.Stale {
		right.WriteString(warn.Render("regions cached (offline) "))
	}
	src := info.Source
	if info.Target != "" {
		src += " " + info.Target
	}
	if src != "" {
		right.WriteString(muted.Render(src + " "))
	}

	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right.String()), 0)
	bar := left + muted.Render(strings.Repeat(" ", padding)) + right.String()

	return style.Render(bar)
}
