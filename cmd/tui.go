package cmd

import (
	"fmt"

	"github.com/theirongolddev/realtyai/internal/config"
	"github.com/theirongolddev/realtyai/internal/logging"
	"github.com/theirongolddev/realtyai/internal/tui"
	"github.com/theirongolddev/realtyai/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui [REGION...]",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, args []string) error {
	needSetup := flagConfig == "" && !config.Exists()

	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.Close()

	// The screen belongs to the TUI, so logs go to a file.
	logf, err := logging.OpenFile(config.LogPath(rt.cfg))
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer func() { _ = logf.Close() }()
	rt.log.SetOutput(logf)

	theme.SetActive(rt.cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(tui.Options{
		Config:     rt.cfg,
		Source:     rt.src,
		Store:      rt.store,
		Logger:     rt.log,
		Regions:    args,
		NeedSetup:  needSetup,
		ConfigPath: configPath(),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
