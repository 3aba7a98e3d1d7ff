package cmd

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/realtyai/internal/cli"

	"github.com/spf13/cobra"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent price predictions",
	RunE:  runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one saved prediction",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete a saved prediction",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryRm,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every saved prediction",
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.PersistentFlags().IntVarP(&flagHistoryLimit, "limit", "n", 0, "Predictions to list (default from config)")
	historyCmd.AddCommand(historyShowCmd, historyRmCmd, historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

var errNoStore = errors.New("prediction history is unavailable: the local store could not be opened")

func runHistory(_ *cobra.Command, _ []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.Close()
	if rt.store == nil {
		return errNoStore
	}

	limit := flagHistoryLimit
	if limit <= 0 {
		limit = rt.cfg.Predict.HistoryLimit
	}
	items, err := rt.store.RecentPredictions(limit)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("\n  No predictions yet. Try `realtyai predict`.")
		return nil
	}
	stats, err := rt.store.PredictionStats()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("PREDICTION HISTORY  %d of %d", len(items), stats.Count)))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Predictions", cli.FormatNumber(int64(stats.Count))},
			{"Cities", cli.FormatNumber(int64(stats.Cities))},
			{"Average", fmt.Sprintf("₹%.2f L", stats.MeanLakhs)},
			{"Lowest", fmt.Sprintf("₹%.2f L", stats.MinLakhs)},
			{"Highest", fmt.Sprintf("₹%.2f L", stats.MaxLakhs)},
			{"Latest", cli.FormatAgo(stats.Latest)},
		},
	}))
	fmt.Println()

	rows := make([][]string, 0, len(items))
	maxLakhs := stats.MaxLakhs
	for _, p := range items {
		rows = append(rows, []string{
			p.ID[:min(8, len(p.ID))],
			cli.FormatAgo(p.CreatedAt),
			p.Title,
			p.City,
			fmt.Sprintf("%.0f", p.TotalArea),
			fmt.Sprintf("₹%.2f L", p.PriceLakhs),
			priceBar(p.PriceLakhs, maxLakhs, 12),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"ID", "When", "Title", "City", "Sq Ft", "Price", ""},
		Rows:    rows,
	}))
	return nil
}

func runHistoryShow(_ *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.Close()
	if rt.store == nil {
		return errNoStore
	}

	items, err := rt.store.RecentPredictions(0)
	if err != nil {
		return err
	}
	for _, p := range items {
		if matchesID(p.ID, args[0]) {
			printPrediction(p, rt.cfg.Predict.USDToINR)
			return nil
		}
	}
	return fmt.Errorf("no prediction with id %q", args[0])
}

func runHistoryRm(_ *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.Close()
	if rt.store == nil {
		return errNoStore
	}

	items, err := rt.store.RecentPredictions(0)
	if err != nil {
		return err
	}
	for _, p := range items {
		if matchesID(p.ID, args[0]) {
			if err := rt.store.DeletePrediction(p.ID); err != nil {
				return err
			}
			fmt.Printf("  Deleted %s (%s)\n", p.ID, p.Title)
			return nil
		}
	}
	return fmt.Errorf("no prediction with id %q", args[0])
}

func runHistoryClear(_ *cobra.Command, _ []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.Close()
	if rt.store == nil {
		return errNoStore
	}

	n, err := rt.store.ClearPredictions()
	if err != nil {
		return err
	}
	fmt.Printf("  Deleted %d prediction(s)\n", n)
	return nil
}

func priceBar(v, peak float64, width int) string {
	if peak <= 0 {
		return ""
	}
	n := min(max(int(math.Round(v/peak*float64(width))), 0), width)
	return cli.NeutralStyle.Render(strings.Repeat("█", n))
}

// matchesID accepts a full id or the short prefix printed by `history`.
func matchesID(id, want string) bool {
	return len(want) >= 4 && len(want) <= len(id) && id[:len(want)] == want
}
