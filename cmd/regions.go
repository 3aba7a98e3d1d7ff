package cmd

import (
	"context"
	"fmt"

	"github.com/theirongolddev/realtyai/internal/cli"
	"github.com/theirongolddev/realtyai/internal/region"

	"github.com/spf13/cobra"
)

var flagRefreshRegions bool

var regionsCmd = &cobra.Command{
	Use:   "regions [FILTER]",
	Short: "List the regions the forecaster knows",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRegions,
}

func init() {
	regionsCmd.Flags().BoolVar(&flagRefreshRegions, "refresh", false, "Ignore the cached catalog and fetch it again")
	rootCmd.AddCommand(regionsCmd)
}

func runRegions(_ *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.Close()

	ttl := rt.cfg.Source.RegionsTTL.Duration
	if flagRefreshRegions {
		ttl = 0
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout(rt))
	defer cancel()

	res, err := region.Load(ctx, rt.src, rt.regionCache(), ttl)
	if err != nil {
		return err
	}
	if res.Stale {
		progressf("  %s could not refresh regions (%v); showing the catalog from %s\n",
			cli.WarnStyle.Render("warning:"), res.FetchErr, cli.FormatAgo(res.FetchedAt))
	}

	var query string
	if len(args) == 1 {
		query = args[0]
	}
	names := region.NewSelection().Filter(res.Catalog, query)
	if len(names) == 0 {
		fmt.Printf("\n  No regions match %q.\n", query)
		return nil
	}

	origin := rt.src.Name()
	if res.FromCache {
		origin = fmt.Sprintf("cache, %s", cli.FormatAgo(res.FetchedAt))
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("REGIONS  %d of %d (%s)", len(names), res.Catalog.Len(), origin)))
	fmt.Println()

	// Lay names out in columns, top to bottom.
	const cols = 4
	perCol := (len(names) + cols - 1) / cols
	rows := make([][]string, perCol)
	for r := range rows {
		row := make([]string, cols)
		for c := range cols {
			if i := c*perCol + r; i < len(names) {
				row[c] = names[i]
			}
		}
		rows[r] = row
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Region", "", "", ""},
		Rows:    rows,
	}))
	return nil
}
