package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/theirongolddev/realtyai/internal/cli"
	"github.com/theirongolddev/realtyai/internal/model"
	"github.com/theirongolddev/realtyai/internal/predict"
	"github.com/theirongolddev/realtyai/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	flagPredictTitle    string
	flagPredictLocation string
	flagPredictArea     float64
	flagPredictBaths    int
	flagPredictBalcony  bool
	flagPredictPPSF     float64
	flagPredictNoSave   bool
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Estimate a property's price",
	Long: "Estimate a property's price in lakhs, crores and US dollars. " +
		"Without --title and --location an interactive form is shown.",
	Example: `  realtyai predict --title "3 BHK Flat for sale in Baner" --location "Baner, Pune" --area 1450 --baths 3 --balcony`,
	RunE:    runPredict,
}

func init() {
	predictCmd.Flags().StringVarP(&flagPredictTitle, "title", "t", "", "Listing title; BHK and property type are read from it")
	predictCmd.Flags().StringVarP(&flagPredictLocation, "location", "l", "", `Location as "Locality, City"`)
	predictCmd.Flags().Float64VarP(&flagPredictArea, "area", "a", 1000, "Total area in square feet (100 to 10000)")
	predictCmd.Flags().IntVarP(&flagPredictBaths, "baths", "b", 2, "Number of bathrooms (1 to 10)")
	predictCmd.Flags().BoolVar(&flagPredictBalcony, "balcony", false, "The property has a balcony")
	predictCmd.Flags().Float64Var(&flagPredictPPSF, "ppsf", 0, "Price per square foot in rupees (default from config)")
	predictCmd.Flags().BoolVar(&flagPredictNoSave, "no-save", false, "Do not record the prediction in history")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(_ *cobra.Command, _ []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.Close()

	defaultPPSF := rt.cfg.Predict.DefaultPricePerSqft

	var form predict.Form
	if flagPredictTitle == "" || flagPredictLocation == "" {
		vals := &tui.PredictValues{
			Title:    flagPredictTitle,
			Location: flagPredictLocation,
			Area:     strconv.FormatFloat(flagPredictArea, 'f', -1, 64),
			Baths:    strconv.Itoa(flagPredictBaths),
			Balcony:  flagPredictBalcony,
		}
		if flagPredictPPSF > 0 {
			vals.PricePerSqft = strconv.FormatFloat(flagPredictPPSF, 'f', -1, 64)
		}
		if err := tui.NewPredictForm(vals, defaultPPSF).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}
		if form, err = vals.Form(); err != nil {
			return err
		}
	} else {
		form = predict.Form{
			Title:        flagPredictTitle,
			Location:     flagPredictLocation,
			TotalArea:    flagPredictArea,
			Baths:        flagPredictBaths,
			Balcony:      flagPredictBalcony,
			PricePerSqft: flagPredictPPSF,
		}
	}

	progressf("  Requesting a price from %s...\n", rt.src.Name())

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout(rt))
	defer cancel()

	p, err := predict.Estimate(ctx, rt.src, form, defaultPPSF)
	if err != nil {
		return err
	}
	p.Source = rt.src.Name()

	if rt.store != nil && !flagPredictNoSave {
		saved, err := rt.store.SavePrediction(p)
		if err != nil {
			rt.log.WithError(err).Warn("prediction not saved to history")
		} else {
			p = saved
		}
	}

	printPrediction(p, rt.cfg.Predict.USDToINR)
	return nil
}

func printPrediction(p model.Prediction, usdRate float64) {
	price := predict.PriceFromLakhs(p.PriceLakhs)

	fmt.Println()
	fmt.Println(cli.RenderTitle("PRICE ESTIMATE"))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Estimate", "Value"},
		Rows: [][]string{
			{"Predicted Price", cli.PositiveStyle.Render(predict.FormatINR(price.Rupees()))},
			{"In Lakhs", "₹" + price.Lakhs().StringFixed(2) + " L"},
			{"In Crores", "₹" + price.Crores().StringFixed(2) + " Cr"},
			{"In US Dollars", predict.FormatUSD(price.USD(usdRate))},
		},
	}))
	fmt.Println()

	balcony := "No"
	if p.Balcony {
		balcony = "Yes"
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Property", ""},
		Rows: [][]string{
			{"Title", p.Title},
			{"Type", p.PropertyType},
			{"Location", p.Location},
			{"City", p.City},
			{"BHK", strconv.Itoa(p.BHK)},
			{"Area", fmt.Sprintf("%s sq ft", cli.FormatNumber(int64(p.TotalArea)))},
			{"Price / Sq Ft", fmt.Sprintf("₹%s", cli.FormatNumber(int64(p.PricePerSqft)))},
			{"Bathrooms", strconv.Itoa(p.Bathroom)},
			{"Balcony", balcony},
		},
	}))
	if p.ID != "" {
		fmt.Printf("\n  Saved to history as %s\n", p.ID)
	}
}
