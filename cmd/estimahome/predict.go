package main

import (
	"encoding/json"
	"fmt"

	"estimahome/ml"

	"github.com/spf13/cobra"
)

type predictOptions struct {
	artifactDir string
	asJSON      bool
	features    ml.HousingFeatures
}

func newPredictCommand() *cobra.Command {
	opts := predictOptions{features: ml.DefaultHousingFeatures()}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Estimate the median house value of one block",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.artifactDir, "artifacts", "artifacts", "directory holding the fitted model artifacts")
	flags.BoolVar(&opts.asJSON, "json", false, "print the estimate as JSON")

	f := &opts.features
	flags.Float64Var(&f.MedianIncome, "median-income", f.MedianIncome, "median income, tens of thousands of dollars")
	flags.Float64Var(&f.MedianAge, "median-age", f.MedianAge, "median house age, years")
	flags.Float64Var(&f.TotRooms, "tot-rooms", f.TotRooms, "total rooms in the block")
	flags.Float64Var(&f.TotBedrooms, "tot-bedrooms", f.TotBedrooms, "total bedrooms in the block")
	flags.Float64Var(&f.Population, "population", f.Population, "block population")
	flags.Float64Var(&f.Households, "households", f.Households, "households in the block")
	flags.Float64Var(&f.Latitude, "latitude", f.Latitude, "latitude, degrees")
	flags.Float64Var(&f.Longitude, "longitude", f.Longitude, "longitude, degrees")
	flags.Float64Var(&f.DistanceToCoast, "distance-to-coast", f.DistanceToCoast, "distance to the coast, km")
	flags.Float64Var(&f.DistanceToLA, "distance-to-la", f.DistanceToLA, "distance to Los Angeles, km")
	flags.Float64Var(&f.DistanceToSanDiego, "distance-to-san-diego", f.DistanceToSanDiego, "distance to San Diego, km")
	flags.Float64Var(&f.DistanceToSanJose, "distance-to-san-jose", f.DistanceToSanJose, "distance to San Jose, km")
	flags.Float64Var(&f.DistanceToSanFrancisco, "distance-to-san-francisco", f.DistanceToSanFrancisco, "distance to San Francisco, km")
	return cmd
}

func runPredict(cmd *cobra.Command, opts predictOptions) error {
	bundle, err := ml.LoadBundle(opts.artifactDir, ml.DefaultArtifactFiles())
	if err != nil {
		return err
	}
	pipeline, err := ml.NewPipeline(bundle)
	if err != nil {
		return err
	}
	estimate, err := pipeline.Predict(opts.features)
	if err != nil {
		return err
	}
	warnings := ml.CheckRanges(ml.Assemble(opts.features))

	out := cmd.OutOrStdout()
	if opts.asJSON {
		return json.NewEncoder(out).Encode(map[string]interface{}{
			"price":     estimate.Price,
			"formatted": ml.FormatPrice(estimate.Price),
			"log_price": estimate.LogPrice,
			"warnings":  warnings,
		})
	}
	fmt.Fprintf(out, "Estimated median house value: %s\n", ml.FormatPrice(estimate.Price))
	for _, w := range warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	return nil
}
