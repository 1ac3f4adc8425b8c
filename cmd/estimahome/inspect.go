package main

import (
	"fmt"

	"estimahome/ml"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

type inspectSummary struct {
	Dir           string              `yaml:"dir"`
	SkewedColumns []string            `yaml:"skewed_columns"`
	PowerMethod   string              `yaml:"power_method,omitempty"`
	Intercept     float64             `yaml:"intercept"`
	Coefficients  yaml.MapSlice       `yaml:"coefficients"`
	Ranges        map[string]ml.Range `yaml:"ranges"`
}

func newInspectCommand() *cobra.Command {
	var artifactDir string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Load the model artifacts and print what they contain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := ml.LoadBundle(artifactDir, ml.DefaultArtifactFiles())
			if err != nil {
				return err
			}
			summary := bundle.Summary()

			out := inspectSummary{
				Dir:           summary.Dir,
				SkewedColumns: summary.SkewedColumns,
				PowerMethod:   string(summary.PowerMethod),
				Intercept:     summary.Intercept,
				Ranges:        ml.FeatureRanges(),
			}
			for i, name := range summary.Features {
				out.Coefficients = append(out.Coefficients, yaml.MapItem{Key: name, Value: summary.Coefficients[i]})
			}

			data, err := yaml.Marshal(out)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&artifactDir, "artifacts", "artifacts", "directory holding the fitted model artifacts")
	return cmd
}
