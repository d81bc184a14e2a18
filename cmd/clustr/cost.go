package main

import (
	"fmt"
	"io"

	"github.com/hupe1980/clustr"
	"github.com/spf13/cobra"
)

func newCostCmd(g *globalFlags) *cobra.Command {
	var (
		input    string
		centers  string
		modelRef string
		labels   string
	)

	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Evaluate the k-means cost of a set of centers",
		Long: `Evaluate the sum of squared distances between every point and its center.

Without --labels every point is charged to its nearest center.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := g.session(cmd)
			if err != nil {
				return err
			}
			data, err := readMatrix(cmd, input)
			if err != nil {
				return err
			}
			c, metric, err := s.loadCenters(cmd, centers, modelRef)
			if err != nil {
				return err
			}

			var l []int
			if labels != "" {
				if l, err = readLabels(cmd, labels); err != nil {
					return err
				}
			}

			cost, err := clustr.Cost(cmd.Context(), data, c, l, metric, s.opts...)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), g.json, map[string]float64{"cost": cost}, func(w io.Writer) {
				fmt.Fprintf(w, "%g\n", cost)
			})
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&input, "input", "i", "-", "CSV file with one point per row (- for stdin)")
	fs.StringVar(&centers, "centers", "", "CSV file with one center per row")
	fs.StringVar(&modelRef, "model", "", `stored model: "latest", "v<N>" or a blob name`)
	fs.StringVar(&labels, "labels", "", "file with one label per line")

	return cmd
}
