package main

import (
	"fmt"
	"io"

	"github.com/hupe1980/clustr"
	"github.com/spf13/cobra"
)

type seedSummary struct {
	K          int       `json:"k"`
	Seed       int64     `json:"seed"`
	Indices    []int     `json:"indices"`
	Potentials []float64 `json:"potentials"`
}

func newSeedCmd(g *globalFlags) *cobra.Command {
	var (
		input      string
		k          int
		centersOut string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Choose k initial centers with greedy k-means++",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := g.session(cmd)
			if err != nil {
				return err
			}
			data, err := readMatrix(cmd, input)
			if err != nil {
				return err
			}

			res, err := clustr.Seed(cmd.Context(), data, k, s.metric, s.opts...)
			if err != nil {
				return err
			}
			if centersOut != "" {
				if err := writeMatrix(cmd, centersOut, res.Centers); err != nil {
					return err
				}
			}

			summary := seedSummary{K: k, Seed: res.Seed, Indices: res.Indices, Potentials: res.Potentials}
			return printResult(cmd.OutOrStdout(), g.json, summary, func(w io.Writer) {
				fmt.Fprintf(w, "seed=%d potential=%g\n", res.Seed, res.Potential())
				fmt.Fprintf(w, "indices=%v\n", res.Indices)
			})
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&input, "input", "i", "-", "CSV file with one point per row (- for stdin)")
	fs.IntVarP(&k, "k", "k", 0, "number of centers")
	fs.StringVar(&centersOut, "centers", "", "write the chosen centers as CSV")
	_ = cmd.MarkFlagRequired("k")

	return cmd
}
