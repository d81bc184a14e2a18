package main

import (
	"fmt"
	"io"

	"github.com/hupe1980/clustr"
	"github.com/hupe1980/clustr/model"
	"github.com/spf13/cobra"
)

type fitSummary struct {
	K              int       `json:"k"`
	Points         int       `json:"points"`
	Dim            int       `json:"dim"`
	Seed           int64     `json:"seed"`
	Iterations     int       `json:"iterations"`
	Converged      bool      `json:"converged"`
	State          string    `json:"state"`
	InitialCost    float64   `json:"initial_cost"`
	Cost           float64   `json:"cost"`
	CostTrajectory []float64 `json:"cost_trajectory"`
	Sizes          []uint64  `json:"sizes"`
	Model          string    `json:"model,omitempty"`
	Version        uint64    `json:"version,omitempty"`
}

func newFitCmd(g *globalFlags) *cobra.Command {
	var (
		input       string
		k           int
		centersOut  string
		labelsOut   string
		modelName   string
		publish     bool
		compression string
	)

	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Seed and refine k centers",
		Long: `Seed k centers with greedy k-means++ and refine them with Lloyd iterations.

The fitted centers can be written as CSV (--centers), stored as a model blob
(--model) or published as the next registry version (--publish).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := g.session(cmd)
			if err != nil {
				return err
			}
			comp, err := model.ParseCompression(compression)
			if err != nil {
				return err
			}
			data, err := readMatrix(cmd, input)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			res, err := clustr.Fit(ctx, data, k, s.metric, s.opts...)
			if err != nil {
				return err
			}

			summary := fitSummary{
				K:              k,
				Points:         data.Rows(),
				Dim:            data.Cols(),
				Seed:           res.Seeding.Seed,
				Iterations:     res.Iterations,
				Converged:      res.Converged,
				State:          res.State.String(),
				InitialCost:    res.InitialCost,
				Cost:           res.Cost(),
				CostTrajectory: res.CostTrajectory,
				Sizes:          res.Assignment.Sizes(),
			}

			if centersOut != "" {
				if err := writeMatrix(cmd, centersOut, res.Centers); err != nil {
					return err
				}
			}
			if labelsOut != "" {
				if err := writeLabels(cmd, labelsOut, res.Assignment.Labels); err != nil {
					return err
				}
			}

			if modelName != "" || publish {
				reg, store, err := s.registry(ctx, comp)
				if err != nil {
					return err
				}
				m := model.FromFit(res, s.metric)
				if modelName != "" {
					if err := model.Save(ctx, store, modelName, m, comp); err != nil {
						return err
					}
					summary.Model = modelName
				}
				if publish {
					if summary.Version, err = reg.Publish(ctx, m); err != nil {
						return err
					}
				}
			}

			return printResult(cmd.OutOrStdout(), g.json, summary, func(w io.Writer) {
				fmt.Fprintf(w, "k=%d points=%d dim=%d seed=%d\n", summary.K, summary.Points, summary.Dim, summary.Seed)
				fmt.Fprintf(w, "state=%s iterations=%d cost=%g initial_cost=%g\n", summary.State, summary.Iterations, summary.Cost, summary.InitialCost)
				fmt.Fprintf(w, "sizes=%v\n", summary.Sizes)
				if summary.Model != "" {
					fmt.Fprintf(w, "model=%s\n", summary.Model)
				}
				if summary.Version != 0 {
					fmt.Fprintf(w, "version=%d\n", summary.Version)
				}
			})
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&input, "input", "i", "-", "CSV file with one point per row (- for stdin)")
	fs.IntVarP(&k, "k", "k", 0, "number of clusters")
	fs.StringVar(&centersOut, "centers", "", "write the fitted centers as CSV")
	fs.StringVar(&labelsOut, "labels", "", "write one label per line")
	fs.StringVar(&modelName, "model", "", "store the model under this blob name")
	fs.BoolVar(&publish, "publish", false, "publish the model as the next registry version")
	fs.StringVar(&compression, "compression", "zstd", "model compression: none, lz4 or zstd")
	_ = cmd.MarkFlagRequired("k")

	return cmd
}
