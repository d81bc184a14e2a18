package main

import (
	"github.com/hupe1980/clustr"
	"github.com/spf13/cobra"
)

func newAssignCmd(g *globalFlags) *cobra.Command {
	var (
		input     string
		centers   string
		modelRef  string
		labelsOut string
	)

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Label every point with its nearest center",
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

			asg, err := clustr.Assign(cmd.Context(), data, c, metric, s.opts...)
			if err != nil {
				return err
			}
			// With --json the labels are part of the JSON document on stdout.
			if labelsOut != "-" || !g.json {
				if err := writeLabels(cmd, labelsOut, asg.Labels); err != nil {
					return err
				}
			}
			if !g.json {
				return nil
			}
			return printResult(cmd.OutOrStdout(), true, map[string]any{
				"labels": asg.Labels,
				"sizes":  asg.Sizes(),
				"empty":  asg.EmptyClusters(),
			}, nil)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&input, "input", "i", "-", "CSV file with one point per row (- for stdin)")
	fs.StringVar(&centers, "centers", "", "CSV file with one center per row")
	fs.StringVar(&modelRef, "model", "", `stored model: "latest", "v<N>" or a blob name`)
	fs.StringVar(&labelsOut, "labels", "-", "write one label per line (- for stdout)")

	return cmd
}
