package main

import (
	"fmt"
	"io"

	"github.com/hupe1980/clustr/model"
	"github.com/spf13/cobra"
)

type modelInfo struct {
	Version   uint64  `json:"version"`
	Metric    string  `json:"metric"`
	K         int     `json:"k"`
	Dim       int     `json:"dim"`
	Cost      float64 `json:"cost"`
	Converged bool    `json:"converged"`
	Latest    bool    `json:"latest,omitempty"`
}

func newModelsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List published model versions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := g.session(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			reg, _, err := s.registry(ctx, model.CompressionNone)
			if err != nil {
				return err
			}
			versions, err := reg.Versions(ctx)
			if err != nil {
				return err
			}

			var latest uint64
			if len(versions) > 0 {
				if _, latest, err = reg.Latest(ctx); err != nil {
					return err
				}
			}

			infos := make([]modelInfo, 0, len(versions))
			for _, v := range versions {
				m, err := reg.Get(ctx, v)
				if err != nil {
					return err
				}
				infos = append(infos, modelInfo{
					Version:   v,
					Metric:    m.Metric,
					K:         m.K(),
					Dim:       m.Dim(),
					Cost:      m.Cost(),
					Converged: m.Converged,
					Latest:    v == latest,
				})
			}

			return printResult(cmd.OutOrStdout(), g.json, infos, func(w io.Writer) {
				for _, info := range infos {
					marker := " "
					if info.Latest {
						marker = "*"
					}
					fmt.Fprintf(w, "%s v%d metric=%s k=%d dim=%d cost=%g converged=%t\n",
						marker, info.Version, info.Metric, info.K, info.Dim, info.Cost, info.Converged)
				}
			})
		},
	}
}
