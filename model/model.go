package model

import (
	"fmt"
	"time"

	"github.com/hupe1980/clustr"
	"github.com/hupe1980/clustr/dense"
	"github.com/hupe1980/clustr/distance"
)

// Model is a fitted set of centers together with how it was produced.
type Model[T dense.Float] struct {
	// Metric is the stable metric name (see distance.ByName).
	Metric string
	// Box holds the periodic box lengths, if any.
	Box []float64
	// Centers is a k × d matrix.
	Centers dense.Matrix[T]

	Iterations     int
	Converged      bool
	InitialCost    float64
	CostTrajectory []float64
	// Seed reproduces the seeding that produced the model.
	Seed int64

	CreatedAt time.Time
}

// FromFit captures a fit result and the metric it was computed with.
func FromFit[T dense.Float](res *clustr.FitResult[T], metric distance.Metric[T]) *Model[T] {
	m := &Model[T]{
		Metric:         metric.Name(),
		Centers:        res.Centers.Clone(),
		Iterations:     res.Iterations,
		Converged:      res.Converged,
		InitialCost:    res.InitialCost,
		CostTrajectory: append([]float64(nil), res.CostTrajectory...),
		CreatedAt:      time.Now().UTC(),
	}
	if res.Seeding != nil {
		m.Seed = res.Seeding.Seed
	}
	if p, ok := metric.(*distance.Periodic[T]); ok {
		for _, b := range p.Box() {
			m.Box = append(m.Box, float64(b))
		}
	}
	return m
}

// K returns the number of centers.
func (m *Model[T]) K() int { return m.Centers.Rows() }

// Dim returns the number of features.
func (m *Model[T]) Dim() int { return m.Centers.Cols() }

// Cost returns the cost after the last iteration.
func (m *Model[T]) Cost() float64 {
	if len(m.CostTrajectory) == 0 {
		return m.InitialCost
	}
	return m.CostTrajectory[len(m.CostTrajectory)-1]
}

// DistanceMetric reconstructs the metric the model was fitted with.
func (m *Model[T]) DistanceMetric() (distance.Metric[T], error) {
	box := make([]T, len(m.Box))
	for i, b := range m.Box {
		box[i] = T(b)
	}
	metric, err := distance.ByName(m.Metric, box)
	if err != nil {
		return nil, fmt.Errorf("model metric: %w", err)
	}
	return metric, nil
}
