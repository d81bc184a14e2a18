package clustr_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/clustr"
	"github.com/hupe1980/clustr/dense"
)

// ExampleFit clusters four points into two well separated groups.
func ExampleFit() {
	data := dense.MustMatrix([]float64{
		0, 0,
		0, 1,
		10, 10,
		10, 11,
	}, 4, 2)

	res, err := clustr.Fit(context.Background(), data, 2, nil, clustr.WithSeed(42))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("cost:", res.Cost())
	fmt.Println("converged:", res.Converged)
	fmt.Println("sizes:", res.Assignment.Sizes())
	// Output:
	// cost: 1
	// converged: true
	// sizes: [2 2]
}

// ExampleCost evaluates fixed centers with and without labels.
func ExampleCost() {
	data := dense.MustMatrix([]float64{0, 0, 0, 1, 10, 10, 10, 11}, 4, 2)
	centers := dense.MustMatrix([]float64{0, 0.5, 10, 10.5}, 2, 2)

	nearest, _ := clustr.Cost(context.Background(), data, centers, nil, nil)
	labelled, _ := clustr.Cost(context.Background(), data, centers, []int{0, 0, 1, 1}, nil)

	fmt.Println(nearest, labelled)
	// Output: 1 1
}

// ExampleKMeans uses the fluent builder.
func ExampleKMeans() {
	est, err := clustr.KMeans[float32](2).Seed(7).Threads(2).Build()
	if err != nil {
		log.Fatal(err)
	}
	defer est.Close()

	data := dense.MustMatrix([]float32{1, 1.5, 2, 20, 21, 22}, 6, 1)
	if _, err := est.Fit(context.Background(), data); err != nil {
		log.Fatal(err)
	}

	query := dense.MustMatrix([]float32{0, 25}, 2, 1)
	assignment, err := est.Predict(context.Background(), query)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(assignment.Labels[0] != assignment.Labels[1])
	// Output: true
}
