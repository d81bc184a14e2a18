// Package clustr provides greedy k-means++ seeding and Lloyd refinement for
// large dense point sets.
//
// # Quick Start
//
//	data, _ := dense.NewMatrix(values, points, features)
//	res, err := clustr.Fit(ctx, data, 8, nil, clustr.WithSeed(42))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Centers, res.Cost(), res.Converged)
//
// # Building Blocks
//
// The pipeline is exposed step by step:
//
//	c, _ := clustr.New[float32](distance.Euclidean[float32]{}, clustr.WithNumThreads(8))
//	defer c.Close()
//
//	seeded, _ := c.Seed(ctx, data, k)                // greedy k-means++
//	refined, _ := c.Refine(ctx, data, seeded.Centers) // Lloyd iterations
//	assignment, _ := c.Assign(ctx, data, refined.Centers)
//	cost, _ := c.Cost(ctx, data, refined.Centers, assignment.Labels)
//
// Seeding draws 2 + floor(ln k) candidates per step proportionally to the
// squared distance to the nearest chosen center and keeps the candidate
// that lowers the total potential most. Refinement stops when the relative
// cost change |prev-cost|/cost drops to the tolerance or the iteration
// budget is exhausted.
//
// # Fluent API
//
//	est, _ := clustr.KMeans[float64](8).Seed(42).Threads(4).Build()
//	defer est.Close()
//	est.Fit(ctx, data)
//	assignment, _ := est.Predict(ctx, other)
//
// # Determinism
//
// With a fixed seed every operation is reproducible. Kernels reduce in
// fixed-size row tiles (WithGrain), so results are identical for any
// thread count.
//
// # Key Features
//
//   - float32 and float64 point sets (dense.Matrix)
//   - Euclidean, periodic (minimum-image) and Manhattan metrics
//   - BLAS-backed distance matrices using precomputed squared norms
//   - SIMD kernels (AVX2/AVX-512 via vek)
//   - Per-cluster membership bitmaps (Roaring)
//   - Model persistence with lz4/zstd compression to local disk, S3 or MinIO
package clustr
