package benchmark_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/hupe1980/clustr"
	"github.com/hupe1980/clustr/dense"
	"github.com/hupe1980/clustr/distance"
	"github.com/hupe1980/clustr/model"
	"github.com/hupe1980/clustr/testutil"
)

type workload struct {
	points int
	dim    int
	k      int
}

func (w workload) String() string {
	return fmt.Sprintf("n=%d/d=%d/k=%d", w.points, w.dim, w.k)
}

var workloads = []workload{
	{points: 10_000, dim: 16, k: 8},
	{points: 10_000, dim: 128, k: 32},
	{points: 100_000, dim: 32, k: 64},
}

func fixture(w workload) dense.Matrix[float32] {
	return testutil.Blobs[float32](testutil.NewRNG(1), w.k, w.points/w.k, w.dim, 100, 2.0).Data
}

func newClusterer(b *testing.B, optFns ...clustr.Option) *clustr.Clusterer[float32] {
	b.Helper()
	c, err := clustr.New[float32](nil, append([]clustr.Option{clustr.WithSeed(42)}, optFns...)...)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = c.Close() })
	return c
}

func BenchmarkSeed(b *testing.B) {
	ctx := context.Background()
	for _, w := range workloads {
		data := fixture(w)
		b.Run(w.String(), func(b *testing.B) {
			c := newClusterer(b)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := c.Seed(ctx, data, w.k); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkAssign(b *testing.B) {
	ctx := context.Background()
	for _, w := range workloads {
		data := fixture(w)
		b.Run(w.String(), func(b *testing.B) {
			c := newClusterer(b)
			seeded, err := c.Seed(ctx, data, w.k)
			if err != nil {
				b.Fatal(err)
			}
			b.ReportAllocs()
			b.SetBytes(int64(data.Rows() * data.Cols() * 4))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := c.Assign(ctx, data, seeded.Centers); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkRefine(b *testing.B) {
	ctx := context.Background()
	for _, w := range workloads {
		data := fixture(w)
		b.Run(w.String(), func(b *testing.B) {
			c := newClusterer(b, clustr.WithMaxIterations(10), clustr.WithTolerance(0))
			seeded, err := c.Seed(ctx, data, w.k)
			if err != nil {
				b.Fatal(err)
			}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := c.Refine(ctx, data, seeded.Centers); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkFit_Threads(b *testing.B) {
	ctx := context.Background()
	w := workloads[1]
	data := fixture(w)
	for _, threads := range []int{1, 2, 4, 8} {
		b.Run(fmt.Sprintf("threads=%d", threads), func(b *testing.B) {
			c := newClusterer(b, clustr.WithNumThreads(threads), clustr.WithWorkerPool())
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := c.Fit(ctx, data, w.k); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkFit_Parallel(b *testing.B) {
	ctx := context.Background()
	w := workloads[0]
	data := fixture(w)
	c := newClusterer(b, clustr.WithNumThreads(1), clustr.WithMaxConcurrentRuns(4))

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := c.Fit(ctx, data, w.k); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkDistances(b *testing.B) {
	ctx := context.Background()
	rng := testutil.NewRNG(3)
	for _, dim := range []int{16, 128, 768} {
		queries := testutil.Uniform[float32](rng, 256, dim)
		data := testutil.Uniform[float32](rng, 4096, dim)
		for _, metric := range []distance.Metric[float32]{distance.Euclidean[float32]{}, distance.Manhattan[float32]{}} {
			b.Run(fmt.Sprintf("%s/d=%d", metric.Name(), dim), func(b *testing.B) {
				c, err := clustr.New(metric)
				if err != nil {
					b.Fatal(err)
				}
				defer c.Close()
				b.ReportAllocs()
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					if _, err := c.Distances(ctx, queries, data, true); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkModelEncode(b *testing.B) {
	ctx := context.Background()
	data := fixture(workloads[2])
	res, err := clustr.Fit(ctx, data, workloads[2].k, nil, clustr.WithSeed(1), clustr.WithMaxIterations(5))
	if err != nil {
		b.Fatal(err)
	}
	m := model.FromFit(res, distance.Metric[float32](distance.Euclidean[float32]{}))

	for _, comp := range []model.Compression{model.CompressionNone, model.CompressionLZ4, model.CompressionZSTD} {
		b.Run(comp.String(), func(b *testing.B) {
			var buf bytes.Buffer
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				buf.Reset()
				if err := model.Encode(&buf, m, comp); err != nil {
					b.Fatal(err)
				}
			}
			b.ReportMetric(float64(buf.Len()), "bytes/model")
		})
	}
}
