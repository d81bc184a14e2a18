package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/hupe1980/clustr"
	"github.com/hupe1980/clustr/blobstore"
	"github.com/hupe1980/clustr/codec"
	"github.com/hupe1980/clustr/dense"
	"github.com/hupe1980/clustr/distance"
	"github.com/hupe1980/clustr/model"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// =============================================================================
// Global Flags
// =============================================================================

type globalFlags struct {
	config        string
	metric        string
	box           []float64
	seed          int64
	trials        int
	threads       int
	maxIterations int
	tolerance     float64
	grain         int
	memoryLimit   int64
	logLevel      string
	logFormat     string
	progressEvery time.Duration
	storage       string
	storagePath   string
	json          bool
}

func (g *globalFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&g.config, "config", "", "YAML configuration file")
	fs.StringVar(&g.metric, "metric", "euclidean", "distance metric: euclidean, manhattan or periodic")
	fs.Float64SliceVar(&g.box, "box", nil, "periodic box lengths, one per feature")
	fs.Int64Var(&g.seed, "seed", -1, "random seed (negative selects a random seed)")
	fs.IntVar(&g.trials, "trials", 0, "candidates per seeding step (0 selects 2+ln k)")
	fs.IntVar(&g.threads, "threads", 0, "worker goroutines (0 selects GOMAXPROCS)")
	fs.IntVar(&g.maxIterations, "max-iter", clustr.DefaultMaxIterations, "refinement iteration budget")
	fs.Float64Var(&g.tolerance, "tol", clustr.DefaultTolerance, "relative cost change that counts as converged")
	fs.IntVar(&g.grain, "grain", 0, "rows per parallel tile (0 selects the default)")
	fs.Int64Var(&g.memoryLimit, "memory-limit", 0, "byte limit for distance buffers (0 disables)")
	fs.StringVar(&g.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	fs.StringVar(&g.logFormat, "log-format", "text", "log format: text or json")
	fs.DurationVar(&g.progressEvery, "progress-every", 0, "log progress at most this often (0 disables)")
	fs.StringVar(&g.storage, "storage", "local", "model storage backend: local, s3 or minio")
	fs.StringVar(&g.storagePath, "storage-path", ".clustr", "root directory of the local storage backend")
	fs.BoolVar(&g.json, "json", false, "print results as JSON")
}

// settings merges the config file with the flags the user set explicitly.
func (g *globalFlags) settings(cmd *cobra.Command) (Config, error) {
	cfg, err := loadConfig(g.config)
	if err != nil {
		return cfg, err
	}

	fs := cmd.Flags()
	if fs.Changed("metric") {
		cfg.Metric = g.metric
	}
	if fs.Changed("box") {
		cfg.Box = g.box
	}
	if fs.Changed("seed") {
		cfg.Seed = &g.seed
	}
	if fs.Changed("trials") {
		cfg.Trials = g.trials
	}
	if fs.Changed("threads") {
		cfg.Threads = g.threads
	}
	if fs.Changed("max-iter") {
		cfg.MaxIterations = &g.maxIterations
	}
	if fs.Changed("tol") {
		cfg.Tolerance = &g.tolerance
	}
	if fs.Changed("grain") {
		cfg.Grain = g.grain
	}
	if fs.Changed("memory-limit") {
		cfg.MemoryLimit = g.memoryLimit
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = g.logLevel
	}
	if fs.Changed("log-format") {
		cfg.LogFormat = g.logFormat
	}
	if fs.Changed("storage") {
		cfg.Storage.Backend = g.storage
	}
	if fs.Changed("storage-path") {
		cfg.Storage.Path = g.storagePath
	}
	return cfg, nil
}

// =============================================================================
// Root Command
// =============================================================================

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "clustr",
		Short: "k-means clustering for CSV point sets",
		Long: `clustr seeds k centers with greedy k-means++, refines them with Lloyd
iterations and evaluates the k-means cost.

Points are read as CSV, one point per row. Fitted models can be stored on
the local disk, in S3 or in MinIO.

Examples:
  clustr fit --input points.csv -k 8 --centers centers.csv
  clustr fit --input points.csv -k 8 --publish --compression zstd
  clustr assign --input points.csv --model latest
  clustr cost --input points.csv --centers centers.csv --labels labels.txt`,
		SilenceUsage: true,
	}
	g.register(root.PersistentFlags())

	root.AddCommand(
		newFitCmd(g),
		newSeedCmd(g),
		newAssignCmd(g),
		newCostCmd(g),
		newModelsCmd(g),
	)
	return root
}

// =============================================================================
// Helpers
// =============================================================================

// session bundles what every command needs after flag resolution.
type session struct {
	cfg    Config
	metric distance.Metric[float64]
	opts   []clustr.Option
}

func (g *globalFlags) session(cmd *cobra.Command) (*session, error) {
	cfg, err := g.settings(cmd)
	if err != nil {
		return nil, err
	}
	metric, err := cfg.metric()
	if err != nil {
		return nil, err
	}
	opts, err := cfg.options()
	if err != nil {
		return nil, err
	}
	if g.progressEvery > 0 {
		opts = append(opts, clustr.WithProgressLogging(g.progressEvery))
	}
	return &session{cfg: cfg, metric: metric, opts: opts}, nil
}

func (s *session) registry(ctx context.Context, c model.Compression) (*model.Registry[float64], blobstore.BlobStore, error) {
	store, committer, err := openStorage(ctx, s.cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	logger, err := s.cfg.logger()
	if err != nil {
		return nil, nil, err
	}
	reg := model.NewRegistry[float64](store, committer,
		model.WithCompression(c),
		model.WithRegistryLogger(logger.Logger),
	)
	return reg, store, nil
}

// loadCenters resolves --centers or --model. A model reference is either
// "latest", "v<N>" for a published version, or a blob name.
func (s *session) loadCenters(cmd *cobra.Command, centersPath, ref string) (dense.Matrix[float64], distance.Metric[float64], error) {
	switch {
	case centersPath != "" && ref != "":
		return dense.Matrix[float64]{}, nil, fmt.Errorf("--centers and --model are mutually exclusive")
	case centersPath != "":
		m, err := readMatrix(cmd, centersPath)
		return m, s.metric, err
	case ref == "":
		return dense.Matrix[float64]{}, nil, fmt.Errorf("one of --centers or --model is required")
	}

	ctx := cmd.Context()
	reg, store, err := s.registry(ctx, model.CompressionNone)
	if err != nil {
		return dense.Matrix[float64]{}, nil, err
	}

	var m *model.Model[float64]
	var version uint64
	switch {
	case ref == "latest":
		m, _, err = reg.Latest(ctx)
	case parseVersionRef(ref, &version):
		m, err = reg.Get(ctx, version)
	default:
		m, err = model.Load[float64](ctx, store, ref)
	}
	if err != nil {
		return dense.Matrix[float64]{}, nil, err
	}

	metric, err := m.DistanceMetric()
	if err != nil {
		return dense.Matrix[float64]{}, nil, err
	}
	return m.Centers, metric, nil
}

func parseVersionRef(ref string, version *uint64) bool {
	if len(ref) < 2 || ref[0] != 'v' {
		return false
	}
	v, err := strconv.ParseUint(ref[1:], 10, 64)
	if err != nil || v == 0 {
		return false
	}
	*version = v
	return true
}

func printResult(w io.Writer, asJSON bool, v any, text func(io.Writer)) error {
	if !asJSON {
		text(w)
		return nil
	}
	data, err := codec.Default.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
