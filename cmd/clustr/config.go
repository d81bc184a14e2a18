package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/hupe1980/clustr"
	"github.com/hupe1980/clustr/blobstore/minio"
	"github.com/hupe1980/clustr/distance"
	"gopkg.in/yaml.v3"
)

// Config is the YAML configuration accepted by --config. Command-line
// flags take precedence over values from the file.
type Config struct {
	Metric        string    `yaml:"metric"`
	Box           []float64 `yaml:"box"`
	Seed          *int64    `yaml:"seed"`
	Trials        int       `yaml:"trials"`
	Threads       int       `yaml:"threads"`
	MaxIterations *int      `yaml:"max_iterations"`
	Tolerance     *float64  `yaml:"tolerance"`
	Grain         int       `yaml:"grain"`
	MemoryLimit   int64     `yaml:"memory_limit"`
	LogLevel      string    `yaml:"log_level"`
	LogFormat     string    `yaml:"log_format"`

	Storage StorageConfig `yaml:"storage"`
}

// StorageConfig selects where models are stored.
type StorageConfig struct {
	// Backend is one of local, s3 or minio.
	Backend string `yaml:"backend"`
	// Path is the root directory of the local backend.
	Path string `yaml:"path"`
	// CacheDir enables a local read-through cache for remote backends.
	CacheDir string `yaml:"cache_dir"`
	// MemoryCache bounds an in-memory LRU cache of model blobs in bytes.
	MemoryCache int64 `yaml:"memory_cache"`
	// IOLimit caps local write throughput in bytes per second.
	IOLimit int64 `yaml:"io_limit"`

	S3    S3Config     `yaml:"s3"`
	MinIO minio.Config `yaml:"minio"`
}

// S3Config configures the S3 backend.
type S3Config struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	Region string `yaml:"region"`
	// DDBTable enables DynamoDB commits for concurrent publishers.
	DDBTable string `yaml:"ddb_table"`
}

func defaultConfig() Config {
	return Config{
		Metric:   "euclidean",
		LogLevel: "warn",
		Storage: StorageConfig{
			Backend: "local",
			Path:    ".clustr",
		},
	}
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

func (c Config) logger() (*clustr.Logger, error) {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	if c.LogFormat == "json" {
		return clustr.NewJSONLogger(level), nil
	}
	return clustr.NewTextLogger(level), nil
}

func (c Config) metric() (distance.Metric[float64], error) {
	return distance.ByName(c.Metric, c.Box)
}

func (c Config) options() ([]clustr.Option, error) {
	logger, err := c.logger()
	if err != nil {
		return nil, err
	}
	opts := []clustr.Option{
		clustr.WithLogger(logger),
		clustr.WithNumThreads(c.Threads),
		clustr.WithTrials(c.Trials),
		clustr.WithMemoryLimit(c.MemoryLimit),
	}
	if c.Seed != nil {
		opts = append(opts, clustr.WithSeed(*c.Seed))
	}
	if c.MaxIterations != nil {
		opts = append(opts, clustr.WithMaxIterations(*c.MaxIterations))
	}
	if c.Tolerance != nil {
		opts = append(opts, clustr.WithTolerance(*c.Tolerance))
	}
	if c.Grain > 0 {
		opts = append(opts, clustr.WithGrain(c.Grain))
	}
	return opts, nil
}
