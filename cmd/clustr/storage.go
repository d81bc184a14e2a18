package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/hupe1980/clustr/blobstore"
	"github.com/hupe1980/clustr/blobstore/minio"
	"github.com/hupe1980/clustr/blobstore/s3"
)

const currentPointer = "CURRENT"

// openStorage returns the blob store and version committer described by
// cfg.
func openStorage(ctx context.Context, cfg StorageConfig) (blobstore.BlobStore, blobstore.Committer, error) {
	var opts []blobstore.LocalOption
	if cfg.IOLimit > 0 {
		opts = append(opts, blobstore.WithIOLimit(cfg.IOLimit))
	}

	var (
		store     blobstore.BlobStore
		committer blobstore.Committer
	)

	switch cfg.Backend {
	case "", "local":
		store = blobstore.NewLocalStore(cfg.Path, opts...)

	case "s3":
		if cfg.S3.Bucket == "" {
			return nil, nil, fmt.Errorf("storage.s3.bucket is required")
		}
		remote, err := s3.New(ctx, cfg.S3.Bucket, cfg.S3.Prefix, s3.WithRegion(cfg.S3.Region))
		if err != nil {
			return nil, nil, err
		}
		store = remote
		if cfg.S3.DDBTable != "" {
			var loadOpts []func(*config.LoadOptions) error
			if cfg.S3.Region != "" {
				loadOpts = append(loadOpts, config.WithRegion(cfg.S3.Region))
			}
			awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
			if err != nil {
				return nil, nil, fmt.Errorf("load aws config: %w", err)
			}
			baseURI := "s3://" + cfg.S3.Bucket + "/" + cfg.S3.Prefix
			committer = s3.NewDDBCommitter(dynamodb.NewFromConfig(awsCfg), cfg.S3.DDBTable, baseURI)
		}

	case "minio":
		remote, err := minio.New(cfg.MinIO)
		if err != nil {
			return nil, nil, err
		}
		if err := remote.EnsureBucket(ctx); err != nil {
			return nil, nil, fmt.Errorf("minio bucket %s: %w", cfg.MinIO.Bucket, err)
		}
		store = remote

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}

	if committer == nil {
		committer = blobstore.NewPointerCommitter(store, currentPointer)
	}
	if cfg.CacheDir != "" {
		store = blobstore.NewCachingStore(store, blobstore.NewLocalStore(filepath.Clean(cfg.CacheDir), opts...))
	}
	if cfg.MemoryCache > 0 {
		store = blobstore.NewCachingStore(store, blobstore.NewLRUStore(cfg.MemoryCache))
	}
	return store, committer, nil
}
