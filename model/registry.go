package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/hupe1980/clustr/blobstore"
	"github.com/hupe1980/clustr/dense"
)

const (
	blobPrefix = "model-"
	blobSuffix = ".clm"

	defaultPublishAttempts = 5
)

// ErrNoModel is returned when nothing was published yet.
var ErrNoModel = errors.New("model: no published version")

// Registry publishes versioned models to a blob store. Versions start at 1
// and increase by one per publish.
type Registry[T dense.Float] struct {
	store       blobstore.BlobStore
	committer   blobstore.Committer
	compression Compression
	attempts    int
	logger      *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	compression Compression
	attempts    int
	logger      *slog.Logger
}

// WithCompression sets the compression of published models.
func WithCompression(c Compression) RegistryOption {
	return func(o *registryOptions) { o.compression = c }
}

// WithPublishAttempts bounds how often Publish retries after losing a race.
func WithPublishAttempts(n int) RegistryOption {
	return func(o *registryOptions) { o.attempts = n }
}

// WithRegistryLogger sets the logger used for publish events.
func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(o *registryOptions) { o.logger = l }
}

// NewRegistry returns a registry that stores model blobs in store and
// tracks the current version with committer.
func NewRegistry[T dense.Float](store blobstore.BlobStore, committer blobstore.Committer, optFns ...RegistryOption) *Registry[T] {
	opts := registryOptions{
		compression: CompressionZSTD,
		attempts:    defaultPublishAttempts,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.attempts < 1 {
		opts.attempts = 1
	}
	return &Registry[T]{
		store:       store,
		committer:   committer,
		compression: opts.compression,
		attempts:    opts.attempts,
		logger:      opts.logger,
	}
}

// versionPrefix is shared by every blob written for version.
func versionPrefix(version uint64) string {
	return fmt.Sprintf("%s%020d-", blobPrefix, version)
}

// blobName returns a fresh blob name for version. The random suffix keeps
// racing publishers from overwriting each other's blobs.
func blobName(version uint64) string {
	return fmt.Sprintf("%s%016x%s", versionPrefix(version), rand.Uint64(), blobSuffix) // nolint gosec
}

func parseBlobName(name string) (uint64, bool) {
	if !strings.HasPrefix(name, blobPrefix) || !strings.HasSuffix(name, blobSuffix) {
		return 0, false
	}
	rest := strings.TrimPrefix(name, blobPrefix)
	digits, _, ok := strings.Cut(rest, "-")
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseUint(digits, 10, 64)
	return v, err == nil
}

// lookupCommitter is implemented by committers that remember every
// version, such as the DynamoDB committer.
type lookupCommitter interface {
	Lookup(ctx context.Context, version uint64) (string, error)
}

// Publish stores m as the next version and returns that version.
func (r *Registry[T]) Publish(ctx context.Context, m *Model[T]) (uint64, error) {
	for attempt := 1; ; attempt++ {
		current, _, err := r.committer.Latest(ctx)
		if err != nil {
			return 0, err
		}
		version := current + 1
		name := blobName(version)

		if err := Save(ctx, r.store, name, m, r.compression); err != nil {
			return 0, err
		}

		err = r.committer.Commit(ctx, version, name)
		if err == nil {
			r.logger.InfoContext(ctx, "model published",
				slog.Uint64("version", version),
				slog.String("blob", name),
				slog.Int("k", m.K()),
				slog.Int("dim", m.Dim()),
			)
			return version, nil
		}
		if delErr := r.store.Delete(ctx, name); delErr != nil {
			r.logger.WarnContext(ctx, "failed to remove orphaned model blob",
				slog.String("blob", name),
				slog.Any("error", delErr),
			)
		}
		if !errors.Is(err, blobstore.ErrConcurrentModification) || attempt >= r.attempts {
			return 0, err
		}
		r.logger.WarnContext(ctx, "publish lost race, retrying",
			slog.Uint64("version", version),
			slog.Int("attempt", attempt),
		)
	}
}

// Latest loads the newest published model.
func (r *Registry[T]) Latest(ctx context.Context) (*Model[T], uint64, error) {
	version, name, err := r.committer.Latest(ctx)
	if err != nil {
		return nil, 0, err
	}
	if version == 0 {
		return nil, 0, ErrNoModel
	}
	m, err := Load[T](ctx, r.store, name)
	if err != nil {
		return nil, 0, err
	}
	return m, version, nil
}

// Get loads a specific version.
func (r *Registry[T]) Get(ctx context.Context, version uint64) (*Model[T], error) {
	name, err := r.resolve(ctx, version)
	if err != nil {
		return nil, err
	}
	return Load[T](ctx, r.store, name)
}

func (r *Registry[T]) resolve(ctx context.Context, version uint64) (string, error) {
	if lc, ok := r.committer.(lookupCommitter); ok {
		return lc.Lookup(ctx, version)
	}
	latest, name, err := r.committer.Latest(ctx)
	if err != nil {
		return "", err
	}
	if latest == version {
		return name, nil
	}
	names, err := r.store.List(ctx, versionPrefix(version))
	if err != nil {
		return "", err
	}
	switch len(names) {
	case 0:
		return "", fmt.Errorf("model version %d: %w", version, blobstore.ErrNotFound)
	case 1:
		return names[0], nil
	default:
		return "", fmt.Errorf("model version %d: %d candidate blobs", version, len(names))
	}
}

// Versions lists the versions whose blobs are present, in ascending order.
func (r *Registry[T]) Versions(ctx context.Context) ([]uint64, error) {
	names, err := r.store.List(ctx, blobPrefix)
	if err != nil {
		return nil, err
	}
	var versions []uint64
	for _, n := range names {
		v, ok := parseBlobName(n)
		if !ok || (len(versions) > 0 && versions[len(versions)-1] == v) {
			continue
		}
		versions = append(versions, v)
	}
	return versions, nil
}
