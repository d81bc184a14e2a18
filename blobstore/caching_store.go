package blobstore

import (
	"context"
	"errors"
)

// CachingStore wraps a remote BlobStore with a read-through cache.
// Blobs are treated as immutable: once cached they are served from the
// cache until they are overwritten or deleted through this store.
type CachingStore struct {
	remote BlobStore
	cache  BlobStore
}

// NewCachingStore creates a new CachingStore.
func NewCachingStore(remote, cache BlobStore) *CachingStore {
	return &CachingStore{
		remote: remote,
		cache:  cache,
	}
}

// Open serves name from the cache, fetching it from the remote on a miss.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.cache.Open(ctx, name)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	data, err := ReadAll(ctx, s.remote, name)
	if err != nil {
		return nil, err
	}
	// A failed cache fill only costs a refetch.
	_ = s.cache.Put(ctx, name, data)
	return NewBytesBlob(data), nil
}

// Put writes through to the remote and refreshes the cache.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	if err := s.cache.Delete(ctx, name); err != nil {
		return err
	}
	if err := s.remote.Put(ctx, name, data); err != nil {
		return err
	}
	_ = s.cache.Put(ctx, name, data)
	return nil
}

// Delete removes name from the cache and the remote.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	if err := s.cache.Delete(ctx, name); err != nil {
		return err
	}
	return s.remote.Delete(ctx, name)
}

// List lists the remote.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.remote.List(ctx, prefix)
}
