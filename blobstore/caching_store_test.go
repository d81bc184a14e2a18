package blobstore

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore counts Open calls on the wrapped store.
type countingStore struct {
	BlobStore
	opens atomic.Int64
}

func (s *countingStore) Open(ctx context.Context, name string) (Blob, error) {
	s.opens.Add(1)
	return s.BlobStore.Open(ctx, name)
}

func TestCachingStore_ReadThrough(t *testing.T) {
	ctx := context.Background()
	remote := &countingStore{BlobStore: NewMemoryStore()}
	cache := NewMemoryStore()
	store := NewCachingStore(remote, cache)

	require.NoError(t, remote.Put(ctx, "m", []byte("payload")))

	for range 3 {
		data, err := ReadAll(ctx, store, "m")
		require.NoError(t, err)
		assert.Equal(t, "payload", string(data))
	}
	assert.Equal(t, int64(1), remote.opens.Load())

	_, err := store.Open(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCachingStore_WriteInvalidates(t *testing.T) {
	ctx := context.Background()
	remote := NewMemoryStore()
	cache := NewMemoryStore()
	store := NewCachingStore(remote, cache)

	require.NoError(t, store.Put(ctx, "m", []byte("v1")))
	_, err := ReadAll(ctx, store, "m")
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "m", []byte("v2")))
	data, err := ReadAll(ctx, store, "m")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))

	require.NoError(t, store.Delete(ctx, "m"))
	_, err = store.Open(ctx, "m")
	assert.ErrorIs(t, err, ErrNotFound)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)
}
