package minio

import (
	"context"
	"io"
	"testing"

	"github.com/hupe1980/clustr/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMinioStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestMinioStore_Integration(t *testing.T) {
	store, err := New(Config{
		Endpoint:  "localhost:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    "test-clustr",
		Prefix:    "test-prefix/",
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()

	// Check if MinIO is reachable
	if _, err := store.client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}
	require.NoError(t, store.EnsureBucket(ctx))

	// Test Put and Open
	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "test.txt", data))

	blob, err := store.Open(ctx, "test.txt")
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, len(data))
	n, err := blob.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.Equal(t, data, buf)

	// Partial read
	part := make([]byte, 5)
	n, err = blob.ReadAt(ctx, part, 6)
	require.NoError(t, err)
	assert.Equal(t, "minio", string(part[:n]))

	// Read past the end
	tail := make([]byte, 10)
	n, err = blob.ReadAt(ctx, tail, 12)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "world", string(tail[:n]))
	require.NoError(t, blob.Close())

	// Test List
	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "test.txt")

	// Test Delete
	require.NoError(t, store.Delete(ctx, "test.txt"))

	// Verify deleted
	_, err = store.Open(ctx, "test.txt")
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestStore_Key(t *testing.T) {
	assert.Equal(t, "a/b.clm", NewStore(nil, "bucket", "a/").key("b.clm"))
	assert.Equal(t, "a/b.clm", NewStore(nil, "bucket", "a").key("b.clm"))
	assert.Equal(t, "b.clm", NewStore(nil, "bucket", "").key("b.clm"))
}
