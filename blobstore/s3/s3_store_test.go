package s3

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/clustr/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_S3Store(t *testing.T) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		t.Skip("Skipping S3 integration test: S3_BUCKET not set")
	}

	ctx := context.Background()
	cfg, err := config.LoadDefaultConfig(ctx)
	require.NoError(t, err)

	client := s3.NewFromConfig(cfg)

	// Create a unique prefix for this test run
	prefix := fmt.Sprintf("test-clustr-%d/", time.Now().UnixNano())
	store := NewStore(client, bucket, prefix)

	name := "test.blob"
	data := make([]byte, 1024*1024) // 1MB
	_, _ = rand.Read(data)

	require.NoError(t, store.Put(ctx, name, data))

	blobs, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, blobs, name)

	got, err := blobstore.ReadAll(ctx, store, name)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	r, err := store.Open(ctx, name)
	require.NoError(t, err)
	buf := make([]byte, 100)
	n, err := r.ReadAt(ctx, buf, 1000)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
	assert.Equal(t, data[1000:1100], buf)
	require.NoError(t, r.Close())

	require.NoError(t, store.Delete(ctx, name))
	_, err = store.Open(ctx, name)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
