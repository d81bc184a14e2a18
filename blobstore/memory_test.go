package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	data := []byte("abc")
	require.NoError(t, s.Put(ctx, "b/2", data))
	require.NoError(t, s.Put(ctx, "b/1", []byte("x")))
	require.NoError(t, s.Put(ctx, "a", []byte("y")))
	data[0] = 'z'

	got, err := ReadAll(ctx, s, "b/2")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	names, err := s.List(ctx, "b/")
	require.NoError(t, err)
	assert.Equal(t, []string{"b/1", "b/2"}, names)

	blob, err := s.Open(ctx, "b/2")
	require.NoError(t, err)
	buf := make([]byte, 4)
	n, err := blob.ReadAt(ctx, buf, 1)
	assert.Equal(t, 2, n)
	assert.ErrorIs(t, err, io.EOF)

	require.NoError(t, s.Delete(ctx, "a"))
	_, err = s.Open(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPointerCommitter(t *testing.T) {
	ctx := context.Background()
	c := NewPointerCommitter(NewMemoryStore(), "CURRENT")

	v, name, err := c.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), v)
	assert.Empty(t, name)

	require.NoError(t, c.Commit(ctx, 1, "v1"))
	require.NoError(t, c.Commit(ctx, 2, "v2"))
	assert.ErrorIs(t, c.Commit(ctx, 2, "other"), ErrConcurrentModification)

	v, name, err = c.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v)
	assert.Equal(t, "v2", name)
}
