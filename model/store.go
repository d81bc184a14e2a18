package model

import (
	"bytes"
	"context"
	"fmt"

	"github.com/hupe1980/clustr/blobstore"
	"github.com/hupe1980/clustr/dense"
)

// Save encodes m and stores it under name.
func Save[T dense.Float](ctx context.Context, store blobstore.BlobStore, name string, m *Model[T], c Compression) error {
	var buf bytes.Buffer
	if err := Encode(&buf, m, c); err != nil {
		return err
	}
	if err := store.Put(ctx, name, buf.Bytes()); err != nil {
		return fmt.Errorf("save model %s: %w", name, err)
	}
	return nil
}

// Load reads the model stored under name.
func Load[T dense.Float](ctx context.Context, store blobstore.BlobStore, name string) (*Model[T], error) {
	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", name, err)
	}
	m, err := decodeBytes[T](data)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", name, err)
	}
	return m, nil
}
