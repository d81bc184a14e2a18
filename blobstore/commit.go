package blobstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/clustr/codec"
)

// ErrConcurrentModification is returned when another writer committed the
// same version first.
var ErrConcurrentModification = errors.New("concurrent modification detected")

// Committer tracks the current version of a logical object.
type Committer interface {
	// Latest returns the newest committed version and the blob it points
	// to. Version 0 means nothing was committed yet.
	Latest(ctx context.Context) (version uint64, name string, err error)
	// Commit records name as version. It fails with
	// ErrConcurrentModification when version already exists.
	Commit(ctx context.Context, version uint64, name string) error
}

// PointerCommitter keeps the current version in a single pointer blob.
// It serializes commits within one process only.
type PointerCommitter struct {
	store   BlobStore
	pointer string
	mu      sync.Mutex
}

// NewPointerCommitter returns a committer that stores its pointer under
// name in store.
func NewPointerCommitter(store BlobStore, pointer string) *PointerCommitter {
	return &PointerCommitter{store: store, pointer: pointer}
}

type pointerRecord struct {
	Version uint64 `json:"version"`
	Name    string `json:"name"`
}

// Latest implements Committer.
func (c *PointerCommitter) Latest(ctx context.Context) (uint64, string, error) {
	data, err := ReadAll(ctx, c.store, c.pointer)
	if errors.Is(err, ErrNotFound) {
		return 0, "", nil
	}
	if err != nil {
		return 0, "", err
	}
	var rec pointerRecord
	if err := codec.Default.Unmarshal(data, &rec); err != nil {
		return 0, "", fmt.Errorf("invalid pointer %s: %w", c.pointer, err)
	}
	return rec.Version, rec.Name, nil
}

// Commit implements Committer.
func (c *PointerCommitter) Commit(ctx context.Context, version uint64, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, _, err := c.Latest(ctx)
	if err != nil {
		return err
	}
	if version <= current {
		return ErrConcurrentModification
	}
	data, err := codec.Default.Marshal(pointerRecord{Version: version, Name: name})
	if err != nil {
		return err
	}
	return c.store.Put(ctx, c.pointer, data)
}
