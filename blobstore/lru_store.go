package blobstore

import (
	"container/list"
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// LRUStore is an in-memory BlobStore bounded by total blob bytes. When a
// Put exceeds the capacity the least recently used blobs are evicted, so
// it is meant as the cache tier of a CachingStore.
type LRUStore struct {
	mu        sync.Mutex
	capacity  int64
	size      int64
	items     map[string]*list.Element
	evictList *list.List

	hits   atomic.Int64
	misses atomic.Int64
}

type lruEntry struct {
	name  string
	value []byte
}

// NewLRUStore creates an LRU store holding at most capacity bytes.
func NewLRUStore(capacity int64) *LRUStore {
	return &LRUStore{
		capacity:  capacity,
		items:     make(map[string]*list.Element),
		evictList: list.New(),
	}
}

// Open returns the cached blob and marks it as recently used.
func (c *LRUStore) Open(_ context.Context, name string) (Blob, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[name]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(ent)
		return NewBytesBlob(ent.Value.(*lruEntry).value), nil
	}
	c.misses.Add(1)
	return nil, ErrNotFound
}

// Put caches a copy of data. Blobs larger than the capacity are dropped
// silently.
func (c *LRUStore) Put(_ context.Context, name string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[name]; ok {
		c.removeElement(ent)
	}

	itemSize := int64(len(data))
	if itemSize > c.capacity {
		return nil
	}
	for c.size+itemSize > c.capacity {
		ent := c.evictList.Back()
		if ent == nil {
			break
		}
		c.removeElement(ent)
	}

	value := make([]byte, len(data))
	copy(value, data)
	c.items[name] = c.evictList.PushFront(&lruEntry{name: name, value: value})
	c.size += itemSize
	return nil
}

// Delete evicts name.
func (c *LRUStore) Delete(_ context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[name]; ok {
		c.removeElement(ent)
	}
	return nil
}

// List returns the cached names with the given prefix.
func (c *LRUStore) List(_ context.Context, prefix string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var names []string
	for name := range c.items {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Stats returns the cache hit and miss counts.
func (c *LRUStore) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Size returns the current size of the cache in bytes.
func (c *LRUStore) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

func (c *LRUStore) removeElement(e *list.Element) {
	c.evictList.Remove(e)
	kv := e.Value.(*lruEntry)
	delete(c.items, kv.name)
	c.size -= int64(len(kv.value))
}
