package keystore

import (
	"container/list"
	"sync"
)

// lruCache is a bounded, reader/writer-locked cache of decrypted key blobs,
// keyed by id. Reads take the read lock to look up the entry and only
// escalate to the write lock to move it to the front of the recency list,
// matching the read-heavy/write-light access pattern of a key cache.
type lruCache struct {
	mu       sync.RWMutex
	capacity int
	items    map[string]*list.Element
	order    *list.List // front = most recently used
}

type lruEntry struct {
	id   string
	blob []byte
	meta Metadata
}

func newLRUCache(capacity int) *lruCache {
	if capacity <= 0 {
		capacity = 256
	}
	return &lruCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

func (c *lruCache) get(id string) ([]byte, Metadata, bool) {
	c.mu.RLock()
	el, ok := c.items[id]
	c.mu.RUnlock()
	if !ok {
		return nil, Metadata{}, false
	}

	c.mu.Lock()
	c.order.MoveToFront(el)
	c.mu.Unlock()

	entry := el.Value.(*lruEntry)
	return entry.blob, entry.meta, true
}

func (c *lruCache) put(id string, blob []byte, meta Metadata) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[id]; ok {
		c.order.MoveToFront(el)
		el.Value.(*lruEntry).blob = blob
		el.Value.(*lruEntry).meta = meta
		return
	}

	el := c.order.PushFront(&lruEntry{id: id, blob: blob, meta: meta})
	c.items[id] = el

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*lruEntry).id)
		}
	}
}

func (c *lruCache) invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[id]; ok {
		c.order.Remove(el)
		delete(c.items, id)
	}
}
