package chainscan

import (
	"sync"

	"github.com/luccasmb/chainhook/internal/pkg/types"
)

// defaultSeenCacheCapacity bounds the dedup cache when no explicit capacity
// is given.
const defaultSeenCacheCapacity = 1000

// SeenCache is a bounded in-memory record of (entity, transaction) pairs the
// scanner has already handed to the classifier. It is a memory-bounded
// performance aid, not a correctness guarantee: when the capacity is
// exceeded the whole cache is dropped and re-seeded with the in-flight key,
// so downstream stages must tolerate occasional duplicate hand-offs.
//
// Each scanner instance owns its cache; nothing here is shared process-wide.
type SeenCache struct {
	mu       sync.Mutex
	capacity int
	keys     types.Set[string]
}

// NewSeenCache creates a SeenCache holding at most capacity keys. A capacity
// of zero or less falls back to the default.
func NewSeenCache(capacity int) *SeenCache {
	if capacity <= 0 {
		capacity = defaultSeenCacheCapacity
	}

	return &SeenCache{
		capacity: capacity,
		keys:     types.NewSet[string](),
	}
}

// MarkSeen records the (entity, txHash) pair and reports whether it was new.
// It returns false when the pair was already present. When inserting a new
// key would exceed the capacity, the cache is cleared first and the new key
// is retained, so the in-flight transaction is never lost to the reset.
func (c *SeenCache) MarkSeen(entity Entity, txHash string) bool {
	key := entity.Key() + ":" + txHash

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.keys[key]; ok {
		return false
	}

	if len(c.keys) >= c.capacity {
		c.keys = types.NewSet[string]()
	}

	c.keys.Add(key)
	return true
}

// Forget removes the (entity, txHash) pair so a later cycle will process the
// transaction again. The scanner calls this when a detail fetch failed after
// the key was already marked, to keep transient upstream errors from
// permanently skipping a transaction.
func (c *SeenCache) Forget(entity Entity, txHash string) {
	key := entity.Key() + ":" + txHash

	c.mu.Lock()
	defer c.mu.Unlock()

	c.keys.Delete(key)
}

// Len reports the current number of cached keys.
func (c *SeenCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.keys)
}
