package boolidx

import (
	"container/list"
	"sync"

	"github.com/rpcpool/boolidx/blockstore"
	"github.com/rpcpool/boolidx/chunk"
)

// defaultChunkCacheSize is the default LRU capacity, in sealed chunks,
// for a cached on-disk archive.
const defaultChunkCacheSize = 4096

// cachedStore wraps a blockstore.BlockStore with a bounded LRU of
// recently-read sealed chunks, grounded on the teacher's FileCacheSize
// option and filecache package: phrase/AND skip-heavy queries re-read the
// same hot sealed chunks repeatedly, and re-reading them from
// FileStore's data file on every access is wasteful when a handful of
// terms dominate a query workload. MemStore gains no benefit from this
// wrapper (its Get is already an in-memory slice index) so only Create
// and Load wrap their FileStore-backed archives.
type cachedStore struct {
	inner blockstore.BlockStore
	cap   int

	mu    sync.Mutex
	ll    *list.List
	items map[uint64]*list.Element
}

type cacheEntry struct {
	id    uint64
	chunk chunk.SealedChunk
}

func newCachedStore(inner blockstore.BlockStore, capacity int) blockstore.BlockStore {
	if capacity <= 0 {
		return inner
	}
	return &cachedStore{
		inner: inner,
		cap:   capacity,
		ll:    list.New(),
		items: make(map[uint64]*list.Element),
	}
}

func (c *cachedStore) Get(id uint64) (chunk.SealedChunk, error) {
	c.mu.Lock()
	if el, ok := c.items[id]; ok {
		c.ll.MoveToFront(el)
		sc := el.Value.(*cacheEntry).chunk
		c.mu.Unlock()
		return sc, nil
	}
	c.mu.Unlock()

	sc, err := c.inner.Get(id)
	if err != nil {
		return chunk.SealedChunk{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[id]; !ok {
		el := c.ll.PushFront(&cacheEntry{id: id, chunk: sc})
		c.items[id] = el
		for c.ll.Len() > c.cap {
			oldest := c.ll.Back()
			if oldest == nil {
				break
			}
			c.ll.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).id)
		}
	}
	return sc, nil
}

func (c *cachedStore) Store(id uint64, sc chunk.SealedChunk) error {
	if err := c.inner.Store(id, sc); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[id]; ok {
		el.Value.(*cacheEntry).chunk = sc
		c.ll.MoveToFront(el)
		return nil
	}
	el := c.ll.PushFront(&cacheEntry{id: id, chunk: sc})
	c.items[id] = el
	for c.ll.Len() > c.cap {
		oldest := c.ll.Back()
		if oldest == nil {
			break
		}
		c.ll.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).id)
	}
	return nil
}

func (c *cachedStore) Len() uint64 { return c.inner.Len() }
func (c *cachedStore) Flush() error { return c.inner.Flush() }
func (c *cachedStore) Close() error { return c.inner.Close() }

var _ blockstore.BlockStore = (*cachedStore)(nil)
