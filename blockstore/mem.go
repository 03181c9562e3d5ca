package blockstore

import (
	"sync"

	"github.com/rpcpool/boolidx/chunk"
)

// MemStore is the in-memory BlockStore variant: a slice of reference-
// counted chunks indexed by id, grounded on
// gsfa/store/primary/inmemory.InMemory's vector-of-tuples shape. Chunks
// are stored behind pointers so that appending to the slice never moves
// a stored chunk; Get returns a copy of the chunk by value.
type MemStore struct {
	mu     sync.RWMutex
	chunks []*chunk.SealedChunk
}

// NewMemStore returns an empty in-memory block store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

func (m *MemStore) Get(id uint64) (chunk.SealedChunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id >= uint64(len(m.chunks)) {
		return chunk.SealedChunk{}, ErrKeyNotFound
	}
	return *m.chunks[id], nil
}

func (m *MemStore) Store(id uint64, c chunk.SealedChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id != uint64(len(m.chunks)) {
		return ErrOutOfOrder
	}
	m.chunks = append(m.chunks, &c)
	return nil
}

func (m *MemStore) Len() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return uint64(len(m.chunks))
}

func (m *MemStore) Flush() error { return nil }

func (m *MemStore) Close() error { return nil }

var _ BlockStore = (*MemStore)(nil)
