// Package blockstore implements the keyed chunk store described in
// spec.md §4.2: a store mapping monotonically assigned chunk ids to
// fixed-size sealed chunks, with in-memory and on-disk variants.
package blockstore

import (
	"errors"
	"fmt"

	"github.com/rpcpool/boolidx/chunk"
)

// ErrKeyNotFound is returned by Get when id has never been stored.
var ErrKeyNotFound = errors.New("blockstore: key not found")

// ErrOutOfOrder is returned by Store when id != Len(), violating the
// strictly-increasing-from-zero id contract.
var ErrOutOfOrder = errors.New("blockstore: store id out of order")

// CorruptDataError reports an on-disk consistency failure detected while
// loading a FileStore.
type CorruptDataError struct {
	Reason string
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("blockstore: corrupt data: %s", e.Reason)
}

// BlockStore is a keyed store of sealed chunks. Implementations must
// support concurrent reads; the only writer at build time is the
// indexing pipeline's inverter goroutine (spec.md §5).
type BlockStore interface {
	// Get returns the chunk stored at id, or ErrKeyNotFound.
	Get(id uint64) (chunk.SealedChunk, error)
	// Store appends c at id, which must equal Len(). Returns
	// ErrOutOfOrder otherwise.
	Store(id uint64, c chunk.SealedChunk) error
	// Len returns the number of chunks stored so far.
	Len() uint64
	// Flush persists any buffered writes. A no-op for MemStore.
	Flush() error
	// Close releases any underlying resources.
	Close() error
}
