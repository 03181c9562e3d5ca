// Package chunk defines the fixed-size byte buffers that back one term's
// postings: the mutable HotChunk tail and the immutable SealedChunk form
// it takes once archived.
package chunk

// Size is the fixed size, in bytes, of every chunk.
const Size = 104

// Chunk is a fixed-size byte buffer plus the number of bytes still free,
// counted from the tail.
type Chunk struct {
	Data     [Size]byte
	Capacity uint16
}

// NewEmpty returns a chunk with the full Size bytes of capacity free.
func NewEmpty() Chunk {
	return Chunk{Capacity: Size}
}

// Used returns the number of bytes currently holding data.
func (c Chunk) Used() int {
	return Size - int(c.Capacity)
}

// SealedChunk is the immutable (capacity, data) pair stored in the
// archive block storage once a hot chunk overflows. Persisting the index
// does not seal hot chunks; they are written to hot_chunks.bin as they
// are.
type SealedChunk struct {
	Capacity uint16
	Data     [Size]byte
}

// Seal snapshots c into an immutable SealedChunk.
func (c Chunk) Seal() SealedChunk {
	return SealedChunk{Capacity: c.Capacity, Data: c.Data}
}

// HotChunk is the mutable tail chunk of one term's posting chain, plus the
// metadata needed to keep delta-encoding correct across chunk boundaries
// and to find the chunks that came before it.
type HotChunk struct {
	Chunk
	LastDocID uint64
	// Sealed holds the archive chunk ids belonging to this term, in the
	// order they were sealed (oldest first).
	Sealed []uint64
}

// NewHotChunk returns a fresh, empty hot chunk with no posting history.
func NewHotChunk() HotChunk {
	return HotChunk{Chunk: NewEmpty()}
}

// Append writes b into the chunk's free tail. It returns false without
// modifying the chunk if b does not fit in the remaining capacity.
func (c *Chunk) Append(b []byte) bool {
	if len(b) > int(c.Capacity) {
		return false
	}
	copy(c.Data[Size-int(c.Capacity):], b)
	c.Capacity -= uint16(len(b))
	return true
}
