package chunked

import (
	"errors"
	"fmt"
	"io"

	"github.com/rpcpool/boolidx/chunk"
)

// ErrPostingTooLarge is returned when a single encoded posting is larger
// than chunk.Size and therefore can never fit in one chunk, even freshly
// sealed (spec.md §3: "a single posting must fit entirely within one
// chunk").
var ErrPostingTooLarge = errors.New("chunked: posting too large for one chunk")

// MutChunkRef is the write view over a term's byte stream, used by the
// indexing pipeline's inverter. WritePosting treats its argument as an
// atomic unit: either the whole encoded posting lands in the current hot
// chunk, or the chunk is sealed and a fresh one is tried. Because the
// caller hands over the fully-encoded posting rather than writing
// byte-by-byte, there is never a partially-written posting to roll back —
// the chunk's capacity is only ever mutated by a successful Append.
type MutChunkRef struct {
	storage *Storage
	termID  uint64
}

// MutRef returns a write view over termID's byte stream.
func (s *Storage) MutRef(termID uint64) MutChunkRef {
	return MutChunkRef{storage: s, termID: termID}
}

// WritePosting appends the fully variable-byte-encoded posting record
// (Δdoc, n_positions, Δpositions...) to the term's hot chunk, sealing and
// allocating a fresh chunk first if it doesn't fit.
func (m MutChunkRef) WritePosting(encoded []byte) error {
	if len(encoded) > chunk.Size {
		return ErrPostingTooLarge
	}
	hc := m.storage.EnsureChunk(m.termID)
	if hc.Chunk.Append(encoded) {
		return nil
	}
	hc, err := m.storage.NextChunk(m.termID)
	if err != nil {
		return err
	}
	if !hc.Chunk.Append(encoded) {
		// Can't happen: encoded fits in chunk.Size and hc was just reset
		// to full capacity by NextChunk.
		return ErrPostingTooLarge
	}
	return nil
}

// ChunkRef is the read view over a term's byte stream: the logical
// concatenation, in order, of the term's sealed chunks followed by its
// hot chunk.
type ChunkRef struct {
	storage *Storage
	termID  uint64

	segments []segment // sealed chunks, then the hot chunk, each as a used-byte-length segment
	pos      int64     // absolute byte position into the logical stream
}

type segment struct {
	// archived is true for a sealed chunk (identified by archiveID), and
	// false for the hot chunk (termID already known from ChunkRef).
	archived  bool
	archiveID uint64
	length    int64
}

// NewRef returns a read view over termID's byte stream. It snapshots the
// term's current sealed-chunk list and hot chunk length; it must not be
// reused across a write to the same term.
func (s *Storage) NewRef(termID uint64) (ChunkRef, error) {
	hc, err := s.GetCurrent(termID)
	if err != nil {
		return ChunkRef{}, err
	}
	segments := make([]segment, 0, len(hc.Sealed)+1)
	for _, id := range hc.Sealed {
		sc, err := s.GetArchived(id)
		if err != nil {
			return ChunkRef{}, fmt.Errorf("chunked: load sealed chunk %d for term %d: %w", id, termID, err)
		}
		segments = append(segments, segment{archived: true, archiveID: id, length: int64(sc.Used())})
	}
	segments = append(segments, segment{archived: false, length: int64(hc.Used())})
	return ChunkRef{storage: s, termID: termID, segments: segments}, nil
}

// Len returns the total number of used bytes across the term's whole
// chunk chain.
func (r *ChunkRef) Len() int64 {
	var total int64
	for _, s := range r.segments {
		total += s.length
	}
	return total
}

func (r *ChunkRef) segmentBytes(s segment) ([]byte, error) {
	if s.archived {
		sc, err := r.storage.GetArchived(s.archiveID)
		if err != nil {
			return nil, err
		}
		return sc.Data[chunk.Size-int(s.length):], nil
	}
	hc, err := r.storage.GetCurrent(r.termID)
	if err != nil {
		return nil, err
	}
	return hc.Data[chunk.Size-int(s.length):], nil
}

// Read implements io.Reader over the logical concatenation of segments.
func (r *ChunkRef) Read(p []byte) (int, error) {
	if r.pos >= r.Len() {
		return 0, io.EOF
	}
	var base int64
	for _, seg := range r.segments {
		segEnd := base + seg.length
		if r.pos < segEnd {
			data, err := r.segmentBytes(seg)
			if err != nil {
				return 0, err
			}
			offsetInSeg := r.pos - base
			n := copy(p, data[offsetInSeg:])
			r.pos += int64(n)
			return n, nil
		}
		base = segEnd
	}
	return 0, io.EOF
}

// Seek implements io.Seeker over the logical byte stream's absolute
// offsets.
func (r *ChunkRef) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = r.pos + offset
	case io.SeekEnd:
		target = r.Len() + offset
	default:
		return 0, fmt.Errorf("chunked: invalid whence %d", whence)
	}
	if target < 0 {
		return 0, fmt.Errorf("chunked: negative seek position %d", target)
	}
	r.pos = target
	return r.pos, nil
}

// SeekHint returns a byte offset that the PostingDecoder may jump to in
// order to skip ahead toward postings for targetDoc, without needing to
// decode every posting from the start. Sealed chunks here carry no
// per-chunk first-doc index (spec.md §9 Open Question), so this always
// returns the current position unchanged — callers fall back to a linear
// scan, as spec.md §4.5 explicitly allows.
func (r *ChunkRef) SeekHint(targetDoc uint64) int64 {
	return r.pos
}
