// Package chunked implements the per-term chunked posting storage of
// spec.md §4.3: one mutable hot tail chunk per term plus a list of sealed
// chunk ids held in an archive blockstore.BlockStore.
package chunked

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rpcpool/boolidx/blockstore"
	"github.com/rpcpool/boolidx/chunk"
)

const hotChunksFileName = "hot_chunks.bin"

// Storage wraps an archive blockstore.BlockStore and the vector of
// HotChunks indexed by TermId. TermId 0..V-1 map one-to-one onto the V
// entries of the hot-chunks vector (spec.md §3 invariant).
type Storage struct {
	archive   blockstore.BlockStore
	hotChunks []chunk.HotChunk
	// counts holds an exact posting count per TermId, maintained by the
	// inverter during a build. It is not persisted: after Load it reads
	// as all zero, and callers needing a length estimate then fall back
	// to a chunk-chain byte-length proxy (see query's compileAtom).
	counts []uint64
}

// New returns an empty chunked storage backed by archive.
func New(archive blockstore.BlockStore) *Storage {
	return &Storage{archive: archive}
}

// Archive returns the underlying block storage (used by PostingDecoder's
// ChunkRef to read sealed chunks).
func (s *Storage) Archive() blockstore.BlockStore {
	return s.archive
}

// NewChunk grows the hot-chunks vector to termID+1 if needed — filling
// any gap with empty hot chunks, since the indexing pipeline's sort
// shards may assign TermIds out of order relative to the vector's current
// length — then (re)initializes the slot to an empty hot chunk and
// returns a mutable reference to it.
func (s *Storage) NewChunk(termID uint64) *chunk.HotChunk {
	s.growTo(termID + 1)
	s.hotChunks[termID] = chunk.NewHotChunk()
	return &s.hotChunks[termID]
}

// EnsureChunk is like NewChunk but does not reset an existing slot; it
// only grows the vector and returns the (possibly freshly allocated,
// possibly pre-existing) hot chunk for termID. This is what the inverter
// uses: a term's hot chunk must survive across multiple WritePosting calls.
func (s *Storage) EnsureChunk(termID uint64) *chunk.HotChunk {
	s.growTo(termID + 1)
	return &s.hotChunks[termID]
}

func (s *Storage) growTo(n uint64) {
	for uint64(len(s.hotChunks)) < n {
		s.hotChunks = append(s.hotChunks, chunk.NewHotChunk())
		s.counts = append(s.counts, 0)
	}
}

// IncrementPostingCount records that one more posting was written for
// termID. The inverter calls this once per successfully committed
// posting.
func (s *Storage) IncrementPostingCount(termID uint64) {
	s.growTo(termID + 1)
	s.counts[termID]++
}

// PostingCount returns the number of postings recorded for termID via
// IncrementPostingCount, or 0 if none were recorded (including after a
// Load, since counts are not persisted).
func (s *Storage) PostingCount(termID uint64) uint64 {
	if termID >= uint64(len(s.counts)) {
		return 0
	}
	return s.counts[termID]
}

// NextChunk seals the term's current hot chunk by copying (capacity,
// data) into the archive at id archive.Len(), appends that id to the hot
// chunk's sealed list, and resets the hot chunk's capacity to chunk.Size
// while preserving LastDocID and the sealed list. It returns the
// refreshed hot chunk.
func (s *Storage) NextChunk(termID uint64) (*chunk.HotChunk, error) {
	hc := s.EnsureChunk(termID)
	sealedID := s.archive.Len()
	if err := s.archive.Store(sealedID, hc.Seal()); err != nil {
		return nil, fmt.Errorf("chunked: seal chunk for term %d: %w", termID, err)
	}
	hc.Sealed = append(hc.Sealed, sealedID)
	hc.Chunk = chunk.NewEmpty()
	return hc, nil
}

// LastDocID returns the highest DocId written into termID's chain so far.
// termID must already have an allocated hot chunk.
func (s *Storage) LastDocID(termID uint64) uint64 {
	return s.hotChunks[termID].LastDocID
}

// SetLastDocID updates the highest DocId written into termID's chain. The
// inverter calls this only after a posting has been successfully
// committed, never before, so a failed write leaves LastDocID untouched
// (spec.md §3's overflow-rollback invariant).
func (s *Storage) SetLastDocID(termID uint64, docID uint64) {
	s.hotChunks[termID].LastDocID = docID
}

// GetCurrent returns a copy of the term's current hot chunk.
func (s *Storage) GetCurrent(termID uint64) (chunk.HotChunk, error) {
	if termID >= uint64(len(s.hotChunks)) {
		return chunk.HotChunk{}, fmt.Errorf("chunked: term %d has no chunk", termID)
	}
	return s.hotChunks[termID], nil
}

// GetArchived returns the sealed chunk stored at chunkID.
func (s *Storage) GetArchived(chunkID uint64) (chunk.SealedChunk, error) {
	return s.archive.Get(chunkID)
}

// NumTerms returns the number of TermIds with an allocated hot chunk.
func (s *Storage) NumTerms() uint64 {
	return uint64(len(s.hotChunks))
}

// Persist writes the hot-chunks vector to hot_chunks.bin inside dir,
// alongside the archive's own on-disk files (which the archive itself is
// responsible for flushing).
func (s *Storage) Persist(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("chunked: mkdir %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, hotChunksFileName), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("chunked: create %s: %w", hotChunksFileName, err)
	}
	defer f.Close()
	for termID, hc := range s.hotChunks {
		if err := chunk.WriteHotChunk(f, hc); err != nil {
			return fmt.Errorf("chunked: write hot chunk for term %d: %w", termID, err)
		}
	}
	return f.Sync()
}

// Load reads exactly numTerms hot chunks from hot_chunks.bin inside dir,
// pairing them with the given (already-loaded) archive. numTerms comes
// from the vocabulary, which the caller (the Index façade) has already
// loaded, so this is the vocabulary/hot-chunks half of the load-time
// cross-check; sealed chunk ids are not checked against the archive
// here (the Index façade's Load does that).
func Load(dir string, archive blockstore.BlockStore, numTerms uint64) (*Storage, error) {
	f, err := os.Open(filepath.Join(dir, hotChunksFileName))
	if err != nil {
		return nil, fmt.Errorf("chunked: open %s: %w", hotChunksFileName, err)
	}
	defer f.Close()

	hotChunks := make([]chunk.HotChunk, 0, numTerms)
	for i := uint64(0); i < numTerms; i++ {
		hc, err := chunk.ReadHotChunk(f)
		if err != nil {
			return nil, fmt.Errorf("chunked: read hot chunk %d: %w", i, err)
		}
		hotChunks = append(hotChunks, hc)
	}
	if extra, err := f.Read(make([]byte, 1)); err != io.EOF || extra != 0 {
		return nil, fmt.Errorf("chunked: hot_chunks.bin has trailing data beyond %d terms", numTerms)
	}
	return &Storage{archive: archive, hotChunks: hotChunks}, nil
}
