package chunk

import (
	"fmt"
	"io"

	"github.com/rpcpool/boolidx/vbyte"
)

// WriteHotChunk serializes a HotChunk as specified in spec.md §4.3/§6:
// variable-byte (capacity, last_doc_id, n_sealed, sealed_ids...) followed
// by the raw Size bytes of chunk data.
func WriteHotChunk(w io.Writer, hc HotChunk) error {
	var header []byte
	header = vbyte.Encode(header, uint64(hc.Capacity))
	header = vbyte.Encode(header, hc.LastDocID)
	header = vbyte.Encode(header, uint64(len(hc.Sealed)))
	for _, id := range hc.Sealed {
		header = vbyte.Encode(header, id)
	}
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("chunk: write hot chunk header: %w", err)
	}
	if _, err := w.Write(hc.Data[:]); err != nil {
		return fmt.Errorf("chunk: write hot chunk data: %w", err)
	}
	return nil
}

// ReadHotChunk deserializes a HotChunk previously written by WriteHotChunk.
func ReadHotChunk(r io.ReadSeeker) (HotChunk, error) {
	dec := vbyte.NewDecoder(r)
	capacity, ok := dec.Next()
	if !ok {
		return HotChunk{}, fmt.Errorf("chunk: read capacity: %w", vbyte.ErrMalformed)
	}
	lastDocID, ok := dec.Next()
	if !ok {
		return HotChunk{}, fmt.Errorf("chunk: read last_doc_id: %w", vbyte.ErrMalformed)
	}
	nSealed, ok := dec.Next()
	if !ok {
		return HotChunk{}, fmt.Errorf("chunk: read n_sealed: %w", vbyte.ErrMalformed)
	}
	var sealed []uint64
	if nSealed > 0 {
		sealed = make([]uint64, 0, nSealed)
	}
	for i := uint64(0); i < nSealed; i++ {
		id, ok := dec.Next()
		if !ok {
			return HotChunk{}, fmt.Errorf("chunk: read sealed id %d: %w", i, vbyte.ErrMalformed)
		}
		sealed = append(sealed, id)
	}
	hc := HotChunk{
		Chunk:     Chunk{Capacity: uint16(capacity)},
		LastDocID: lastDocID,
		Sealed:    sealed,
	}
	if _, err := io.ReadFull(dec, hc.Data[:]); err != nil {
		return HotChunk{}, fmt.Errorf("chunk: read hot chunk data: %w", err)
	}
	return hc, nil
}
