package posting

import (
	"github.com/rpcpool/boolidx/chunked"
	"github.com/rpcpool/boolidx/vbyte"
)

// Decoder is a seekable iterator over one term's postings, decoding
// delta-encoded doc ids out of a chunked.ChunkRef. State is a running
// absolute last doc id plus the underlying byte decoder, per spec.md
// §4.5.
type Decoder struct {
	ref       *chunked.ChunkRef
	dec       *vbyte.Decoder
	lastDocID uint64
}

// NewDecoder returns a Decoder reading from ref, starting at ref's
// current position (normally the beginning of the term's chunk chain).
func NewDecoder(ref *chunked.ChunkRef) *Decoder {
	return &Decoder{ref: ref, dec: vbyte.NewDecoder(ref)}
}

// Next decodes and returns the next posting, or ok=false at end of
// stream.
func (d *Decoder) Next() (*Posting, bool) {
	deltaDoc, ok := d.dec.Next()
	if !ok {
		return nil, false
	}
	d.lastDocID += deltaDoc

	nPositions, ok := d.dec.Next()
	if !ok {
		return nil, false
	}
	positions := make([]uint32, nPositions)
	var pos uint32
	for i := uint64(0); i < nPositions; i++ {
		deltaPos, ok := d.dec.Next()
		if !ok {
			return nil, false
		}
		pos += uint32(deltaPos)
		positions[i] = pos
	}
	return &Posting{DocID: d.lastDocID, Positions: positions}, true
}

// NextSeek returns the first posting with DocID >= target, or ok=false if
// none remains. It asks the underlying ChunkRef for a skip-ahead byte
// offset hint before falling back to a linear scan; since sealed chunks
// carry no per-chunk first-doc index (spec.md §9), the hint is always a
// no-op in this implementation, so NextSeek is equivalent to repeated
// Next calls discarding postings below target, as spec.md §8 requires.
func (d *Decoder) NextSeek(target uint64) (*Posting, bool) {
	if hint := d.ref.SeekHint(target); hint != d.pos() {
		if _, err := d.ref.Seek(hint, 0); err != nil {
			return nil, false
		}
		d.dec = vbyte.NewDecoder(d.ref)
	}
	for {
		p, ok := d.Next()
		if !ok {
			return nil, false
		}
		if p.DocID >= target {
			return p, true
		}
	}
}

func (d *Decoder) pos() int64 {
	p, err := d.ref.Seek(0, 1) // io.SeekCurrent
	if err != nil {
		return -1
	}
	return p
}
