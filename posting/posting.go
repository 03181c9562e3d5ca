// Package posting defines the Posting type and the lazy PostingDecoder
// that reads a term's postings out of its chunked byte stream (spec.md
// §3, §4.5).
package posting

// Posting is a (DocId, Positions) pair: one term's occurrences within one
// document. Positions is non-empty and strictly increasing.
type Posting struct {
	DocID     uint64
	Positions []uint32
}
