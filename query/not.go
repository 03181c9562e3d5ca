package query

import "github.com/rpcpool/boolidx/posting"

// notIterator yields sand's postings with every doc id present in sieve
// removed (spec.md §4.6 "Not component": "sand minus sieve by doc id").
// Query.Not can be applied to any node, so a notIterator may appear
// nested inside And/Or as well as at the root; it implements the full
// Iterator interface either way.
type notIterator struct {
	sand  *peekSeek
	sieve *peekSeek
}

func newNot(sand, sieve Iterator) *notIterator {
	return &notIterator{sand: newPeekSeek(sand), sieve: newPeekSeek(sieve)}
}

func (n *notIterator) EstimateLength() uint64 {
	return n.sand.EstimateLength()
}

func (n *notIterator) Next() (*posting.Posting, bool) {
	for {
		p, ok := n.sand.Next()
		if !ok {
			return nil, false
		}
		if !n.isSieved(p.DocID) {
			return p, true
		}
	}
}

func (n *notIterator) NextSeek(target uint64) (*posting.Posting, bool) {
	for {
		p, ok := n.sand.NextSeek(target)
		if !ok {
			return nil, false
		}
		if !n.isSieved(p.DocID) {
			return p, true
		}
		target = p.DocID + 1
	}
}

// isSieved reports whether docID appears in the sieve iterator, advancing
// the sieve forward as needed (sieve and sand are both consumed in
// increasing doc id order, so the sieve cursor never needs to move
// backward).
func (n *notIterator) isSieved(docID uint64) bool {
	p, ok := n.sieve.PeekSeek(docID)
	return ok && p.DocID == docID
}
