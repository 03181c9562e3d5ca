// Package query implements the boolean query tree and its compilation
// into lazy, seekable doc-ordered iterators (spec.md §4.6).
package query

import "github.com/rpcpool/boolidx/posting"

// Iterator yields a query node's matching postings in strictly
// increasing DocId order (spec.md §8 law 6). NextSeek(target) is
// equivalent to repeatedly calling Next and discarding results with
// DocID < target (spec.md §8 law 7).
type Iterator interface {
	Next() (*posting.Posting, bool)
	NextSeek(target uint64) (*posting.Posting, bool)
	EstimateLength() uint64
}

// emptyIterator always yields nothing — the compiled form of an atom on
// an unknown term, or of an and/or/phrase node with no usable operands.
type emptyIterator struct{}

func (emptyIterator) Next() (*posting.Posting, bool)           { return nil, false }
func (emptyIterator) NextSeek(uint64) (*posting.Posting, bool) { return nil, false }
func (emptyIterator) EstimateLength() uint64                   { return 0 }

// atomIterator wraps one term's PostingDecoder.
type atomIterator struct {
	dec      *posting.Decoder
	estimate uint64
}

func (a *atomIterator) Next() (*posting.Posting, bool) {
	return a.dec.Next()
}

func (a *atomIterator) NextSeek(target uint64) (*posting.Posting, bool) {
	return a.dec.NextSeek(target)
}

func (a *atomIterator) EstimateLength() uint64 {
	return a.estimate
}

// peekSeek caches one look-ahead posting so that And/Or/Not/Positional
// can inspect a child's next doc id without consuming it, and so that a
// seek past an already-cached posting is a no-op (spec.md §9's
// peekable-seekable wrapper, glossary "Peekable-seekable").
type peekSeek struct {
	it     Iterator
	peeked *posting.Posting
	has    bool
}

func newPeekSeek(it Iterator) *peekSeek {
	return &peekSeek{it: it}
}

// Peek returns the next posting without consuming it.
func (p *peekSeek) Peek() (*posting.Posting, bool) {
	if !p.has {
		p.peeked, p.has = p.it.Next()
	}
	return p.peeked, p.has
}

// PeekSeek is like Peek, but first advances past any cached posting that
// is already below target.
func (p *peekSeek) PeekSeek(target uint64) (*posting.Posting, bool) {
	if p.has && p.peeked.DocID >= target {
		return p.peeked, true
	}
	p.peeked, p.has = p.it.NextSeek(target)
	return p.peeked, p.has
}

func (p *peekSeek) Next() (*posting.Posting, bool) {
	if p.has {
		v := p.peeked
		p.has = false
		p.peeked = nil
		return v, true
	}
	return p.it.Next()
}

func (p *peekSeek) NextSeek(target uint64) (*posting.Posting, bool) {
	v, ok := p.PeekSeek(target)
	if ok {
		p.has = false
		p.peeked = nil
	}
	return v, ok
}

func (p *peekSeek) EstimateLength() uint64 {
	return p.it.EstimateLength()
}
