package query

import (
	"context"

	"github.com/rpcpool/boolidx/chunked"
	"github.com/rpcpool/boolidx/posting"
	"github.com/rpcpool/boolidx/telemetry"
	"github.com/rpcpool/boolidx/vocabulary"
)

// Compile walks a Query tree into a lazy, doc-ordered Iterator over vocab
// and storage. An atom on a term vocab has never seen compiles to an
// always-empty iterator rather than an error (spec.md §8 law: querying an
// absent term yields no results, not a failure).
func Compile[T vocabulary.Term](ctx context.Context, q Query[T], vocab *vocabulary.Vocabulary[T], storage *chunked.Storage) (Iterator, error) {
	var it Iterator
	var err error
	switch q.kind {
	case kindAtom:
		it, err = compileAtom(ctx, q.term, vocab, storage)
	case kindAnd:
		it, err = compileNary(ctx, q.children, vocab, storage, newAndAdapter)
	case kindOr:
		it, err = compileNary(ctx, q.children, vocab, storage, newOrAdapter)
	case kindPhrase:
		it, err = compilePhrase(ctx, q.slots, vocab, storage)
	}
	if err != nil {
		return nil, err
	}
	if !q.hasNeg {
		return it, nil
	}
	sub, err := Compile(ctx, q.negated, vocab, storage)
	if err != nil {
		return nil, err
	}
	return newNot(it, sub), nil
}

func newAndAdapter(children []Iterator) Iterator { return newAnd(children) }
func newOrAdapter(children []Iterator) Iterator  { return newOr(children) }

// compileAtom resolves term to a TermId and wraps its posting chain in an
// Iterator, estimating its length from the exact in-process posting
// count when available and falling back to the chunk chain's byte
// length otherwise (chunked.Storage's doc comment on counts).
func compileAtom[T vocabulary.Term](ctx context.Context, term T, vocab *vocabulary.Vocabulary[T], storage *chunked.Storage) (Iterator, error) {
	termID, ok := vocab.Lookup(term)
	if !ok {
		return emptyIterator{}, nil
	}
	_, span := telemetry.TraceChunkIO(ctx, "read", termID)
	defer span.End()

	ref, err := storage.NewRef(termID)
	if err != nil {
		telemetry.RecordError(span, err, "open chunk chain failed")
		return nil, err
	}
	estimate := storage.PostingCount(termID)
	if estimate == 0 {
		estimate = uint64(ref.Len())
	}
	return &atomIterator{dec: posting.NewDecoder(&ref), estimate: estimate}, nil
}

// compileNary compiles every child and combines them with combine,
// honoring spec.md §8's identity laws: zero children is empty, exactly
// one child passes through unchanged rather than being wrapped.
func compileNary[T vocabulary.Term](ctx context.Context, children []Query[T], vocab *vocabulary.Vocabulary[T], storage *chunked.Storage, combine func([]Iterator) Iterator) (Iterator, error) {
	compiled := make([]Iterator, 0, len(children))
	for _, c := range children {
		it, err := Compile(ctx, c, vocab, storage)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, it)
	}
	switch len(compiled) {
	case 0:
		return emptyIterator{}, nil
	case 1:
		return compiled[0], nil
	default:
		return combine(compiled), nil
	}
}

// compilePhrase resolves each concrete slot to an atom Iterator tagged
// with its offset from the phrase start; a single-slot phrase passes
// through as plain atom, per spec.md §8's "phrase of one atom ≡ atom".
func compilePhrase[T vocabulary.Term](ctx context.Context, slots []Slot[T], vocab *vocabulary.Vocabulary[T], storage *chunked.Storage) (Iterator, error) {
	var terms []phraseTerm
	for offset, s := range slots {
		if s.Wildcard {
			continue
		}
		it, err := compileAtom(ctx, s.Term, vocab, storage)
		if err != nil {
			return nil, err
		}
		terms = append(terms, phraseTerm{child: newPeekSeek(it), offset: uint32(offset)})
	}
	switch len(terms) {
	case 0:
		return emptyIterator{}, nil
	case 1:
		return terms[0].child, nil
	default:
		return newPositional(terms), nil
	}
}
