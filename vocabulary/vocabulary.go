package vocabulary

import (
	"github.com/tidwall/hashmap"
)

// Vocabulary assigns each distinct term a dense, monotonically increasing
// TermId in first-occurrence order (spec.md §3). It is owned exclusively
// by the indexing pipeline's producer; nothing else writes to it during a
// build.
type Vocabulary[T Term] struct {
	ids   *hashmap.Map[T, uint64]
	terms []T
}

// New returns an empty vocabulary. sizeHint is a capacity hint for the
// backing hash map, mirroring gsfa's hashmap.New(1_000_000) sizing.
func New[T Term](sizeHint int) *Vocabulary[T] {
	return &Vocabulary[T]{
		ids: hashmap.New[T, uint64](sizeHint),
	}
}

// IDOf returns t's TermId, assigning a fresh one if t has not been seen
// before.
func (v *Vocabulary[T]) IDOf(t T) uint64 {
	if id, ok := v.ids.Get(t); ok {
		return id
	}
	id := uint64(len(v.terms))
	v.ids.Set(t, id)
	v.terms = append(v.terms, t)
	return id
}

// Lookup returns t's TermId without assigning one, reporting ok=false for
// an unseen term (the Atom query iterator uses this to compile unknown
// terms to Empty per spec.md §4.6).
func (v *Vocabulary[T]) Lookup(t T) (uint64, bool) {
	return v.ids.Get(t)
}

// TermAt returns the term assigned TermId id. id must be < Len().
func (v *Vocabulary[T]) TermAt(id uint64) T {
	return v.terms[id]
}

// Len returns the number of distinct terms assigned a TermId.
func (v *Vocabulary[T]) Len() uint64 {
	return uint64(len(v.terms))
}
