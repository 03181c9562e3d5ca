package query

// kind discriminates Query node variants.
type kind int

const (
	kindAtom kind = iota
	kindAnd
	kindOr
	kindPhrase
)

// Query is a boolean query tree over term type T (spec.md §4.6). Build
// one with Atom, And, Or, and InOrder, then .Not() it and Compile it
// against an index to get a doc-ordered Iterator.
type Query[T comparable] struct {
	kind     kind
	term     T
	children []Query[T]
	slots    []Slot[T]
	negated  Query[T]
	hasNeg   bool
}

// Slot is one position in an InOrder/phrase query: either a concrete term
// or a Wildcard that matches anything at that position.
type Slot[T comparable] struct {
	Term     T
	Wildcard bool
}

// Atom matches documents containing term.
func Atom[T comparable](term T) Query[T] {
	return Query[T]{kind: kindAtom, term: term}
}

// And matches documents containing every child.
func And[T comparable](children ...Query[T]) Query[T] {
	return Query[T]{kind: kindAnd, children: children}
}

// Or matches documents containing at least one child.
func Or[T comparable](children ...Query[T]) Query[T] {
	return Query[T]{kind: kindOr, children: children}
}

// InOrder matches documents where the given slots occur as a contiguous
// run of term positions, in order, with Wildcard slots matching any term.
func InOrder[T comparable](slots ...Slot[T]) Query[T] {
	return Query[T]{kind: kindPhrase, slots: slots}
}

// Not returns q with sub subtracted from its results by doc id: a
// document matches iff it matches q and does not match sub.
func (q Query[T]) Not(sub Query[T]) Query[T] {
	q.negated = sub
	q.hasNeg = true
	return q
}

// Kind names q's root node, for callers that only need to label or log a
// query rather than inspect its structure.
func (q Query[T]) Kind() string {
	switch q.kind {
	case kindAtom:
		return "atom"
	case kindAnd:
		return "and"
	case kindOr:
		return "or"
	case kindPhrase:
		return "phrase"
	default:
		return "unknown"
	}
}
