package boolidx

import "github.com/rpcpool/boolidx/query"

// Query, Slot, Atom, And, Or, and InOrder re-export the query package's
// builder surface at the façade root, per spec.md §C item 1's
// QueryBuilder-style construction (boolidx.Atom(t).And(...), etc.).
type Query[T comparable] = query.Query[T]

type Slot[T comparable] = query.Slot[T]

func Atom[T comparable](term T) Query[T] { return query.Atom(term) }

func And[T comparable](children ...Query[T]) Query[T] { return query.And(children...) }

func Or[T comparable](children ...Query[T]) Query[T] { return query.Or(children...) }

func InOrder[T comparable](slots ...Slot[T]) Query[T] { return query.InOrder(slots...) }
